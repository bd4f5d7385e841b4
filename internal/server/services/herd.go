package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/milktracker/internal/common"
	"github.com/dmitrijs2005/milktracker/internal/models"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/repomanager"
)

var errHerdNotFound = common.NewError(common.ErrorNotFound, "Herd not found")

// Default pagination applied when the caller passes no limit.
const (
	DefaultSkip  = 0
	DefaultLimit = 100
)

type HerdService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewHerdService(db *sql.DB, m repomanager.RepositoryManager) *HerdService {
	return &HerdService{db: db, repomanager: m}
}

func validateHerd(in models.HerdInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return common.NewError(common.ErrorValidation, "Herd name is required")
	}
	if in.CowCount < 0 {
		return common.NewError(common.ErrorValidation, "Cow count must not be negative")
	}
	return nil
}

func (s *HerdService) Create(ctx context.Context, userID int64, in models.HerdInput) (*models.Herd, error) {
	if err := validateHerd(in); err != nil {
		return nil, err
	}
	return s.repomanager.Herds(s.db).Create(ctx, userID, in)
}

func (s *HerdService) List(ctx context.Context, userID int64, skip, limit int) ([]models.Herd, error) {
	skip, limit = pagination(skip, limit)
	return s.repomanager.Herds(s.db).List(ctx, userID, skip, limit)
}

func (s *HerdService) Get(ctx context.Context, userID, id int64) (*models.Herd, error) {
	h, err := s.repomanager.Herds(s.db).Get(ctx, userID, id)
	return h, herdErr(err)
}

func (s *HerdService) Update(ctx context.Context, userID, id int64, in models.HerdInput) (*models.Herd, error) {
	if err := validateHerd(in); err != nil {
		return nil, err
	}
	h, err := s.repomanager.Herds(s.db).Update(ctx, userID, id, in)
	return h, herdErr(err)
}

// Delete removes the herd and, by cascade, its production records.
func (s *HerdService) Delete(ctx context.Context, userID, id int64) (*models.Herd, error) {
	h, err := s.repomanager.Herds(s.db).Delete(ctx, userID, id)
	return h, herdErr(err)
}

func herdErr(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return errHerdNotFound
	}
	return err
}

// pagination applies defaults: a negative skip becomes 0 and a
// non-positive limit becomes DefaultLimit.
func pagination(skip, limit int) (int, int) {
	if skip < 0 {
		skip = DefaultSkip
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return skip, limit
}
