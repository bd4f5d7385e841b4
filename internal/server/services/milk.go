package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/milktracker/internal/common"
	"github.com/dmitrijs2005/milktracker/internal/dbx"
	"github.com/dmitrijs2005/milktracker/internal/models"
	"github.com/dmitrijs2005/milktracker/internal/server/export"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/milk"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/repomanager"
)

var (
	errRecordNotFound    = common.NewError(common.ErrorNotFound, "Milk production record not found")
	errExportUnavailable = common.NewError(common.ErrorNotFound, "Export is not configured")
)

// MilkService manages production records. Ownership always goes through
// the record's herd.
type MilkService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	exporter    export.Uploader
	now         func() time.Time
}

// NewMilkService builds the service. exporter may be nil, in which case
// Export reports that export is not configured.
func NewMilkService(db *sql.DB, m repomanager.RepositoryManager, exporter export.Uploader) *MilkService {
	return &MilkService{db: db, repomanager: m, exporter: exporter, now: time.Now}
}

func (s *MilkService) validate(in *models.MilkRecordInput) error {
	if in.HerdID <= 0 {
		return common.NewError(common.ErrorValidation, "Herd is required")
	}
	if in.AmountLiters < 0 {
		return common.NewError(common.ErrorValidation, "Amount must not be negative")
	}
	for _, p := range []*float64{in.FatPercentage, in.ProteinPercentage} {
		if p != nil && (*p < 0 || *p > 100) {
			return common.NewError(common.ErrorValidation, "Percentages must be between 0 and 100")
		}
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}
	return nil
}

func (s *MilkService) Create(ctx context.Context, userID int64, in models.MilkRecordInput) (*models.MilkRecord, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Herds(s.db).Get(ctx, userID, in.HerdID); err != nil {
		return nil, herdErr(err)
	}
	return s.repomanager.Milk(s.db).Create(ctx, in)
}

// List returns records oldest first. herdID 0 lists every herd of the user.
func (s *MilkService) List(ctx context.Context, userID, herdID int64, skip, limit int) ([]models.MilkRecord, error) {
	skip, limit = pagination(skip, limit)
	return s.repomanager.Milk(s.db).List(ctx, userID, milk.Filter{HerdID: herdID, Skip: skip, Limit: limit})
}

func (s *MilkService) Get(ctx context.Context, userID, id int64) (*models.MilkRecord, error) {
	r, err := s.repomanager.Milk(s.db).Get(ctx, userID, id)
	return r, recordErr(err)
}

// Update replaces a record. Moving it to another herd requires owning the
// target herd; both checks and the write share one transaction.
func (s *MilkService) Update(ctx context.Context, userID, id int64, in models.MilkRecordInput) (*models.MilkRecord, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	var out *models.MilkRecord
	err := runTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Milk(tx)
		cur, err := repo.Get(ctx, userID, id)
		if err != nil {
			return recordErr(err)
		}
		if cur.HerdID != in.HerdID {
			if _, err := s.repomanager.Herds(tx).Get(ctx, userID, in.HerdID); err != nil {
				return herdErr(err)
			}
		}
		out, err = repo.Update(ctx, userID, id, in)
		return recordErr(err)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MilkService) Delete(ctx context.Context, userID, id int64) (*models.MilkRecord, error) {
	r, err := s.repomanager.Milk(s.db).Delete(ctx, userID, id)
	return r, recordErr(err)
}

// Stats aggregates the user's production, optionally for one herd and a
// trailing time span. Liters per cow is only set when a herd is selected.
func (s *MilkService) Stats(ctx context.Context, userID, herdID int64, span models.TimeSpan) (models.Stats, error) {
	cows := 0
	if herdID != 0 {
		h, err := s.repomanager.Herds(s.db).Get(ctx, userID, herdID)
		if err != nil {
			return models.Stats{}, herdErr(err)
		}
		cows = h.CowCount
	}

	f := milk.Filter{HerdID: herdID}
	if since, ok := span.Since(s.now()); ok {
		f.Since = since
	}

	total, days, err := s.repomanager.Milk(s.db).Totals(ctx, userID, f)
	if err != nil {
		return models.Stats{}, fmt.Errorf("milk totals: %w", err)
	}
	return models.NewStats(total, days, cows), nil
}

var csvHeader = []string{"id", "herd_id", "herd_name", "date", "amount_liters", "fat_percentage", "protein_percentage"}

// Export writes the user's records (optionally one herd) as CSV, uploads
// the file and returns a presigned download link.
func (s *MilkService) Export(ctx context.Context, userID, herdID int64) (*models.Export, error) {
	if s.exporter == nil {
		return nil, errExportUnavailable
	}
	if herdID != 0 {
		if _, err := s.repomanager.Herds(s.db).Get(ctx, userID, herdID); err != nil {
			return nil, herdErr(err)
		}
	}

	records, err := s.repomanager.Milk(s.db).List(ctx, userID, milk.Filter{HerdID: herdID})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	herds, err := s.repomanager.Herds(s.db).List(ctx, userID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list herds: %w", err)
	}

	body, err := encodeCSV(records, herds)
	if err != nil {
		return nil, fmt.Errorf("%w: encode csv: %v", common.ErrorInternal, err)
	}
	return s.exporter.Upload(ctx, userID, body)
}

func encodeCSV(records []models.MilkRecord, herds []models.Herd) ([]byte, error) {
	names := make(map[int64]string, len(herds))
	for _, h := range herds {
		names[h.ID] = h.Name
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range records {
		name, ok := names[r.HerdID]
		if !ok {
			name = "Unknown"
		}
		row := []string{
			strconv.FormatInt(r.ID, 10),
			strconv.FormatInt(r.HerdID, 10),
			name,
			r.Date.Format(time.RFC3339),
			strconv.FormatFloat(r.AmountLiters, 'f', -1, 64),
			optFloat(r.FatPercentage),
			optFloat(r.ProteinPercentage),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func recordErr(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return errRecordNotFound
	}
	return err
}
