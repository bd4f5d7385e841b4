package milk

import (
	"context"
	"time"

	"github.com/dmitrijs2005/milktracker/internal/models"
)

// Filter narrows record listings and totals. Zero HerdID means every herd
// of the user; zero Since means no lower date bound.
type Filter struct {
	HerdID int64
	Since  time.Time
	Skip   int
	Limit  int
}

// Repository stores milk production records. Ownership is resolved through
// the record's herd; records of another user's herd are invisible and
// yield common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, in models.MilkRecordInput) (*models.MilkRecord, error)
	List(ctx context.Context, userID int64, f Filter) ([]models.MilkRecord, error)
	Get(ctx context.Context, userID, id int64) (*models.MilkRecord, error)
	Update(ctx context.Context, userID, id int64, in models.MilkRecordInput) (*models.MilkRecord, error)
	Delete(ctx context.Context, userID, id int64) (*models.MilkRecord, error)
	// Totals returns the liters sum and the number of distinct calendar
	// days with at least one record. Skip and Limit are ignored.
	Totals(ctx context.Context, userID int64, f Filter) (float64, int, error)
}
