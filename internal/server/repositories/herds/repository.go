package herds

import (
	"context"

	"github.com/dmitrijs2005/milktracker/internal/models"
)

// Repository stores herds. Every method is scoped to the owning user: a
// herd owned by someone else behaves exactly like a missing one and yields
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, userID int64, in models.HerdInput) (*models.Herd, error)
	List(ctx context.Context, userID int64, skip, limit int) ([]models.Herd, error)
	Get(ctx context.Context, userID, id int64) (*models.Herd, error)
	Update(ctx context.Context, userID, id int64, in models.HerdInput) (*models.Herd, error)
	Delete(ctx context.Context, userID, id int64) (*models.Herd, error)
}
