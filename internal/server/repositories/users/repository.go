package users

import (
	"context"

	"github.com/dmitrijs2005/milktracker/internal/models"
)

// Repository stores user accounts. Lookups return common.ErrorNotFound when
// no row matches; Create and Update return common.ErrorAlreadyExists when
// the email or username is taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}
