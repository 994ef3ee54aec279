package ports

import (
	"context"

	"github.com/kodestudio/requirements-api/internal/core/domain"
)

// UserRepository defines persistence operations for account records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Update applies a partial $set of the given fields. The caller is
	// responsible for stripping protected keys first.
	Update(ctx context.Context, id string, fields map[string]any) error
}
