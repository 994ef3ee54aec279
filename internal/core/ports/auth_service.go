package ports

import (
	"context"

	"github.com/kodestudio/requirements-api/internal/core/domain"
)

// AuthService covers account registration, login and account maintenance.
type AuthService interface {
	// Register creates an account after checking that the username is not
	// taken. The uniqueness pre-check and insert are not wrapped in a
	// transaction; concurrent registrations of the same name may race.
	Register(ctx context.Context, username, password string) (*domain.User, error)
	// Login verifies the credentials and returns a signed token plus the
	// authenticated user.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	// VerifyPassword compares a stored credential against the provided one
	// without issuing a token.
	VerifyPassword(ctx context.Context, username, password string) (bool, error)
}
