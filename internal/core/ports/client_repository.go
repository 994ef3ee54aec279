package ports

import "context"

// ClientListQuery carries pagination and substring filters for listing
// client profiles.
type ClientListQuery struct {
	Name    string // substring match, case-insensitive
	City    string // substring match, case-insensitive
	Page    int
	PerPage int
}

// ClientRepository defines persistence operations for client profiles.
type ClientRepository interface {
	Insert(ctx context.Context, doc map[string]any) (string, error)
	FindByID(ctx context.Context, id string) (map[string]any, error)
	List(ctx context.Context, q ClientListQuery) ([]map[string]any, int64, error)
	Delete(ctx context.Context, id string) error
	// Search performs a case-insensitive substring match over name, email
	// and city. limit <= 0 means unbounded.
	Search(ctx context.Context, term string, limit int) ([]map[string]any, error)
	// UpdateByEmail applies a partial $set to every client profile whose
	// email matches. Duplicate profiles per email exist by design; all of
	// them are synced. A zero match is not an error.
	UpdateByEmail(ctx context.Context, email string, fields map[string]any) error
}
