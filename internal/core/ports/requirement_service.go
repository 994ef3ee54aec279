package ports

import "context"

// RequirementService defines the use-case operations for project
// requirement submissions.
type RequirementService interface {
	// Create validates the submission, stamps metadata, persists it, and
	// derives a client profile from the requestor fields as a best-effort
	// secondary write. Returns the new requirement id.
	Create(ctx context.Context, fields map[string]any) (string, error)
	Get(ctx context.Context, id string) (map[string]any, error)
	List(ctx context.Context, q ListQuery) (*Page, error)
	// Update applies a partial update under the allow-list policy and
	// re-syncs the matching client profile when requestor contact fields
	// are touched.
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, term string) ([]map[string]any, error)
	Stats(ctx context.Context) (*RequirementStats, error)
}
