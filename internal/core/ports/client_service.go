package ports

import "context"

// ClientService defines use-case operations for client profiles.
type ClientService interface {
	Create(ctx context.Context, fields map[string]any) (string, error)
	Get(ctx context.Context, id string) (map[string]any, error)
	List(ctx context.Context, q ClientListQuery) (*Page, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, term string) ([]map[string]any, error)
}
