package ports

import "context"

// ReviewRepository exposes the read-only view over the reviews collection.
// Reviews are written by an external process; this API never mutates them.
type ReviewRepository interface {
	FindAll(ctx context.Context) ([]map[string]any, error)
}

// ReviewService defines the read-only review listing use case.
type ReviewService interface {
	List(ctx context.Context) ([]map[string]any, error)
}
