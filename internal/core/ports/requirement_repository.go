package ports

import (
	"context"
)

// ListQuery carries pagination, sorting and exact-match filters for list
// operations. Filters are allow-listed per entity by the service layer
// before they reach a repository.
type ListQuery struct {
	Filters map[string]string
	SortBy  string // empty = created_at
	SortDir int    // +1 ascending, -1 descending (default)
	Page    int    // 1-based
	PerPage int
}

// Page is one page of documents plus the totals computed from the same
// filter predicate.
type Page struct {
	Items      []map[string]any `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
}

// RequirementStats aggregates grouped counts over the requirements
// collection. Documents with a null or missing group key are counted
// under the empty string.
type RequirementStats struct {
	Total            int64            `json:"total_requirements"`
	StatusCounts     map[string]int64 `json:"status_counts"`
	PriorityCounts   map[string]int64 `json:"priority_counts"`
	DepartmentCounts map[string]int64 `json:"department_counts"`
}

// RequirementRepository defines persistence operations for requirement
// documents. Identifiers cross this boundary as hex strings; malformed ones
// yield domain.ErrInvalidID before any store call.
type RequirementRepository interface {
	Insert(ctx context.Context, doc map[string]any) (string, error)
	FindByID(ctx context.Context, id string) (map[string]any, error)
	// List returns one page of documents matching q plus the total count
	// computed from the same filter.
	List(ctx context.Context, q ListQuery) ([]map[string]any, int64, error)
	// Update applies a partial $set of fields. Returns
	// domain.ErrRequirementNotFound when no document matches id.
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	// Search performs a case-insensitive substring match over projectTitle,
	// description, requestorName and department. limit <= 0 means unbounded.
	Search(ctx context.Context, term string, limit int) ([]map[string]any, error)
	Stats(ctx context.Context) (*RequirementStats, error)
}
