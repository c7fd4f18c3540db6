package shared

// PageRequest carries 1-based pagination input and an optional ordering.
// Repositories check SortBy against their own column whitelist.
type PageRequest struct {
	Page      int
	PerPage   int
	SortBy    string
	SortOrder string
}

// Offset returns the row offset for the requested page
func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// LastPage returns the last valid page for total rows, never less than 1
func LastPage(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		return 1
	}
	return last
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	LastPage int   `json:"last_page"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, perPage int) Paginated[T] {
	return Paginated[T]{
		Items:    items,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		LastPage: LastPage(total, perPage),
	}
}
