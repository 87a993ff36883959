package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// PaginationParams holds offset-based pagination parameters for list queries.
// From is the number of rows to skip, Size the number of rows to return.
type PaginationParams struct {
	From int
	Size int
}

// Offset returns the row offset, never negative.
func (p PaginationParams) Offset() int {
	if p.From < 0 {
		return 0
	}
	return p.From
}

// Limit returns the page size, falling back to DefaultPageSize.
func (p PaginationParams) Limit() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	if p.Size > MaxPageSize {
		return MaxPageSize
	}
	return p.Size
}
