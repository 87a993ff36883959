package helpers

import (
	"fmt"
	"net/http"
	"strconv"

	"explorewithme/internal/domain"
)

// ParsePagination reads from and size from the request query string. Missing
// values fall back to defaults; a negative from or a non-positive size is an
// error, and size is capped at domain.MaxPageSize.
func ParsePagination(r *http.Request) (domain.PaginationParams, error) {
	page := domain.PaginationParams{From: 0, Size: domain.DefaultPageSize}
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return page, fmt.Errorf("%w: from must be a non-negative integer", domain.ErrInvalidField)
		}
		page.From = v
	}
	if s := q.Get("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return page, fmt.Errorf("%w: size must be a positive integer", domain.ErrInvalidField)
		}
		page.Size = min(v, domain.MaxPageSize)
	}
	return page, nil
}
