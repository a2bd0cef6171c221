package api

import (
	"net/http"
	"strconv"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// page is a resolved page/limit pair from the query string.
type page struct {
	Page  int
	Limit int
}

func (p page) Offset() int { return (p.Page - 1) * p.Limit }

// TotalPages returns the number of pages needed for total items.
func (p page) TotalPages(total int) int {
	if total == 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// parsePagination extracts page and limit from query parameters.
// page defaults to 1; limit defaults to 10 and is silently capped at 100.
// Unparseable values fall back to the defaults.
func parsePagination(r *http.Request) page {
	p := page{Page: 1, Limit: defaultLimit}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			p.Page = parsed
		}
	}
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			p.Limit = parsed
		}
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}
