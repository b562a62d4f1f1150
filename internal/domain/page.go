package domain

import "math"

// Default and maximum page sizes for the paginated bookmark feed.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PaginationParams carries page/per_page values from the HTTP layer to the repo layer.
// Page is 1-indexed. PerPage is capped at MaxPerPage by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// PerPage is the maximum number of items to return.
	PerPage int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to page=1, per_page=DefaultPerPage. Out-of-range values
// are kept as-is so the service can reject them; only the upper bound is clamped.
func NewPaginationParams(page, perPage *int) PaginationParams {
	p := PaginationParams{Page: 1, PerPage: DefaultPerPage}
	if page != nil {
		p.Page = *page
	}
	if perPage != nil {
		p.PerPage = *perPage
		if p.PerPage > MaxPerPage {
			p.PerPage = MaxPerPage
		}
	}
	return p
}

// Valid reports whether the params address a real page whose Offset fits in an int.
func (p PaginationParams) Valid() bool {
	if p.Page < 1 || p.PerPage < 1 {
		return false
	}
	return p.Page-1 <= math.MaxInt/p.PerPage
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// PageItem is the flat projection returned by the paginated bookmark feed.
// Tag is the alphabetically first tag name on the bookmark, or nil when it has none.
type PageItem struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Tag   *string `json:"tags"`
}
