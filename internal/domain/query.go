package domain

// SortOrder selects the ordering of a bookmark listing.
type SortOrder string

// Supported sort orders. Any other value is treated as SortDateNew.
const (
	SortTitleAsc  SortOrder = "title_asc"
	SortTitleDesc SortOrder = "title_desc"
	SortDateOld   SortOrder = "date_old"
	SortDateNew   SortOrder = "date_new"
)

// ParseSortOrder maps a raw query value to a SortOrder, defaulting to newest first.
func ParseSortOrder(raw string) SortOrder {
	switch s := SortOrder(raw); s {
	case SortTitleAsc, SortTitleDesc, SortDateOld:
		return s
	default:
		return SortDateNew
	}
}

// ListQuery describes a filtered, searched and sorted listing of one user's bookmarks.
// Empty Tag and Search mean "no filter". Search is expected to be already
// trimmed and lower-cased.
type ListQuery struct {
	UserID int64
	Tag    string
	Search string
	Sort   SortOrder
}

// Metadata is the best-effort result of fetching a page's title and description.
type Metadata struct {
	Title       *string
	Description *string
}
