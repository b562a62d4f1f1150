package domain

// Tag is a user-scoped label. Names are stored trimmed and lower-cased and are
// not unique across users. A tag with no bookmarks is deleted eagerly.
type Tag struct {
	ID     int64
	UserID int64
	Name   string
}
