package domain

import "time"

// Field limits enforced both by validation and by the database columns.
const (
	MaxTitleLength = 100
	MaxURLLength   = 255
	MaxTagLength   = 50
)

// DefaultDescription is stored when the user gave no description and the
// metadata fetch found none either.
const DefaultDescription = "No description available"

// Bookmark is a saved URL owned by exactly one user.
// Description is nil when it was never set; Tags is ordered by name.
type Bookmark struct {
	ID          int64
	UserID      int64
	Title       string
	URL         string
	Description *string
	CreatedAt   time.Time
	Tags        []Tag
}

// OwnedBy reports whether the bookmark belongs to userID.
func (b Bookmark) OwnedBy(userID int64) bool {
	return b.UserID == userID
}

// TagNames returns the names of the bookmark's tags in their stored order.
func (b Bookmark) TagNames() []string {
	names := make([]string, len(b.Tags))
	for i, t := range b.Tags {
		names[i] = t.Name
	}
	return names
}
