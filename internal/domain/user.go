// Package domain contains the core data types for the bookmarks application.
// This package has no dependencies on other internal packages and is imported
// by every other internal package (repo, service, handler).
package domain

import "time"

// User is a registered account. Users own bookmarks and tags and are never
// mutated after signup.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
