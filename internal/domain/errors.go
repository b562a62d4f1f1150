package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, password too short).
// The text after the sentinel is the message shown to the user.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a uniqueness rule is violated: a URL already
// bookmarked by the same user, or a username/email already registered.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when a user acts on a bookmark they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidCredentials is returned by login for both an unknown email and a
// wrong password, so callers cannot tell the two apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthenticated is returned when a session id is missing, unknown or expired.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrTagCleanup is returned by bookmark deletion when the bookmark itself was
// removed but garbage-collecting its orphaned tags failed afterwards.
var ErrTagCleanup = errors.New("tag cleanup failed")
