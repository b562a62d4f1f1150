package service

import "time"

// SetClock replaces the clock an AuthService uses for session expiry.
func SetClock(s *AuthService, now func() time.Time) {
	s.now = now
}
