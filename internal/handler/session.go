package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/bookmarks/internal/domain"
)

type ctxKey int

const (
	userKey ctxKey = iota
	sessionKey
)

// userFrom returns the authenticated user stored by requireUser, or nil.
func userFrom(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey).(*domain.User)
	return u
}

func sessionFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(sessionKey).(uuid.UUID)
	return id
}

// currentUser returns the user of a request that passed requireUser.
func currentUser(r *http.Request) domain.User {
	if u := userFrom(r.Context()); u != nil {
		return *u
	}
	return domain.User{}
}

// requireUser resolves the session cookie to a user and stores both in the
// request context. Requests without a valid session are sent to the login page.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.opts.SessionCookieName)
		if err != nil {
			s.toLogin(w, r)
			return
		}
		id, err := uuid.Parse(c.Value)
		if err != nil {
			s.clearCookie(w, s.opts.SessionCookieName)
			s.toLogin(w, r)
			return
		}

		user, err := s.auth.Authenticate(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				s.clearCookie(w, s.opts.SessionCookieName)
				s.toLogin(w, r)
				return
			}
			s.serverError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, &user)
		ctx = context.WithValue(ctx, sessionKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) toLogin(w http.ResponseWriter, r *http.Request) {
	s.setFlash(w, flashInfo, "Please log in to access this page.")
	redirect(w, r, "/login")
}

// startSession hands the browser the cookie for a newly created session.
func (s *Server) startSession(w http.ResponseWriter, sess domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.SessionCookieName,
		Value:    sess.ID.String(),
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
