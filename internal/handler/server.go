// Package handler implements the HTTP surface of the bookmarks server.
// All handlers are methods on Server. They are split into files by concern
// (auth.go, bookmark.go, feed.go, health.go) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/middleware"
	"github.com/pkordes/bookmarks/internal/service"
)

// AuthServicer defines the account and session operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type AuthServicer interface {
	Signup(ctx context.Context, in service.SignupInput) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	Authenticate(ctx context.Context, sessionID uuid.UUID) (domain.User, error)
}

// BookmarkServicer defines the bookmark operations the handlers depend on.
type BookmarkServicer interface {
	List(ctx context.Context, userID int64, tag, search string, sort domain.SortOrder) ([]domain.Bookmark, error)
	ListTags(ctx context.Context, userID int64) ([]domain.Tag, error)
	Page(ctx context.Context, p domain.PaginationParams) ([]domain.PageItem, error)
	Create(ctx context.Context, userID int64, in service.CreateBookmarkInput) (domain.Bookmark, error)
	Get(ctx context.Context, userID, id int64) (domain.Bookmark, error)
	Update(ctx context.Context, userID, id int64, in service.UpdateBookmarkInput) (domain.Bookmark, error)
	Delete(ctx context.Context, userID, id int64) error
}

// Pinger reports whether the database is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries the cookie and CORS settings of the HTTP surface.
type Options struct {
	// SessionCookieName names the cookie holding the session id.
	SessionCookieName string
	// CookieSecure sets the Secure attribute on every cookie.
	CookieSecure bool
	// SecretKey signs the flash cookie.
	SecretKey string
	// CORSOrigins may read the JSON feed cross-origin.
	CORSOrigins []string
}

// Server holds the dependencies shared by every handler.
// Wire it in main.go by mounting Routes on the root router.
type Server struct {
	auth      AuthServicer
	bookmarks BookmarkServicer
	db        Pinger
	log       *slog.Logger
	opts      Options
	secret    []byte
}

// NewServer constructs the Server with all its dependencies.
func NewServer(auth AuthServicer, bookmarks BookmarkServicer, db Pinger, log *slog.Logger, opts Options) *Server {
	if opts.SessionCookieName == "" {
		opts.SessionCookieName = "session"
	}
	return &Server{
		auth:      auth,
		bookmarks: bookmarks,
		db:        db,
		log:       log,
		opts:      opts,
		secret:    []byte(opts.SecretKey),
	}
}

// Routes returns the router for every endpoint of the application.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(s.notFound)

	r.Get("/healthz", s.GetHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSHandler(s.opts.CORSOrigins))

		r.Get("/bookmarks", s.GetBookmarkFeed)
		// Preflights are answered by the CORS middleware; the route makes chi
		// dispatch OPTIONS here instead of replying 405.
		r.Options("/bookmarks", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	r.Get("/signup", s.GetSignup)
	r.Post("/signup", s.PostSignup)
	r.Get("/login", s.GetLogin)
	r.Post("/login", s.PostLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Get("/", s.GetIndex)
		r.Get("/home", s.GetHome)
		r.Post("/bookmarks", s.CreateBookmark)
		r.Post("/delete/{bookmark_id}", s.DeleteBookmark)
		r.Get("/edit/{bookmark_id}", s.GetEditBookmark)
		r.Post("/update/{bookmark_id}", s.UpdateBookmark)
		r.Post("/logout", s.PostLogout)
	})

	return r
}
