package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/handler"
	"github.com/pkordes/bookmarks/internal/service"
)

// mockAuth is a test double for handler.AuthServicer.
// Set only the method fields your test needs.
type mockAuth struct {
	signup       func(ctx context.Context, in service.SignupInput) (domain.User, error)
	login        func(ctx context.Context, email, password string) (domain.Session, error)
	logout       func(ctx context.Context, id uuid.UUID) error
	authenticate func(ctx context.Context, id uuid.UUID) (domain.User, error)
}

func (m *mockAuth) Signup(ctx context.Context, in service.SignupInput) (domain.User, error) {
	return m.signup(ctx, in)
}
func (m *mockAuth) Login(ctx context.Context, email, password string) (domain.Session, error) {
	return m.login(ctx, email, password)
}
func (m *mockAuth) Logout(ctx context.Context, id uuid.UUID) error {
	return m.logout(ctx, id)
}
func (m *mockAuth) Authenticate(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.authenticate(ctx, id)
}

// mockBookmarks is a test double for handler.BookmarkServicer.
type mockBookmarks struct {
	list     func(ctx context.Context, userID int64, tag, search string, sort domain.SortOrder) ([]domain.Bookmark, error)
	listTags func(ctx context.Context, userID int64) ([]domain.Tag, error)
	page     func(ctx context.Context, p domain.PaginationParams) ([]domain.PageItem, error)
	create   func(ctx context.Context, userID int64, in service.CreateBookmarkInput) (domain.Bookmark, error)
	get      func(ctx context.Context, userID, id int64) (domain.Bookmark, error)
	update   func(ctx context.Context, userID, id int64, in service.UpdateBookmarkInput) (domain.Bookmark, error)
	delete   func(ctx context.Context, userID, id int64) error
}

func (m *mockBookmarks) List(ctx context.Context, userID int64, tag, search string, sort domain.SortOrder) ([]domain.Bookmark, error) {
	return m.list(ctx, userID, tag, search, sort)
}
func (m *mockBookmarks) ListTags(ctx context.Context, userID int64) ([]domain.Tag, error) {
	return m.listTags(ctx, userID)
}
func (m *mockBookmarks) Page(ctx context.Context, p domain.PaginationParams) ([]domain.PageItem, error) {
	return m.page(ctx, p)
}
func (m *mockBookmarks) Create(ctx context.Context, userID int64, in service.CreateBookmarkInput) (domain.Bookmark, error) {
	return m.create(ctx, userID, in)
}
func (m *mockBookmarks) Get(ctx context.Context, userID, id int64) (domain.Bookmark, error) {
	return m.get(ctx, userID, id)
}
func (m *mockBookmarks) Update(ctx context.Context, userID, id int64, in service.UpdateBookmarkInput) (domain.Bookmark, error) {
	return m.update(ctx, userID, id, in)
}
func (m *mockBookmarks) Delete(ctx context.Context, userID, id int64) error {
	return m.delete(ctx, userID, id)
}

// mockPinger is a test double for handler.Pinger.
type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.AuthServicer     = (*mockAuth)(nil)
	_ handler.BookmarkServicer = (*mockBookmarks)(nil)
	_ handler.Pinger           = mockPinger{}
)

// ---- helpers ---------------------------------------------------------------

const cookieName = "session"

var (
	aliceSession = uuid.MustParse("7b0c4a8e-2f4e-4f5b-9a36-1f2d3c4b5a69")
	alice        = domain.User{ID: 1, Username: "alice", Email: "alice@example.com"}
)

// loggedInAuth authenticates aliceSession as alice and nothing else.
func loggedInAuth() *mockAuth {
	return &mockAuth{
		authenticate: func(_ context.Context, id uuid.UUID) (domain.User, error) {
			if id == aliceSession {
				return alice, nil
			}
			return domain.User{}, domain.ErrUnauthenticated
		},
	}
}

// newHTTPHandler wires a Server with the given mocks into its router,
// exactly as main.go mounts it in production.
func newHTTPHandler(auth *mockAuth, bookmarks *mockBookmarks) http.Handler {
	if auth == nil {
		auth = loggedInAuth()
	}
	if bookmarks == nil {
		bookmarks = &mockBookmarks{}
	}
	srv := handler.NewServer(auth, bookmarks, mockPinger{}, slog.New(slog.NewTextHandler(io.Discard, nil)), handler.Options{
		SessionCookieName: cookieName,
		SecretKey:         "test-secret",
		CORSOrigins:       []string{"http://localhost:5173"},
	})
	return srv.Routes()
}

// do sends req through h, adding alice's session cookie when loggedIn is set.
func do(h http.Handler, req *http.Request, loggedIn bool) *httptest.ResponseRecorder {
	if loggedIn {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: aliceSession.String()})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// requireRedirect asserts a 303 to location.
func requireRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, location, rec.Header().Get("Location"))
}

// flashText follows rec's flash cookie to the login page and returns the
// rendered body, which shows every queued message.
func flashText(t *testing.T, h http.Handler, rec *httptest.ResponseRecorder) string {
	t.Helper()
	c := responseCookie(rec, "flash")
	require.NotNil(t, c, "expected a flash cookie")
	req := get("/login")
	req.AddCookie(c)
	next := do(h, req, false)
	require.Equal(t, http.StatusOK, next.Code)
	return next.Body.String()
}

func emptyIndex() *mockBookmarks {
	return &mockBookmarks{
		list: func(context.Context, int64, string, string, domain.SortOrder) ([]domain.Bookmark, error) {
			return nil, nil
		},
		listTags: func(context.Context, int64) ([]domain.Tag, error) { return nil, nil },
	}
}
