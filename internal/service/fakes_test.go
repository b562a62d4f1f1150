package service_test

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/repo"
	"github.com/pkordes/bookmarks/internal/service"
)

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// ---- function-field mocks --------------------------------------------------

// mockUserRepo is a hand-written test double for repo.UserRepo.
// Each method is a function field; set only the ones your test needs.
type mockUserRepo struct {
	create      func(ctx context.Context, u domain.User) (domain.User, error)
	getByID     func(ctx context.Context, id int64) (domain.User, error)
	getByEmail  func(ctx context.Context, email string) (domain.User, error)
	existsByAny func(ctx context.Context, username, email string) (bool, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	return m.existsByAny(ctx, username, email)
}

// mockSessionRepo is a hand-written test double for repo.SessionRepo.
type mockSessionRepo struct {
	create        func(ctx context.Context, s domain.Session) (domain.Session, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Session, error)
	delete        func(ctx context.Context, id uuid.UUID) error
	deleteExpired func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, s domain.Session) (domain.Session, error) {
	return m.create(ctx, s)
}
func (m *mockSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Session, error) {
	return m.getByID(ctx, id)
}
func (m *mockSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.deleteExpired(ctx, now)
}

// compile-time checks: the mocks must satisfy the repo interfaces.
var (
	_ repo.UserRepo    = (*mockUserRepo)(nil)
	_ repo.SessionRepo = (*mockSessionRepo)(nil)
)

// mockFetcher is a test double for service.MetadataFetcher that records calls.
type mockFetcher struct {
	md    domain.Metadata
	calls []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) domain.Metadata {
	m.calls = append(m.calls, url)
	return m.md
}

var _ service.MetadataFetcher = (*mockFetcher)(nil)

// ---- in-memory store -------------------------------------------------------

// memDB is an in-memory stand-in for the bookmark and tag tables, used where
// a test needs the tag lifecycle to actually play out across several calls.
// WithTx snapshots the tables and restores them when fn fails.
type memDB struct {
	nextID    int64
	bookmarks map[int64]domain.Bookmark
	tags      map[int64]domain.Tag
	links     map[[2]int64]bool

	lastQuery domain.ListQuery
	lastPage  domain.PaginationParams
	pageItems []domain.PageItem
	listedFor []int64

	attachErr error
	orphanErr error
	commits   int
	rollbacks int
}

func newMemDB() *memDB {
	return &memDB{
		bookmarks: map[int64]domain.Bookmark{},
		tags:      map[int64]domain.Tag{},
		links:     map[[2]int64]bool{},
	}
}

func (m *memDB) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memDB) Repos() repo.Repos {
	return repo.Repos{Bookmarks: memBookmarks{m}, Tags: memTags{m}}
}

func (m *memDB) WithTx(_ context.Context, fn func(repo.Repos) error) error {
	bookmarks, tags, links, next := maps.Clone(m.bookmarks), maps.Clone(m.tags), maps.Clone(m.links), m.nextID
	if err := fn(m.Repos()); err != nil {
		m.bookmarks, m.tags, m.links, m.nextID = bookmarks, tags, links, next
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

var _ service.Store = (*memDB)(nil)

// seedBookmark stores a bookmark with the given tag names, creating tags as needed.
func (m *memDB) seedBookmark(userID int64, url string, tagNames ...string) domain.Bookmark {
	b := domain.Bookmark{ID: m.id(), UserID: userID, Title: url, URL: url, CreatedAt: time.Now()}
	m.bookmarks[b.ID] = b
	for _, name := range tagNames {
		t, ok := m.findTag(func(t domain.Tag) bool { return t.UserID == userID && t.Name == name })
		if !ok {
			t = domain.Tag{ID: m.id(), UserID: userID, Name: name}
			m.tags[t.ID] = t
		}
		m.links[[2]int64{b.ID, t.ID}] = true
	}
	return b
}

func (m *memDB) findTag(match func(domain.Tag) bool) (domain.Tag, bool) {
	var found domain.Tag
	ok := false
	for _, t := range m.tags {
		if match(t) && (!ok || t.ID < found.ID) {
			found, ok = t, true
		}
	}
	return found, ok
}

func (m *memDB) tagsOf(bookmarkID int64) []domain.Tag {
	out := []domain.Tag{}
	for link := range m.links {
		if link[0] == bookmarkID {
			out = append(out, m.tags[link[1]])
		}
	}
	slices.SortFunc(out, func(a, b domain.Tag) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (m *memDB) tagNames(userID int64) []string {
	var names []string
	for _, t := range m.tags {
		if t.UserID == userID {
			names = append(names, t.Name)
		}
	}
	slices.Sort(names)
	return names
}

type memBookmarks struct{ m *memDB }

func (r memBookmarks) Create(_ context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	for _, existing := range r.m.bookmarks {
		if existing.UserID == b.UserID && existing.URL == b.URL {
			return domain.Bookmark{}, domain.ErrConflict
		}
	}
	b.ID = r.m.id()
	b.CreatedAt = time.Now()
	r.m.bookmarks[b.ID] = b
	b.Tags = []domain.Tag{}
	return b, nil
}

func (r memBookmarks) GetByID(_ context.Context, id int64) (domain.Bookmark, error) {
	b, ok := r.m.bookmarks[id]
	if !ok {
		return domain.Bookmark{}, domain.ErrNotFound
	}
	b.Tags = r.m.tagsOf(id)
	return b, nil
}

func (r memBookmarks) ExistsByURL(_ context.Context, userID int64, url string) (bool, error) {
	for _, b := range r.m.bookmarks {
		if b.UserID == userID && b.URL == url {
			return true, nil
		}
	}
	return false, nil
}

func (r memBookmarks) List(_ context.Context, q domain.ListQuery) ([]domain.Bookmark, error) {
	r.m.lastQuery = q
	var out []domain.Bookmark
	for _, b := range r.m.bookmarks {
		if b.UserID == q.UserID {
			b.Tags = r.m.tagsOf(b.ID)
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b domain.Bookmark) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r memBookmarks) UpdateDescription(_ context.Context, id int64, description *string) error {
	b, ok := r.m.bookmarks[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Description = description
	r.m.bookmarks[id] = b
	return nil
}

func (r memBookmarks) Delete(_ context.Context, id int64) error {
	if _, ok := r.m.bookmarks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.m.bookmarks, id)
	for link := range r.m.links {
		if link[0] == id {
			delete(r.m.links, link)
		}
	}
	return nil
}

func (r memBookmarks) Page(_ context.Context, p domain.PaginationParams) ([]domain.PageItem, error) {
	r.m.lastPage = p
	return r.m.pageItems, nil
}

type memTags struct{ m *memDB }

func (r memTags) FindByName(_ context.Context, userID int64, name string) (domain.Tag, error) {
	if t, ok := r.m.findTag(func(t domain.Tag) bool { return t.UserID == userID && t.Name == name }); ok {
		return t, nil
	}
	return domain.Tag{}, domain.ErrNotFound
}

func (r memTags) FindAnyByName(_ context.Context, name string) (domain.Tag, error) {
	if t, ok := r.m.findTag(func(t domain.Tag) bool { return t.Name == name }); ok {
		return t, nil
	}
	return domain.Tag{}, domain.ErrNotFound
}

func (r memTags) Create(_ context.Context, userID int64, name string) (domain.Tag, error) {
	t := domain.Tag{ID: r.m.id(), UserID: userID, Name: name}
	r.m.tags[t.ID] = t
	return t, nil
}

func (r memTags) ListByUser(_ context.Context, userID int64) ([]domain.Tag, error) {
	out := []domain.Tag{}
	for _, t := range r.m.tags {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b domain.Tag) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r memTags) ListByBookmark(_ context.Context, bookmarkID int64) ([]domain.Tag, error) {
	r.m.listedFor = append(r.m.listedFor, bookmarkID)
	return r.m.tagsOf(bookmarkID), nil
}

func (r memTags) Attach(_ context.Context, bookmarkID, tagID int64) error {
	if r.m.attachErr != nil {
		return r.m.attachErr
	}
	r.m.links[[2]int64{bookmarkID, tagID}] = true
	return nil
}

func (r memTags) ReplaceForBookmark(_ context.Context, bookmarkID int64, tagIDs []int64) error {
	for link := range r.m.links {
		if link[0] == bookmarkID {
			delete(r.m.links, link)
		}
	}
	for _, id := range tagIDs {
		r.m.links[[2]int64{bookmarkID, id}] = true
	}
	return nil
}

func (r memTags) DeleteIfOrphan(_ context.Context, tagID int64) (bool, error) {
	if r.m.orphanErr != nil {
		return false, r.m.orphanErr
	}
	for link := range r.m.links {
		if link[1] == tagID {
			return false, nil
		}
	}
	_, existed := r.m.tags[tagID]
	delete(r.m.tags, tagID)
	return existed, nil
}

var (
	_ repo.BookmarkRepo = memBookmarks{}
	_ repo.TagRepo      = memTags{}
)
