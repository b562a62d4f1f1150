package repo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/repo"
	"github.com/pkordes/bookmarks/testutil"
)

// newTestStore opens a single transaction and returns a Store bound to it, so
// every repo (and every nested WithTx savepoint) is rolled back after the test.
func newTestStore(t *testing.T) *repo.Store {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return repo.NewStore(tx)
}

// mustCreateUser inserts a user with a unique username and email.
func mustCreateUser(t *testing.T, users repo.UserRepo) domain.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	u, err := users.Create(context.Background(), domain.User{
		Username:     "user-" + suffix,
		Email:        fmt.Sprintf("user-%s@example.com", suffix),
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return u
}

// mustCreateBookmark inserts a bookmark owned by userID.
func mustCreateBookmark(t *testing.T, bookmarks repo.BookmarkRepo, userID int64, title, url string) domain.Bookmark {
	t.Helper()
	b, err := bookmarks.Create(context.Background(), domain.Bookmark{
		UserID: userID,
		Title:  title,
		URL:    url,
	})
	require.NoError(t, err)
	return b
}

// mustTag creates a tag for userID and links it to bookmarkID.
func mustTag(t *testing.T, tags repo.TagRepo, userID, bookmarkID int64, name string) domain.Tag {
	t.Helper()
	ctx := context.Background()
	tag, err := tags.FindByName(ctx, userID, name)
	if err != nil {
		tag, err = tags.Create(ctx, userID, name)
		require.NoError(t, err)
	}
	require.NoError(t, tags.Attach(ctx, bookmarkID, tag.ID))
	return tag
}
