package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/bookmarks/internal/domain"
)

// BookmarkRepo defines the persistence operations for Bookmarks.
type BookmarkRepo interface {
	// Create inserts a new bookmark (without tags) and returns the persisted
	// record with DB-generated id and created_at populated.
	// Returns domain.ErrConflict if the user already bookmarked the URL.
	Create(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error)

	// GetByID retrieves a bookmark and its tags regardless of owner.
	// Returns domain.ErrNotFound if no bookmark with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Bookmark, error)

	// ExistsByURL reports whether userID already has a bookmark for url.
	ExistsByURL(ctx context.Context, userID int64, url string) (bool, error)

	// List returns the bookmarks matching q, each with its tags, in q.Sort order.
	List(ctx context.Context, q domain.ListQuery) ([]domain.Bookmark, error)

	// UpdateDescription overwrites the description. A nil description stores NULL.
	// Returns domain.ErrNotFound if no bookmark with that ID exists.
	UpdateDescription(ctx context.Context, id int64, description *string) error

	// Delete removes a bookmark by ID; its bookmark_tags rows go with it.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// Page returns one page of all bookmarks ordered by id, projected for the feed.
	Page(ctx context.Context, p domain.PaginationParams) ([]domain.PageItem, error)
}

// pgBookmarkRepo is the Postgres implementation of BookmarkRepo.
type pgBookmarkRepo struct {
	db db
}

// NewBookmarkRepo constructs a BookmarkRepo backed by the provided db connection.
func NewBookmarkRepo(db db) BookmarkRepo {
	return &pgBookmarkRepo{db: db}
}

const bookmarkColumns = `b.id, b.user_id, b.title, b.url, b.description, b.created_at`

// Create inserts a bookmark row and returns the full persisted record.
func (r *pgBookmarkRepo) Create(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	const q = `
		INSERT INTO bookmarks AS b (title, url, description, user_id)
		VALUES (@title, @url, @description, @user_id)
		RETURNING ` + bookmarkColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"title":       b.Title,
		"url":         b.URL,
		"description": b.Description, // nil becomes NULL
		"user_id":     b.UserID,
	})
	result, err := scanBookmark(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Bookmark{}, fmt.Errorf("repo.BookmarkRepo.Create: %w", domain.ErrConflict)
		}
		return domain.Bookmark{}, fmt.Errorf("repo.BookmarkRepo.Create: %w", err)
	}
	result.Tags = []domain.Tag{}
	return result, nil
}

// GetByID retrieves a bookmark by primary key together with its tags.
func (r *pgBookmarkRepo) GetByID(ctx context.Context, id int64) (domain.Bookmark, error) {
	const q = `SELECT ` + bookmarkColumns + ` FROM bookmarks b WHERE b.id = @id`

	result, err := scanBookmark(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("repo.BookmarkRepo.GetByID: %w", err)
	}

	withTags := []domain.Bookmark{result}
	if err := r.attachTags(ctx, withTags); err != nil {
		return domain.Bookmark{}, fmt.Errorf("repo.BookmarkRepo.GetByID: %w", err)
	}
	return withTags[0], nil
}

// ExistsByURL checks the (user_id, url) uniqueness rule ahead of an insert.
func (r *pgBookmarkRepo) ExistsByURL(ctx context.Context, userID int64, url string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM bookmarks WHERE user_id = @user_id AND url = @url
		)`

	var exists bool
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID, "url": url}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repo.BookmarkRepo.ExistsByURL: %w", err)
	}
	return exists, nil
}

// List composes the owner filter, optional tag filter and optional search
// filter with AND, then orders per q.Sort. Ties fall back to id so the order
// is stable between calls.
func (r *pgBookmarkRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.Bookmark, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + bookmarkColumns + ` FROM bookmarks b WHERE b.user_id = @user_id`)
	args := pgx.NamedArgs{"user_id": q.UserID}

	if q.Tag != "" {
		sb.WriteString(`
			AND EXISTS (
				SELECT 1 FROM bookmark_tags bt
				JOIN tags t ON t.id = bt.tag_id
				WHERE bt.bookmark_id = b.id AND t.name = @tag
			)`)
		args["tag"] = q.Tag
	}

	if q.Search != "" {
		sb.WriteString(`
			AND (lower(b.title) LIKE @pattern ESCAPE '\' OR lower(b.url) LIKE @pattern ESCAPE '\')`)
		args["pattern"] = "%" + escapeLike(strings.ToLower(q.Search)) + "%"
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderClause(q.Sort))

	rows, err := r.db.Query(ctx, sb.String(), args)
	if err != nil {
		return nil, fmt.Errorf("repo.BookmarkRepo.List: %w", err)
	}
	defer rows.Close()

	bookmarks := []domain.Bookmark{}
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.BookmarkRepo.List: scan: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookmarkRepo.List: rows: %w", err)
	}

	if err := r.attachTags(ctx, bookmarks); err != nil {
		return nil, fmt.Errorf("repo.BookmarkRepo.List: %w", err)
	}
	return bookmarks, nil
}

// UpdateDescription overwrites the description column.
func (r *pgBookmarkRepo) UpdateDescription(ctx context.Context, id int64, description *string) error {
	const q = `UPDATE bookmarks SET description = @description WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "description": description})
	if err != nil {
		return fmt.Errorf("repo.BookmarkRepo.UpdateDescription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BookmarkRepo.UpdateDescription: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a bookmark by primary key.
func (r *pgBookmarkRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM bookmarks WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.BookmarkRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BookmarkRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// Page returns one page of the bookmark feed across all owners.
func (r *pgBookmarkRepo) Page(ctx context.Context, p domain.PaginationParams) ([]domain.PageItem, error) {
	const q = `
		SELECT b.id, b.title, b.url,
		       (SELECT t.name
		          FROM bookmark_tags bt
		          JOIN tags t ON t.id = bt.tag_id
		         WHERE bt.bookmark_id = b.id
		         ORDER BY t.name
		         LIMIT 1)
		FROM bookmarks b
		ORDER BY b.id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.PerPage, "offset": p.Offset()})
	if err != nil {
		return nil, fmt.Errorf("repo.BookmarkRepo.Page: %w", err)
	}
	defer rows.Close()

	items := []domain.PageItem{}
	for rows.Next() {
		var it domain.PageItem
		if err := rows.Scan(&it.ID, &it.Title, &it.URL, &it.Tag); err != nil {
			return nil, fmt.Errorf("repo.BookmarkRepo.Page: scan: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookmarkRepo.Page: rows: %w", err)
	}
	return items, nil
}

// attachTags loads the tags of every bookmark in one query and fills in
// each bookmark's Tags slice, ordered by name.
func (r *pgBookmarkRepo) attachTags(ctx context.Context, bookmarks []domain.Bookmark) error {
	if len(bookmarks) == 0 {
		return nil
	}

	ids := make([]int64, len(bookmarks))
	index := make(map[int64]int, len(bookmarks))
	for i := range bookmarks {
		ids[i] = bookmarks[i].ID
		index[bookmarks[i].ID] = i
		bookmarks[i].Tags = []domain.Tag{}
	}

	const q = `
		SELECT bt.bookmark_id, t.id, t.user_id, t.name
		FROM bookmark_tags bt
		JOIN tags t ON t.id = bt.tag_id
		WHERE bt.bookmark_id = ANY(@ids)
		ORDER BY t.name, t.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookmarkID int64
			t          domain.Tag
		)
		if err := rows.Scan(&bookmarkID, &t.ID, &t.UserID, &t.Name); err != nil {
			return fmt.Errorf("load tags: scan: %w", err)
		}
		i := index[bookmarkID]
		bookmarks[i].Tags = append(bookmarks[i].Tags, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load tags: rows: %w", err)
	}
	return nil
}

// orderClause maps a sort mode to its ORDER BY expression.
func orderClause(s domain.SortOrder) string {
	switch s {
	case domain.SortTitleAsc:
		return "lower(b.title) ASC, b.id ASC"
	case domain.SortTitleDesc:
		return "lower(b.title) DESC, b.id DESC"
	case domain.SortDateOld:
		return "b.created_at ASC, b.id ASC"
	default:
		return "b.created_at DESC, b.id DESC"
	}
}

// likeEscaper neutralises LIKE wildcards so search matches a literal substring.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// scanBookmark maps a single database row into a domain.Bookmark (without tags).
func scanBookmark(s scanner) (domain.Bookmark, error) {
	var b domain.Bookmark
	err := s.Scan(&b.ID, &b.UserID, &b.Title, &b.URL, &b.Description, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Bookmark{}, domain.ErrNotFound
		}
		return domain.Bookmark{}, err
	}
	return b, nil
}
