package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/bookmarks/internal/domain"
)

// TagRepo defines the persistence operations for Tags and the bookmark_tags join table.
type TagRepo interface {
	// FindByName returns the tag called name owned by userID.
	// Returns domain.ErrNotFound if the user has no such tag.
	FindByName(ctx context.Context, userID int64, name string) (domain.Tag, error)

	// FindAnyByName returns the lowest-id tag called name, whoever owns it.
	// Returns domain.ErrNotFound if no tag has that name.
	FindAnyByName(ctx context.Context, name string) (domain.Tag, error)

	// Create inserts a tag owned by userID.
	Create(ctx context.Context, userID int64, name string) (domain.Tag, error)

	// ListByUser returns all tags owned by userID, ordered by name.
	ListByUser(ctx context.Context, userID int64) ([]domain.Tag, error)

	// ListByBookmark returns all tags linked to a bookmark, ordered by name.
	ListByBookmark(ctx context.Context, bookmarkID int64) ([]domain.Tag, error)

	// Attach links a tag to a bookmark. Idempotent: no error if already linked.
	Attach(ctx context.Context, bookmarkID, tagID int64) error

	// ReplaceForBookmark drops every link of the bookmark and links tagIDs instead.
	ReplaceForBookmark(ctx context.Context, bookmarkID int64, tagIDs []int64) error

	// DeleteIfOrphan deletes the tag when no bookmark references it and
	// reports whether it did.
	DeleteIfOrphan(ctx context.Context, tagID int64) (bool, error)
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

const tagColumns = `id, user_id, name`

// FindByName looks a tag up within one user's namespace.
func (r *pgTagRepo) FindByName(ctx context.Context, userID int64, name string) (domain.Tag, error) {
	const q = `
		SELECT ` + tagColumns + `
		FROM tags
		WHERE user_id = @user_id AND name = @name
		ORDER BY id
		LIMIT 1`

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID, "name": name}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.FindByName: %w", err)
	}
	return result, nil
}

// FindAnyByName looks a tag up by name across all users.
func (r *pgTagRepo) FindAnyByName(ctx context.Context, name string) (domain.Tag, error) {
	const q = `
		SELECT ` + tagColumns + `
		FROM tags
		WHERE name = @name
		ORDER BY id
		LIMIT 1`

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.FindAnyByName: %w", err)
	}
	return result, nil
}

// Create inserts a tag row and returns it.
func (r *pgTagRepo) Create(ctx context.Context, userID int64, name string) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (user_id, name)
		VALUES (@user_id, @name)
		RETURNING ` + tagColumns

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID, "name": name}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Create: %w", err)
	}
	return result, nil
}

// ListByUser returns a user's tags for the filter UI.
func (r *pgTagRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Tag, error) {
	const q = `
		SELECT ` + tagColumns + `
		FROM tags
		WHERE user_id = @user_id
		ORDER BY name, id`

	tags, err := r.queryTags(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByUser: %w", err)
	}
	return tags, nil
}

// ListByBookmark returns all tags linked to a bookmark, ordered by name.
func (r *pgTagRepo) ListByBookmark(ctx context.Context, bookmarkID int64) ([]domain.Tag, error) {
	const q = `
		SELECT t.id, t.user_id, t.name
		FROM tags t
		JOIN bookmark_tags bt ON bt.tag_id = t.id
		WHERE bt.bookmark_id = @bookmark_id
		ORDER BY t.name, t.id`

	tags, err := r.queryTags(ctx, q, pgx.NamedArgs{"bookmark_id": bookmarkID})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByBookmark: %w", err)
	}
	return tags, nil
}

// Attach links a tag to a bookmark. Idempotent via ON CONFLICT DO NOTHING.
func (r *pgTagRepo) Attach(ctx context.Context, bookmarkID, tagID int64) error {
	const q = `
		INSERT INTO bookmark_tags (bookmark_id, tag_id)
		VALUES (@bookmark_id, @tag_id)
		ON CONFLICT (bookmark_id, tag_id) DO NOTHING`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"bookmark_id": bookmarkID, "tag_id": tagID})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.Attach: %w", err)
	}
	return nil
}

// ReplaceForBookmark swaps the bookmark's whole tag set. Callers run it inside
// a transaction so the delete and inserts land together.
func (r *pgTagRepo) ReplaceForBookmark(ctx context.Context, bookmarkID int64, tagIDs []int64) error {
	const del = `DELETE FROM bookmark_tags WHERE bookmark_id = @bookmark_id`

	if _, err := r.db.Exec(ctx, del, pgx.NamedArgs{"bookmark_id": bookmarkID}); err != nil {
		return fmt.Errorf("repo.TagRepo.ReplaceForBookmark: %w", err)
	}
	for _, tagID := range tagIDs {
		if err := r.Attach(ctx, bookmarkID, tagID); err != nil {
			return fmt.Errorf("repo.TagRepo.ReplaceForBookmark: %w", err)
		}
	}
	return nil
}

// DeleteIfOrphan removes the tag only when the join table no longer references it.
func (r *pgTagRepo) DeleteIfOrphan(ctx context.Context, tagID int64) (bool, error) {
	const q = `
		DELETE FROM tags
		WHERE id = @id
		  AND NOT EXISTS (SELECT 1 FROM bookmark_tags WHERE tag_id = @id)`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": tagID})
	if err != nil {
		return false, fmt.Errorf("repo.TagRepo.DeleteIfOrphan: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgTagRepo) queryTags(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Tag, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return tags, nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var t domain.Tag
	err := s.Scan(&t.ID, &t.UserID, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tag{}, domain.ErrNotFound
		}
		return domain.Tag{}, err
	}
	return t, nil
}
