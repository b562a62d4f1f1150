// Package service contains the business logic of the bookmarks server.
// Services validate inputs, enforce ownership, and orchestrate repo calls
// and transactions. No SQL lives here; services depend on repo interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/thoas/go-funk"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/repo"
)

// Store gives access to repositories, either statement by statement or inside
// one transaction. *repo.Store satisfies it.
type Store interface {
	Repos() repo.Repos
	WithTx(ctx context.Context, fn func(repo.Repos) error) error
}

// MetadataFetcher looks up a page's title and description.
// It never fails; an unreachable page yields empty Metadata.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) domain.Metadata
}

// CreateBookmarkInput carries the new-bookmark form fields.
type CreateBookmarkInput struct {
	Title       string `validate:"required,max=100"`
	URL         string `validate:"required,max=255"`
	Description string
	Tags        string
}

// UpdateBookmarkInput carries the edit form fields. A nil Description clears it.
type UpdateBookmarkInput struct {
	Description *string
	Tags        string
}

// BookmarkService implements listing, creation, editing and deletion of
// bookmarks together with the tag lifecycle: tags are created on first use
// and deleted as soon as no bookmark references them.
type BookmarkService struct {
	store    Store
	tags     *TagService
	fetcher  MetadataFetcher
	log      *slog.Logger
	validate *validator.Validate
}

// NewBookmarkService constructs a BookmarkService.
func NewBookmarkService(store Store, tags *TagService, fetcher MetadataFetcher, log *slog.Logger) *BookmarkService {
	return &BookmarkService{
		store:    store,
		tags:     tags,
		fetcher:  fetcher,
		log:      log,
		validate: newValidator(),
	}
}

// List returns the user's bookmarks filtered by tag and search and sorted by sort.
// search is matched case-insensitively against title and URL.
func (s *BookmarkService) List(ctx context.Context, userID int64, tag, search string, sort domain.SortOrder) ([]domain.Bookmark, error) {
	q := domain.ListQuery{
		UserID: userID,
		Tag:    tag,
		Search: strings.ToLower(strings.TrimSpace(search)),
		Sort:   sort,
	}
	bookmarks, err := s.store.Repos().Bookmarks.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("service.BookmarkService.List: %w", err)
	}
	return bookmarks, nil
}

// ListTags returns the user's tags ordered by name, for the tag filter.
func (s *BookmarkService) ListTags(ctx context.Context, userID int64) ([]domain.Tag, error) {
	tags, err := s.store.Repos().Tags.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.BookmarkService.ListTags: %w", err)
	}
	return tags, nil
}

// Page returns one page of the bookmark feed across all users.
// A page that does not exist, including an empty page after the first,
// is domain.ErrNotFound.
func (s *BookmarkService) Page(ctx context.Context, p domain.PaginationParams) ([]domain.PageItem, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("service.BookmarkService.Page: %w", domain.ErrNotFound)
	}
	items, err := s.store.Repos().Bookmarks.Page(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("service.BookmarkService.Page: %w", err)
	}
	if len(items) == 0 && p.Page > 1 {
		return nil, fmt.Errorf("service.BookmarkService.Page: %w", domain.ErrNotFound)
	}
	if items == nil {
		items = []domain.PageItem{}
	}
	return items, nil
}

// Create validates and stores a new bookmark for userID.
//
// When no description is given the page metadata is fetched and its
// description used, falling back to domain.DefaultDescription. The bookmark
// insert and every tag lookup, creation and link run in one transaction.
func (s *BookmarkService) Create(ctx context.Context, userID int64, in CreateBookmarkInput) (domain.Bookmark, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	in.Description = strings.TrimSpace(in.Description)

	if err := s.validate.Struct(in); err != nil {
		return domain.Bookmark{}, validationError(err, bookmarkMessage)
	}
	names, err := s.tags.ParseNames(in.Tags)
	if err != nil {
		return domain.Bookmark{}, err
	}

	exists, err := s.store.Repos().Bookmarks.ExistsByURL(ctx, userID, in.URL)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("service.BookmarkService.Create: %w", err)
	}
	if exists {
		return domain.Bookmark{}, fmt.Errorf("%w: This URL already exists in your bookmarks.", domain.ErrConflict)
	}

	description := in.Description
	if description == "" {
		description = domain.DefaultDescription
		if md := s.fetcher.Fetch(ctx, in.URL); md.Description != nil {
			description = *md.Description
		}
	}

	var created domain.Bookmark
	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		b, err := r.Bookmarks.Create(ctx, domain.Bookmark{
			UserID:      userID,
			Title:       in.Title,
			URL:         in.URL,
			Description: &description,
		})
		if err != nil {
			return err
		}
		for _, name := range names {
			tag, err := r.Tags.FindByName(ctx, userID, name)
			if errors.Is(err, domain.ErrNotFound) {
				tag, err = r.Tags.Create(ctx, userID, name)
			}
			if err != nil {
				return err
			}
			if err := r.Tags.Attach(ctx, b.ID, tag.ID); err != nil {
				return err
			}
			b.Tags = append(b.Tags, tag)
		}
		created = b
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Bookmark{}, fmt.Errorf("%w: This URL already exists in your bookmarks.", domain.ErrConflict)
		}
		s.log.ErrorContext(ctx, "saving bookmark failed", "user_id", userID, "url", in.URL, "error", err)
		return domain.Bookmark{}, fmt.Errorf("service.BookmarkService.Create: %w", err)
	}
	return created, nil
}

func bookmarkMessage(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return "Title and URL are required!"
	}
	return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
}

// Get returns one bookmark with its tags, provided userID owns it.
func (s *BookmarkService) Get(ctx context.Context, userID, id int64) (domain.Bookmark, error) {
	b, err := s.owned(ctx, s.store.Repos(), userID, id)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("service.BookmarkService.Get: %w", err)
	}
	return b, nil
}

// Update replaces the bookmark's description verbatim and its tag set wholesale.
//
// Tag names are resolved by name alone, so an existing tag of another user
// with the same name is reused; only missing names create a tag for userID.
// Tags dropped by the edit are deleted when no other bookmark uses them.
func (s *BookmarkService) Update(ctx context.Context, userID, id int64, in UpdateBookmarkInput) (domain.Bookmark, error) {
	var updated domain.Bookmark
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		b, err := s.owned(ctx, r, userID, id)
		if err != nil {
			return err
		}
		// Ownership is settled before the form is judged.
		names, err := s.tags.ParseNames(in.Tags)
		if err != nil {
			return err
		}
		if err := r.Bookmarks.UpdateDescription(ctx, id, in.Description); err != nil {
			return err
		}

		tags := make([]domain.Tag, 0, len(names))
		ids := make([]int64, 0, len(names))
		for _, name := range names {
			tag, err := r.Tags.FindAnyByName(ctx, name)
			if errors.Is(err, domain.ErrNotFound) {
				tag, err = r.Tags.Create(ctx, userID, name)
			}
			if err != nil {
				return err
			}
			tags = append(tags, tag)
			ids = append(ids, tag.ID)
		}
		if err := r.Tags.ReplaceForBookmark(ctx, id, ids); err != nil {
			return err
		}

		for _, old := range b.Tags {
			if funk.ContainsInt64(ids, old.ID) {
				continue
			}
			if _, err := r.Tags.DeleteIfOrphan(ctx, old.ID); err != nil {
				return err
			}
		}

		b.Description = in.Description
		b.Tags = tags
		updated = b
		return nil
	})
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("service.BookmarkService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes the bookmark, then deletes each of its former tags that no
// other bookmark uses. The two steps commit separately: when the second one
// fails the bookmark stays deleted and the error wraps domain.ErrTagCleanup.
func (s *BookmarkService) Delete(ctx context.Context, userID, id int64) error {
	var tags []domain.Tag
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := s.owned(ctx, r, userID, id); err != nil {
			return err
		}
		snapshot, err := r.Tags.ListByBookmark(ctx, id)
		if err != nil {
			return err
		}
		tags = snapshot
		return r.Bookmarks.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("service.BookmarkService.Delete: %w", err)
	}

	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		for _, t := range tags {
			if _, err := r.Tags.DeleteIfOrphan(ctx, t.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "orphan tag cleanup failed", "bookmark_id", id, "error", err)
		return fmt.Errorf("service.BookmarkService.Delete: %w: %w", domain.ErrTagCleanup, err)
	}
	return nil
}

// owned loads a bookmark and checks that userID owns it.
func (s *BookmarkService) owned(ctx context.Context, r repo.Repos, userID, id int64) (domain.Bookmark, error) {
	b, err := r.Bookmarks.GetByID(ctx, id)
	if err != nil {
		return domain.Bookmark{}, err
	}
	if !b.OwnedBy(userID) {
		return domain.Bookmark{}, domain.ErrForbidden
	}
	return b, nil
}
