package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/service"
)

// GetIndex handles GET /.
// Supports ?tag=, ?search= and ?sort= (title_asc, title_desc, date_old, or
// newest first by default).
func (s *Server) GetIndex(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	q := r.URL.Query()
	tag := optionalString(q, "tag")
	search := optionalString(q, "search")
	sort := optionalString(q, "sort")

	bookmarks, err := s.bookmarks.List(r.Context(), user.ID, tag, search, domain.ParseSortOrder(sort))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	tags, err := s.bookmarks.ListTags(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "index.html", &indexPage{
		Bookmarks:   bookmarks,
		Tags:        tags,
		SelectedTag: tag,
		Search:      search,
		Sort:        sort,
	})
}

// GetHome handles GET /home: the user's bookmarks in the order they were
// added, without filters.
func (s *Server) GetHome(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	bookmarks, err := s.bookmarks.List(r.Context(), user.ID, "", "", domain.SortDateOld)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "index.html", &indexPage{Bookmarks: bookmarks})
}

// CreateBookmark handles POST /bookmarks.
func (s *Server) CreateBookmark(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badForm(w, err)
		return
	}

	_, err := s.bookmarks.Create(r.Context(), currentUser(r).ID, service.CreateBookmarkInput{
		Title:       r.PostFormValue("title"),
		URL:         r.PostFormValue("url"),
		Description: r.PostFormValue("description"),
		Tags:        r.PostFormValue("tags"),
	})
	switch {
	case err == nil:
		s.setFlash(w, flashSuccess, "Bookmark added successfully!")
	case isUserError(err):
		s.setFlash(w, flashError, userMessage(err))
	default:
		// Already logged by the service with the failing URL.
		s.setFlash(w, flashError, "Error while saving the bookmark. Try again.")
	}
	redirect(w, r, "/")
}

// DeleteBookmark handles POST /delete/{bookmark_id}.
func (s *Server) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := bookmarkID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	err := s.bookmarks.Delete(r.Context(), currentUser(r).ID, id)
	switch {
	case err == nil:
		s.setFlash(w, flashSuccess, "Bookmark and unused tags deleted successfully.")
	case errors.Is(err, domain.ErrNotFound):
		s.notFound(w, r)
		return
	case errors.Is(err, domain.ErrForbidden):
		s.setFlash(w, flashError, "You don't have permission to delete this bookmark.")
	default:
		s.log.ErrorContext(r.Context(), "deleting bookmark failed", "bookmark_id", id, "error", err)
		s.setFlash(w, flashError, "An error occurred while deleting the bookmark.")
	}
	redirect(w, r, "/")
}

// GetEditBookmark handles GET /edit/{bookmark_id}.
func (s *Server) GetEditBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := bookmarkID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	b, err := s.bookmarks.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			s.notFound(w, r)
		case errors.Is(err, domain.ErrForbidden):
			s.setFlash(w, flashError, "You are not authorized to edit this bookmark.")
			redirect(w, r, "/")
		default:
			s.serverError(w, r, err)
		}
		return
	}

	s.render(w, r, http.StatusOK, "edit.html", &editPage{Bookmark: b, Tags: strings.Join(b.TagNames(), ", ")})
}

// UpdateBookmark handles POST /update/{bookmark_id}.
// A form without a description field clears the description.
func (s *Server) UpdateBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := bookmarkID(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.badForm(w, err)
		return
	}

	in := service.UpdateBookmarkInput{Tags: r.PostFormValue("tags")}
	if _, present := r.PostForm["description"]; present {
		d := r.PostFormValue("description")
		in.Description = &d
	}

	_, err := s.bookmarks.Update(r.Context(), currentUser(r).ID, id, in)
	switch {
	case err == nil:
		s.setFlash(w, flashSuccess, "Bookmark updated successfully!")
		redirect(w, r, "/home")
	case errors.Is(err, domain.ErrNotFound):
		s.notFound(w, r)
	case errors.Is(err, domain.ErrForbidden):
		s.setFlash(w, flashError, "You are not authorized to update this bookmark.")
		redirect(w, r, "/home")
	case isUserError(err):
		s.setFlash(w, flashError, userMessage(err))
		redirect(w, r, "/edit/"+strconv.FormatInt(id, 10))
	default:
		s.serverError(w, r, err)
	}
}
