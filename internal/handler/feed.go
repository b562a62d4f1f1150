package handler

import (
	"errors"
	"net/http"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/middleware"
)

// GetBookmarkFeed handles GET /bookmarks.
// Supports ?page= and ?per_page= (defaults: page=1, per_page=10, max=100) and
// returns a flat JSON array of {id, title, url, tags}. The feed spans every
// user's bookmarks and needs no session.
func (s *Server) GetBookmarkFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := domain.NewPaginationParams(optionalInt(q, "page"), optionalInt(q, "per_page"))

	items, err := s.bookmarks.Page(r.Context(), params)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("page not found"))
			return
		}
		s.log.ErrorContext(r.Context(), "bookmark feed failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{
			Code:    "internal",
			Message: middleware.InternalErrorMessage,
		}})
		return
	}

	writeJSON(w, http.StatusOK, items)
}
