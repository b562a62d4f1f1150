package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/thoas/go-funk"

	"github.com/pkordes/bookmarks/internal/domain"
)

// TagService normalises the free-text tag field of the bookmark forms.
// All tag identity is determined by the normalised name, which is always
// trimmed and lower-case.
type TagService struct{}

// NewTagService constructs a TagService.
func NewTagService() *TagService {
	return &TagService{}
}

// ParseNames splits a comma-separated tag field into normalised names.
// Empty entries are dropped and duplicates removed, keeping first-seen order,
// so "A, a, A" yields ["a"]. A name longer than domain.MaxTagLength is a
// validation error.
func (s *TagService) ParseNames(raw string) ([]string, error) {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > domain.MaxTagLength {
			return nil, fmt.Errorf("%w: Tag names must be at most %d characters", domain.ErrValidation, domain.MaxTagLength)
		}
		names = append(names, name)
	}
	return funk.UniqString(names), nil
}
