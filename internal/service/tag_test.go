package service_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/service"
)

func TestTagService_ParseNames(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"only separators", " , ,, ", nil},
		{"single", "Go", []string{"go"}},
		{"trim and lower", "  Go , RUST,python ", []string{"go", "rust", "python"}},
		{"dedup case-insensitive", "A, a, A", []string{"a"}},
		{"first-seen order kept", "b, a, B, c, a", []string{"b", "a", "c"}},
		{"inner spaces kept", "machine learning, Machine Learning", []string{"machine learning"}},
	}
	svc := service.NewTagService()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.ParseNames(tc.raw)

			require.NoError(t, err)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTagService_ParseNames_TooLong(t *testing.T) {
	svc := service.NewTagService()

	_, err := svc.ParseNames("ok, " + strings.Repeat("x", domain.MaxTagLength+1))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTagService_ParseNames_MaxLengthAccepted(t *testing.T) {
	svc := service.NewTagService()

	got, err := svc.ParseNames(strings.Repeat("x", domain.MaxTagLength))

	require.NoError(t, err)
	assert.Len(t, got, 1)
}
