package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// bookmarkID binds the {bookmark_id} path segment. A value that is not an
// integer does not name a route, so callers answer 404.
func bookmarkID(r *http.Request) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "bookmark_id", chi.URLParam(r, "bookmark_id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return 0, false
	}
	return id, true
}

// optionalInt binds an optional form-style query parameter. A missing or
// malformed value yields nil so the caller's default applies.
func optionalInt(q url.Values, name string) *int {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, q, &v); err != nil {
		return nil
	}
	return v
}

// optionalString binds an optional form-style query parameter, "" when absent.
func optionalString(q url.Values, name string) string {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, q, &v); err != nil || v == nil {
		return ""
	}
	return *v
}
