package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

const flashCookieName = "flash"

// Flash categories, used as CSS classes by the templates.
const (
	flashSuccess = "success"
	flashError   = "error"
	flashInfo    = "message"
)

// flash is a one-shot message shown on the next rendered page.
type flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// setFlash queues a message for the next page the browser renders. The
// cookie is signed so a client cannot inject markup-bearing messages.
func (s *Server) setFlash(w http.ResponseWriter, category, message string) {
	payload, err := json.Marshal([]flash{{Category: category, Message: message}})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload) + "." + s.sign(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlashes returns the queued messages and clears the cookie.
// A missing, tampered or malformed cookie yields no messages.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	s.clearCookie(w, flashCookieName)

	encoded, sig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || !hmac.Equal([]byte(sig), []byte(s.sign(payload))) {
		return nil
	}
	var flashes []flash
	if err := json.Unmarshal(payload, &flashes); err != nil {
		return nil
	}
	return flashes
}

func (s *Server) sign(payload []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *Server) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirect answers a form post with 303 See Other so the browser follows up with a GET.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
