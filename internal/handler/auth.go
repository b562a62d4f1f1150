package handler

import (
	"errors"
	"net/http"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/service"
)

// GetSignup handles GET /signup.
func (s *Server) GetSignup(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "signup.html", &formPage{})
}

// PostSignup handles POST /signup.
func (s *Server) PostSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badForm(w, err)
		return
	}

	_, err := s.auth.Signup(r.Context(), service.SignupInput{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		if isUserError(err) {
			s.setFlash(w, flashError, userMessage(err))
			redirect(w, r, "/signup")
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.setFlash(w, flashSuccess, "Account created successfully! Please log in.")
	redirect(w, r, "/login")
}

// GetLogin handles GET /login.
func (s *Server) GetLogin(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", &formPage{})
}

// PostLogin handles POST /login.
// Unknown email and wrong password produce the same message.
func (s *Server) PostLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badForm(w, err)
		return
	}

	sess, err := s.auth.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			s.setFlash(w, flashError, "Invalid email or password")
			redirect(w, r, "/login")
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.startSession(w, sess)
	s.setFlash(w, flashSuccess, "Logged in successfully!")
	redirect(w, r, "/")
}

// PostLogout handles POST /logout.
func (s *Server) PostLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), sessionFrom(r.Context())); err != nil {
		s.serverError(w, r, err)
		return
	}

	s.clearCookie(w, s.opts.SessionCookieName)
	s.setFlash(w, flashSuccess, "Logged out successfully!")
	redirect(w, r, "/login")
}
