package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/glasses-shop/internal/domain"
	"github.com/msomdec/glasses-shop/internal/service"
	"github.com/msomdec/glasses-shop/internal/view"
)

// User-visible flash messages.
const (
	msgUnknownEmail     = "Email doesn't exist"
	msgPasswordMismatch = "Password doesn't match"
	msgDuplicateEmail   = "Email Already Exists"
)

// AuthHandler handles the login, registration and logout pages.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *service.SessionManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, sessions *service.SessionManager) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

// HandleLoginPage renders the login form.
// GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	form := view.FormState{Next: safeNext(r.URL.Query().Get("next"))}
	render(w, r, http.StatusOK, view.LoginPage(pageData(w, r, h.sessions), form))
}

// HandleLogin processes the login form.
// POST /login
// Success redirects to next or /; unknown email and wrong password flash a
// message and redirect back to /login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderError(w, r, h.sessions, http.StatusBadRequest)
		return
	}

	in := service.LoginInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	next := safeNext(r.PostFormValue("next"))

	user, err := h.auth.Login(r.Context(), in)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			form := view.FormState{
				Values: map[string]string{"email": in.Email},
				Errors: verr.Fields,
				Next:   next,
			}
			render(w, r, http.StatusUnprocessableEntity, view.LoginPage(pageData(w, r, h.sessions), form))
		case errors.Is(err, domain.ErrUnknownEmail):
			h.sessions.SetFlash(w, msgUnknownEmail)
			http.Redirect(w, r, loginURL(next), http.StatusSeeOther)
		case errors.Is(err, domain.ErrPasswordMismatch):
			h.sessions.SetFlash(w, msgPasswordMismatch)
			http.Redirect(w, r, loginURL(next), http.StatusSeeOther)
		default:
			slog.Error("login user", "error", err)
			renderError(w, r, h.sessions, http.StatusInternalServerError)
		}
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		slog.Error("start session", "user_id", user.ID, "error", err)
		renderError(w, r, h.sessions, http.StatusInternalServerError)
		return
	}
	slog.Info("user logged in", "user_id", user.ID)

	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// HandleRegisterPage renders the registration form.
// GET /register
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, view.RegisterPage(pageData(w, r, h.sessions), view.FormState{}))
}

// HandleRegister processes the registration form.
// POST /register
// Success creates the account, logs the new user in and redirects to /.
// A known email flashes a message and redirects to /login.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderError(w, r, h.sessions, http.StatusBadRequest)
		return
	}

	in := service.RegisterInput{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			form := view.FormState{
				Values: map[string]string{"name": in.Name, "email": in.Email},
				Errors: verr.Fields,
			}
			render(w, r, http.StatusUnprocessableEntity, view.RegisterPage(pageData(w, r, h.sessions), form))
		case errors.Is(err, domain.ErrDuplicateEmail):
			h.sessions.SetFlash(w, msgDuplicateEmail)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		default:
			slog.Error("register user", "error", err)
			renderError(w, r, h.sessions, http.StatusInternalServerError)
		}
		return
	}
	slog.Info("user registered", "user_id", user.ID)

	if err := h.sessions.Login(w, r, user); err != nil {
		slog.Error("start session", "user_id", user.ID, "error", err)
		renderError(w, r, h.sessions, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout ends the session and redirects to /. It always succeeds.
// GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		slog.Error("logout user", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
