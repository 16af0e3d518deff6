package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/msomdec/glasses-shop/internal/service"
	"github.com/msomdec/glasses-shop/internal/view"
)

// pageData builds the navigation state and consumes any pending flash.
func pageData(w http.ResponseWriter, r *http.Request, sessions *service.SessionManager) view.PageData {
	p := view.PageData{Flash: sessions.PopFlash(w, r)}
	if user := UserFromContext(r.Context()); user != nil {
		p.LoggedIn = true
		p.Name = user.Name
	}
	return p
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render page", "path", r.URL.Path, "error", err)
	}
}

func renderError(w http.ResponseWriter, r *http.Request, sessions *service.SessionManager, status int) {
	message := http.StatusText(status)
	switch status {
	case http.StatusInternalServerError:
		message = "An unexpected error occurred. Please try again."
	case http.StatusForbidden:
		message = "This form can only be submitted from the shop itself."
	}
	render(w, r, status, view.ErrorPage(pageData(w, r, sessions), status, message))
}
