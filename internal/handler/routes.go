package handler

import (
	"net/http"

	"github.com/msomdec/glasses-shop/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, sessions *service.SessionManager) {
	pages := NewPageHandler(sessions)
	authHandler := NewAuthHandler(auth, sessions)

	page := func(h http.HandlerFunc) http.Handler {
		return OptionalAuth(sessions, h)
	}
	form := func(h http.HandlerFunc) http.Handler {
		return CrossOriginProtection(sessions, page(h))
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("GET /", page(pages.HandleHome))
	mux.Handle("GET /about", page(pages.HandleAbout))
	mux.Handle("GET /contact", page(pages.HandleContact))
	mux.Handle("GET /shop", RequireAuth(sessions, http.HandlerFunc(pages.HandleShop)))

	mux.Handle("GET /login", page(authHandler.HandleLoginPage))
	mux.Handle("POST /login", form(authHandler.HandleLogin))
	mux.Handle("GET /register", page(authHandler.HandleRegisterPage))
	mux.Handle("POST /register", form(authHandler.HandleRegister))
	mux.HandleFunc("GET /logout", authHandler.HandleLogout)
}
