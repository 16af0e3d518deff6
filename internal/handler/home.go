package handler

import (
	"net/http"

	"github.com/msomdec/glasses-shop/internal/service"
	"github.com/msomdec/glasses-shop/internal/view"
)

// catalogue is the fixed product list shown on the shop page.
var catalogue = []view.Product{
	{Name: "Aviator Classic", Description: "Gold metal frame with teardrop lenses.", PriceCents: 12900},
	{Name: "Round Tortoise", Description: "Acetate frame in warm tortoiseshell.", PriceCents: 9900},
	{Name: "Wayfarer Black", Description: "Bold square frame for everyday wear.", PriceCents: 10900},
	{Name: "Cat Eye Rose", Description: "Upswept rims in translucent rose.", PriceCents: 11500},
}

// PageHandler serves the static pages and the shop catalogue.
type PageHandler struct {
	sessions *service.SessionManager
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(sessions *service.SessionManager) *PageHandler {
	return &PageHandler{sessions: sessions}
}

// HandleHome renders the home page. It also serves as the catch-all for
// unknown paths, which get a 404.
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		renderError(w, r, h.sessions, http.StatusNotFound)
		return
	}
	render(w, r, http.StatusOK, view.HomePage(pageData(w, r, h.sessions)))
}

// HandleAbout renders the about page.
func (h *PageHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, view.AboutPage(pageData(w, r, h.sessions)))
}

// HandleContact renders the contact page.
func (h *PageHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, view.ContactPage(pageData(w, r, h.sessions)))
}

// HandleShop renders the catalogue. It must be wrapped in RequireAuth.
func (h *PageHandler) HandleShop(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, view.ShopPage(pageData(w, r, h.sessions), catalogue))
}
