package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/msomdec/glasses-shop/internal/handler"
)

func TestPublicPages(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/", "/about", "/contact", "/login", "/register"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(app.srv.URL + path)
			if err != nil {
				t.Fatalf("GET %s: %v", path, err)
			}
			body := readBody(t, resp)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Fatalf("expected text/html, got %q", ct)
			}
			if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
				t.Fatal("expected security headers")
			}
			if !strings.Contains(body, `href="/login"`) {
				t.Fatal("anonymous pages should link to login")
			}
		})
	}
}

func TestHandleHomeNotFound(t *testing.T) {
	_, sessions, _ := newTestServices(t)
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()

	handler.NewPageHandler(sessions).HandleHome(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestLoginPage_CarriesSafeNext(t *testing.T) {
	app := newTestApp(t)

	resp, err := http.Get(app.srv.URL + "/login?next=/shop")
	if err != nil {
		t.Fatalf("GET /login: %v", err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, `name="next" value="/shop"`) {
		t.Fatal("expected next=/shop in login form")
	}

	resp, err = http.Get(app.srv.URL + "/login?next=//evil.example")
	if err != nil {
		t.Fatalf("GET /login: %v", err)
	}
	body = readBody(t, resp)
	if strings.Contains(body, "evil.example") {
		t.Fatal("external next must be dropped")
	}
}
