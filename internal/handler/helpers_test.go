package handler_test

import (
	"context"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/glasses-shop/internal/handler"
	"github.com/msomdec/glasses-shop/internal/repository/sqlite"
	"github.com/msomdec/glasses-shop/internal/service"
)

const testSecret = "test-secret-for-handler-tests-0123456789"

type testApp struct {
	db       *sqlite.DB
	auth     *service.AuthService
	sessions *service.SessionManager
	srv      *httptest.Server
}

func newTestServices(t *testing.T) (*service.AuthService, *service.SessionManager, *sqlite.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	auth := service.NewAuthService(db.Users(), service.NewBcryptHasher(4))
	sessions := service.NewSessionManager(service.NewJWTCodec(testSecret, time.Hour), db.Users(), time.Hour, false)
	return auth, sessions, db
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	auth, sessions, db := newTestServices(t)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, sessions)

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)

	return &testApp{db: db, auth: auth, sessions: sessions, srv: srv}
}

// client returns a client with its own cookie jar that does not follow redirects.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) countUsers(t *testing.T, email string) int {
	t.Helper()
	var n int
	if err := a.db.SqlDB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&n); err != nil {
		t.Fatalf("count users: %v", err)
	}
	return n
}

// readBody returns the unescaped response body and closes it.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return html.UnescapeString(string(b))
}
