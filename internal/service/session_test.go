package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/msomdec/glasses-shop/internal/domain"
	"github.com/msomdec/glasses-shop/internal/repository/redis"
	"github.com/msomdec/glasses-shop/internal/service"
)

const testSecret = "test-secret-key-for-unit-tests-0123456789"

func newStoreCodec(t *testing.T) (*miniredis.Miniredis, *service.StoreCodec) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, service.NewStoreCodec(redis.NewSessionStore(client, ""), time.Hour)
}

func TestJWTCodec_IssueAndResolve(t *testing.T) {
	codec := service.NewJWTCodec(testSecret, time.Hour)
	ctx := context.Background()

	token, err := codec.Issue(ctx, 42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userID, err := codec.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected 42, got %d", userID)
	}

	again, err := codec.Issue(ctx, 42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if again == token {
		t.Fatal("each issued token should be distinct")
	}
}

func TestJWTCodec_Rejects(t *testing.T) {
	codec := service.NewJWTCodec(testSecret, time.Hour)
	ctx := context.Background()

	token, err := codec.Issue(ctx, 42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, err := service.NewJWTCodec("a-completely-different-secret-value!!", time.Hour).Issue(ctx, 42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	expired, err := service.NewJWTCodec(testSecret, -time.Minute).Issue(ctx, 42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := map[string]string{
		"garbage":      "not-a-valid-jwt",
		"tampered":     token[:len(token)-5] + "XXXXX",
		"wrong secret": other,
		"expired":      expired,
		"alg none":     "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiI0MiJ9.",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Resolve(ctx, tok)
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestStoreCodec_Lifecycle(t *testing.T) {
	_, codec := newStoreCodec(t)
	ctx := context.Background()

	token, err := codec.Issue(ctx, 9)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userID, err := codec.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if userID != 9 {
		t.Fatalf("expected 9, got %d", userID)
	}

	if err := codec.Revoke(ctx, token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := codec.Resolve(ctx, token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after revoke, got %v", err)
	}
}

func TestStoreCodec_StoreUnavailable(t *testing.T) {
	mr, codec := newStoreCodec(t)
	ctx := context.Background()

	token, err := codec.Issue(ctx, 9)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	mr.Close()

	_, err = codec.Resolve(ctx, token)
	if err == nil || errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected a store error, got %v", err)
	}
}

// sessionCookie returns the session cookie set on rec, if any.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == service.SessionCookieName {
			return c
		}
	}
	return nil
}

func testSessionManagers(t *testing.T, users domain.UserRepository) map[string]*service.SessionManager {
	t.Helper()
	_, storeCodec := newStoreCodec(t)
	return map[string]*service.SessionManager{
		"jwt":   service.NewSessionManager(service.NewJWTCodec(testSecret, time.Hour), users, time.Hour, true),
		"redis": service.NewSessionManager(storeCodec, users, time.Hour, true),
	}
}

func TestSessionManager_LoginCurrentUserLogout(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := &domain.User{Email: "a@x.com", Name: "Ann", PasswordHash: "hash"}
	if err := db.Users().Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for name, sessions := range testSessionManagers(t, db.Users()) {
		t.Run(name, func(t *testing.T) {
			anon := httptest.NewRequest(http.MethodGet, "/", nil)
			current, err := sessions.CurrentUser(anon)
			if err != nil || current != nil {
				t.Fatalf("expected anonymous, got %v, %v", current, err)
			}

			rec := httptest.NewRecorder()
			if err := sessions.Login(rec, anon, user); err != nil {
				t.Fatalf("Login: %v", err)
			}
			cookie := sessionCookie(rec)
			if cookie == nil || cookie.Value == "" {
				t.Fatal("expected session cookie")
			}
			if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode {
				t.Fatalf("unexpected cookie attributes: %+v", cookie)
			}
			if cookie.MaxAge != 3600 {
				t.Fatalf("expected Max-Age 3600, got %d", cookie.MaxAge)
			}

			authed := httptest.NewRequest(http.MethodGet, "/shop", nil)
			authed.AddCookie(cookie)
			current, err = sessions.CurrentUser(authed)
			if err != nil {
				t.Fatalf("CurrentUser: %v", err)
			}
			if current == nil || current.ID != user.ID || current.Email != "a@x.com" {
				t.Fatalf("expected user %d, got %+v", user.ID, current)
			}

			rec = httptest.NewRecorder()
			if err := sessions.Logout(rec, authed); err != nil {
				t.Fatalf("Logout: %v", err)
			}
			cleared := sessionCookie(rec)
			if cleared == nil || cleared.MaxAge >= 0 {
				t.Fatalf("expected expired cookie, got %+v", cleared)
			}

			// The browser drops the expired cookie.
			after := httptest.NewRequest(http.MethodGet, "/shop", nil)
			current, err = sessions.CurrentUser(after)
			if err != nil || current != nil {
				t.Fatalf("expected anonymous after logout, got %v, %v", current, err)
			}
		})
	}
}

func TestSessionManager_LogoutWhenAnonymous(t *testing.T) {
	db := newTestDB(t)

	for name, sessions := range testSessionManagers(t, db.Users()) {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := sessions.Logout(rec, httptest.NewRequest(http.MethodGet, "/logout", nil)); err != nil {
				t.Fatalf("Logout: %v", err)
			}
			if sessionCookie(rec) != nil {
				t.Fatal("anonymous logout should not touch cookies")
			}
		})
	}
}

func TestSessionManager_ReloginReplacesServerSession(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := &domain.User{Email: "a@x.com", Name: "Ann", PasswordHash: "hash"}
	if err := db.Users().Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, codec := newStoreCodec(t)
	sessions := service.NewSessionManager(codec, db.Users(), time.Hour, false)

	rec := httptest.NewRecorder()
	if err := sessions.Login(rec, httptest.NewRequest(http.MethodPost, "/login", nil), user); err != nil {
		t.Fatalf("first Login: %v", err)
	}
	first := sessionCookie(rec)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(first)
	rec = httptest.NewRecorder()
	if err := sessions.Login(rec, req, user); err != nil {
		t.Fatalf("second Login: %v", err)
	}
	second := sessionCookie(rec)
	if second.Value == first.Value {
		t.Fatal("re-login should issue a fresh session")
	}

	stale := httptest.NewRequest(http.MethodGet, "/shop", nil)
	stale.AddCookie(first)
	if current, err := sessions.CurrentUser(stale); err != nil || current != nil {
		t.Fatalf("previous session should be gone, got %v, %v", current, err)
	}
}

func TestSessionManager_UnknownSubjectIsAnonymous(t *testing.T) {
	db := newTestDB(t)
	codec := service.NewJWTCodec(testSecret, time.Hour)
	sessions := service.NewSessionManager(codec, db.Users(), time.Hour, false)

	token, err := codec.Issue(context.Background(), 12345)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/shop", nil)
	req.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: token})
	current, err := sessions.CurrentUser(req)
	if err != nil || current != nil {
		t.Fatalf("expected anonymous for deleted subject, got %v, %v", current, err)
	}
}

func TestSessionManager_FlashCookieAttributes(t *testing.T) {
	for _, secure := range []bool{true, false} {
		sessions := service.NewSessionManager(service.NewJWTCodec(testSecret, time.Hour), nil, time.Hour, secure)

		rec := httptest.NewRecorder()
		sessions.SetFlash(rec, "Email doesn't exist")

		var flash *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == service.FlashCookieName {
				flash = c
			}
		}
		if flash == nil {
			t.Fatal("expected a flash cookie")
		}
		if flash.Secure != secure || !flash.HttpOnly || flash.SameSite != http.SameSiteLaxMode {
			t.Fatalf("secure=%v: unexpected flash cookie attributes %+v", secure, flash)
		}

		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.AddCookie(flash)
		rec = httptest.NewRecorder()
		if got := sessions.PopFlash(rec, req); got != "Email doesn't exist" {
			t.Fatalf("PopFlash = %q", got)
		}
		cleared := rec.Result().Cookies()
		if len(cleared) != 1 || cleared[0].MaxAge != -1 || cleared[0].Secure != secure {
			t.Fatalf("secure=%v: flash should be cleared with matching attributes, got %+v", secure, cleared)
		}
	}
}

func TestSessionManager_PopFlashWithoutCookie(t *testing.T) {
	sessions := service.NewSessionManager(service.NewJWTCodec(testSecret, time.Hour), nil, time.Hour, true)

	rec := httptest.NewRecorder()
	if got := sessions.PopFlash(rec, httptest.NewRequest(http.MethodGet, "/", nil)); got != "" {
		t.Fatalf("PopFlash = %q, want empty", got)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no cookie should be written when there is no flash")
	}
}
