package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/msomdec/glasses-shop/internal/domain"
)

const (
	// SessionCookieName is the cookie that carries the session token.
	SessionCookieName = "session"
	// FlashCookieName carries a one-time message across a redirect.
	FlashCookieName = "flash"
)

// SessionCodec turns a user ID into a session token and back.
// Resolve returns domain.ErrUnauthorized for tokens it does not accept.
type SessionCodec interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Resolve(ctx context.Context, token string) (int64, error)
	Revoke(ctx context.Context, token string) error
}

// JWTCodec keeps the whole session in an HS256-signed token held by the
// browser. Revoke is a no-op; clearing the cookie ends the session.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTCodec creates a JWTCodec signing with secret.
func NewJWTCodec(secret string, ttl time.Duration) *JWTCodec {
	return &JWTCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (c *JWTCodec) Issue(_ context.Context, userID int64) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (c *JWTCodec) Resolve(_ context.Context, tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return 0, domain.ErrUnauthorized
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, domain.ErrUnauthorized
	}
	return userID, nil
}

func (c *JWTCodec) Revoke(context.Context, string) error {
	return nil
}

// StoreCodec hands the browser an opaque identifier and keeps the subject in
// a server-side domain.SessionStore.
type StoreCodec struct {
	store domain.SessionStore
	ttl   time.Duration
}

// NewStoreCodec creates a StoreCodec on top of store.
func NewStoreCodec(store domain.SessionStore, ttl time.Duration) *StoreCodec {
	return &StoreCodec{store: store, ttl: ttl}
}

func (c *StoreCodec) Issue(ctx context.Context, userID int64) (string, error) {
	id, err := c.store.Create(ctx, userID, c.ttl)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (c *StoreCodec) Resolve(ctx context.Context, token string) (int64, error) {
	userID, err := c.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrUnauthorized
		}
		return 0, fmt.Errorf("get session: %w", err)
	}
	return userID, nil
}

func (c *StoreCodec) Revoke(ctx context.Context, token string) error {
	return c.store.Delete(ctx, token)
}

// SessionManager issues, resolves and destroys the login session of a browser.
// A browser is either anonymous or authenticated as one user ID; the full user
// record is reloaded from the credential store on every request.
type SessionManager struct {
	codec        SessionCodec
	users        domain.UserRepository
	ttl          time.Duration
	cookieSecure bool
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(codec SessionCodec, users domain.UserRepository, ttl time.Duration, cookieSecure bool) *SessionManager {
	return &SessionManager{
		codec:        codec,
		users:        users,
		ttl:          ttl,
		cookieSecure: cookieSecure,
	}
}

// CurrentUser returns the authenticated user for r, or nil when anonymous.
// A token whose subject no longer resolves is treated as anonymous. Only
// store failures are returned as errors.
func (m *SessionManager) CurrentUser(r *http.Request) (*domain.User, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	userID, err := m.codec.Resolve(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, nil
		}
		return nil, err
	}

	user, err := m.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return user, nil
}

// Login starts a fresh session for user, replacing any session r carried.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := m.codec.Revoke(r.Context(), cookie.Value); err != nil {
			return fmt.Errorf("revoke previous session: %w", err)
		}
	}

	token, err := m.codec.Issue(r.Context(), user.ID)
	if err != nil {
		return err
	}

	http.SetCookie(w, m.cookie(SessionCookieName, token, int(m.ttl.Seconds())))
	return nil
}

// Logout ends the session carried by r. It is a no-op for anonymous requests
// apart from expiring the cookie.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, m.cookie(SessionCookieName, "", -1))

	if err := m.codec.Revoke(r.Context(), cookie.Value); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// SetFlash stores a one-time message that survives the next redirect.
func (m *SessionManager) SetFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, m.cookie(FlashCookieName, base64.RawURLEncoding.EncodeToString([]byte(message)), 0))
}

// PopFlash returns the pending message, if any, and clears it.
func (m *SessionManager) PopFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(FlashCookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, m.cookie(FlashCookieName, "", -1))
	message, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(message)
}

// cookie builds a cookie with the attributes shared by every cookie the shop sets.
func (m *SessionManager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}
