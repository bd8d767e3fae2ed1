package session

import (
	"context"
	"net/http"
	"time"
)

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

// Manager ties the session store to the HTTP cookie
type Manager struct {
	store  *Store
	cookie CookieConfig
}

// NewManager creates a new session manager
func NewManager(store *Store, cookie CookieConfig) *Manager {
	return &Manager{store: store, cookie: cookie}
}

// Login opens a session for p and sets the cookie
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, p Principal) error {
	id, err := m.store.Create(ctx, p)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.store.TTL() / time.Second),
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout destroys the request's session and clears the cookie
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if c, err := r.Cookie(m.cookie.Name); err == nil && c.Value != "" {
		if err := m.store.Delete(ctx, c.Value); err != nil {
			return err
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Resolve returns the principal behind the request's cookie, or nil
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (*Principal, error) {
	c, err := r.Cookie(m.cookie.Name)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	return m.store.Get(ctx, c.Value)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
