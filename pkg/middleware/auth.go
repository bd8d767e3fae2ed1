package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/session"
	"github.com/fkhayef/podplanner/pkg/response"
)

// SessionResolver looks up the principal behind a request
type SessionResolver interface {
	Resolve(ctx context.Context, r *http.Request) (*session.Principal, error)
}

// LoadSession attaches the session principal to the request context when one exists.
// Requests without a valid session pass through unauthenticated.
func LoadSession(sessions SessionResolver, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := sessions.Resolve(r.Context(), r)
			if err != nil {
				log.Warn("session lookup failed", zap.Error(err))
			}
			if p != nil {
				r = r.WithContext(session.WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests that carry no authenticated principal
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.FromContext(r.Context()); !ok {
			response.Unauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetPrincipal extracts the authenticated principal from the request context
func GetPrincipal(ctx context.Context) (*session.Principal, bool) {
	return session.FromContext(ctx)
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	p, ok := session.FromContext(ctx)
	if !ok {
		return 0, false
	}
	return p.ID, true
}
