// Package middleware provides the per-request auth gate for protected
// endpoints.
package middleware

import (
	"context"
	"net/http"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/contextkeys"
	"github.com/rentloop/rentloop/pkg/httputil"
	"github.com/rentloop/rentloop/pkg/observability"
)

// SubjectResolver resolves a verified subject id to its identity record.
// *users.Service satisfies this.
type SubjectResolver interface {
	LoadByID(ctx context.Context, id string) (*auth.User, error)
}

// AuthGate verifies the inbound session token and attaches the resolved
// identity to the request context before a protected handler runs. It is
// state-free: signature verification is synchronous and side-effect-free,
// and the only blocking work is the per-request subject lookup.
type AuthGate struct {
	issuer   *auth.Issuer
	resolver SubjectResolver
	metrics  *observability.Metrics
}

// NewAuthGate creates an auth gate. metrics may be nil.
func NewAuthGate(issuer *auth.Issuer, resolver SubjectResolver, metrics *observability.Metrics) *AuthGate {
	return &AuthGate{issuer: issuer, resolver: resolver, metrics: metrics}
}

// Handler wraps a protected handler. The token travels raw in the
// Authorization header, without a "Bearer " prefix — the web client sets
// the header to the token string itself.
func (g *AuthGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			// Short-circuit before any store access
			g.reject("missing_token")
			httputil.WriteFailure(w, auth.E(auth.KindUnauthenticated, "login or signup to book or list a car"))
			return
		}

		subject, err := g.issuer.Subject(token)
		if err != nil {
			g.reject("bad_signature")
			httputil.WriteFailure(w, err)
			return
		}

		user, err := g.resolver.LoadByID(r.Context(), subject)
		if err != nil {
			// Valid signature but the subject no longer exists
			g.reject("subject_gone")
			httputil.WriteFailure(w, auth.E(auth.KindUnauthorized, "not authorized"))
			return
		}

		ctx := contextkeys.WithUser(r.Context(), user.Sanitized())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireOwner wraps a handler that only owners may call. Must run inside
// Handler so the identity is already resolved.
func (g *AuthGate) RequireOwner(next http.Handler) http.Handler {
	return g.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFrom(r)
		if user == nil || !user.Capabilities().IsOwner {
			httputil.WriteFailure(w, auth.E(auth.KindUnauthorized, "not authorized"))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// UserFrom extracts the authenticated user from a gated request
func UserFrom(r *http.Request) *auth.User {
	return contextkeys.UserFromContext(r.Context())
}

func (g *AuthGate) reject(reason string) {
	if g.metrics != nil {
		g.metrics.GateRejectsTotal.WithLabelValues(reason).Inc()
	}
}
