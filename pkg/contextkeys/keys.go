// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

import (
	"context"

	"github.com/rentloop/rentloop/pkg/auth"
)

// Key is the type for context keys to prevent collisions
type Key string

const (
	// UserKey contains the authenticated user
	// Set by: middleware.AuthGate (pkg/middleware/auth.go)
	// Required by: all protected API endpoints
	// Type: *auth.User (secret material stripped)
	UserKey Key = "auth_user"

	// RequestIDKey contains the request ID string
	// Set by: httputil.RequestIDMiddleware
	// Used by: request logging
	// Type: string
	RequestIDKey Key = "request_id"
)

// WithUser returns a context carrying the authenticated user
func WithUser(ctx context.Context, user *auth.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// UserFromContext extracts the authenticated user, or nil if absent
func UserFromContext(ctx context.Context) *auth.User {
	user, ok := ctx.Value(UserKey).(*auth.User)
	if !ok {
		return nil
	}
	return user
}
