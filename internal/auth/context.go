// Package auth provides the current-user lookup used by the offer pages
// and the places service.
//
// Token management is handled upstream; by the time a request reaches this
// application the user identifier is either in the request context or
// supplied as a trusted header.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrNoUser is returned when no user identifier is available.
var ErrNoUser = errors.New("no authenticated user")

// UserHeader carries the user identifier set by the fronting proxy.
const UserHeader = "X-User-ID"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userIDContextKey contextKey = "user_id"

// UserSource yields the identifier of the current user. Each call is a
// single read; callers that need a fresh value call again.
type UserSource interface {
	UserID(ctx context.Context) (string, error)
}

// WithUserID stores a user identifier in the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the identifier stored by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok && id != ""
}

// ContextSource reads the user from the context, falling back to a fixed
// identifier when one is configured.
type ContextSource struct {
	Fallback string
}

func (s ContextSource) UserID(ctx context.Context) (string, error) {
	if id, ok := UserIDFromContext(ctx); ok {
		return id, nil
	}
	if s.Fallback != "" {
		return s.Fallback, nil
	}
	return "", ErrNoUser
}

// Middleware copies UserHeader into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(UserHeader)); id != "" {
			r = r.WithContext(WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
