package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextSource(t *testing.T) {
	ctx := context.Background()

	_, err := ContextSource{}.UserID(ctx)
	assert.ErrorIs(t, err, ErrNoUser)

	id, err := ContextSource{Fallback: "dev"}.UserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dev", id)

	id, err = ContextSource{Fallback: "dev"}.UserID(WithUserID(ctx, "u1"))
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestMiddlewareCopiesHeader(t *testing.T) {
	var got string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserHeader, " u42 ")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "u42", got)
}

func TestMiddlewareWithoutHeader(t *testing.T) {
	var ok bool
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = UserIDFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, ok)
}
