package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/projects", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"hello": "world"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	var result map[string]string
	err := c.Get(context.Background(), "/projects", &result)

	require.NoError(t, err)
	assert.Equal(t, "world", result["hello"])
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	c.SetToken("secret-token")

	require.NoError(t, c.Get(context.Background(), "/tasks", nil))
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	require.NoError(t, c.Get(context.Background(), "/auth/login", nil))
	assert.Empty(t, gotAuth)
}

func TestServerErrorMessageIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Name is required"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	err := c.Post(context.Background(), "/projects", map[string]string{}, nil)

	require.Error(t, err)
	assert.Equal(t, "Name is required", err.Error())
}

func TestGenericMessageWhenBodyUnusable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>boom</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	err := c.Get(context.Background(), "/analytics", nil)

	require.Error(t, err)
	assert.Equal(t, "API request failed", err.Error())
}

func TestUnauthorizedInvokesHookAndReturnsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	var hookCalls int32
	c.OnUnauthorized(func() { atomic.AddInt32(&hookCalls, 1) })

	err := c.Get(context.Background(), "/projects", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hookCalls))
}

func TestRateLimitRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	var result map[string]bool
	err := c.Get(context.Background(), "/tasks", &result)

	require.NoError(t, err)
	assert.True(t, result["ok"])
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPostBodySurvivesRetry(t *testing.T) {
	var calls int32
	var lastBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&lastBody)
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	err := c.Post(context.Background(), "/projects", map[string]string{"name": "demo"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "demo", lastBody["name"])
}

func TestContextCancellationDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Get(ctx, "/projects", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
