package cache_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mlazarev/redirector/internal/cache"
)

func TestKey(t *testing.T) {
	t.Run("combines method and path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/urls", nil)

		assert.Equal(t, "response:GET /api/v1/urls", cache.Key(req))
	})

	t.Run("includes the raw query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/urls?page=2&size=10", nil)

		assert.Equal(t, "response:GET /api/v1/urls?page=2&size=10", cache.Key(req))
	})

	t.Run("distinguishes methods on the same path", func(t *testing.T) {
		get := httptest.NewRequest(http.MethodGet, "/api/v1/urls", nil)
		post := httptest.NewRequest(http.MethodPost, "/api/v1/urls", nil)

		assert.NotEqual(t, cache.Key(get), cache.Key(post))
	})
}

func TestMiddlewarePassThrough(t *testing.T) {
	t.Run("non-cacheable requests never touch the cache", func(t *testing.T) {
		never := func(*http.Request) bool { return false }

		var calls int

		handler := cache.Middleware(nil, time.Minute, never, zap.NewNop())(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls++
				w.WriteHeader(http.StatusCreated)
			}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/urls", nil))

		assert.Equal(t, 1, calls)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}
