package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mlazarev/redirector/internal/handlers"
	"github.com/mlazarev/redirector/internal/store"
)

func setupTestAPI(t *testing.T) (*chi.Mux, *store.MemoryRedirectStore) {
	t.Helper()

	memStore := store.NewMemoryRedirectStore()
	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))

	handlers.RegisterRoutes(api,
		handlers.NewRedirectHandler(memStore, zap.NewNop()),
		handlers.NewHealthHandler(stubPinger{}, stubPinger{}),
	)

	return router, memStore
}

func doRequest(router *chi.Mux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestRoutes(t *testing.T) {
	t.Run("create returns 201 with the stored record", func(t *testing.T) {
		router, _ := setupTestAPI(t)

		rec := doRequest(router, http.MethodPost, "/api/v1/urls", `{"url": "/some/path"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"/some/path"`)
	})

	t.Run("create rejects a malformed path at validation", func(t *testing.T) {
		router, _ := setupTestAPI(t)

		rec := doRequest(router, http.MethodPost, "/api/v1/urls", `{"url": "no-slash"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("create rejects a missing body", func(t *testing.T) {
		router, _ := setupTestAPI(t)

		rec := doRequest(router, http.MethodPost, "/api/v1/urls", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list returns stored records", func(t *testing.T) {
		router, memStore := setupTestAPI(t)
		_, err := memStore.Create(context.Background(), "/stored")
		require.NoError(t, err)

		rec := doRequest(router, http.MethodGet, "/api/v1/urls", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"/stored"`)
	})

	t.Run("get issues a 307 with a Location header", func(t *testing.T) {
		router, memStore := setupTestAPI(t)
		created, err := memStore.Create(context.Background(), "/target/path")
		require.NoError(t, err)

		rec := doRequest(router, http.MethodGet, "/api/v1/urls/1", "")

		require.Equal(t, created.ID, int64(1))
		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "/target/path", rec.Header().Get("Location"))
	})

	t.Run("get of an unknown id returns 404", func(t *testing.T) {
		router, _ := setupTestAPI(t)

		rec := doRequest(router, http.MethodGet, "/api/v1/urls/99", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("get of a non-positive id fails validation", func(t *testing.T) {
		router, _ := setupTestAPI(t)

		rec := doRequest(router, http.MethodGet, "/api/v1/urls/0", "")

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("delete returns 204 and removes the record", func(t *testing.T) {
		router, memStore := setupTestAPI(t)
		_, err := memStore.Create(context.Background(), "/doomed")
		require.NoError(t, err)

		rec := doRequest(router, http.MethodDelete, "/api/v1/urls/1", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(router, http.MethodDelete, "/api/v1/urls/1", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("health reports ok", func(t *testing.T) {
		router, _ := setupTestAPI(t)

		rec := doRequest(router, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"ok"`)
	})
}
