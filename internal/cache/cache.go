// Package cache provides an explicit response-cache middleware for
// read endpoints. Entries live in Redis under a method+path+query key
// and expire after a fixed TTL; nothing invalidates them earlier, so
// staleness is bounded by the TTL.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "response:"

// Key derives the cache key for a request: method, path, and raw
// query. Two requests with the same key are interchangeable reads.
func Key(r *http.Request) string {
	key := r.Method + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	return keyPrefix + key
}

type cachedResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type,omitempty"`
	Location    string `json:"location,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// recorder captures the response while writing it through to the
// client.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)

	return r.ResponseWriter.Write(b)
}

// Middleware caches responses of requests accepted by cacheable. A
// hit short-circuits the handler entirely; a miss records the
// response and stores it when the handler succeeded (2xx/3xx). Redis
// being unreachable degrades to uncached serving, never to an error.
func Middleware(
	client *redis.Client,
	ttl time.Duration,
	cacheable func(*http.Request) bool,
	logger *zap.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if !cacheable(r) {
				next.ServeHTTP(w, r)

				return
			}

			key := Key(r)

			if served := serveFromCache(r.Context(), client, key, w, logger); served {
				return
			}

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= http.StatusBadRequest {
				return
			}

			store(r.Context(), client, key, ttl, rec, logger)
		}

		return http.HandlerFunc(fn)
	}
}

func serveFromCache(ctx context.Context, client *redis.Client, key string, w http.ResponseWriter, logger *zap.Logger) bool {
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		}

		return false
	}

	var cached cachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		logger.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		client.Del(ctx, key)

		return false
	}

	if cached.ContentType != "" {
		w.Header().Set("Content-Type", cached.ContentType)
	}

	if cached.Location != "" {
		w.Header().Set("Location", cached.Location)
	}

	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)

	return true
}

func store(ctx context.Context, client *redis.Client, key string, ttl time.Duration, rec *recorder, logger *zap.Logger) {
	cached := cachedResponse{
		StatusCode:  rec.status,
		ContentType: rec.Header().Get("Content-Type"),
		Location:    rec.Header().Get("Location"),
		Body:        rec.body.Bytes(),
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))

		return
	}

	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
}
