package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mlazarev/redirector/internal/apierror"
)

// Recover converts panics into the standard 500 envelope. The panic
// value is logged with full detail server-side and never reaches the
// caller.
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic while serving request",
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Any("panic", rec),
						zap.Stack("stack"),
					)
					apierror.WriteInternal(w)
				}
			}()

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}
