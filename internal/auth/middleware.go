package auth

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mlazarev/redirector/internal/entity"
)

type userContextKey struct{}

// ContextWithUser stores the authenticated user on the context.
func ContextWithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// ActiveUserFromContext returns the authenticated active user, or
// ErrUnauthorized when the request carried no usable credentials.
func ActiveUserFromContext(ctx context.Context) (*entity.User, error) {
	user, ok := ctx.Value(userContextKey{}).(*entity.User)
	if !ok {
		return nil, ErrUnauthorized
	}

	return user, nil
}

// NewMiddleware resolves a bearer token to an active user and stores
// it on the request context. Requests without valid credentials pass
// through untouched; rejection happens at the handlers that require a
// user.
func NewMiddleware(service *Service) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token := bearerToken(ctx.Header("Authorization"))
		if token == "" {
			next(ctx)

			return
		}

		user, err := service.UserFromToken(ctx.Context(), token)
		if err != nil {
			next(ctx)

			return
		}

		next(huma.WithContext(ctx, ContextWithUser(ctx.Context(), user)))
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "

	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(header[len(prefix):])
}
