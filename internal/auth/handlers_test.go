package auth_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlazarev/redirector/internal/auth"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()

	var se huma.StatusError

	require.ErrorAs(t, err, &se)

	return se.GetStatus()
}

func detailOf(t *testing.T, err error) string {
	t.Helper()

	var se huma.StatusError

	require.ErrorAs(t, err, &se)

	return se.Error()
}

func TestHandlerRegister(t *testing.T) {
	t.Run("returns the created account without the credential", func(t *testing.T) {
		env := newTestEnv(t)
		handler := auth.NewHandler(env.service)

		req := &auth.RegisterRequest{}
		req.Body.Email = testEmail
		req.Body.Password = testPassword

		resp, err := handler.Register(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, testEmail, resp.Body.Email)
		assert.True(t, resp.Body.IsActive)
		assert.False(t, resp.Body.IsVerified)
	})

	t.Run("maps a taken email to 400", func(t *testing.T) {
		env := newTestEnv(t)
		handler := auth.NewHandler(env.service)

		req := &auth.RegisterRequest{}
		req.Body.Email = testEmail
		req.Body.Password = testPassword

		_, err := handler.Register(context.Background(), req)
		require.NoError(t, err)

		resp, err := handler.Register(context.Background(), req)

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		assert.Contains(t, detailOf(t, err), "register_user_already_exists")
	})
}

func TestHandlerLogin(t *testing.T) {
	t.Run("returns a bearer token", func(t *testing.T) {
		env := newTestEnv(t)
		env.registerVerified(t)
		handler := auth.NewHandler(env.service)

		req := &auth.LoginRequest{}
		req.Body.Email = testEmail
		req.Body.Password = testPassword

		resp, err := handler.Login(context.Background(), req)

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Body.AccessToken)
		assert.Equal(t, "bearer", resp.Body.TokenType)
	})

	t.Run("maps bad credentials to 400", func(t *testing.T) {
		env := newTestEnv(t)
		env.registerVerified(t)
		handler := auth.NewHandler(env.service)

		req := &auth.LoginRequest{}
		req.Body.Email = testEmail
		req.Body.Password = "wrong"

		resp, err := handler.Login(context.Background(), req)

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		assert.Contains(t, detailOf(t, err), "login_bad_credentials")
	})

	t.Run("maps an unverified account to 400", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.service.Register(context.Background(), testEmail, testPassword)
		require.NoError(t, err)
		handler := auth.NewHandler(env.service)

		req := &auth.LoginRequest{}
		req.Body.Email = testEmail
		req.Body.Password = testPassword

		resp, err := handler.Login(context.Background(), req)

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		assert.Contains(t, detailOf(t, err), "login_user_not_verified")
	})
}

func TestHandlerVerify(t *testing.T) {
	t.Run("returns the verified account", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.service.Register(context.Background(), testEmail, testPassword)
		require.NoError(t, err)
		require.NoError(t, env.service.RequestVerification(context.Background(), testEmail))
		handler := auth.NewHandler(env.service)

		req := &auth.VerifyRequest{}
		req.Body.Token = env.verify[0].Token

		resp, err := handler.Verify(context.Background(), req)

		require.NoError(t, err)
		assert.True(t, resp.Body.IsVerified)
	})

	t.Run("maps a bad token to 400", func(t *testing.T) {
		env := newTestEnv(t)
		handler := auth.NewHandler(env.service)

		req := &auth.VerifyRequest{}
		req.Body.Token = "bogus"

		resp, err := handler.Verify(context.Background(), req)

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		assert.Contains(t, detailOf(t, err), "verify_user_bad_token")
	})
}

func TestHandlerResetPassword(t *testing.T) {
	t.Run("accepts a valid token", func(t *testing.T) {
		env := newTestEnv(t)
		env.registerVerified(t)
		require.NoError(t, env.service.RequestPasswordReset(context.Background(), testEmail))
		handler := auth.NewHandler(env.service)

		req := &auth.ResetPasswordRequest{}
		req.Body.Token = env.reset[0].Token
		req.Body.Password = "a new password"

		_, err := handler.ResetPassword(context.Background(), req)

		assert.NoError(t, err)
	})

	t.Run("maps a bad token to 400", func(t *testing.T) {
		env := newTestEnv(t)
		handler := auth.NewHandler(env.service)

		req := &auth.ResetPasswordRequest{}
		req.Body.Token = "bogus"
		req.Body.Password = "a new password"

		resp, err := handler.ResetPassword(context.Background(), req)

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		assert.Contains(t, detailOf(t, err), "reset_password_bad_token")
	})
}

func TestHandlerMe(t *testing.T) {
	t.Run("returns the user from the context", func(t *testing.T) {
		env := newTestEnv(t)
		env.registerVerified(t)
		handler := auth.NewHandler(env.service)

		user, err := env.users.UserByEmail(context.Background(), testEmail)
		require.NoError(t, err)

		ctx := auth.ContextWithUser(context.Background(), user)

		resp, err := handler.Me(ctx, nil)

		require.NoError(t, err)
		assert.Equal(t, testEmail, resp.Body.Email)
	})

	t.Run("returns 401 without an authenticated user", func(t *testing.T) {
		env := newTestEnv(t)
		handler := auth.NewHandler(env.service)

		resp, err := handler.Me(context.Background(), nil)

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	})
}

func TestBearerTokenContext(t *testing.T) {
	t.Run("round-trips the user through the context", func(t *testing.T) {
		env := newTestEnv(t)
		env.registerVerified(t)

		user, err := env.users.UserByEmail(context.Background(), testEmail)
		require.NoError(t, err)

		ctx := auth.ContextWithUser(context.Background(), user)

		got, err := auth.ActiveUserFromContext(ctx)

		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("empty context yields the unauthorized error", func(t *testing.T) {
		_, err := auth.ActiveUserFromContext(context.Background())
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})
}
