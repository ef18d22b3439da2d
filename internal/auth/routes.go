package auth

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const apiPrefix = "/api/v1"

// RegisterRoutes registers the auth and user endpoints.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID:   "auth-register",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/auth/register",
		Summary:       "Register a new account",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}, h.Register)

	huma.Register(api, huma.Operation{
		OperationID: "auth-jwt-login",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/auth/jwt/login",
		Summary:     "Log in with credentials",
		Tags:        []string{"Auth"},
	}, h.Login)

	huma.Register(api, huma.Operation{
		OperationID:   "auth-request-verify-token",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/auth/request-verify-token",
		Summary:       "Request an email verification token",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusAccepted,
	}, h.RequestVerifyToken)

	huma.Register(api, huma.Operation{
		OperationID: "auth-verify",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/auth/verify",
		Summary:     "Verify an account email",
		Tags:        []string{"Auth"},
	}, h.Verify)

	huma.Register(api, huma.Operation{
		OperationID:   "auth-forgot-password",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/auth/forgot-password",
		Summary:       "Request a password reset token",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusAccepted,
	}, h.ForgotPassword)

	huma.Register(api, huma.Operation{
		OperationID: "auth-reset-password",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/auth/reset-password",
		Summary:     "Reset the account password",
		Tags:        []string{"Auth"},
	}, h.ResetPassword)

	huma.Register(api, huma.Operation{
		OperationID: "users-me",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/users/me",
		Summary:     "Current account",
		Tags:        []string{"Users"},
	}, h.Me)
}
