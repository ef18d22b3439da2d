package auth

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mlazarev/redirector/internal/entity"
)

// UserView is the wire representation of an account. The credential
// hash never leaves the server.
type UserView struct {
	ID          int64  `doc:"Account identifier" json:"id"`
	Email       string `doc:"Account email"      json:"email"`
	IsActive    bool   `json:"is_active"`
	IsVerified  bool   `json:"is_verified"`
	IsSuperuser bool   `json:"is_superuser"`
}

func viewOf(u *entity.User) UserView {
	return UserView{
		ID:          u.ID,
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		IsSuperuser: u.IsSuperuser,
	}
}

// RegisterRequest is the request body for creating an account.
type RegisterRequest struct {
	Body struct {
		Email    string `doc:"Account email" format:"email" json:"email" maxLength:"320"`
		Password string `doc:"Account password" json:"password" maxLength:"128" minLength:"8"`
	}
}

// RegisterResponse is the created account.
type RegisterResponse struct {
	Body UserView
}

// LoginRequest is the request body for credential login.
type LoginRequest struct {
	Body struct {
		Email    string `format:"email" json:"email"`
		Password string `json:"password"`
	}
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
}

// EmailRequest is shared by the verification and reset request
// endpoints.
type EmailRequest struct {
	Body struct {
		Email string `format:"email" json:"email"`
	}
}

// AcceptedResponse is the empty body of an accepted request.
type AcceptedResponse struct{}

// VerifyRequest redeems a verification token.
type VerifyRequest struct {
	Body struct {
		Token string `json:"token" minLength:"1"`
	}
}

// VerifyResponse is the verified account.
type VerifyResponse struct {
	Body UserView
}

// ResetPasswordRequest redeems a reset token with a new credential.
type ResetPasswordRequest struct {
	Body struct {
		Token    string `json:"token" minLength:"1"`
		Password string `json:"password" maxLength:"128" minLength:"8"`
	}
}

// MeResponse is the current authenticated account.
type MeResponse struct {
	Body UserView
}

// Handler exposes the auth flows over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the auth handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register creates a new account.
func (h *Handler) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	user, err := h.service.Register(ctx, req.Body.Email, req.Body.Password)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, huma.Error400BadRequest("register_user_already_exists")
		}

		return nil, huma.Error500InternalServerError("failed to register user", err)
	}

	return &RegisterResponse{Body: viewOf(user)}, nil
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	token, err := h.service.Login(ctx, req.Body.Email, req.Body.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			return nil, huma.Error400BadRequest("login_bad_credentials")
		case errors.Is(err, ErrUserNotVerified):
			return nil, huma.Error400BadRequest("login_user_not_verified")
		}

		return nil, huma.Error500InternalServerError("failed to log in", err)
	}

	resp := &LoginResponse{}
	resp.Body.AccessToken = token
	resp.Body.TokenType = "bearer"

	return resp, nil
}

// RequestVerifyToken requests delivery of a verification token. The
// response never reveals whether the email is registered.
func (h *Handler) RequestVerifyToken(ctx context.Context, req *EmailRequest) (*AcceptedResponse, error) {
	if err := h.service.RequestVerification(ctx, req.Body.Email); err != nil {
		return nil, huma.Error500InternalServerError("failed to request verification", err)
	}

	return &AcceptedResponse{}, nil
}

// Verify redeems a verification token.
func (h *Handler) Verify(ctx context.Context, req *VerifyRequest) (*VerifyResponse, error) {
	user, err := h.service.Verify(ctx, req.Body.Token)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken):
			return nil, huma.Error400BadRequest("verify_user_bad_token")
		case errors.Is(err, ErrAlreadyVerified):
			return nil, huma.Error400BadRequest("verify_user_already_verified")
		}

		return nil, huma.Error500InternalServerError("failed to verify user", err)
	}

	return &VerifyResponse{Body: viewOf(user)}, nil
}

// ForgotPassword requests delivery of a password-reset token. The
// response never reveals whether the email is registered.
func (h *Handler) ForgotPassword(ctx context.Context, req *EmailRequest) (*AcceptedResponse, error) {
	if err := h.service.RequestPasswordReset(ctx, req.Body.Email); err != nil {
		return nil, huma.Error500InternalServerError("failed to request password reset", err)
	}

	return &AcceptedResponse{}, nil
}

// ResetPassword redeems a reset token with a new credential.
func (h *Handler) ResetPassword(ctx context.Context, req *ResetPasswordRequest) (*AcceptedResponse, error) {
	if err := h.service.ResetPassword(ctx, req.Body.Token, req.Body.Password); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, huma.Error400BadRequest("reset_password_bad_token")
		}

		return nil, huma.Error500InternalServerError("failed to reset password", err)
	}

	return &AcceptedResponse{}, nil
}

// Me returns the authenticated active user.
func (h *Handler) Me(ctx context.Context, _ *struct{}) (*MeResponse, error) {
	user, err := ActiveUserFromContext(ctx)
	if err != nil {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	return &MeResponse{Body: viewOf(user)}, nil
}
