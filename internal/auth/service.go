// Package auth implements registration, credential verification, JWT
// issuance, and the verification/reset token flows. Everything the
// redirect resource needs from it is the "active, authenticated user"
// gate exposed through the middleware.
package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlazarev/redirector/internal/dao"
	"github.com/mlazarev/redirector/internal/entity"
	"github.com/mlazarev/redirector/internal/events"
	"github.com/mlazarev/redirector/internal/messaging"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotVerified    = errors.New("user email not verified")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAlreadyVerified    = errors.New("user already verified")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Token kinds stored in the token store.
const (
	TokenKindVerify = "verify"
	TokenKindReset  = "reset"
)

const tokenAudience = "redirector:auth"

// UserStore is the persistence contract the auth flows consume.
type UserStore interface {
	CreateUser(ctx context.Context, email, hashedPassword string) (*entity.User, error)
	UserByEmail(ctx context.Context, email string) (*entity.User, error)
	UserByID(ctx context.Context, id int64) (*entity.User, error)
	SetVerified(ctx context.Context, u *entity.User) (*entity.User, error)
	SetPassword(ctx context.Context, u *entity.User, hashedPassword string) (*entity.User, error)
}

// TokenStore keeps single-use opaque tokens with a TTL.
type TokenStore interface {
	Save(ctx context.Context, kind, token string, userID int64, ttl time.Duration) error
	Consume(ctx context.Context, kind, token string) (int64, error)
}

// Service wires the auth flows together.
type Service struct {
	users     UserStore
	tokens    TokenStore
	logger    *zap.Logger
	secret    []byte
	accessTTL time.Duration
	tokenTTL  time.Duration
	newToken  func() string

	publishRegistered messaging.Publish[events.UserRegistered]
	publishVerify     messaging.Publish[events.VerifyRequested]
	publishReset      messaging.Publish[events.ResetRequested]
}

// NewService creates the auth service. newToken generates the opaque
// verification/reset tokens.
func NewService(
	users UserStore,
	tokens TokenStore,
	secret []byte,
	accessTTL, tokenTTL time.Duration,
	newToken func() string,
	publishRegistered messaging.Publish[events.UserRegistered],
	publishVerify messaging.Publish[events.VerifyRequested],
	publishReset messaging.Publish[events.ResetRequested],
	logger *zap.Logger,
) *Service {
	return &Service{
		users:             users,
		tokens:            tokens,
		logger:            logger,
		secret:            secret,
		accessTTL:         accessTTL,
		tokenTTL:          tokenTTL,
		newToken:          newToken,
		publishRegistered: publishRegistered,
		publishVerify:     publishVerify,
		publishReset:      publishReset,
	}
}

// Register creates a new account with a bcrypt-hashed credential. A
// taken email returns ErrUserExists.
func (s *Service) Register(ctx context.Context, email, password string) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, email, string(hash))
	if err != nil {
		if errors.Is(err, dao.ErrConflict) {
			return nil, ErrUserExists
		}

		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("id", user.ID))

	event := &events.UserRegistered{
		UserID:       user.ID,
		Email:        user.Email,
		RegisteredAt: user.CreatedAt,
	}
	if err := s.publishRegistered(event); err != nil {
		s.logger.Error("failed to publish registration event",
			zap.Int64("id", user.ID),
			zap.Error(err),
		)
	}

	return user, nil
}

// Login verifies credentials and returns a signed access token.
// Unknown, inactive, and wrong-password cases are indistinguishable
// to the caller; unverified accounts are reported separately.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return "", ErrInvalidCredentials
		}

		return "", err
	}

	if !user.IsActive {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	if !user.IsVerified {
		return "", ErrUserNotVerified
	}

	return s.issueAccessToken(user)
}

// UserFromToken resolves a bearer token to an active user, or returns
// ErrUnauthorized.
func (s *Service) UserFromToken(ctx context.Context, raw string) (*entity.User, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil {
		return nil, ErrUnauthorized
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if !user.IsActive {
		return nil, ErrUnauthorized
	}

	return user, nil
}

// RequestVerification issues a verification token for an unverified
// account and publishes a delivery event. Unknown and already
// verified emails are silently accepted so the endpoint cannot be
// used to enumerate accounts.
func (s *Service) RequestVerification(ctx context.Context, email string) error {
	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil
		}

		return err
	}

	if !user.IsActive || user.IsVerified {
		return nil
	}

	token := s.newToken()
	if err := s.tokens.Save(ctx, TokenKindVerify, token, user.ID, s.tokenTTL); err != nil {
		return err
	}

	event := &events.VerifyRequested{
		UserID:      user.ID,
		Email:       user.Email,
		Token:       token,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.publishVerify(event); err != nil {
		s.logger.Error("failed to publish verification event",
			zap.Int64("id", user.ID),
			zap.Error(err),
		)
	}

	return nil
}

// Verify redeems a verification token and marks the account verified.
func (s *Service) Verify(ctx context.Context, token string) (*entity.User, error) {
	userID, err := s.tokens.Consume(ctx, TokenKindVerify, token)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, ErrInvalidToken
		}

		return nil, err
	}

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}

	verified, err := s.users.SetVerified(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user verified", zap.Int64("id", verified.ID))

	return verified, nil
}

// RequestPasswordReset issues a reset token and publishes a delivery
// event. Unknown and inactive emails are silently accepted.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil
		}

		return err
	}

	if !user.IsActive {
		return nil
	}

	token := s.newToken()
	if err := s.tokens.Save(ctx, TokenKindReset, token, user.ID, s.tokenTTL); err != nil {
		return err
	}

	event := &events.ResetRequested{
		UserID:      user.ID,
		Email:       user.Email,
		Token:       token,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.publishReset(event); err != nil {
		s.logger.Error("failed to publish reset event",
			zap.Int64("id", user.ID),
			zap.Error(err),
		)
	}

	return nil
}

// ResetPassword redeems a reset token and replaces the credential.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	userID, err := s.tokens.Consume(ctx, TokenKindReset, token)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return ErrInvalidToken
		}

		return err
	}

	user, err := s.users.UserByID(ctx, userID)
	if err != nil || !user.IsActive {
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if _, err := s.users.SetPassword(ctx, user, string(hash)); err != nil {
		return err
	}

	s.logger.Info("password reset", zap.Int64("id", user.ID))

	return nil
}

func (s *Service) issueAccessToken(user *entity.User) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		Audience:  jwt.ClaimStrings{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
