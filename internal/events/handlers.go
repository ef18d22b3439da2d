package events

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mlazarev/redirector/internal/messaging"
)

var errNoRecipient = errors.New("event carries no recipient email")

var errNoToken = errors.New("event carries no token")

// NewUserRegisteredHandler records new registrations. Actual welcome
// mail delivery hangs off this handler when a mail transport is
// configured.
func NewUserRegisteredHandler(logger *zap.Logger) messaging.Handler[UserRegistered] {
	return func(_ context.Context, event *UserRegistered) error {
		if event.Email == "" {
			return messaging.Permanent(errNoRecipient)
		}

		logger.Info("user registered",
			zap.Int64("userId", event.UserID),
			zap.String("email", event.Email),
		)

		return nil
	}
}

// NewVerifyRequestedHandler delivers verification tokens. Events
// missing the recipient or the token are dropped as permanent
// failures; redelivery cannot supply what the producer never sent.
// The token itself is logged at debug level only; it is a credential.
func NewVerifyRequestedHandler(logger *zap.Logger) messaging.Handler[VerifyRequested] {
	return func(_ context.Context, event *VerifyRequested) error {
		if event.Email == "" {
			return messaging.Permanent(errNoRecipient)
		}

		if event.Token == "" {
			return messaging.Permanent(errNoToken)
		}

		logger.Info("delivering verification token",
			zap.Int64("userId", event.UserID),
			zap.String("email", event.Email),
		)
		logger.Debug("verification token issued",
			zap.Int64("userId", event.UserID),
			zap.String("token", event.Token),
		)

		return nil
	}
}

// NewResetRequestedHandler delivers password-reset tokens under the
// same drop policy as verification events.
func NewResetRequestedHandler(logger *zap.Logger) messaging.Handler[ResetRequested] {
	return func(_ context.Context, event *ResetRequested) error {
		if event.Email == "" {
			return messaging.Permanent(errNoRecipient)
		}

		if event.Token == "" {
			return messaging.Permanent(errNoToken)
		}

		logger.Info("delivering password reset token",
			zap.Int64("userId", event.UserID),
			zap.String("email", event.Email),
		)
		logger.Debug("reset token issued",
			zap.Int64("userId", event.UserID),
			zap.String("token", event.Token),
		)

		return nil
	}
}
