// Package events defines the user-lifecycle events published over the
// message broker and consumed by the worker. Delivery of the actual
// notifications (verification and reset mail) lives behind this
// boundary.
package events

import "time"

// Topics for user-lifecycle events.
const (
	TopicUserRegistered  = "user.registered"
	TopicVerifyRequested = "user.verify_requested"
	TopicResetRequested  = "user.reset_requested"
)

// UserRegistered is emitted after a successful registration.
type UserRegistered struct {
	UserID       int64     `json:"userId"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// VerifyRequested is emitted when a verification token has been
// issued and should be delivered to the user.
type VerifyRequested struct {
	UserID      int64     `json:"userId"`
	Email       string    `json:"email"`
	Token       string    `json:"token"`
	RequestedAt time.Time `json:"requestedAt"`
}

// ResetRequested is emitted when a password-reset token has been
// issued and should be delivered to the user.
type ResetRequested struct {
	UserID      int64     `json:"userId"`
	Email       string    `json:"email"`
	Token       string    `json:"token"`
	RequestedAt time.Time `json:"requestedAt"`
}
