package dao

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no rows.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when an insert or update violates an
	// integrity constraint, typically a unique index. Callers map it
	// to their domain "already exists" condition.
	ErrConflict = errors.New("entity conflicts with an existing one")
)
