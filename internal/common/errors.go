// Package common defines shared constants and sentinel errors used across
// the account engine, the store and the CLI. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrStorage     = errors.New("storage failure")
	ErrCorruptData = errors.New("corrupt stored data")
	ErrConflict    = errors.New("concurrent modification")

	// Service-level errors.
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidMembership   = errors.New("invalid membership tier")
	ErrInviteCodeExhausted = errors.New("could not allocate a unique invite code")

	// Session errors (invalid or malformed marker).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
