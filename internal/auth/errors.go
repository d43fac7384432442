package auth

import "errors"

var (
	ErrDuplicateIdentity  = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInactiveAccount hanya untuk log internal; caller tetap melihat
	// ErrInvalidCredentials.
	ErrInactiveAccount = errors.New("account is inactive")

	ErrTokenInvalid      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenKindMismatch = errors.New("unexpected token kind")
	ErrTokenRevoked      = errors.New("token has been revoked")
	ErrIdentityNotFound  = errors.New("identity no longer exists")
	ErrIdentityInactive  = errors.New("identity is inactive")
)
