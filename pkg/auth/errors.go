package auth

import (
	"errors"
	"fmt"
)

// Common errors used by repository/use cases
var (
	ErrNotFound           = errors.New("not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetCode   = errors.New("invalid reset code")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
)

// ValidationError is returned for malformed or missing input.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// ConflictError reports which unique field a registration collided on.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("User with this %s already exists", e.Field)
}

func (e *ConflictError) Unwrap() error { return ErrUserAlreadyExists }
