package auth

import "context"

// TokenIssuer abstracts token creation and verification (e.g., JWT).
// It allows use cases to stay framework-agnostic.
type TokenIssuer interface {
	Generate(ctx context.Context, user User) (string, error)
	// Parse returns ErrTokenExpired or ErrTokenInvalid on failure.
	Parse(ctx context.Context, token string) (Identity, error)
}
