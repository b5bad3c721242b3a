package auth

import (
	"context"
	"time"
)

// UserRepository abstracts persistence concerns from the domain layer.
// Create must rely on storage-level uniqueness and return *ConflictError
// when email or username is already taken.
type UserRepository interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	SetResetCode(ctx context.Context, userID int64, codeHash string, expiresAt time.Time) error
	// ConsumeResetCode swaps the password hash only while codeHash is still
	// the pending code. Returns ErrNotFound otherwise.
	ConsumeResetCode(ctx context.Context, userID int64, codeHash, passwordHash string) error
	// RecordResetFailure increments the attempt counter of the pending code
	// and clears the code when the counter reaches maxAttempts. Returns
	// ErrNotFound when codeHash is no longer pending.
	RecordResetFailure(ctx context.Context, userID int64, codeHash string, maxAttempts int) error
}
