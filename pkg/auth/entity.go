package auth

import (
	"time"
)

// User is a domain entity representing a registered account.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	// ResetCodeHash is empty when no reset is pending.
	ResetCodeHash      string
	ResetCodeExpiresAt time.Time
	// ResetAttempts counts wrong guesses against the pending code.
	ResetAttempts int
	CreatedAt     time.Time
}

// Identity is what a verified token asserts about its bearer.
type Identity struct {
	UserID int64
	Email  string
}

// RegisterInput carries registration fields as received from the client.
type RegisterInput struct {
	Email    string
	Password string
	Username string
}
