package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// Mailer delivers messages to a user's mailbox.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ResetThrottle decides whether another reset code may be issued for key.
type ResetThrottle interface {
	Allow(ctx context.Context, key string) bool
	// Release gives back a slot taken by Allow when no code went out.
	Release(ctx context.Context, key string)
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) bool { return true }
func (allowAll) Release(context.Context, string)    {}

// ResetCodeLength is the number of decimal digits in a reset code.
const ResetCodeLength = 6

const resetSubject = "Password reset code"

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%0*d", ResetCodeLength, n.Int64()), nil
}
