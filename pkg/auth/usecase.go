package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted on registration and reset.
const MinPasswordLength = 6

// MaxResetAttempts is how many wrong codes a pending reset survives.
const MaxResetAttempts = 5

// AuthUseCase describes authentication/registration behavior.
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	// Login treats login as an email when it contains "@", otherwise as a username.
	Login(ctx context.Context, login, password string) (AuthResult, error)
	Verify(ctx context.Context, token string) (Identity, error)
	Me(ctx context.Context, userID int64) (User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error
}

type AuthResult struct {
	User  User
	Token string
}

type authService struct {
	repo     UserRepository
	tokens   TokenIssuer
	mailer   Mailer
	throttle ResetThrottle
	codeTTL  time.Duration

	cost    int
	now     func() time.Time
	newCode func() (string, error)
	compare func(hash, secret []byte) error
}

// NewAuthService returns default implementation of AuthUseCase.
// A nil throttle allows every reset request.
func NewAuthService(repo UserRepository, tokens TokenIssuer, mailer Mailer, throttle ResetThrottle, codeTTL time.Duration) AuthUseCase {
	if throttle == nil {
		throttle = allowAll{}
	}
	return &authService{
		repo:     repo,
		tokens:   tokens,
		mailer:   mailer,
		throttle: throttle,
		codeTTL:  codeTTL,
		cost:     bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
		newCode:  generateResetCode,
		compare:  bcrypt.CompareHashAndPassword,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || in.Password == "" || username == "" {
		return AuthResult{}, ValidationError("Email, password, and username are required")
	}
	if len(in.Password) < MinPasswordLength {
		return AuthResult{}, ValidationError(fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}

	// Friendly pre-checks; the unique constraints below are what actually guarantee it.
	if err := s.ensureFree(ctx, "email", email, s.repo.GetByEmail); err != nil {
		return AuthResult{}, err
	}
	if err := s.ensureFree(ctx, "username", username, s.repo.GetByUsername); err != nil {
		return AuthResult{}, err
	}

	passwordHash, err := s.hash(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.repo.Create(ctx, User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return AuthResult{}, err
	}
	return s.issue(ctx, user)
}

func (s *authService) ensureFree(ctx context.Context, field, value string, lookup func(context.Context, string) (User, error)) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return &ConflictError{Field: field}
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return fmt.Errorf("lookup %s: %w", field, err)
	}
}

func (s *authService) Login(ctx context.Context, login, password string) (AuthResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return AuthResult{}, ValidationError("Email and password are required")
	}

	var (
		user User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.repo.GetByEmail(ctx, normalizeEmail(login))
	} else {
		user, err = s.repo.GetByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// same bcrypt work as a real account
			_ = s.compare(absentUserHash(), []byte(password))
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if s.compare([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

func (s *authService) Verify(ctx context.Context, token string) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, ValidationError("Token is required")
	}
	return s.tokens.Parse(ctx, token)
}

func (s *authService) Me(ctx context.Context, userID int64) (User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ValidationError("Email is required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if !s.throttle.Allow(ctx, email) {
		return nil
	}
	if err := s.sendResetCode(ctx, user); err != nil {
		// a failed delivery must not hold the slot for the whole window
		s.throttle.Release(context.WithoutCancel(ctx), email)
		return err
	}
	return nil
}

func (s *authService) sendResetCode(ctx context.Context, user User) error {
	code, err := s.newCode()
	if err != nil {
		return err
	}
	codeHash, err := s.hash(code)
	if err != nil {
		return err
	}
	if err := s.repo.SetResetCode(ctx, user.ID, codeHash, s.now().Add(s.codeTTL)); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	body := fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, int(s.codeTTL.Minutes()))
	if err := s.mailer.Send(ctx, user.Email, resetSubject, body); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}
	return nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" || newPassword == "" {
		return ValidationError("Email, reset code, and new password are required")
	}
	if len(newPassword) < MinPasswordLength {
		return ValidationError(fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = s.compare(absentUserHash(), []byte(code))
			return ErrInvalidResetCode
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if user.ResetCodeHash == "" || user.ResetAttempts >= MaxResetAttempts || !s.now().Before(user.ResetCodeExpiresAt) {
		return ErrInvalidResetCode
	}
	if s.compare([]byte(user.ResetCodeHash), []byte(code)) != nil {
		err := s.repo.RecordResetFailure(ctx, user.ID, user.ResetCodeHash, MaxResetAttempts)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("record reset attempt: %w", err)
		}
		return ErrInvalidResetCode
	}

	passwordHash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.ConsumeResetCode(ctx, user.ID, user.ResetCodeHash, passwordHash); err != nil {
		if errors.Is(err, ErrNotFound) {
			// another request used the code first
			return ErrInvalidResetCode
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *authService) issue(ctx context.Context, user User) (AuthResult, error) {
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) hash(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ValidationError("Password is too long")
		}
		return "", err
	}
	return string(h), nil
}

var (
	absentOnce sync.Once
	absentHash []byte
)

// absentUserHash is compared against when no account matches, so a miss
// costs the same bcrypt round as a wrong password.
func absentUserHash() []byte {
	absentOnce.Do(func() {
		absentHash, _ = bcrypt.GenerateFromPassword([]byte("absent-user"), bcrypt.DefaultCost)
	})
	return absentHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
