package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/artem13815/habits/pkg/auth"
)

const userColumns = `id, email, username, password_hash, reset_code_hash, reset_code_expires_at, reset_attempts, created_at`

// UserRepository implements auth.UserRepository backed by PostgreSQL (pgx).
type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user auth.User) (auth.User, error) {
	var created time.Time
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, strings.ToLower(user.Email), user.Username, user.PasswordHash).Scan(&user.ID, &created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return auth.User{}, &auth.ConflictError{Field: conflictField(pgErr.ConstraintName)}
		}
		return auth.User{}, err
	}
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = created.UTC()
	return user, nil
}

func conflictField(constraint string) string {
	if strings.Contains(constraint, "username") {
		return "username"
	}
	return "email"
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (auth.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (auth.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (auth.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (auth.User, error) {
	var (
		user      auth.User
		codeHash  pgtype.Text
		expiresAt pgtype.Timestamptz
		attempts  int32
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &codeHash, &expiresAt, &attempts, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.User{}, auth.ErrNotFound
		}
		return auth.User{}, err
	}
	if codeHash.Valid {
		user.ResetCodeHash = codeHash.String
	}
	if expiresAt.Valid {
		user.ResetCodeExpiresAt = expiresAt.Time.UTC()
	}
	user.ResetAttempts = int(attempts)
	user.CreatedAt = createdAt.UTC()
	return user, nil
}

func (r *UserRepository) SetResetCode(ctx context.Context, userID int64, codeHash string, expiresAt time.Time) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE users
		SET reset_code_hash = $2, reset_code_expires_at = $3, reset_attempts = 0, updated_at = now()
		WHERE id = $1
	`, userID, codeHash, expiresAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ConsumeResetCode(ctx context.Context, userID int64, codeHash, passwordHash string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE users
		SET password_hash = $3, reset_code_hash = NULL, reset_code_expires_at = NULL, reset_attempts = 0, updated_at = now()
		WHERE id = $1 AND reset_code_hash = $2
	`, userID, codeHash, passwordHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return auth.ErrNotFound
	}
	return nil
}

// RecordResetFailure counts a wrong guess against the pending code and drops
// the code once maxAttempts is reached. SET reads the pre-update row, so
// reset_attempts + 1 is the new count in every expression.
func (r *UserRepository) RecordResetFailure(ctx context.Context, userID int64, codeHash string, maxAttempts int) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE users
		SET reset_attempts = reset_attempts + 1,
			reset_code_hash = CASE WHEN reset_attempts + 1 >= $3 THEN NULL ELSE reset_code_hash END,
			reset_code_expires_at = CASE WHEN reset_attempts + 1 >= $3 THEN NULL ELSE reset_code_expires_at END,
			updated_at = now()
		WHERE id = $1 AND reset_code_hash = $2
	`, userID, codeHash, maxAttempts)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return auth.ErrNotFound
	}
	return nil
}
