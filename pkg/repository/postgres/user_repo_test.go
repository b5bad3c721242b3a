package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/habits/pkg/auth"
)

func newUserRepoWithMock(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

var userCols = []string{"id", "email", "username", "password_hash", "reset_code_hash", "reset_code_expires_at", "reset_attempts", "created_at"}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users \(email, username, password_hash\)`).
		WithArgs("user@example.com", "user", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now))

	u, err := repo.Create(context.Background(), auth.User{Email: "User@Example.com", Username: "user", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), u.ID)
	assert.Equal(t, "user@example.com", u.Email)
	assert.Equal(t, now.UTC(), u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	cases := map[string]string{
		"users_email_key":    "email",
		"users_username_key": "username",
	}
	for constraint, field := range cases {
		repo, mock := newUserRepoWithMock(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("a@b.c", "u", "h").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: constraint})

		_, err := repo.Create(context.Background(), auth.User{Email: "a@b.c", Username: "u", PasswordHash: "h"})
		var ce *auth.ConflictError
		require.ErrorAs(t, err, &ce, constraint)
		assert.Equal(t, field, ce.Field)
		assert.ErrorIs(t, err, auth.ErrUserAlreadyExists)
	}
}

func TestUserRepository_Create_OtherError(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	mock.ExpectQuery(`INSERT INTO users`).WithArgs("a@b.c", "u", "h").WillReturnError(errors.New("conn reset"))

	_, err := repo.Create(context.Background(), auth.User{Email: "a@b.c", Username: "u", PasswordHash: "h"})
	assert.EqualError(t, err, "conn reset")
}

func TestUserRepository_GetByEmail(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	now := time.Now()
	exp := now.Add(15 * time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(int64(1), "user@example.com", "user", "hash", "codehash", exp, int32(2), now))

	u, err := repo.GetByEmail(context.Background(), "USER@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "user", u.Username)
	assert.Equal(t, "codehash", u.ResetCodeHash)
	assert.Equal(t, exp.UTC(), u.ResetCodeExpiresAt)
	assert.Equal(t, 2, u.ResetAttempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUsername_NullResetCode(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \$1`).
		WithArgs("user").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(int64(1), "user@example.com", "user", "hash", nil, nil, int32(0), time.Now()))

	u, err := repo.GetByUsername(context.Background(), "user")
	require.NoError(t, err)
	assert.Empty(t, u.ResetCodeHash)
	assert.True(t, u.ResetCodeExpiresAt.IsZero())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows(userCols))

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestUserRepository_SetResetCode(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	exp := time.Now().Add(time.Minute)
	mock.ExpectExec(`UPDATE users\s+SET reset_code_hash = \$2, reset_code_expires_at = \$3, reset_attempts = 0`).
		WithArgs(int64(1), "codehash", exp).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users\s+SET reset_code_hash = \$2`).
		WithArgs(int64(2), "codehash", exp).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.SetResetCode(context.Background(), 1, "codehash", exp))
	assert.ErrorIs(t, repo.SetResetCode(context.Background(), 2, "codehash", exp), auth.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ConsumeResetCode(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	mock.ExpectExec(`UPDATE users\s+SET password_hash = \$3, reset_code_hash = NULL, reset_code_expires_at = NULL, reset_attempts = 0`).
		WithArgs(int64(1), "codehash", "newhash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`WHERE id = \$1 AND reset_code_hash = \$2`).
		WithArgs(int64(1), "codehash", "newhash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.ConsumeResetCode(context.Background(), 1, "codehash", "newhash"))
	assert.ErrorIs(t, repo.ConsumeResetCode(context.Background(), 1, "codehash", "newhash"), auth.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_RecordResetFailure(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	mock.ExpectExec(`SET reset_attempts = reset_attempts \+ 1,\s+reset_code_hash = CASE WHEN reset_attempts \+ 1 >= \$3 THEN NULL`).
		WithArgs(int64(1), "codehash", 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`WHERE id = \$1 AND reset_code_hash = \$2`).
		WithArgs(int64(1), "stale", 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`SET reset_attempts`).
		WithArgs(int64(1), "codehash", 5).
		WillReturnError(errors.New("conn reset"))

	ctx := context.Background()
	require.NoError(t, repo.RecordResetFailure(ctx, 1, "codehash", 5))
	assert.ErrorIs(t, repo.RecordResetFailure(ctx, 1, "stale", 5), auth.ErrNotFound)
	assert.EqualError(t, repo.RecordResetFailure(ctx, 1, "codehash", 5), "conn reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
