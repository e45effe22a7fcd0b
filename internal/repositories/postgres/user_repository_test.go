package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotecompare/internal/models"
	"quotecompare/internal/repositories/interfaces"
)

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice@example.com", "ABCD1234").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), createdAt))

	user := &models.User{Email: "alice@example.com", ReferralCode: "ABCD1234"}
	require.NoError(t, repo.Create(context.Background(), user))

	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, createdAt, user.CreatedAt)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice@example.com", "ABCD1234").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &models.User{Email: "alice@example.com", ReferralCode: "ABCD1234"})

	assert.ErrorIs(t, err, interfaces.ErrDuplicate)
}

func TestUserRepository_GetByReferralCode(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM users WHERE referral_code = \$1`).
		WithArgs("ABCD1234").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "referral_code", "created_at"}).
			AddRow(int64(1), "alice@example.com", "ABCD1234", createdAt))

	user, err := repo.GetByReferralCode(context.Background(), "ABCD1234")

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestUserRepository_GetByEmailMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	user, err := repo.GetByEmail(context.Background(), "nobody@example.com")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}
