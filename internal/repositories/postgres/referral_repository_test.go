package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotecompare/internal/models"
	"quotecompare/internal/repositories/interfaces"
)

var referralCols = []string{
	"id", "referrer_id", "referred_email", "referral_code",
	"status", "bonus_amount", "created_at", "completed_at",
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestReferralRepository_CreateInsertsPending(t *testing.T) {
	mock := newMock(t)
	repo := NewReferralRepository(mock)
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO referrals`).
		WithArgs(int64(7), "friend@example.com", "ABCD1234").
		WillReturnRows(pgxmock.NewRows(referralCols).
			AddRow(int64(11), int64(7), "friend@example.com", "ABCD1234", "pending", "0", createdAt, nil))

	referral := &models.Referral{ReferrerID: 7, ReferredEmail: "friend@example.com", ReferralCode: "ABCD1234"}
	created, err := repo.Create(context.Background(), referral)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(11), referral.ID)
	assert.Equal(t, models.ReferralStatusPending, referral.Status)
	assert.True(t, referral.BonusAmount.IsZero())
	assert.Nil(t, referral.CompletedAt)
}

func TestReferralRepository_CreateReturnsExistingOnConflict(t *testing.T) {
	mock := newMock(t)
	repo := NewReferralRepository(mock)
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO referrals`).
		WithArgs(int64(7), "friend@example.com", "ABCD1234").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`(?s)SELECT .+ FROM referrals\s+WHERE referral_code = \$1 AND referred_email = \$2`).
		WithArgs("ABCD1234", "friend@example.com").
		WillReturnRows(pgxmock.NewRows(referralCols).
			AddRow(int64(3), int64(7), "friend@example.com", "ABCD1234", "pending", "0", createdAt, nil))

	referral := &models.Referral{ReferrerID: 7, ReferredEmail: "friend@example.com", ReferralCode: "ABCD1234"}
	created, err := repo.Create(context.Background(), referral)

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(3), referral.ID)
}

func TestReferralRepository_CompleteFlipsPendingRow(t *testing.T) {
	mock := newMock(t)
	repo := NewReferralRepository(mock)
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	completedAt := createdAt.Add(time.Hour)

	mock.ExpectQuery(`(?s)UPDATE referrals\s+SET status = 'completed'.+AND status = 'pending'`).
		WithArgs("ABCD1234", "friend@example.com", pgxmock.AnyArg(), completedAt).
		WillReturnRows(pgxmock.NewRows(referralCols).
			AddRow(int64(11), int64(7), "friend@example.com", "ABCD1234", "completed", "25.00", createdAt, &completedAt))

	referral, err := repo.Complete(context.Background(), "ABCD1234", "friend@example.com", decimal.RequireFromString("25.00"), completedAt)

	require.NoError(t, err)
	assert.True(t, referral.IsCompleted())
	assert.True(t, referral.BonusAmount.Equal(decimal.NewFromInt(25)))
	require.NotNil(t, referral.CompletedAt)
	assert.Equal(t, completedAt, *referral.CompletedAt)
}

func TestReferralRepository_CompleteWithoutPendingRowIsNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewReferralRepository(mock)

	mock.ExpectQuery(`UPDATE referrals`).
		WithArgs("ABCD1234", "friend@example.com", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	referral, err := repo.Complete(context.Background(), "ABCD1234", "friend@example.com", decimal.NewFromInt(25), time.Now())

	assert.Nil(t, referral)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestReferralRepository_ListByReferrerNewestFirst(t *testing.T) {
	mock := newMock(t)
	repo := NewReferralRepository(mock)
	older := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(referralCols).
			AddRow(int64(2), int64(7), "b@example.com", "ABCD1234", "completed", "25.00", newer, &newer).
			AddRow(int64(1), int64(7), "a@example.com", "ABCD1234", "pending", "0", older, nil))

	referrals, err := repo.ListByReferrer(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, referrals, 2)
	assert.Equal(t, int64(2), referrals[0].ID)
	assert.Equal(t, int64(1), referrals[1].ID)
}

func TestReferralRepository_ListByReferrerEmptyIsNotNil(t *testing.T) {
	mock := newMock(t)
	repo := NewReferralRepository(mock)

	mock.ExpectQuery(`FROM referrals`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(referralCols))

	referrals, err := repo.ListByReferrer(context.Background(), 7)

	require.NoError(t, err)
	assert.NotNil(t, referrals)
	assert.Empty(t, referrals)
}

func TestReferralRepository_TotalBonusByReferrer(t *testing.T) {
	mock := newMock(t)
	repo := NewReferralRepository(mock)

	mock.ExpectQuery(`COALESCE\(SUM\(bonus_amount\), 0\)`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow("50.00"))

	total, err := repo.TotalBonusByReferrer(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "50", total.String())
}

func TestReferralRepository_WrapsDriverErrors(t *testing.T) {
	mock := newMock(t)
	repo := NewReferralRepository(mock)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`COALESCE`).
		WithArgs(int64(7)).
		WillReturnError(boom)

	_, err := repo.TotalBonusByReferrer(context.Background(), 7)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to sum referral bonus")
}

func TestTranslate_UniqueViolationIsDuplicate(t *testing.T) {
	err := translate(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, "failed to create user")

	assert.ErrorIs(t, err, interfaces.ErrDuplicate)
	assert.Contains(t, err.Error(), "users_email_key")
}
