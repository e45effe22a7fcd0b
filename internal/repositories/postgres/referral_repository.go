package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"quotecompare/internal/models"
	"quotecompare/internal/repositories/interfaces"
	"quotecompare/pkg/database"
)

const referralColumns = `id, referrer_id, referred_email, referral_code, status, bonus_amount, created_at, completed_at`

type referralRepository struct {
	db database.DBTX
}

func NewReferralRepository(db database.DBTX) interfaces.ReferralRepository {
	return &referralRepository{db: db}
}

func (r *referralRepository) Create(ctx context.Context, referral *models.Referral) (bool, error) {
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO referrals (referrer_id, referred_email, referral_code, status, bonus_amount)
		 VALUES ($1, $2, $3, 'pending', 0)
		 ON CONFLICT (referral_code, referred_email) DO NOTHING
		 RETURNING `+referralColumns,
		referral.ReferrerID,
		referral.ReferredEmail,
		referral.ReferralCode,
	)

	err := scanReferral(row, referral)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, translate(err, "failed to create referral")
	}

	// The pair already exists; hand back the stored row.
	row = r.db.QueryRow(
		ctx,
		`SELECT `+referralColumns+`
		 FROM referrals
		 WHERE referral_code = $1 AND referred_email = $2`,
		referral.ReferralCode,
		referral.ReferredEmail,
	)
	if err := scanReferral(row, referral); err != nil {
		return false, translate(err, "failed to load existing referral")
	}
	return false, nil
}

func (r *referralRepository) Complete(ctx context.Context, code, referredEmail string, bonus decimal.Decimal, completedAt time.Time) (*models.Referral, error) {
	row := r.db.QueryRow(
		ctx,
		`UPDATE referrals
		 SET status = 'completed', bonus_amount = $3, completed_at = $4
		 WHERE referral_code = $1 AND referred_email = $2 AND status = 'pending'
		 RETURNING `+referralColumns,
		code,
		referredEmail,
		bonus,
		completedAt,
	)

	var referral models.Referral
	if err := scanReferral(row, &referral); err != nil {
		return nil, translate(err, "failed to complete referral")
	}
	return &referral, nil
}

func (r *referralRepository) ListByReferrer(ctx context.Context, referrerID int64) ([]*models.Referral, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT `+referralColumns+`
		 FROM referrals
		 WHERE referrer_id = $1
		 ORDER BY created_at DESC, id DESC`,
		referrerID,
	)
	if err != nil {
		return nil, translate(err, "failed to list referrals")
	}
	defer rows.Close()

	referrals := []*models.Referral{}
	for rows.Next() {
		var referral models.Referral
		if err := scanReferral(rows, &referral); err != nil {
			return nil, translate(err, "failed to scan referral")
		}
		referrals = append(referrals, &referral)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "failed to iterate referrals")
	}

	return referrals, nil
}

func (r *referralRepository) TotalBonusByReferrer(ctx context.Context, referrerID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(
		ctx,
		`SELECT COALESCE(SUM(bonus_amount), 0)
		 FROM referrals
		 WHERE referrer_id = $1 AND status = 'completed'`,
		referrerID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, translate(err, "failed to sum referral bonus")
	}
	return total, nil
}

func scanReferral(row pgx.Row, referral *models.Referral) error {
	var status string
	err := row.Scan(
		&referral.ID,
		&referral.ReferrerID,
		&referral.ReferredEmail,
		&referral.ReferralCode,
		&status,
		&referral.BonusAmount,
		&referral.CreatedAt,
		&referral.CompletedAt,
	)
	if err != nil {
		return err
	}
	referral.Status = models.ReferralStatus(status)
	return nil
}
