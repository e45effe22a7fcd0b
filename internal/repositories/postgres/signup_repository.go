package postgres

import (
	"context"

	"quotecompare/internal/models"
	"quotecompare/internal/repositories/interfaces"
	"quotecompare/pkg/database"
)

type signupRepository struct {
	db database.DBTX
}

func NewSignupRepository(db database.DBTX) interfaces.SignupRepository {
	return &signupRepository{db: db}
}

func (r *signupRepository) Create(ctx context.Context, signup *models.Signup) error {
	if signup.Status == "" {
		signup.Status = models.SignupStatusCompleted
	}

	err := r.db.QueryRow(
		ctx,
		`INSERT INTO signups (user_email, company_name, referral_code, quote_id, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		signup.UserEmail,
		signup.CompanyName,
		signup.ReferralCode,
		signup.QuoteID,
		string(signup.Status),
	).Scan(&signup.ID, &signup.CreatedAt)

	return translate(err, "failed to create signup")
}

func (r *signupRepository) ListByEmail(ctx context.Context, email string) ([]*models.Signup, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_email, company_name, referral_code, quote_id, status, created_at
		 FROM signups
		 WHERE user_email = $1
		 ORDER BY created_at DESC, id DESC`,
		email,
	)
	if err != nil {
		return nil, translate(err, "failed to list signups")
	}
	defer rows.Close()

	signups := []*models.Signup{}
	for rows.Next() {
		var (
			signup models.Signup
			status string
		)
		if err := rows.Scan(
			&signup.ID,
			&signup.UserEmail,
			&signup.CompanyName,
			&signup.ReferralCode,
			&signup.QuoteID,
			&status,
			&signup.CreatedAt,
		); err != nil {
			return nil, translate(err, "failed to scan signup")
		}
		signup.Status = models.SignupStatus(status)
		signups = append(signups, &signup)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "failed to iterate signups")
	}

	return signups, nil
}
