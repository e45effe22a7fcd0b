package interfaces

import (
	"context"
	"time"

	"quotecompare/internal/models"

	"github.com/shopspring/decimal"
)

type ReferralRepository interface {
	// Create inserts a pending referral. When one already exists for the same
	// (referral code, referred email) pair the stored row is loaded into
	// referral and created is false.
	Create(ctx context.Context, referral *models.Referral) (created bool, err error)

	// Complete flips the pending referral for code and referredEmail to
	// completed in a single conditional write. ErrNotFound means no pending
	// row matched: it was already completed or never existed.
	Complete(ctx context.Context, code, referredEmail string, bonus decimal.Decimal, completedAt time.Time) (*models.Referral, error)

	ListByReferrer(ctx context.Context, referrerID int64) ([]*models.Referral, error)
	TotalBonusByReferrer(ctx context.Context, referrerID int64) (decimal.Decimal, error)
}
