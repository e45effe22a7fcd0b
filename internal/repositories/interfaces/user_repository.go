package interfaces

import (
	"context"

	"quotecompare/internal/models"
)

type UserRepository interface {
	// Create assigns ID and CreatedAt. A taken email or referral code yields
	// ErrDuplicate.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByReferralCode(ctx context.Context, code string) (*models.User, error)
}
