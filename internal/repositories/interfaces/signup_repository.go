package interfaces

import (
	"context"

	"quotecompare/internal/models"
)

type SignupRepository interface {
	Create(ctx context.Context, signup *models.Signup) error
	ListByEmail(ctx context.Context, email string) ([]*models.Signup, error)
}
