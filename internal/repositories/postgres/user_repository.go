package postgres

import (
	"context"

	"quotecompare/internal/models"
	"quotecompare/internal/repositories/interfaces"
	"quotecompare/pkg/database"
)

const userColumns = `id, email, referral_code, created_at`

type userRepository struct {
	db database.DBTX
}

func NewUserRepository(db database.DBTX) interfaces.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(
		ctx,
		`INSERT INTO users (email, referral_code)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		user.Email,
		user.ReferralCode,
	).Scan(&user.ID, &user.CreatedAt)

	return translate(err, "failed to create user")
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.ReferralCode,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, translate(err, "failed to get user")
	}
	return &user, nil
}
