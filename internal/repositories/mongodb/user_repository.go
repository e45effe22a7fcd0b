package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"quotecompare/internal/models"
	"quotecompare/internal/repositories/interfaces"
)

type userRepository struct {
	collection *mongo.Collection
	counters   *counters
}

func NewUserRepository(db *mongo.Database) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection(usersCollection),
		counters:   newCounters(db),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	id, err := r.counters.next(ctx, usersCollection)
	if err != nil {
		return err
	}

	doc := userDocument{
		ID:           id,
		Email:        user.Email,
		ReferralCode: user.ReferralCode,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create user: %w", interfaces.ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = doc.ID
	user.CreatedAt = doc.CreatedAt
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"referral_code": code})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.model(), nil
}
