package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quotecompare/internal/models"
	"quotecompare/internal/repositories/interfaces"
)

type signupRepository struct {
	collection *mongo.Collection
	counters   *counters
}

func NewSignupRepository(db *mongo.Database) interfaces.SignupRepository {
	return &signupRepository{
		collection: db.Collection(signupsCollection),
		counters:   newCounters(db),
	}
}

func (r *signupRepository) Create(ctx context.Context, signup *models.Signup) error {
	id, err := r.counters.next(ctx, signupsCollection)
	if err != nil {
		return err
	}

	if signup.Status == "" {
		signup.Status = models.SignupStatusCompleted
	}

	doc := signupDocument{
		ID:           id,
		UserEmail:    signup.UserEmail,
		CompanyName:  signup.CompanyName,
		ReferralCode: signup.ReferralCode,
		QuoteID:      signup.QuoteID,
		Status:       string(signup.Status),
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create signup: %w", err)
	}

	signup.ID = doc.ID
	signup.CreatedAt = doc.CreatedAt
	return nil
}

func (r *signupRepository) ListByEmail(ctx context.Context, email string) ([]*models.Signup, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_email": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list signups: %w", err)
	}
	defer cursor.Close(ctx)

	signups := []*models.Signup{}
	for cursor.Next(ctx) {
		var doc signupDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode signup: %w", err)
		}
		signups = append(signups, doc.model())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate signups: %w", err)
	}

	return signups, nil
}
