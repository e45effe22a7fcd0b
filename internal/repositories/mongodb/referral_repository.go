package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quotecompare/internal/models"
	"quotecompare/internal/repositories/interfaces"
)

type referralRepository struct {
	collection *mongo.Collection
	counters   *counters
}

func NewReferralRepository(db *mongo.Database) interfaces.ReferralRepository {
	return &referralRepository{
		collection: db.Collection(referralsCollection),
		counters:   newCounters(db),
	}
}

func (r *referralRepository) Create(ctx context.Context, referral *models.Referral) (bool, error) {
	id, err := r.counters.next(ctx, referralsCollection)
	if err != nil {
		return false, err
	}

	zero, _ := primitive.ParseDecimal128("0")
	doc := referralDocument{
		ID:            id,
		ReferrerID:    referral.ReferrerID,
		ReferredEmail: referral.ReferredEmail,
		ReferralCode:  referral.ReferralCode,
		Status:        string(models.ReferralStatusPending),
		BonusAmount:   zero,
		CreatedAt:     time.Now().UTC(),
	}

	_, err = r.collection.InsertOne(ctx, doc)
	if err == nil {
		stored, err := doc.model()
		if err != nil {
			return false, err
		}
		*referral = *stored
		return true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return false, fmt.Errorf("failed to create referral: %w", err)
	}

	// unique (referral_code, referred_email) index fired; return the stored row
	var existing referralDocument
	err = r.collection.FindOne(ctx, bson.M{
		"referral_code":  referral.ReferralCode,
		"referred_email": referral.ReferredEmail,
	}).Decode(&existing)
	if err != nil {
		return false, fmt.Errorf("failed to load existing referral: %w", err)
	}

	stored, err := existing.model()
	if err != nil {
		return false, err
	}
	*referral = *stored
	return false, nil
}

func (r *referralRepository) Complete(ctx context.Context, code, referredEmail string, bonus decimal.Decimal, completedAt time.Time) (*models.Referral, error) {
	amount, err := toDecimal128(bonus)
	if err != nil {
		return nil, err
	}

	var doc referralDocument
	err = r.collection.FindOneAndUpdate(
		ctx,
		bson.M{
			"referral_code":  code,
			"referred_email": referredEmail,
			"status":         string(models.ReferralStatusPending),
		},
		bson.M{"$set": bson.M{
			"status":       string(models.ReferralStatusCompleted),
			"bonus_amount": amount,
			"completed_at": completedAt.UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to complete referral: %w", err)
	}

	return doc.model()
}

func (r *referralRepository) ListByReferrer(ctx context.Context, referrerID int64) ([]*models.Referral, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"referrer_id": referrerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	defer cursor.Close(ctx)

	referrals := []*models.Referral{}
	for cursor.Next(ctx) {
		var doc referralDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode referral: %w", err)
		}
		referral, err := doc.model()
		if err != nil {
			return nil, err
		}
		referrals = append(referrals, referral)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate referrals: %w", err)
	}

	return referrals, nil
}

func (r *referralRepository) TotalBonusByReferrer(ctx context.Context, referrerID int64) (decimal.Decimal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"referrer_id": referrerID,
			"status":      string(models.ReferralStatusCompleted),
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$bonus_amount"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum referral bonus: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return decimal.Zero, cursor.Err()
	}

	var result struct {
		Total primitive.Decimal128 `bson:"total"`
	}
	if err := cursor.Decode(&result); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode referral bonus: %w", err)
	}
	return fromDecimal128(result.Total)
}
