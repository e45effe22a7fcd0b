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
)

const (
	usersCollection     = "users"
	referralsCollection = "referrals"
	signupsCollection   = "signups"
	countersCollection  = "counters"
)

// counters hands out the sequential int64 ids the API exposes.
type counters struct {
	collection *mongo.Collection
}

func newCounters(db *mongo.Database) *counters {
	return &counters{collection: db.Collection(countersCollection)}
}

func (c *counters) next(ctx context.Context, name string) (int64, error) {
	var result struct {
		Seq int64 `bson:"seq"`
	}

	err := c.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&result)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", name, err)
	}
	return result.Seq, nil
}

type userDocument struct {
	ID           int64     `bson:"_id"`
	Email        string    `bson:"email"`
	ReferralCode string    `bson:"referral_code"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d *userDocument) model() *models.User {
	return &models.User{
		ID:           d.ID,
		Email:        d.Email,
		ReferralCode: d.ReferralCode,
		CreatedAt:    d.CreatedAt,
	}
}

type referralDocument struct {
	ID            int64                `bson:"_id"`
	ReferrerID    int64                `bson:"referrer_id"`
	ReferredEmail string               `bson:"referred_email"`
	ReferralCode  string               `bson:"referral_code"`
	Status        string               `bson:"status"`
	BonusAmount   primitive.Decimal128 `bson:"bonus_amount"`
	CreatedAt     time.Time            `bson:"created_at"`
	CompletedAt   *time.Time           `bson:"completed_at"`
}

func (d *referralDocument) model() (*models.Referral, error) {
	bonus, err := fromDecimal128(d.BonusAmount)
	if err != nil {
		return nil, err
	}
	return &models.Referral{
		ID:            d.ID,
		ReferrerID:    d.ReferrerID,
		ReferredEmail: d.ReferredEmail,
		ReferralCode:  d.ReferralCode,
		Status:        models.ReferralStatus(d.Status),
		BonusAmount:   bonus,
		CreatedAt:     d.CreatedAt,
		CompletedAt:   d.CompletedAt,
	}, nil
}

type signupDocument struct {
	ID           int64     `bson:"_id"`
	UserEmail    string    `bson:"user_email"`
	CompanyName  string    `bson:"company_name"`
	ReferralCode *string   `bson:"referral_code"`
	QuoteID      *int64    `bson:"quote_id"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d *signupDocument) model() *models.Signup {
	return &models.Signup{
		ID:           d.ID,
		UserEmail:    d.UserEmail,
		CompanyName:  d.CompanyName,
		ReferralCode: d.ReferralCode,
		QuoteID:      d.QuoteID,
		Status:       models.SignupStatus(d.Status),
		CreatedAt:    d.CreatedAt,
	}
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("invalid bonus amount %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	if v.IsZero() {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid stored bonus %s: %w", v, err)
	}
	return d, nil
}
