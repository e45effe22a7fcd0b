package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Bonus amounts are rendered as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "pending"
	ReferralStatusCompleted ReferralStatus = "completed"
)

// Referral moves from pending to completed exactly once. BonusAmount and
// CompletedAt are only set by that transition.
type Referral struct {
	ID            int64           `json:"id"`
	ReferrerID    int64           `json:"referrer_id"`
	ReferredEmail string          `json:"referred_email"`
	ReferralCode  string          `json:"referral_code"`
	Status        ReferralStatus  `json:"status"`
	BonusAmount   decimal.Decimal `json:"bonus_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at"`
}

func (r *Referral) IsCompleted() bool {
	return r.Status == ReferralStatusCompleted
}

type Dashboard struct {
	Referrals    []*Referral     `json:"referrals"`
	TotalBonus   decimal.Decimal `json:"totalBonus"`
	ReferralCode string          `json:"referralCode"`
}

// EmptyDashboard is what an unknown email sees.
func EmptyDashboard() *Dashboard {
	return &Dashboard{
		Referrals:    []*Referral{},
		TotalBonus:   decimal.Zero,
		ReferralCode: "",
	}
}
