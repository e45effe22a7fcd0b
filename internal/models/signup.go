package models

import (
	"time"
)

type SignupStatus string

const (
	SignupStatusCompleted SignupStatus = "completed"
)

// Signup is an append-only record of a user declaring a purchase.
type Signup struct {
	ID           int64        `json:"id"`
	UserEmail    string       `json:"user_email"`
	CompanyName  string       `json:"company_name"`
	ReferralCode *string      `json:"referral_code"`
	QuoteID      *int64       `json:"quote_id"`
	Status       SignupStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

type SignupResult struct {
	Signup            *Signup   `json:"signup"`
	CompletedReferral *Referral `json:"completed_referral,omitempty"`
}
