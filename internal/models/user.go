package models

import (
	"time"
)

// User is created on the first email submission and never mutated after.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	ReferralCode string    `json:"referral_code"`
	CreatedAt    time.Time `json:"created_at"`
}
