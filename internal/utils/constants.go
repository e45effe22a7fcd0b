package utils

import "time"

// Application Constants
const (
	AppName    = "QuoteCompare"
	AppVersion = "1.0.0"

	// Referral
	DefaultReferralBonus = "25.00"
	ReferralCodeLength   = 8
	ReferralCodeAttempts = 3
	UserCacheTTL         = 15 * time.Minute

	// Store
	StoreConnectTimeout = 10 * time.Second
	StorePingTimeout    = 5 * time.Second
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
	DriverMemory   = "memory"
)

// Error Messages returned to clients
const (
	ErrValidEmailRequired     = "Valid email is required"
	ErrEmailRequired          = "Email is required"
	ErrReferralFieldsRequired = "Referred email and referral code are required"
	ErrInvalidReferralCode    = "Invalid referral code"
	ErrSelfReferral           = "Cannot refer yourself"
	ErrSignupFieldsRequired   = "User email and company name are required"
	ErrInvalidBonusAmount     = "Bonus amount must be greater than zero"
	ErrInvalidRequestBody     = "Invalid request body"
	ErrQuoteNotFound          = "Quote not found"
	ErrUserNotFound           = "User not found"
	ErrInternalServer         = "Internal server error"
)

// Cache Keys
const (
	CacheUserEmailPrefix = "user_email:"
	CacheUserCodePrefix  = "user_code:"
)

// Event Types
const (
	EventUserCreated       = "user_created"
	EventReferralCreated   = "referral_created"
	EventReferralCompleted = "referral_completed"
	EventSignupRecorded    = "signup_recorded"
)
