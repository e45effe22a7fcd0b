package validators

import (
	"strings"

	"quotecompare/internal/utils"
)

type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email_like,max=254"`
}

type CreateReferralRequest struct {
	ReferrerEmail string `json:"referrerEmail" validate:"omitempty,email_like,max=254"`
	ReferredEmail string `json:"referredEmail" validate:"required,email_like,max=254"`
	ReferralCode  string `json:"referralCode" validate:"required"`
}

type SignupRequest struct {
	UserEmail    string `json:"userEmail" validate:"required"`
	CompanyName  string `json:"companyName" validate:"required"`
	ReferralCode string `json:"referralCode"`
}

func ValidateCreateUser(req *CreateUserRequest) ValidationErrors {
	req.Email = utils.NormalizeEmail(req.Email)
	return ValidateStruct(req)
}

// ValidateCreateReferral normalizes the request in place. The referrer email
// is informational only; the referrer is always resolved from the code.
func ValidateCreateReferral(req *CreateReferralRequest) ValidationErrors {
	req.ReferrerEmail = utils.NormalizeEmail(req.ReferrerEmail)
	req.ReferredEmail = utils.NormalizeEmail(req.ReferredEmail)
	req.ReferralCode = utils.NormalizeReferralCode(req.ReferralCode)
	return ValidateStruct(req)
}

func ValidateSignup(req *SignupRequest) ValidationErrors {
	req.UserEmail = utils.NormalizeEmail(req.UserEmail)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.ReferralCode = utils.NormalizeReferralCode(req.ReferralCode)
	return ValidateStruct(req)
}
