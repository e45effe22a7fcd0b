package utils

import (
	"math/big"
	"strings"

	"github.com/google/uuid"
)

var referralCodeSpace = new(big.Int).Exp(big.NewInt(36), big.NewInt(ReferralCodeLength), nil)

// GenerateReferralCode renders the low bits of a random v4 UUID as
// ReferralCodeLength upper-case base36 digits.
func GenerateReferralCode() string {
	id := uuid.New()
	n := new(big.Int).SetBytes(id[:])
	n.Mod(n, referralCodeSpace)

	code := strings.ToUpper(n.Text(36))
	if len(code) < ReferralCodeLength {
		code = strings.Repeat("0", ReferralCodeLength-len(code)) + code
	}
	return code
}

func GenerateRequestID() string {
	return uuid.NewString()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
