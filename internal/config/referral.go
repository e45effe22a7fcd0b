package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"quotecompare/internal/utils"
)

type ReferralConfig struct {
	BonusAmount  decimal.Decimal `yaml:"bonus_amount"`
	UserCacheTTL time.Duration   `yaml:"user_cache_ttl"`
}

func loadReferralConfig() (*ReferralConfig, error) {
	raw := getEnv("REFERRAL_BONUS_AMOUNT", utils.DefaultReferralBonus)
	bonus, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid REFERRAL_BONUS_AMOUNT %q: %w", raw, err)
	}
	if !bonus.IsPositive() {
		return nil, fmt.Errorf("REFERRAL_BONUS_AMOUNT must be greater than zero, got %s", raw)
	}

	return &ReferralConfig{
		BonusAmount:  bonus.Round(2),
		UserCacheTTL: getEnvAsDuration("REFERRAL_USER_CACHE_TTL", utils.UserCacheTTL),
	}, nil
}
