package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotecompare/internal/models"
	"quotecompare/internal/utils"
	"quotecompare/internal/validators"
)

func TestRecordSignupCompletesReferral(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice, err := f.referral.CreateUser(ctx, "alice@example.com")
	require.NoError(t, err)
	f.refer(t, alice.ReferralCode, "bob@example.com")

	result, err := f.signup.RecordSignup(ctx, &validators.SignupRequest{
		UserEmail:    " Bob@Example.com",
		CompanyName:  " GEICO ",
		ReferralCode: alice.ReferralCode,
	})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", result.Signup.UserEmail)
	assert.Equal(t, "GEICO", result.Signup.CompanyName)
	assert.Equal(t, models.SignupStatusCompleted, result.Signup.Status)
	assert.Nil(t, result.Signup.QuoteID)
	require.NotNil(t, result.CompletedReferral)
	assert.Equal(t, "25", result.CompletedReferral.BonusAmount.String())

	dash, err := f.referral.GetDashboard(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "25", dash.TotalBonus.String())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Signups.WithLabelValues("true")))

	t.Run("second signup does not pay twice", func(t *testing.T) {
		result, err := f.signup.RecordSignup(ctx, &validators.SignupRequest{
			UserEmail:    "bob@example.com",
			CompanyName:  "USAA",
			ReferralCode: alice.ReferralCode,
		})
		require.NoError(t, err)
		assert.Nil(t, result.CompletedReferral)

		total, err := f.referral.GetTotalBonusByUserID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "25", total.String())
	})
}

func TestRecordSignupOnlyCompletesMatchingEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice, err := f.referral.CreateUser(ctx, "alice@example.com")
	require.NoError(t, err)
	f.refer(t, alice.ReferralCode, "bob@example.com")

	result, err := f.signup.RecordSignup(ctx, &validators.SignupRequest{
		UserEmail:    "mallory@example.com",
		CompanyName:  "Farmers",
		ReferralCode: alice.ReferralCode,
	})
	require.NoError(t, err)
	assert.Nil(t, result.CompletedReferral)

	referrals, err := f.referral.GetReferralsByUserID(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, referrals, 1)
	assert.Equal(t, models.ReferralStatusPending, referrals[0].Status)
}

func TestRecordSignupSkipsSelfAndUnknownCodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice, err := f.referral.CreateUser(ctx, "alice@example.com")
	require.NoError(t, err)

	self, err := f.signup.RecordSignup(ctx, &validators.SignupRequest{
		UserEmail:    "alice@example.com",
		CompanyName:  "Allstate",
		ReferralCode: alice.ReferralCode,
	})
	require.NoError(t, err)
	assert.Nil(t, self.CompletedReferral)
	require.NotNil(t, self.Signup.ReferralCode)
	assert.Equal(t, alice.ReferralCode, *self.Signup.ReferralCode)

	unknown, err := f.signup.RecordSignup(ctx, &validators.SignupRequest{
		UserEmail:    "zed@example.com",
		CompanyName:  "Progressive",
		ReferralCode: "zzzz9999",
	})
	require.NoError(t, err)
	assert.Nil(t, unknown.CompletedReferral)

	plain, err := f.signup.RecordSignup(ctx, &validators.SignupRequest{
		UserEmail:   "zed@example.com",
		CompanyName: "State Farm",
	})
	require.NoError(t, err)
	assert.Nil(t, plain.Signup.ReferralCode)

	signups, err := f.store.Signups().ListByEmail(ctx, "zed@example.com")
	require.NoError(t, err)
	assert.Len(t, signups, 2)
	assert.Equal(t, float64(3), testutil.ToFloat64(f.metrics.Signups.WithLabelValues("false")))
}

func TestRecordSignupValidation(t *testing.T) {
	f := newFixture(t)

	for _, req := range []validators.SignupRequest{
		{CompanyName: "GEICO"},
		{UserEmail: "bob@example.com"},
		{UserEmail: "  ", CompanyName: "  "},
	} {
		req := req
		_, err := f.signup.RecordSignup(context.Background(), &req)
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, utils.ErrSignupFieldsRequired, err.Error())
	}
}
