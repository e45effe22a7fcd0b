package services

import (
	"context"
	"errors"

	"quotecompare/internal/metrics"
	"quotecompare/internal/models"
	"quotecompare/internal/repositories/interfaces"
	"quotecompare/internal/utils"
	"quotecompare/internal/validators"
	"quotecompare/pkg/logger"
)

type SignupService interface {
	RecordSignup(ctx context.Context, req *validators.SignupRequest) (*models.SignupResult, error)
}

type signupService struct {
	signupRepo interfaces.SignupRepository
	referrals  ReferralService
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

func NewSignupService(
	signupRepo interfaces.SignupRepository,
	referrals ReferralService,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) SignupService {
	return &signupService{
		signupRepo: signupRepo,
		referrals:  referrals,
		metrics:    metrics,
		logger:     logger,
	}
}

// RecordSignup stores the signup unconditionally, then completes the pending
// referral for (code, signup email) if there is one. The signup is not
// rolled back when completion fails.
func (s *signupService) RecordSignup(ctx context.Context, req *validators.SignupRequest) (*models.SignupResult, error) {
	if errs := validators.ValidateSignup(req); len(errs) > 0 {
		return nil, NewValidationError("signup", utils.ErrSignupFieldsRequired)
	}

	signup := &models.Signup{
		UserEmail:   req.UserEmail,
		CompanyName: req.CompanyName,
		Status:      models.SignupStatusCompleted,
	}
	if req.ReferralCode != "" {
		code := req.ReferralCode
		signup.ReferralCode = &code
	}

	if err := s.signupRepo.Create(ctx, signup); err != nil {
		return nil, storeError("create signup", err)
	}

	log := s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"event":        utils.EventSignupRecorded,
		"signup_id":    signup.ID,
		"company_name": signup.CompanyName,
	})

	result := &models.SignupResult{Signup: signup}
	if signup.ReferralCode != nil {
		completed, err := s.completeReferral(ctx, *signup.ReferralCode, signup.UserEmail)
		if err != nil {
			s.metrics.ObserveSignup(false)
			log.WithError(err).Error("Signup recorded but referral completion failed")
			return nil, err
		}
		result.CompletedReferral = completed
	}

	s.metrics.ObserveSignup(result.CompletedReferral != nil)
	log.WithField("referred", result.CompletedReferral != nil).Info("Signup recorded")

	return result, nil
}

func (s *signupService) completeReferral(ctx context.Context, code, email string) (*models.Referral, error) {
	referrer, err := s.referrals.GetUserByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WithContext(ctx).WithField("referral_code", code).Debug("Signup carried an unknown referral code")
			return nil, nil
		}
		return nil, err
	}

	// Users often sign up with their own code from the page they are on.
	if referrer.Email == email {
		return nil, nil
	}

	return s.referrals.CompleteReferral(ctx, code, email, s.referrals.DefaultBonus())
}
