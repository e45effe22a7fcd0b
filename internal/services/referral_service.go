package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"quotecompare/internal/metrics"
	"quotecompare/internal/models"
	"quotecompare/internal/repositories/interfaces"
	"quotecompare/internal/utils"
	"quotecompare/internal/validators"
	"quotecompare/pkg/logger"
)

type ReferralService interface {
	// Users
	CreateUser(ctx context.Context, email string) (*models.User, error)
	EnsureUser(ctx context.Context, email string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*models.User, error)

	// Referral lifecycle
	CreateReferral(ctx context.Context, req *validators.CreateReferralRequest) (*models.Referral, error)
	CompleteReferral(ctx context.Context, code, referredEmail string, bonus decimal.Decimal) (*models.Referral, error)

	// Reporting
	GetReferralsByUserID(ctx context.Context, userID int64) ([]*models.Referral, error)
	GetTotalBonusByUserID(ctx context.Context, userID int64) (decimal.Decimal, error)
	GetDashboard(ctx context.Context, email string) (*models.Dashboard, error)

	DefaultBonus() decimal.Decimal
}

// UserNotifier receives live events for a user's dashboard.
type UserNotifier interface {
	SendUserNotification(userID int64, notificationType string, data map[string]interface{})
}

type referralService struct {
	userRepo     interfaces.UserRepository
	referralRepo interfaces.ReferralRepository
	notifier     UserNotifier
	metrics      *metrics.Metrics
	logger       *logger.Logger
	bonus        decimal.Decimal
	now          func() time.Time
}

func NewReferralService(
	userRepo interfaces.UserRepository,
	referralRepo interfaces.ReferralRepository,
	notifier UserNotifier,
	metrics *metrics.Metrics,
	logger *logger.Logger,
	bonus decimal.Decimal,
) ReferralService {
	return &referralService{
		userRepo:     userRepo,
		referralRepo: referralRepo,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
		bonus:        bonus,
		now:          time.Now,
	}
}

func (s *referralService) DefaultBonus() decimal.Decimal {
	return s.bonus
}

func (s *referralService) CreateUser(ctx context.Context, email string) (*models.User, error) {
	req := &validators.CreateUserRequest{Email: email}
	if errs := validators.ValidateCreateUser(req); len(errs) > 0 {
		return nil, NewValidationError("email", utils.ErrValidEmailRequired)
	}

	user := &models.User{Email: req.Email}
	for attempt := 1; ; attempt++ {
		user.ReferralCode = utils.GenerateReferralCode()
		err := s.userRepo.Create(ctx, user)
		if err == nil {
			break
		}
		if !errors.Is(err, interfaces.ErrDuplicate) {
			return nil, storeError("create user", err)
		}

		// A duplicate with no user behind the email is a referral code collision.
		if _, getErr := s.userRepo.GetByEmail(ctx, req.Email); !errors.Is(getErr, interfaces.ErrNotFound) || attempt == utils.ReferralCodeAttempts {
			return nil, ErrConflict
		}
	}

	s.metrics.ObserveUserCreated()
	s.logger.WithContext(ctx).WithUserID(user.ID).
		WithField("event", utils.EventUserCreated).
		Info("User created")

	return user, nil
}

func (s *referralService) EnsureUser(ctx context.Context, email string) (*models.User, error) {
	normalized := utils.NormalizeEmail(email)
	if !validators.IsEmailLike(normalized) {
		return nil, NewValidationError("email", utils.ErrValidEmailRequired)
	}

	user, err := s.GetUserByEmail(ctx, normalized)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user, err = s.CreateUser(ctx, normalized)
	if errors.Is(err, ErrConflict) {
		// Lost a race with a concurrent request for the same email.
		if existing, getErr := s.GetUserByEmail(ctx, normalized); getErr == nil {
			return existing, nil
		}
	}
	return user, err
}

func (s *referralService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeError("get user by email", err)
	}
	return user, nil
}

func (s *referralService) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	code = utils.NormalizeReferralCode(code)
	if !validators.IsValidReferralCode(code) {
		return nil, ErrNotFound
	}

	user, err := s.userRepo.GetByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeError("get user by referral code", err)
	}
	return user, nil
}

func (s *referralService) CreateReferral(ctx context.Context, req *validators.CreateReferralRequest) (*models.Referral, error) {
	if errs := validators.ValidateCreateReferral(req); len(errs) > 0 {
		return nil, NewValidationError("referral", utils.ErrReferralFieldsRequired)
	}

	referrer, err := s.GetUserByReferralCode(ctx, req.ReferralCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewValidationError("referralCode", utils.ErrInvalidReferralCode)
		}
		return nil, err
	}

	if referrer.Email == req.ReferredEmail {
		return nil, NewValidationError("referredEmail", utils.ErrSelfReferral)
	}

	referral := &models.Referral{
		ReferrerID:    referrer.ID,
		ReferredEmail: req.ReferredEmail,
		ReferralCode:  referrer.ReferralCode,
	}

	created, err := s.referralRepo.Create(ctx, referral)
	if err != nil {
		return nil, storeError("create referral", err)
	}

	s.metrics.ObserveReferralCreated(created)
	if created {
		s.logger.WithContext(ctx).LogReferralEvent(utils.EventReferralCreated, referrer.ID, map[string]interface{}{
			"referral_id":    referral.ID,
			"referred_email": referral.ReferredEmail,
		})
	}

	return referral, nil
}

// CompleteReferral pays out the pending referral for exactly (code,
// referredEmail); a signup under a different email leaves it pending.
// It returns nil, nil when there is nothing left to complete.
func (s *referralService) CompleteReferral(ctx context.Context, code, referredEmail string, bonus decimal.Decimal) (*models.Referral, error) {
	if !bonus.IsPositive() {
		return nil, NewValidationError("bonusAmount", utils.ErrInvalidBonusAmount)
	}

	code = utils.NormalizeReferralCode(code)
	referredEmail = utils.NormalizeEmail(referredEmail)
	if code == "" || referredEmail == "" {
		return nil, nil
	}

	referral, err := s.referralRepo.Complete(ctx, code, referredEmail, bonus, s.now().UTC())
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			// Nothing pending for this pair; completing twice is a no-op.
			return nil, nil
		}
		return nil, storeError("complete referral", err)
	}

	s.metrics.ObserveReferralCompleted(referral.BonusAmount)
	s.logger.WithContext(ctx).LogReferralEvent(utils.EventReferralCompleted, referral.ReferrerID, map[string]interface{}{
		"referral_id":    referral.ID,
		"referred_email": referral.ReferredEmail,
		"bonus_amount":   referral.BonusAmount.StringFixed(2),
	})

	if s.notifier != nil {
		s.notifier.SendUserNotification(referral.ReferrerID, utils.EventReferralCompleted, map[string]interface{}{
			"referral":     referral,
			"bonus_amount": referral.BonusAmount,
		})
	}

	return referral, nil
}

func (s *referralService) GetReferralsByUserID(ctx context.Context, userID int64) ([]*models.Referral, error) {
	referrals, err := s.referralRepo.ListByReferrer(ctx, userID)
	if err != nil {
		return nil, storeError("list referrals", err)
	}
	if referrals == nil {
		referrals = []*models.Referral{}
	}
	return referrals, nil
}

func (s *referralService) GetTotalBonusByUserID(ctx context.Context, userID int64) (decimal.Decimal, error) {
	total, err := s.referralRepo.TotalBonusByReferrer(ctx, userID)
	if err != nil {
		return decimal.Zero, storeError("sum referral bonus", err)
	}
	return total, nil
}

func (s *referralService) GetDashboard(ctx context.Context, email string) (*models.Dashboard, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.EmptyDashboard(), nil
		}
		return nil, err
	}

	referrals, err := s.GetReferralsByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	total, err := s.GetTotalBonusByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		Referrals:    referrals,
		TotalBonus:   total,
		ReferralCode: user.ReferralCode,
	}, nil
}
