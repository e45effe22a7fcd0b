// Package memory keeps every repository in process memory. It backs local
// development and the service tests; state is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"quotecompare/internal/models"
	"quotecompare/internal/repositories/interfaces"
)

// Store holds the three tables behind one lock so the referral predicate
// update is atomic with respect to every other write.
type Store struct {
	mu sync.RWMutex

	users      map[int64]*models.User
	referrals  map[int64]*models.Referral
	signups    map[int64]*models.Signup
	lastUser   int64
	lastRef    int64
	lastSignup int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:     make(map[int64]*models.User),
		referrals: make(map[int64]*models.Referral),
		signups:   make(map[int64]*models.Signup),
		now:       time.Now,
	}
}

func (s *Store) Users() interfaces.UserRepository         { return (*userRepository)(s) }
func (s *Store) Referrals() interfaces.ReferralRepository { return (*referralRepository)(s) }
func (s *Store) Signups() interfaces.SignupRepository     { return (*signupRepository)(s) }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

type userRepository Store

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email || u.ReferralCode == user.ReferralCode {
			return interfaces.ErrDuplicate
		}
	}

	s.lastUser++
	user.ID = s.lastUser
	user.CreatedAt = s.now()
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *userRepository) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ReferralCode == code })
}

func (r *userRepository) find(match func(*models.User) bool) (*models.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			found := *u
			return &found, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

type referralRepository Store

func (r *referralRepository) Create(ctx context.Context, referral *models.Referral) (bool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[referral.ReferrerID]; !ok {
		return false, interfaces.ErrNotFound
	}

	for _, existing := range s.referrals {
		if existing.ReferralCode == referral.ReferralCode && existing.ReferredEmail == referral.ReferredEmail {
			*referral = copyReferral(existing)
			return false, nil
		}
	}

	s.lastRef++
	referral.ID = s.lastRef
	referral.Status = models.ReferralStatusPending
	referral.BonusAmount = decimal.Zero
	referral.CreatedAt = s.now()
	referral.CompletedAt = nil

	stored := copyReferral(referral)
	s.referrals[referral.ID] = &stored
	return true, nil
}

func (r *referralRepository) Complete(ctx context.Context, code, referredEmail string, bonus decimal.Decimal, completedAt time.Time) (*models.Referral, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.referrals {
		if existing.ReferralCode != code || existing.ReferredEmail != referredEmail || existing.IsCompleted() {
			continue
		}
		at := completedAt
		existing.Status = models.ReferralStatusCompleted
		existing.BonusAmount = bonus
		existing.CompletedAt = &at

		completed := copyReferral(existing)
		return &completed, nil
	}
	return nil, interfaces.ErrNotFound
}

func (r *referralRepository) ListByReferrer(ctx context.Context, referrerID int64) ([]*models.Referral, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	referrals := []*models.Referral{}
	for _, existing := range s.referrals {
		if existing.ReferrerID == referrerID {
			c := copyReferral(existing)
			referrals = append(referrals, &c)
		}
	}

	sort.Slice(referrals, func(i, j int) bool {
		if !referrals[i].CreatedAt.Equal(referrals[j].CreatedAt) {
			return referrals[i].CreatedAt.After(referrals[j].CreatedAt)
		}
		return referrals[i].ID > referrals[j].ID
	})
	return referrals, nil
}

func (r *referralRepository) TotalBonusByReferrer(ctx context.Context, referrerID int64) (decimal.Decimal, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, existing := range s.referrals {
		if existing.ReferrerID == referrerID && existing.IsCompleted() {
			total = total.Add(existing.BonusAmount)
		}
	}
	return total, nil
}

func copyReferral(r *models.Referral) models.Referral {
	c := *r
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		c.CompletedAt = &at
	}
	return c
}

type signupRepository Store

func (r *signupRepository) Create(ctx context.Context, signup *models.Signup) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if signup.Status == "" {
		signup.Status = models.SignupStatusCompleted
	}
	s.lastSignup++
	signup.ID = s.lastSignup
	signup.CreatedAt = s.now()

	stored := *signup
	s.signups[signup.ID] = &stored
	return nil
}

func (r *signupRepository) ListByEmail(ctx context.Context, email string) ([]*models.Signup, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	signups := []*models.Signup{}
	for _, existing := range s.signups {
		if existing.UserEmail == email {
			c := *existing
			signups = append(signups, &c)
		}
	}
	sort.Slice(signups, func(i, j int) bool { return signups[i].ID > signups[j].ID })
	return signups, nil
}
