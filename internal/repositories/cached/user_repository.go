// Package cached wraps repositories with a read-through cache. Users are
// never mutated after creation, so entries are only ever added or expired.
package cached

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"quotecompare/internal/models"
	"quotecompare/internal/repositories/interfaces"
	"quotecompare/internal/utils"
)

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type userRepository struct {
	next  interfaces.UserRepository
	cache Cache
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewUserRepository(next interfaces.UserRepository, cache Cache, ttl time.Duration, log logrus.FieldLogger) interfaces.UserRepository {
	if ttl <= 0 {
		ttl = utils.UserCacheTTL
	}
	return &userRepository{next: next, cache: cache, ttl: ttl, log: log}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.next.Create(ctx, user); err != nil {
		return err
	}
	r.store(ctx, user)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.next.GetByID(ctx, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.lookup(ctx, utils.CacheUserEmailPrefix+email, func() (*models.User, error) {
		return r.next.GetByEmail(ctx, email)
	})
}

func (r *userRepository) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	return r.lookup(ctx, utils.CacheUserCodePrefix+code, func() (*models.User, error) {
		return r.next.GetByReferralCode(ctx, code)
	})
}

// lookup only caches hits; misses always fall through so a user created
// through another instance is visible immediately.
func (r *userRepository) lookup(ctx context.Context, key string, load func() (*models.User, error)) (*models.User, error) {
	var user models.User
	if err := r.cache.Get(ctx, key, &user); err == nil {
		return &user, nil
	}

	found, err := load()
	if err != nil {
		return nil, err
	}
	r.store(ctx, found)
	return found, nil
}

func (r *userRepository) store(ctx context.Context, user *models.User) {
	for _, key := range []string{
		utils.CacheUserEmailPrefix + user.Email,
		utils.CacheUserCodePrefix + user.ReferralCode,
	} {
		if err := r.cache.Set(ctx, key, user, r.ttl); err != nil && r.log != nil {
			r.log.WithError(err).WithField("key", key).Warn("Failed to cache user")
		}
	}
}
