package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tcw1/internal/models"

	"github.com/redis/go-redis/v9"
)

// Key prefixes owned by the application. Purge only touches these.
const (
	UserPrefix   = "user:"
	PricePrefix  = "price:"
	WalletPrefix = "wallet:"
)

const scanBatch = 200

// CacheService stores JSON encoded values in Redis.
type CacheService struct {
	client  *redis.Client
	userTTL time.Duration
}

// NewCacheService builds the cache. userTTL bounds how long a user record
// may be served without hitting PostgreSQL.
func NewCacheService(client *redis.Client, userTTL time.Duration) *CacheService {
	return &CacheService{
		client:  client,
		userTTL: userTTL,
	}
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the value under key into dest. A missing key is reported as (false, nil).
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Purge deletes every key under the given prefixes and returns how many went.
func (s *CacheService) Purge(ctx context.Context, prefixes ...string) (int, error) {
	removed := 0
	for _, prefix := range prefixes {
		iter := s.client.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
		var batch []string
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
			if len(batch) == scanBatch {
				if err := s.Delete(ctx, batch...); err != nil {
					return removed, err
				}
				removed += len(batch)
				batch = batch[:0]
			}
		}
		if err := iter.Err(); err != nil {
			return removed, fmt.Errorf("scan %s: %w", prefix, err)
		}
		if err := s.Delete(ctx, batch...); err != nil {
			return removed, err
		}
		removed += len(batch)
	}
	return removed, nil
}

// UserKey is where a user record is cached. The token middleware reads it
// on every request, so every write to a user must invalidate it.
func UserKey(id uint) string {
	return fmt.Sprintf("%sid:%d", UserPrefix, id)
}

// CacheUser stores the user without its credentials.
func (s *CacheService) CacheUser(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == 0 {
		return errors.New("cannot cache a user without an id")
	}
	return s.SetWithTTL(ctx, UserKey(user.ID), user.WithoutCredentials(), s.userTTL)
}

// CachedUser returns the cached record, or false when the user is not cached.
func (s *CacheService) CachedUser(ctx context.Context, id uint) (*models.User, bool, error) {
	var user models.User
	found, err := s.Get(ctx, UserKey(id), &user)
	if err != nil || !found {
		return nil, false, err
	}
	return &user, true, nil
}

func (s *CacheService) InvalidateUser(ctx context.Context, id uint) error {
	return s.Delete(ctx, UserKey(id))
}
