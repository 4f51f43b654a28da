package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tcw1/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedisClient(&RedisConfig{Host: mr.Host(), Port: mr.Port()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheService(client, time.Minute), mr
}

func TestCacheService_SetGet(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, svc.SetWithTTL(ctx, "price:quote:BTC", map[string]float64{"price": 45000}, 30*time.Second))

	var got map[string]float64
	found, err := svc.Get(ctx, "price:quote:BTC", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, float64(45000), got["price"])

	mr.FastForward(31 * time.Second)
	found, err = svc.Get(ctx, "price:quote:BTC", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheService_UserLifecycle(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	user := &models.User{Model: gorm.Model{ID: 7}, Email: "ada@example.com", TokenVersion: 3}
	require.NoError(t, svc.CacheUser(ctx, user))
	assert.True(t, mr.Exists("user:id:7"))

	cached, ok, err := svc.CachedUser(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, cached.TokenVersion)

	require.NoError(t, svc.InvalidateUser(ctx, 7))
	_, ok, err = svc.CachedUser(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, svc.CacheUser(ctx, &models.User{}))
}

func TestCacheService_UserStoredWithoutCredentials(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	user := &models.User{
		Model:           gorm.Model{ID: 8},
		Email:           "grace@example.com",
		Password:        "$2a$10$hashhashhash",
		TwoFactorSecret: "JBSWY3DPEHPK3PXP",
		BackupCodes:     []string{"backup-hash-1"},
		TokenVersion:    2,
	}
	require.NoError(t, svc.CacheUser(ctx, user))

	raw, err := mr.Get("user:id:8")
	require.NoError(t, err)
	assert.Contains(t, raw, "grace@example.com")
	assert.NotContains(t, raw, "$2a$10$hashhashhash")
	assert.NotContains(t, raw, "JBSWY3DPEHPK3PXP")
	assert.NotContains(t, raw, "backup-hash-1")

	// the caller's record keeps its credentials
	assert.Equal(t, "$2a$10$hashhashhash", user.Password)

	cached, ok, err := svc.CachedUser(ctx, 8)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, cached.Password)
	assert.Empty(t, cached.TwoFactorSecret)
	assert.Empty(t, cached.BackupCodes)
	assert.Equal(t, 2, cached.TokenVersion)
}

func TestCacheService_Purge(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("price:chart:BTC:%d", i), "[]"))
	}
	require.NoError(t, mr.Set("wallet:user:1", "[]"))
	require.NoError(t, mr.Set("session:other", "keep"))

	n, err := svc.Purge(ctx, PricePrefix, WalletPrefix)
	require.NoError(t, err)
	assert.Equal(t, 251, n)
	assert.False(t, mr.Exists("wallet:user:1"))
	assert.True(t, mr.Exists("session:other"))
}

func TestCacheService_HealthCheck(t *testing.T) {
	svc, mr := newTestCache(t)
	assert.NoError(t, svc.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, svc.HealthCheck(context.Background()))
}
