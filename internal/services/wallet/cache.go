package wallet

import (
	"context"
	"fmt"

	"tcw1/internal/logger"
	"tcw1/internal/models"
)

const cacheName = "wallets"

func walletsKey(userID uint) string {
	return fmt.Sprintf("%s%d", WalletCachePrefix, userID)
}

func (s *service) cachedWallets(ctx context.Context, userID uint) ([]models.UserWallet, bool) {
	if s.cache == nil {
		return nil, false
	}
	var wallets []models.UserWallet
	found, err := s.cache.Get(ctx, walletsKey(userID), &wallets)
	if err != nil || !found {
		s.metrics.RecordCacheMiss(cacheName)
		return nil, false
	}
	s.metrics.RecordCacheHit(cacheName)
	return wallets, true
}

func (s *service) storeWallets(ctx context.Context, userID uint, wallets []models.UserWallet) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetWithTTL(ctx, walletsKey(userID), wallets, CacheDuration); err != nil {
		logger.Log.Warnw("failed to cache wallets", "user_id", userID, "error", err)
	}
}

// InvalidateWalletCache drops the cached wallet list of a user.
func (s *service) InvalidateWalletCache(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, walletsKey(userID)); err != nil {
		logger.Log.Warnw("failed to invalidate wallet cache", "user_id", userID, "error", err)
	}
}
