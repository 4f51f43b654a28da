package wallet

import (
	"context"
	"time"

	"tcw1/internal/models"
)

// Service defines the user wallet operations
type Service interface {
	// Wallet management
	AssignWallet(ctx context.Context, input AssignInput) (*models.UserWallet, error)
	// PrepareWallet validates an assignment and returns the unsaved wallet,
	// for callers that persist it inside their own transaction.
	PrepareWallet(ctx context.Context, input AssignInput) (*models.UserWallet, error)
	DeactivateWallet(ctx context.Context, userID uint, walletType string) error

	// Lookups
	GetUserWallets(ctx context.Context, userID uint) ([]models.UserWallet, error)
	GetWallet(ctx context.Context, userID uint, walletType string) (*models.UserWallet, error)

	// Balance operations
	UpdateBalance(ctx context.Context, userID uint, walletType string, balance float64) (*models.UserWallet, error)
	Credit(ctx context.Context, userID uint, walletType string, amount float64) (bool, error)

	InvalidateWalletCache(ctx context.Context, userID uint)
}

// Cache is the subset of the Redis cache used for wallet lists.
type Cache interface {
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// AssignInput describes a wallet handed to a user.
type AssignInput struct {
	UserID         uint   `json:"userId"`
	Address        string `json:"walletAddress"`
	WalletType     string `json:"walletType"`
	PublicKey      string `json:"publicKey,omitempty"`
	DerivationPath string `json:"derivationPath,omitempty"`
}
