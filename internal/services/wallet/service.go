package wallet

import (
	"time"

	"tcw1/internal/repositories"
)

type service struct {
	repo    repositories.UserWalletRepository
	cache   Cache
	metrics MetricsCollector
	now     func() time.Time
}

// NewService creates the wallet service. cache may be nil.
func NewService(repo repositories.UserWalletRepository, cache Cache, metrics MetricsCollector) Service {
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	return &service{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		now:     time.Now,
	}
}
