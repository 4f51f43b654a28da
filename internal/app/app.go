// Package app wires repositories and services into a ready-to-serve graph
// shared by the API server and the admin CLI.
package app

import (
	"context"

	"tcw1/internal/config"
	"tcw1/internal/handlers"
	"tcw1/internal/logger"
	"tcw1/internal/metrics"
	"tcw1/internal/middleware"
	"tcw1/internal/repositories"
	"tcw1/internal/repositories/cache"
	"tcw1/internal/routes"
	"tcw1/internal/scheduler"
	"tcw1/internal/services/admin"
	"tcw1/internal/services/auth"
	"tcw1/internal/services/billing"
	"tcw1/internal/services/blockchain"
	"tcw1/internal/services/catalog"
	"tcw1/internal/services/chain"
	"tcw1/internal/services/deposit"
	"tcw1/internal/services/loginapproval"
	"tcw1/internal/services/marketplace"
	"tcw1/internal/services/membership"
	"tcw1/internal/services/notification"
	"tcw1/internal/services/order"
	"tcw1/internal/services/pricefeed"
	"tcw1/internal/services/user"
	"tcw1/internal/services/wallet"
	"tcw1/internal/services/walletrequest"
	"tcw1/internal/utils"

	"gorm.io/gorm"
)

const Version = "1.0.0"

// Services is the application's service graph.
type Services struct {
	Tokens        *utils.TokenManager
	Users         repositories.UserRepository
	Auth          auth.Service
	Prices        pricefeed.Service
	Blockchain    blockchain.Service
	Wallets       wallet.Service
	WalletRequest walletrequest.Service
	Deposits      deposit.Service
	LoginApproval loginapproval.Service
	Catalog       catalog.Service
	Marketplace   marketplace.Service
	Orders        order.Service
	Membership    membership.Service
	Admin         admin.Service
	User          user.Service
}

// NewServices builds every service on top of db. cacheSvc may be nil, in
// which case lookups go straight to PostgreSQL and prices are not cached.
func NewServices(cfg *config.Config, db *gorm.DB, cacheSvc *cache.CacheService, m *metrics.Collector) (*Services, error) {
	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	users := repositories.NewUserRepository(db, cacheSvc)
	txRepo := repositories.NewTransactionRepository(db)

	notifier := notification.NewService(notification.NewMailer(cfg.SendGridAPIKey, cfg.MailFromEmail, cfg.MailFromName), cfg.AppURL)

	var priceCache pricefeed.Cache
	var walletCache wallet.Cache
	if cacheSvc != nil {
		priceCache = cacheSvc
		walletCache = cacheSvc
	}
	prices := pricefeed.NewService(newPriceProvider(cfg), priceCache, m)

	var verifier chain.Verifier
	if cfg.EthRPCURL != "" {
		verifier = chain.NewRPCVerifier(cfg.EthRPCURL, nil)
		logger.Log.Infow("🔗 Using Ethereum RPC verifier", "url", cfg.EthRPCURL)
	} else {
		verifier = chain.NewSimulatedVerifier()
	}

	wallets := wallet.NewService(repositories.NewUserWalletRepository(db), walletCache, m)

	s := &Services{
		Tokens:        tokens,
		Users:         users,
		Auth:          auth.NewService(users, tokens, notifier, m),
		Prices:        prices,
		Blockchain:    blockchain.NewService(txRepo, prices, verifier, m, blockchain.Config{ConfirmationDelay: cfg.ConfirmationDelay}),
		Wallets:       wallets,
		WalletRequest: walletrequest.NewService(repositories.NewWalletRequestRepository(db), wallets),
		Deposits:      deposit.NewService(repositories.NewDepositRepository(db), wallets, m),
		LoginApproval: loginapproval.NewService(repositories.NewLoginApprovalRepository(db), users, notifier),
		Catalog:       catalog.NewService(repositories.NewProductRepository(db)),
		Marketplace:   marketplace.NewService(repositories.NewListingRepository(db)),
		Orders:        order.NewService(repositories.NewOrderRepository(db)),
		Membership:    membership.NewService(repositories.NewMembershipRepository(db), billing.NewCharger(cfg.StripeSecretKey), m),
		Admin:         admin.NewService(users, txRepo, prices),
		User:          user.NewService(users, repositories.NewFriendRepository(db)),
	}
	return s, nil
}

func newPriceProvider(cfg *config.Config) pricefeed.Provider {
	if cfg.PriceProvider == "coingecko" {
		logger.Log.Infow("📈 Using CoinGecko price provider", "url", cfg.CoinGeckoURL)
		return pricefeed.NewCoinGeckoProvider(cfg.CoinGeckoURL, cfg.PriceRequestRate, nil)
	}
	return pricefeed.NewMockProvider()
}

// Handlers builds the HTTP handlers for s.
func (s *Services) Handlers(cfg *config.Config, db *gorm.DB, cacheSvc *cache.CacheService) *routes.Handlers {
	var cachePinger handlers.CachePinger
	if cacheSvc != nil {
		cachePinger = cacheSvc
	}
	dbPinger := handlers.DBPingFunc(func(ctx context.Context) error {
		return repositories.Ping(ctx, db)
	})

	return &routes.Handlers{
		Auth:          handlers.NewAuthHandler(s.Auth, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Blockchain:    handlers.NewBlockchainHandler(s.Blockchain, s.Prices),
		Wallet:        handlers.NewWalletHandler(s.Wallets),
		WalletRequest: handlers.NewWalletRequestHandler(s.WalletRequest),
		Deposit:       handlers.NewDepositHandler(s.Deposits),
		LoginApproval: handlers.NewLoginApprovalHandler(s.LoginApproval),
		Catalog:       handlers.NewCatalogHandler(s.Catalog),
		Marketplace:   handlers.NewMarketplaceHandler(s.Marketplace),
		Order:         handlers.NewOrderHandler(s.Orders),
		Membership:    handlers.NewMembershipHandler(s.Membership),
		Admin:         handlers.NewAdminHandler(s.Admin),
		User:          handlers.NewUserHandler(s.User),
		Health:        handlers.NewHealthHandler(dbPinger, cachePinger, Version),
	}
}

// AuthMiddleware validates bearer tokens against the user table.
func (s *Services) AuthMiddleware() *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(s.Tokens, s.Auth)
}

// Scheduler returns a scheduler with the maintenance jobs registered.
func (s *Services) Scheduler(cfg *config.Config, m scheduler.MetricsCollector) (*scheduler.Scheduler, error) {
	sched := scheduler.New(m)
	jobs := scheduler.Maintenance(scheduler.Specs{
		Renewal:        cfg.RenewalSchedule,
		ListingExpiry:  cfg.ListingExpirySchedule,
		ApprovalExpiry: cfg.ApprovalExpirySchedule,
	}, s.Membership, s.Marketplace, s.LoginApproval)
	if err := scheduler.Register(sched, jobs); err != nil {
		return nil, err
	}
	return sched, nil
}
