// Package repositories provides data access layer implementations.
// It handles all database operations and data persistence logic.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"tcw1/internal/config"
	"tcw1/internal/logger"
	"tcw1/internal/models"
	"tcw1/internal/repositories/cache"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB is the global database instance used across the application.
var DB *gorm.DB
var CacheService *cache.CacheService

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Models lists every table managed by AutoMigrate.
var Models = []interface{}{
	&models.User{},
	&models.FriendRequest{},
	&models.BlockchainTransaction{},
	&models.UserWallet{},
	&models.WalletRequest{},
	&models.DepositConfirmation{},
	&models.LoginApproval{},
	&models.Product{},
	&models.MarketplaceListing{},
	&models.Order{},
	&models.Membership{},
}

// InitDB connects PostgreSQL and Redis, applies migrations and
// installs the package level DB and CacheService.
func InitDB(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  !config.IsProduction(),
			},
		),
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	DB = db
	logger.Log.Info("✅ PostgreSQL connected & migrations applied")

	redisClient := cache.NewRedisClient(&cache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	CacheService = cache.NewCacheService(redisClient, cfg.CacheTTL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := CacheService.HealthCheck(ctx); err != nil {
		logger.Log.Warnw("⚠️ Redis unavailable, continuing without a warm cache", "error", err)
	} else {
		logger.Log.Info("✅ Redis connected")
	}
	return nil
}

// Close releases the PostgreSQL pool and the Redis client.
func Close() {
	if DB != nil {
		if sqlDB, err := DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Log.Warnw("⚠️ Failed to close database connection", "error", err)
			}
		}
	}
	if CacheService != nil {
		if err := CacheService.Close(); err != nil {
			logger.Log.Warnw("⚠️ Failed to close Redis connection", "error", err)
		}
	}
}

// Ping checks the database connection.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DropAllTables removes every managed table.
func DropAllTables(db *gorm.DB) error {
	return db.Migrator().DropTable(Models...)
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
