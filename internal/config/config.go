package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the API server and admin tooling.
type Config struct {
	Port        string
	CORSOrigins string
	AccessLog   bool
	AppURL      string

	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBMaxIdleConns    int
	DBMaxOpenConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	JWTSecret       string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	StripeSecretKey string

	SendGridAPIKey string
	MailFromEmail  string
	MailFromName   string

	PriceProvider    string
	CoinGeckoURL     string
	PriceRequestRate float64
	EthRPCURL        string

	ConfirmationDelay time.Duration

	RenewalSchedule        string
	ListingExpirySchedule  string
	ApprovalExpirySchedule string
}

// Load reads the environment (after LoadEnv) into a Config.
func Load() *Config {
	return &Config{
		Port:        GetEnv("PORT", "3000"),
		CORSOrigins: GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AccessLog:   GetBoolEnv("ACCESS_LOG", true),
		AppURL:      GetEnv("APP_URL", "https://www.tcw1.org"),

		DBHost:            GetEnv("DB_HOST", "localhost"),
		DBPort:            GetEnv("DB_PORT", "5432"),
		DBUser:            GetEnv("DB_USER", "postgres"),
		DBPassword:        GetEnv("DB_PASSWORD", "postgres"),
		DBName:            GetEnv("DB_NAME", "tcw1"),
		DBSSLMode:         GetEnv("DB_SSLMODE", "disable"),
		DBMaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		DBConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		DBConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),

		RedisHost:     GetEnv("REDIS_HOST", "localhost"),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetIntEnv("REDIS_DB", 0),
		CacheTTL:      GetDurationEnv("CACHE_TTL", 24*time.Hour),

		JWTSecret:       GetEnv("JWT_SECRET", "tcw1-dev-secret"),
		RefreshSecret:   GetEnv("REFRESH_SECRET", "tcw1-dev-refresh-secret"),
		AccessTokenTTL:  GetDurationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: GetDurationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		StripeSecretKey: GetEnv("STRIPE_SECRET_KEY", ""),

		SendGridAPIKey: GetEnv("SENDGRID_API_KEY", ""),
		MailFromEmail:  GetEnv("MAIL_FROM_EMAIL", "noreply@tcw1.app"),
		MailFromName:   GetEnv("MAIL_FROM_NAME", "TCW1"),

		PriceProvider:    strings.ToLower(GetEnv("PRICE_PROVIDER", "mock")),
		CoinGeckoURL:     GetEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		PriceRequestRate: GetFloatEnv("PRICE_REQUESTS_PER_SECOND", 0.5),
		EthRPCURL:        GetEnv("ETH_RPC_URL", ""),

		ConfirmationDelay: GetDurationEnv("CONFIRMATION_DELAY", 5*time.Second),

		RenewalSchedule:        GetEnv("RENEWAL_SCHEDULE", "@daily"),
		ListingExpirySchedule:  GetEnv("LISTING_EXPIRY_SCHEDULE", "@hourly"),
		ApprovalExpirySchedule: GetEnv("APPROVAL_EXPIRY_SCHEDULE", "*/15 * * * *"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetFloatEnv returns a float environment variable or a default value.
func GetFloatEnv(key string, defaultVal float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// GetBoolEnv returns a bool environment variable or a default value.
func GetBoolEnv(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// GetDurationEnv parses values like "30s" or "1h".
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}
