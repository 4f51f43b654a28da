package pricefeed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tcw1/internal/logger"
	"tcw1/internal/models"

	"github.com/shopspring/decimal"
)

const (
	DefaultChartDays = 7
	MaxChartDays     = 365

	quotesTTL     = time.Minute
	chartTTL      = 5 * time.Minute
	lastKnownTTL  = 24 * time.Hour
	quotesKey     = "price:quotes:fresh"
	lastQuotesKey = "price:quotes:last"
)

// Cache is the subset of the Redis cache the price feed needs.
type Cache interface {
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
}

type MetricsCollector interface {
	RecordPriceFetch(provider, result string)
}

type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPriceFetch(provider, result string) {}

type Service interface {
	Quotes(ctx context.Context) (map[string]Quote, error)
	Price(ctx context.Context, currency string) (float64, error)
	Chart(ctx context.Context, currency string, days int) ([]ChartPoint, error)
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}

type service struct {
	provider Provider
	cache    Cache
	metrics  MetricsCollector
	now      func() time.Time
}

// NewService wires a provider with an optional cache. A nil provider means mock prices.
func NewService(provider Provider, cache Cache, metrics MetricsCollector) Service {
	if provider == nil {
		provider = NewMockProvider()
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{
		provider: provider,
		cache:    cache,
		metrics:  metrics,
		now:      time.Now,
	}
}

// NormalizeDays clamps a chart window to [1, MaxChartDays], defaulting to a week.
func NormalizeDays(days int) int {
	if days < 1 {
		return DefaultChartDays
	}
	if days > MaxChartDays {
		return MaxChartDays
	}
	return days
}

func (s *service) Quotes(ctx context.Context) (map[string]Quote, error) {
	var quotes map[string]Quote
	if s.cacheGet(ctx, quotesKey, &quotes) {
		return quotes, nil
	}

	quotes, err := s.provider.Quotes(ctx)
	if err == nil {
		s.metrics.RecordPriceFetch(s.provider.Name(), "ok")
		s.cacheSet(ctx, quotesKey, quotes, quotesTTL)
		s.cacheSet(ctx, lastQuotesKey, quotes, lastKnownTTL)
		return quotes, nil
	}

	s.metrics.RecordPriceFetch(s.provider.Name(), "error")
	logger.Log.Warnw("⚠️ Price provider failed, using fallback", "provider", s.provider.Name(), "error", err)

	if s.cacheGet(ctx, lastQuotesKey, &quotes) {
		return quotes, nil
	}
	return mockQuotes(), nil
}

func (s *service) Price(ctx context.Context, currency string) (float64, error) {
	currency = strings.ToUpper(currency)
	if !models.IsCryptoCurrency(currency) {
		return 0, ErrUnsupportedCurrency
	}

	quotes, err := s.Quotes(ctx)
	if err != nil {
		return 0, err
	}
	q, ok := quotes[currency]
	if !ok || q.Price <= 0 {
		return 0, ErrPriceUnavailable
	}
	return q.Price, nil
}

func (s *service) Chart(ctx context.Context, currency string, days int) ([]ChartPoint, error) {
	currency = strings.ToUpper(currency)
	if !models.IsCryptoCurrency(currency) {
		return nil, ErrUnsupportedCurrency
	}
	days = NormalizeDays(days)

	key := fmt.Sprintf("price:chart:%s:%d", currency, days)
	lastKey := key + ":last"
	var points []ChartPoint
	if s.cacheGet(ctx, key, &points) {
		return points, nil
	}

	points, err := s.provider.Chart(ctx, currency, days)
	if err != nil || len(points) == 0 {
		s.metrics.RecordPriceFetch(s.provider.Name(), "error")
		var last []ChartPoint
		if s.cacheGet(ctx, lastKey, &last) && len(last) > 0 {
			logger.Log.Warnw("⚠️ Chart provider failed, serving last known chart", "currency", currency, "days", days, "error", err)
			return last, nil
		}
		logger.Log.Warnw("⚠️ Chart provider failed, using mock chart", "currency", currency, "days", days, "error", err)
		return mockChart(currency, days, s.now()), nil
	}

	s.metrics.RecordPriceFetch(s.provider.Name(), "ok")
	s.cacheSet(ctx, key, points, chartTTL)
	s.cacheSet(ctx, lastKey, points, lastKnownTTL)
	return points, nil
}

// Convert returns amount*price(from)/price(to).
func (s *service) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	from, to = strings.ToUpper(from), strings.ToUpper(to)

	fromPrice, err := s.Price(ctx, from)
	if err != nil {
		return 0, err
	}
	if from == to {
		return amount, nil
	}
	toPrice, err := s.Price(ctx, to)
	if err != nil {
		return 0, err
	}

	result := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(fromPrice)).
		Div(decimal.NewFromFloat(toPrice))
	return result.InexactFloat64(), nil
}

func (s *service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.Log.Debugw("price cache read failed", "key", key, "error", err)
		return false
	}
	return found
}

func (s *service) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetWithTTL(ctx, key, value, ttl); err != nil {
		logger.Log.Debugw("price cache write failed", "key", key, "error", err)
	}
}
