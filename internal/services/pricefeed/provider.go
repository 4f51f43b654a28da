// Package pricefeed serves crypto prices and charts from a pluggable
// provider, cached in Redis with a mocked fallback.
package pricefeed

import (
	"context"
	"math"
	"time"

	"tcw1/internal/models"
)

// Quote is the market snapshot of one asset in USD.
type Quote struct {
	Currency  string  `json:"currency"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
	Change7d  float64 `json:"change7d"`
	MarketCap float64 `json:"marketCap"`
	Volume24h float64 `json:"volume24h"`
}

type ChartPoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// Provider is an upstream source of market data.
type Provider interface {
	Name() string
	Quotes(ctx context.Context) (map[string]Quote, error)
	Chart(ctx context.Context, currency string, days int) ([]ChartPoint, error)
}

// MockPrices are the fixed USD prices used when no market data is available.
var MockPrices = map[string]float64{
	models.CurrencyBTC:  45000,
	models.CurrencyETH:  2500,
	models.CurrencyUSDT: 1,
}

var mockSupply = map[string]float64{
	models.CurrencyBTC:  19_600_000,
	models.CurrencyETH:  120_000_000,
	models.CurrencyUSDT: 95_000_000_000,
}

var mockVolume = map[string]float64{
	models.CurrencyBTC:  25_000_000_000,
	models.CurrencyETH:  12_000_000_000,
	models.CurrencyUSDT: 40_000_000_000,
}

// MockProvider returns deterministic data derived from MockPrices.
type MockProvider struct {
	Now func() time.Time
}

func NewMockProvider() *MockProvider {
	return &MockProvider{Now: time.Now}
}

func (p *MockProvider) Name() string { return "mock" }

func (p *MockProvider) Quotes(_ context.Context) (map[string]Quote, error) {
	return mockQuotes(), nil
}

func (p *MockProvider) Chart(_ context.Context, currency string, days int) ([]ChartPoint, error) {
	return mockChart(currency, days, p.Now()), nil
}

func mockQuotes() map[string]Quote {
	quotes := make(map[string]Quote, len(MockPrices))
	for cur, price := range MockPrices {
		quotes[cur] = Quote{
			Currency:  cur,
			Price:     price,
			MarketCap: price * mockSupply[cur],
			Volume24h: mockVolume[cur],
		}
	}
	return quotes
}

// mockChart draws a gentle wave around the mock price, hourly up to 30 days and daily beyond.
func mockChart(currency string, days int, now time.Time) []ChartPoint {
	base := MockPrices[currency]
	step := time.Hour
	count := days * 24
	if days > 30 {
		step = 24 * time.Hour
		count = days
	}
	// stablecoins barely move
	amplitude := 0.02
	if currency == models.CurrencyUSDT {
		amplitude = 0.001
	}

	end := now.Truncate(step)
	points := make([]ChartPoint, 0, count+1)
	for i := count; i >= 0; i-- {
		at := end.Add(-time.Duration(i) * step)
		wave := math.Sin(float64(at.Unix()/int64(step.Seconds())) / 6)
		price := math.Round(base*(1+amplitude*wave)*100) / 100
		points = append(points, ChartPoint{Timestamp: at.UnixMilli(), Price: price})
	}
	return points
}
