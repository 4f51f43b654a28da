package pricefeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tcw1/internal/repositories/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	quotes map[string]Quote
	chart  []ChartPoint
	err    error
	calls  int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Quotes(context.Context) (map[string]Quote, error) {
	p.calls++
	return p.quotes, p.err
}

func (p *stubProvider) Chart(context.Context, string, int) ([]ChartPoint, error) {
	p.calls++
	return p.chart, p.err
}

type countingMetrics struct{ results []string }

func (m *countingMetrics) RecordPriceFetch(_, result string) { m.results = append(m.results, result) }

func newTestCache(t *testing.T) (*cache.CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := cache.NewRedisClient(&cache.RedisConfig{Host: mr.Host(), Port: mr.Port()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewCacheService(client, time.Minute), mr
}

func TestNormalizeDays(t *testing.T) {
	assert.Equal(t, 7, NormalizeDays(0))
	assert.Equal(t, 7, NormalizeDays(-3))
	assert.Equal(t, 30, NormalizeDays(30))
	assert.Equal(t, 365, NormalizeDays(1000))
}

func TestService_MockPrices(t *testing.T) {
	svc := NewService(nil, nil, nil)
	ctx := context.Background()

	price, err := svc.Price(ctx, "btc")
	require.NoError(t, err)
	assert.Equal(t, 45000.0, price)

	_, err = svc.Price(ctx, "DOGE")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)

	converted, err := svc.Convert(ctx, 1, "BTC", "ETH")
	require.NoError(t, err)
	assert.InDelta(t, 18.0, converted, 1e-9)

	same, err := svc.Convert(ctx, 2.5, "ETH", "ETH")
	require.NoError(t, err)
	assert.Equal(t, 2.5, same)

	_, err = svc.Convert(ctx, 0, "BTC", "ETH")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestService_QuotesAreCached(t *testing.T) {
	c, mr := newTestCache(t)
	provider := &stubProvider{quotes: map[string]Quote{
		"BTC":  {Currency: "BTC", Price: 50000},
		"ETH":  {Currency: "ETH", Price: 3000},
		"USDT": {Currency: "USDT", Price: 1},
	}}
	metrics := &countingMetrics{}
	svc := NewService(provider, c, metrics)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		price, err := svc.Price(ctx, "BTC")
		require.NoError(t, err)
		assert.Equal(t, 50000.0, price)
	}
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, []string{"ok"}, metrics.results)

	// after the fresh entry expires the last known quotes survive a provider outage
	mr.FastForward(2 * time.Minute)
	provider.err = errors.New("upstream down")
	provider.quotes = nil

	price, err := svc.Price(ctx, "ETH")
	require.NoError(t, err)
	assert.Equal(t, 3000.0, price)
	assert.Equal(t, []string{"ok", "error"}, metrics.results)
}

func TestService_FallsBackToMock(t *testing.T) {
	svc := NewService(&stubProvider{err: errors.New("boom")}, nil, nil)

	price, err := svc.Price(context.Background(), "ETH")
	require.NoError(t, err)
	assert.Equal(t, 2500.0, price)

	points, err := svc.Chart(context.Background(), "BTC", 2)
	require.NoError(t, err)
	assert.Len(t, points, 49)
}

func TestService_ChartFallsBackToLastKnown(t *testing.T) {
	c, mr := newTestCache(t)
	live := []ChartPoint{{Timestamp: 1700000000000, Price: 61000}, {Timestamp: 1700003600000, Price: 61500}}
	provider := &stubProvider{chart: live}
	metrics := &countingMetrics{}
	svc := NewService(provider, c, metrics)
	ctx := context.Background()

	points, err := svc.Chart(ctx, "btc", 7)
	require.NoError(t, err)
	assert.Equal(t, live, points)

	// fresh entry gone, provider down: the last real chart is served instead of mock data
	mr.FastForward(10 * time.Minute)
	provider.err = errors.New("upstream down")
	provider.chart = nil

	points, err = svc.Chart(ctx, "BTC", 7)
	require.NoError(t, err)
	assert.Equal(t, live, points)
	assert.Equal(t, []string{"ok", "error"}, metrics.results)

	// nothing known for another window, so the mock chart is used
	points, err = svc.Chart(ctx, "BTC", 90)
	require.NoError(t, err)
	assert.Len(t, points, 91)
}

func TestMockChart(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	hourly := mockChart("BTC", 7, now)
	require.Len(t, hourly, 7*24+1)
	assert.Equal(t, now.Truncate(time.Hour).UnixMilli(), hourly[len(hourly)-1].Timestamp)
	for _, p := range hourly {
		assert.InDelta(t, 45000, p.Price, 45000*0.021)
	}

	daily := mockChart("USDT", 90, now)
	assert.Len(t, daily, 91)
	assert.Less(t, daily[0].Timestamp, daily[1].Timestamp)
}

func TestCoinGeckoProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/markets":
			assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
			w.Write([]byte(`[
				{"id":"bitcoin","current_price":61000.5,"market_cap":1.2e12,"total_volume":3.1e10,"price_change_percentage_24h_in_currency":1.5,"price_change_percentage_7d_in_currency":-2.25},
				{"id":"ethereum","current_price":3100,"market_cap":3.7e11,"total_volume":1.5e10},
				{"id":"tether","current_price":1.001,"market_cap":1.1e11,"total_volume":5e10}
			]`))
		case "/coins/bitcoin/market_chart":
			assert.Equal(t, "3", r.URL.Query().Get("days"))
			w.Write([]byte(`{"prices":[[1700000000000,60000.1],[1700003600000,60100.2]]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewCoinGeckoProvider(srv.URL, 100, srv.Client())
	ctx := context.Background()

	quotes, err := p.Quotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 61000.5, quotes["BTC"].Price)
	assert.Equal(t, 1.5, quotes["BTC"].Change24h)
	assert.Equal(t, -2.25, quotes["BTC"].Change7d)
	assert.Equal(t, 1.001, quotes["USDT"].Price)

	points, err := p.Chart(ctx, "BTC", 3)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, int64(1700003600000), points[1].Timestamp)
	assert.Equal(t, 60100.2, points[1].Price)

	_, err = p.Chart(ctx, "DOGE", 3)
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
}

func TestCoinGeckoProvider_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewCoinGeckoProvider(srv.URL, 100, nil).Quotes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
