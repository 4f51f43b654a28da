package pricefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tcw1/internal/models"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

var coinGeckoIDs = map[string]string{
	models.CurrencyBTC:  "bitcoin",
	models.CurrencyETH:  "ethereum",
	models.CurrencyUSDT: "tether",
}

// CoinGeckoProvider reads the public CoinGecko v3 API.
type CoinGeckoProvider struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewCoinGeckoProvider throttles outgoing calls to requestsPerSecond.
func NewCoinGeckoProvider(baseURL string, requestsPerSecond float64, client *http.Client) *CoinGeckoProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 0.5
	}
	return &CoinGeckoProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (p *CoinGeckoProvider) Name() string { return "coingecko" }

func (p *CoinGeckoProvider) Quotes(ctx context.Context) (map[string]Quote, error) {
	ids := make([]string, 0, len(coinGeckoIDs))
	for _, cur := range models.CryptoCurrencies {
		ids = append(ids, coinGeckoIDs[cur])
	}

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("ids", strings.Join(ids, ","))
	q.Set("price_change_percentage", "24h,7d")

	body, err := p.get(ctx, "/coins/markets", q)
	if err != nil {
		return nil, err
	}

	markets := gjson.ParseBytes(body)
	if !markets.IsArray() {
		return nil, fmt.Errorf("coingecko markets: unexpected payload")
	}

	quotes := make(map[string]Quote, len(coinGeckoIDs))
	for _, cur := range models.CryptoCurrencies {
		m := markets.Get(fmt.Sprintf(`#(id=="%s")`, coinGeckoIDs[cur]))
		if !m.Exists() {
			return nil, fmt.Errorf("coingecko markets: missing %s", cur)
		}
		quotes[cur] = Quote{
			Currency:  cur,
			Price:     m.Get("current_price").Float(),
			Change24h: m.Get("price_change_percentage_24h_in_currency").Float(),
			Change7d:  m.Get("price_change_percentage_7d_in_currency").Float(),
			MarketCap: m.Get("market_cap").Float(),
			Volume24h: m.Get("total_volume").Float(),
		}
	}
	return quotes, nil
}

func (p *CoinGeckoProvider) Chart(ctx context.Context, currency string, days int) ([]ChartPoint, error) {
	id, ok := coinGeckoIDs[currency]
	if !ok {
		return nil, ErrUnsupportedCurrency
	}

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", strconv.Itoa(days))

	body, err := p.get(ctx, "/coins/"+id+"/market_chart", q)
	if err != nil {
		return nil, err
	}

	prices := gjson.GetBytes(body, "prices")
	if !prices.IsArray() {
		return nil, fmt.Errorf("coingecko chart: unexpected payload")
	}

	points := make([]ChartPoint, 0, len(prices.Array()))
	prices.ForEach(func(_, pair gjson.Result) bool {
		points = append(points, ChartPoint{
			Timestamp: pair.Get("0").Int(),
			Price:     pair.Get("1").Float(),
		})
		return true
	})
	return points, nil
}

func (p *CoinGeckoProvider) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko %s: unexpected status %d", path, resp.StatusCode)
	}
	return body, nil
}
