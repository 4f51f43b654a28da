// Package blockchain records simulated on-chain transactions and trades and
// drives them from pending to confirmed.
package blockchain

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"tcw1/internal/logger"
	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/services/chain"
	"tcw1/internal/services/pricefeed"
	"tcw1/internal/validation"

	"github.com/shopspring/decimal"
)

const (
	TradingFee = 0.005

	DefaultTransactionLimit = 50
	MaxTransactionLimit     = 200
	DefaultRecentLimit      = 20
	MaxRecentLimit          = 100

	DefaultConfirmationDelay = 5 * time.Second
)

type Service interface {
	CreateTransaction(ctx context.Context, input CreateTransactionInput) (*models.BlockchainTransaction, error)
	ExecuteTrade(ctx context.Context, input TradeInput) (*TradeResult, error)
	GetUserTransactions(ctx context.Context, userID uint, opts ListOptions) ([]models.BlockchainTransaction, error)
	GetTransactionByHash(ctx context.Context, hash string) (*models.BlockchainTransaction, error)
	VerifyTransaction(ctx context.Context, hash string) (*models.BlockchainTransaction, error)
	GetTradingStats(ctx context.Context, userID uint) (*TradingStats, error)
	GetRecentTransactions(ctx context.Context, limit int) ([]models.BlockchainTransaction, error)

	// ResumePending reschedules confirmation for transactions left pending by a restart.
	ResumePending(ctx context.Context) (int, error)
	// Shutdown stops scheduling and waits for in-flight confirmations.
	Shutdown(ctx context.Context) error
}

type MetricsCollector interface {
	RecordTrade(pair string, volumeUSD float64)
	RecordConfirmation(currency string)
}

type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTrade(string, float64) {}
func (NoopMetricsCollector) RecordConfirmation(string)   {}

type CreateTransactionInput struct {
	UserID      uint
	FromAddress string
	ToAddress   string
	Amount      float64
	Currency    string
	Type        string
	Network     string
	Metadata    models.JSON
}

type TradeInput struct {
	UserID       uint    `json:"-"`
	FromCurrency string  `json:"fromCurrency"`
	ToCurrency   string  `json:"toCurrency"`
	Amount       float64 `json:"amount"`
	FromAddress  string  `json:"fromAddress"`
	ToAddress    string  `json:"toAddress"`
}

type TradeResult struct {
	Transaction    *models.BlockchainTransaction `json:"transaction"`
	ReceivedAmount float64                       `json:"receivedAmount"`
}

type ListOptions struct {
	Limit  int
	Status string
	Type   string
}

type TradingStats struct {
	TotalTrades    int     `json:"totalTrades"`
	TotalVolume    float64 `json:"totalVolume"`
	ProfitLoss     float64 `json:"profitLoss"`
	MostTradedPair string  `json:"mostTradedPair"`
}

type Config struct {
	ConfirmationDelay time.Duration
	Network           string
}

type service struct {
	repo     repositories.TransactionRepository
	prices   pricefeed.Service
	verifier chain.Verifier
	metrics  MetricsCollector
	cfg      Config
	now      func() time.Time

	// mu orders wg.Add against Shutdown's cancel
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewService(repo repositories.TransactionRepository, prices pricefeed.Service, verifier chain.Verifier, metrics MetricsCollector, cfg Config) Service {
	if cfg.ConfirmationDelay <= 0 {
		cfg.ConfirmationDelay = DefaultConfirmationDelay
	}
	if cfg.Network == "" {
		cfg.Network = models.NetworkMainnet
	}
	if verifier == nil {
		verifier = chain.NewSimulatedVerifier()
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &service{
		repo:     repo,
		prices:   prices,
		verifier: verifier,
		metrics:  metrics,
		cfg:      cfg,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *service) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*models.BlockchainTransaction, error) {
	if s.ctx.Err() != nil {
		return nil, ErrServiceStopped
	}

	v := validation.New()
	v.Positive("amount", input.Amount)
	v.OneOf("currency", input.Currency, models.CryptoCurrencies...)
	v.OneOf("type", input.Type, models.TxTypeSend, models.TxTypeReceive, models.TxTypeTrade)
	v.Required("fromAddress", input.FromAddress)
	v.Required("toAddress", input.ToAddress)
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := chain.SimulateTransactionHash()
	if err != nil {
		return nil, err
	}

	network := input.Network
	if network == "" {
		network = s.cfg.Network
	}

	tx := &models.BlockchainTransaction{
		UserID:          input.UserID,
		TransactionHash: hash,
		FromAddress:     input.FromAddress,
		ToAddress:       input.ToAddress,
		Amount:          input.Amount,
		Currency:        input.Currency,
		Type:            input.Type,
		Status:          models.TxStatusPending,
		Confirmations:   0,
		Network:         network,
		Verified:        false,
		Metadata:        input.Metadata,
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.scheduleConfirmation(tx.TransactionHash, tx.Currency, s.cfg.ConfirmationDelay)
	return tx, nil
}

func (s *service) ExecuteTrade(ctx context.Context, input TradeInput) (*TradeResult, error) {
	input.FromCurrency = strings.ToUpper(strings.TrimSpace(input.FromCurrency))
	input.ToCurrency = strings.ToUpper(strings.TrimSpace(input.ToCurrency))

	v := validation.New()
	v.Trade(input.FromCurrency, input.ToCurrency, input.Amount)
	v.Required("fromAddress", input.FromAddress)
	v.Required("toAddress", input.ToAddress)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if !chain.ValidateAddress(input.FromCurrency, input.FromAddress) || !chain.ValidateAddress(input.ToCurrency, input.ToAddress) {
		return nil, ErrInvalidAddress
	}

	fromPrice, err := s.prices.Price(ctx, input.FromCurrency)
	if err != nil {
		return nil, err
	}
	toPrice, err := s.prices.Price(ctx, input.ToCurrency)
	if err != nil {
		return nil, err
	}

	amount := decimal.NewFromFloat(input.Amount)
	fee := decimal.NewFromFloat(TradingFee)
	ratio := decimal.NewFromFloat(fromPrice).Div(decimal.NewFromFloat(toPrice))
	received := amount.Mul(ratio).Mul(decimal.NewFromInt(1).Sub(fee))
	pair := input.FromCurrency + "/" + input.ToCurrency

	tx, err := s.CreateTransaction(ctx, CreateTransactionInput{
		UserID:      input.UserID,
		FromAddress: input.FromAddress,
		ToAddress:   input.ToAddress,
		Amount:      input.Amount,
		Currency:    input.FromCurrency,
		Type:        models.TxTypeTrade,
		Metadata: models.JSON{
			"tradePair":        pair,
			"tradePrice":       ratio.InexactFloat64(),
			"tradeType":        "buy",
			"receivedAmount":   received.InexactFloat64(),
			"receivedCurrency": input.ToCurrency,
			"fee":              amount.Mul(fee).InexactFloat64(),
		},
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTrade(pair, amount.Mul(decimal.NewFromFloat(fromPrice)).InexactFloat64())
	logger.Log.Infow("💱 Trade executed", "user_id", input.UserID, "pair", pair, "amount", input.Amount, "tx", tx.TransactionHash)

	return &TradeResult{Transaction: tx, ReceivedAmount: received.InexactFloat64()}, nil
}

func (s *service) GetUserTransactions(ctx context.Context, userID uint, opts ListOptions) ([]models.BlockchainTransaction, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	if limit > MaxTransactionLimit {
		limit = MaxTransactionLimit
	}
	return s.repo.ListByUser(ctx, userID, repositories.TransactionFilter{
		Status: opts.Status,
		Type:   opts.Type,
		Limit:  limit,
	})
}

func (s *service) GetTransactionByHash(ctx context.Context, hash string) (*models.BlockchainTransaction, error) {
	tx, err := s.repo.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// VerifyTransaction refreshes ETH and USDT transactions from the verifier.
// Other currencies are returned unchanged.
func (s *service) VerifyTransaction(ctx context.Context, hash string) (*models.BlockchainTransaction, error) {
	tx, err := s.GetTransactionByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if tx.Currency != models.CurrencyETH && tx.Currency != models.CurrencyUSDT {
		return tx, nil
	}

	result, err := s.verifier.Verify(ctx, tx)
	if err != nil {
		return nil, err
	}

	tx.Verified = result.Verified
	tx.Confirmations = result.Confirmations
	block := result.BlockNumber
	tx.BlockNumber = &block
	if result.Confirmations >= models.RequiredTxConfirmations && tx.Status != models.TxStatusConfirmed {
		now := s.now().UTC()
		tx.Status = models.TxStatusConfirmed
		tx.ConfirmedAt = &now
		s.metrics.RecordConfirmation(tx.Currency)
	}

	if err := s.repo.Update(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *service) GetTradingStats(ctx context.Context, userID uint) (*TradingStats, error) {
	trades, err := s.repo.ListTrades(ctx, userID)
	if err != nil {
		return nil, err
	}

	volume := decimal.Zero
	pairCounts := make(map[string]int)
	for _, trade := range trades {
		price, err := s.prices.Price(ctx, trade.Currency)
		if err != nil {
			return nil, err
		}
		volume = volume.Add(decimal.NewFromFloat(trade.Amount).Mul(decimal.NewFromFloat(price)))
		if pair := trade.TradePair(); pair != "" {
			pairCounts[pair]++
		}
	}

	return &TradingStats{
		TotalTrades:    len(trades),
		TotalVolume:    volume.InexactFloat64(),
		ProfitLoss:     0,
		MostTradedPair: mostTraded(pairCounts),
	}, nil
}

func mostTraded(counts map[string]int) string {
	pairs := make([]string, 0, len(counts))
	for p := range counts {
		pairs = append(pairs, p)
	}
	if len(pairs) == 0 {
		return "N/A"
	}
	sort.Slice(pairs, func(i, j int) bool {
		if counts[pairs[i]] != counts[pairs[j]] {
			return counts[pairs[i]] > counts[pairs[j]]
		}
		return pairs[i] < pairs[j]
	})
	return pairs[0]
}

// GetRecentTransactions is the public feed; owners are stripped.
func (s *service) GetRecentTransactions(ctx context.Context, limit int) ([]models.BlockchainTransaction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	txs, err := s.repo.ListRecentVerified(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		txs[i].UserID = 0
	}
	return txs, nil
}
