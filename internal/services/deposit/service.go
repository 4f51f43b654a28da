// Package deposit tracks incoming deposits until they reach the required
// number of confirmations and credits the matching wallet.
package deposit

import (
	"context"
	"errors"
	"strings"
	"time"

	"tcw1/internal/logger"
	"tcw1/internal/models"
	"tcw1/internal/repositories"
)

var currencies = map[string]bool{
	models.CurrencyBTC:  true,
	models.CurrencyETH:  true,
	models.CurrencyUSDT: true,
	models.CurrencyUSD:  true,
}

type Service interface {
	CreateDeposit(ctx context.Context, input CreateInput) (*models.DepositConfirmation, error)
	UpdateConfirmationCount(ctx context.Context, id uint, confirmations int) (*models.DepositConfirmation, error)
	MarkDepositFailed(ctx context.Context, id uint, reason string) (*models.DepositConfirmation, error)
	CancelDeposit(ctx context.Context, id, userID uint) (*models.DepositConfirmation, error)
	GetUserDeposits(ctx context.Context, userID uint, status string) ([]models.DepositConfirmation, error)
	GetPendingDeposits(ctx context.Context) ([]models.DepositConfirmation, error)
}

type MetricsCollector interface {
	RecordDeposit(status string)
}

type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordDeposit(string) {}

type CreateInput struct {
	UserID          uint    `json:"-"`
	Amount          float64 `json:"depositAmount"`
	Currency        string  `json:"currency"`
	TransactionHash string  `json:"transactionHash"`
	FromAddress     string  `json:"fromAddress"`
	ToAddress       string  `json:"toAddress"`
	Notes           string  `json:"notes"`
}

// WalletCache drops cached wallet lists after a credit.
type WalletCache interface {
	InvalidateWalletCache(ctx context.Context, userID uint)
}

type service struct {
	repo    repositories.DepositRepository
	wallets WalletCache
	metrics MetricsCollector
	now     func() time.Time
}

func NewService(repo repositories.DepositRepository, wallets WalletCache, metrics MetricsCollector) Service {
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{
		repo:    repo,
		wallets: wallets,
		metrics: metrics,
		now:     time.Now,
	}
}

func (s *service) CreateDeposit(ctx context.Context, input CreateInput) (*models.DepositConfirmation, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if !currencies[currency] {
		return nil, ErrUnsupportedCurrency
	}

	d := &models.DepositConfirmation{
		UserID:                input.UserID,
		DepositAmount:         input.Amount,
		Currency:              currency,
		TransactionHash:       strings.TrimSpace(input.TransactionHash),
		FromAddress:           strings.TrimSpace(input.FromAddress),
		ToAddress:             strings.TrimSpace(input.ToAddress),
		Notes:                 input.Notes,
		Status:                models.DepositStatusPending,
		RequiredConfirmations: models.DefaultRequiredConfirmations,
		DepositDate:           s.now().UTC(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.metrics.RecordDeposit(models.DepositStatusPending)
	logger.Log.Infow("📥 Deposit recorded", "deposit_id", d.ID, "user_id", d.UserID, "amount", d.DepositAmount, "currency", d.Currency)
	return d, nil
}

// UpdateConfirmationCount stores the latest count. A pending deposit that
// reaches its threshold is confirmed and credited to the user's wallet in
// one transaction, so concurrent updates credit it at most once.
func (s *service) UpdateConfirmationCount(ctx context.Context, id uint, confirmations int) (*models.DepositConfirmation, error) {
	if confirmations < 0 {
		return nil, ErrInvalidConfirmations
	}

	d, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if d.Status == models.DepositStatusPending && confirmations >= d.RequiredConfirmations {
		now := s.now().UTC()
		// fiat deposits have no wallet to credit
		res, err := s.repo.ConfirmPending(ctx, id, confirmations, now, d.Currency != models.CurrencyUSD)
		if err != nil {
			logger.Log.Errorw("Failed to confirm deposit", "deposit_id", id, "error", err)
			return nil, err
		}
		if res.Confirmed {
			d.Status = models.DepositStatusConfirmed
			d.Confirmations = confirmations
			d.ConfirmedAt = &now
			s.confirmed(ctx, d, res.Credited)
			return d, nil
		}
		// another update settled it first, only the count changes
	}

	return s.storeCount(ctx, id, confirmations)
}

func (s *service) storeCount(ctx context.Context, id uint, confirmations int) (*models.DepositConfirmation, error) {
	if err := s.repo.SetConfirmations(ctx, id, confirmations); err != nil {
		if errors.Is(err, repositories.ErrDepositNotFound) {
			return nil, ErrDepositNotFound
		}
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *service) confirmed(ctx context.Context, d *models.DepositConfirmation, credited bool) {
	s.metrics.RecordDeposit(models.DepositStatusConfirmed)
	if d.Currency == models.CurrencyUSD {
		return
	}
	if !credited {
		logger.Log.Warnw("No active wallet for confirmed deposit", "deposit_id", d.ID, "user_id", d.UserID, "currency", d.Currency)
		return
	}
	s.wallets.InvalidateWalletCache(ctx, d.UserID)
	logger.Log.Infow("💰 Deposit credited", "deposit_id", d.ID, "user_id", d.UserID, "amount", d.DepositAmount, "currency", d.Currency)
}

func (s *service) MarkDepositFailed(ctx context.Context, id uint, reason string) (*models.DepositConfirmation, error) {
	d, err := s.getPending(ctx, id)
	if err != nil {
		return nil, err
	}

	d.Status = models.DepositStatusFailed
	d.FailureReason = strings.TrimSpace(reason)
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	s.metrics.RecordDeposit(models.DepositStatusFailed)
	return d, nil
}

func (s *service) CancelDeposit(ctx context.Context, id, userID uint) (*models.DepositConfirmation, error) {
	d, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, ErrNotOwner
	}
	if d.Status != models.DepositStatusPending {
		return nil, ErrNotPending
	}

	d.Status = models.DepositStatusCancelled
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	s.metrics.RecordDeposit(models.DepositStatusCancelled)
	return d, nil
}

func (s *service) GetUserDeposits(ctx context.Context, userID uint, status string) ([]models.DepositConfirmation, error) {
	return s.repo.ListByUser(ctx, userID, strings.ToLower(strings.TrimSpace(status)))
}

func (s *service) GetPendingDeposits(ctx context.Context) ([]models.DepositConfirmation, error) {
	return s.repo.ListPending(ctx)
}

func (s *service) get(ctx context.Context, id uint) (*models.DepositConfirmation, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrDepositNotFound) {
			return nil, ErrDepositNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *service) getPending(ctx context.Context, id uint) (*models.DepositConfirmation, error) {
	d, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != models.DepositStatusPending {
		return nil, ErrNotPending
	}
	return d, nil
}
