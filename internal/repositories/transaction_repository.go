package repositories

import (
	"context"
	"errors"
	"time"

	"tcw1/internal/models"

	"gorm.io/gorm"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionFilter narrows a user's transaction history.
type TransactionFilter struct {
	Status string
	Type   string
	Limit  int
}

// CurrencyVolume is the summed amount of transactions in one currency.
type CurrencyVolume struct {
	Currency string
	Total    float64
}

// TransactionRepository persists simulated blockchain transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.BlockchainTransaction) error
	GetByHash(ctx context.Context, hash string) (*models.BlockchainTransaction, error)
	Update(ctx context.Context, tx *models.BlockchainTransaction) error

	// ConfirmPending finalises a transaction only if it is still pending.
	// It reports whether a row changed.
	ConfirmPending(ctx context.Context, hash string, blockNumber uint64, confirmations int, at time.Time) (bool, error)

	ListByUser(ctx context.Context, userID uint, filter TransactionFilter) ([]models.BlockchainTransaction, error)
	ListTrades(ctx context.Context, userID uint) ([]models.BlockchainTransaction, error)
	ListRecentVerified(ctx context.Context, limit int) ([]models.BlockchainTransaction, error)
	ListPending(ctx context.Context) ([]models.BlockchainTransaction, error)
	List(ctx context.Context, offset, limit int) ([]models.BlockchainTransaction, int64, error)
	VolumeByCurrency(ctx context.Context) ([]CurrencyVolume, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.BlockchainTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *transactionRepository) GetByHash(ctx context.Context, hash string) (*models.BlockchainTransaction, error) {
	var tx models.BlockchainTransaction
	if err := r.db.WithContext(ctx).Where("transaction_hash = ?", hash).First(&tx).Error; err != nil {
		return nil, notFound(err, ErrTransactionNotFound)
	}
	return &tx, nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *models.BlockchainTransaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

func (r *transactionRepository) ConfirmPending(ctx context.Context, hash string, blockNumber uint64, confirmations int, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.BlockchainTransaction{}).
		Where("transaction_hash = ? AND status = ?", hash, models.TxStatusPending).
		Updates(map[string]interface{}{
			"status":        models.TxStatusConfirmed,
			"confirmations": confirmations,
			"block_number":  blockNumber,
			"verified":      true,
			"confirmed_at":  at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID uint, filter TransactionFilter) ([]models.BlockchainTransaction, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var txs []models.BlockchainTransaction
	if err := q.Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *transactionRepository) ListTrades(ctx context.Context, userID uint) ([]models.BlockchainTransaction, error) {
	var txs []models.BlockchainTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND status IN ?", userID, models.TxTypeTrade,
			[]string{models.TxStatusConfirmed, models.TxStatusPending}).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) ListRecentVerified(ctx context.Context, limit int) ([]models.BlockchainTransaction, error) {
	var txs []models.BlockchainTransaction
	err := r.db.WithContext(ctx).
		Where("verified = ? AND confirmed_at IS NOT NULL", true).
		Order("confirmed_at DESC NULLS LAST").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) ListPending(ctx context.Context) ([]models.BlockchainTransaction, error) {
	var txs []models.BlockchainTransaction
	err := r.db.WithContext(ctx).Where("status = ?", models.TxStatusPending).Order("created_at").Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) List(ctx context.Context, offset, limit int) ([]models.BlockchainTransaction, int64, error) {
	var txs []models.BlockchainTransaction
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.BlockchainTransaction{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&txs).Error
	return txs, total, err
}

func (r *transactionRepository) VolumeByCurrency(ctx context.Context) ([]CurrencyVolume, error) {
	var rows []CurrencyVolume
	err := r.db.WithContext(ctx).Model(&models.BlockchainTransaction{}).
		Select("currency, COALESCE(SUM(amount), 0) AS total").
		Group("currency").
		Scan(&rows).Error
	return rows, err
}
