package repositories

import (
	"context"
	"errors"
	"time"

	"tcw1/internal/models"

	"gorm.io/gorm"
)

var (
	ErrWalletNotFound        = errors.New("wallet not found")
	ErrWalletRequestNotFound = errors.New("wallet request not found")
)

// UserWalletRepository persists per-user wallets.
type UserWalletRepository interface {
	Create(ctx context.Context, wallet *models.UserWallet) error
	Update(ctx context.Context, wallet *models.UserWallet) error
	FindActive(ctx context.Context, userID uint, walletType string) (*models.UserWallet, error)
	ListActive(ctx context.Context, userID uint) ([]models.UserWallet, error)

	// Credit adds amount to the active wallet balance and reports whether one existed.
	Credit(ctx context.Context, userID uint, walletType string, amount float64, at time.Time) (bool, error)
}

type userWalletRepository struct {
	db *gorm.DB
}

func NewUserWalletRepository(db *gorm.DB) UserWalletRepository {
	return &userWalletRepository{db: db}
}

func (r *userWalletRepository) Create(ctx context.Context, wallet *models.UserWallet) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

func (r *userWalletRepository) Update(ctx context.Context, wallet *models.UserWallet) error {
	return r.db.WithContext(ctx).Save(wallet).Error
}

func (r *userWalletRepository) FindActive(ctx context.Context, userID uint, walletType string) (*models.UserWallet, error) {
	var wallet models.UserWallet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND wallet_type = ? AND is_active = ?", userID, walletType, true).
		First(&wallet).Error
	if err != nil {
		return nil, notFound(err, ErrWalletNotFound)
	}
	return &wallet, nil
}

func (r *userWalletRepository) ListActive(ctx context.Context, userID uint) ([]models.UserWallet, error) {
	var wallets []models.UserWallet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("assigned_at DESC").
		Find(&wallets).Error
	return wallets, err
}

func (r *userWalletRepository) Credit(ctx context.Context, userID uint, walletType string, amount float64, at time.Time) (bool, error) {
	return creditWallet(r.db.WithContext(ctx), userID, walletType, amount, at)
}

// creditWallet runs on db so callers can credit inside their own transaction.
func creditWallet(db *gorm.DB, userID uint, walletType string, amount float64, at time.Time) (bool, error) {
	result := db.Model(&models.UserWallet{}).
		Where("user_id = ? AND wallet_type = ? AND is_active = ?", userID, walletType, true).
		Updates(map[string]interface{}{
			"balance":        gorm.Expr("balance + ?", amount),
			"last_synced_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// WalletRequestRepository persists wallet and manual transfer requests.
type WalletRequestRepository interface {
	Create(ctx context.Context, req *models.WalletRequest) error
	GetByID(ctx context.Context, id uint) (*models.WalletRequest, error)
	Update(ctx context.Context, req *models.WalletRequest) error

	// Approve stores the approval fields of req only while the request is
	// still pending, and creates w in the same transaction when it is not
	// nil. It reports whether the request was still pending.
	Approve(ctx context.Context, req *models.WalletRequest, w *models.UserWallet) (bool, error)

	FindPending(ctx context.Context, userID uint, walletType string) (*models.WalletRequest, error)
	ListByUser(ctx context.Context, userID uint) ([]models.WalletRequest, error)
	ListPending(ctx context.Context) ([]models.WalletRequest, error)
}

type walletRequestRepository struct {
	db *gorm.DB
}

func NewWalletRequestRepository(db *gorm.DB) WalletRequestRepository {
	return &walletRequestRepository{db: db}
}

func (r *walletRequestRepository) Create(ctx context.Context, req *models.WalletRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *walletRequestRepository) GetByID(ctx context.Context, id uint) (*models.WalletRequest, error) {
	var req models.WalletRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, notFound(err, ErrWalletRequestNotFound)
	}
	return &req, nil
}

func (r *walletRequestRepository) Update(ctx context.Context, req *models.WalletRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *walletRequestRepository) Approve(ctx context.Context, req *models.WalletRequest, w *models.UserWallet) (bool, error) {
	approved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.WalletRequest{}).
			Where("id = ? AND status = ?", req.ID, models.RequestStatusPending).
			Updates(map[string]interface{}{
				"status":         models.RequestStatusApproved,
				"wallet_address": req.WalletAddress,
				"approved_at":    req.ApprovedAt,
				"approval_notes": req.ApprovalNotes,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		if w != nil {
			if err := tx.Create(w).Error; err != nil {
				return err
			}
		}
		approved = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return approved, nil
}

func (r *walletRequestRepository) FindPending(ctx context.Context, userID uint, walletType string) (*models.WalletRequest, error) {
	var req models.WalletRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND wallet_type = ? AND status = ?", userID, walletType, models.RequestStatusPending).
		First(&req).Error
	if err != nil {
		return nil, notFound(err, ErrWalletRequestNotFound)
	}
	return &req, nil
}

func (r *walletRequestRepository) ListByUser(ctx context.Context, userID uint) ([]models.WalletRequest, error) {
	var reqs []models.WalletRequest
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *walletRequestRepository) ListPending(ctx context.Context) ([]models.WalletRequest, error) {
	var reqs []models.WalletRequest
	err := r.db.WithContext(ctx).Where("status = ?", models.RequestStatusPending).Order("created_at").Find(&reqs).Error
	return reqs, err
}
