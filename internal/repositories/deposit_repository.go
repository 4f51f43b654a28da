package repositories

import (
	"context"
	"errors"
	"time"

	"tcw1/internal/models"

	"gorm.io/gorm"
)

var (
	ErrDepositNotFound  = errors.New("deposit not found")
	ErrApprovalNotFound = errors.New("login approval not found")
)

// DepositConfirmResult reports what ConfirmPending changed.
type DepositConfirmResult struct {
	Confirmed bool
	Credited  bool
}

type DepositRepository interface {
	Create(ctx context.Context, deposit *models.DepositConfirmation) error
	GetByID(ctx context.Context, id uint) (*models.DepositConfirmation, error)
	Update(ctx context.Context, deposit *models.DepositConfirmation) error

	// SetConfirmations stores the latest confirmation count without
	// touching the status.
	SetConfirmations(ctx context.Context, id uint, confirmations int) error

	// ConfirmPending confirms the deposit only while it is pending and the
	// count meets its threshold. When credit is set, the owner's active
	// wallet of the deposit currency is credited in the same transaction.
	ConfirmPending(ctx context.Context, id uint, confirmations int, at time.Time, credit bool) (DepositConfirmResult, error)

	ListByUser(ctx context.Context, userID uint, status string) ([]models.DepositConfirmation, error)
	ListPending(ctx context.Context) ([]models.DepositConfirmation, error)
}

type depositRepository struct {
	db *gorm.DB
}

func NewDepositRepository(db *gorm.DB) DepositRepository {
	return &depositRepository{db: db}
}

func (r *depositRepository) Create(ctx context.Context, deposit *models.DepositConfirmation) error {
	return r.db.WithContext(ctx).Create(deposit).Error
}

func (r *depositRepository) GetByID(ctx context.Context, id uint) (*models.DepositConfirmation, error) {
	var deposit models.DepositConfirmation
	if err := r.db.WithContext(ctx).First(&deposit, id).Error; err != nil {
		return nil, notFound(err, ErrDepositNotFound)
	}
	return &deposit, nil
}

func (r *depositRepository) Update(ctx context.Context, deposit *models.DepositConfirmation) error {
	return r.db.WithContext(ctx).Save(deposit).Error
}

func (r *depositRepository) SetConfirmations(ctx context.Context, id uint, confirmations int) error {
	result := r.db.WithContext(ctx).Model(&models.DepositConfirmation{}).
		Where("id = ?", id).
		Update("confirmations", confirmations)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDepositNotFound
	}
	return nil
}

func (r *depositRepository) ConfirmPending(ctx context.Context, id uint, confirmations int, at time.Time, credit bool) (DepositConfirmResult, error) {
	var res DepositConfirmResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.DepositConfirmation{}).
			Where("id = ? AND status = ? AND required_confirmations <= ?", id, models.DepositStatusPending, confirmations).
			Updates(map[string]interface{}{
				"status":        models.DepositStatusConfirmed,
				"confirmations": confirmations,
				"confirmed_at":  at,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		res.Confirmed = true
		if !credit {
			return nil
		}

		var d models.DepositConfirmation
		if err := tx.First(&d, id).Error; err != nil {
			return err
		}
		credited, err := creditWallet(tx, d.UserID, d.Currency, d.DepositAmount, at)
		if err != nil {
			return err
		}
		res.Credited = credited
		return nil
	})
	if err != nil {
		return DepositConfirmResult{}, err
	}
	return res, nil
}

func (r *depositRepository) ListByUser(ctx context.Context, userID uint, status string) ([]models.DepositConfirmation, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var deposits []models.DepositConfirmation
	err := q.Order("deposit_date DESC").Find(&deposits).Error
	return deposits, err
}

func (r *depositRepository) ListPending(ctx context.Context) ([]models.DepositConfirmation, error) {
	var deposits []models.DepositConfirmation
	err := r.db.WithContext(ctx).
		Where("status = ?", models.DepositStatusPending).
		Order("deposit_date DESC").
		Find(&deposits).Error
	return deposits, err
}

type LoginApprovalRepository interface {
	Create(ctx context.Context, approval *models.LoginApproval) error
	GetByToken(ctx context.Context, token string) (*models.LoginApproval, error)
	Update(ctx context.Context, approval *models.LoginApproval) error
	// ListPendingByUser skips approvals already past their deadline.
	ListPendingByUser(ctx context.Context, userID uint, now time.Time) ([]models.LoginApproval, error)

	// ExpireBefore marks pending approvals past their deadline as expired.
	ExpireBefore(ctx context.Context, now time.Time) (int64, error)
}

type loginApprovalRepository struct {
	db *gorm.DB
}

func NewLoginApprovalRepository(db *gorm.DB) LoginApprovalRepository {
	return &loginApprovalRepository{db: db}
}

func (r *loginApprovalRepository) Create(ctx context.Context, approval *models.LoginApproval) error {
	return r.db.WithContext(ctx).Create(approval).Error
}

func (r *loginApprovalRepository) GetByToken(ctx context.Context, token string) (*models.LoginApproval, error) {
	var approval models.LoginApproval
	if err := r.db.WithContext(ctx).Where("approval_token = ?", token).First(&approval).Error; err != nil {
		return nil, notFound(err, ErrApprovalNotFound)
	}
	return &approval, nil
}

func (r *loginApprovalRepository) Update(ctx context.Context, approval *models.LoginApproval) error {
	return r.db.WithContext(ctx).Save(approval).Error
}

func (r *loginApprovalRepository) ListPendingByUser(ctx context.Context, userID uint, now time.Time) ([]models.LoginApproval, error) {
	var approvals []models.LoginApproval
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND expires_at > ?", userID, models.ApprovalStatusPending, now).
		Order("created_at DESC").
		Find(&approvals).Error
	return approvals, err
}

func (r *loginApprovalRepository) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.LoginApproval{}).
		Where("status = ? AND expires_at <= ?", models.ApprovalStatusPending, now).
		Update("status", models.ApprovalStatusExpired)
	return result.RowsAffected, result.Error
}
