package repositories

import (
	"context"
	"errors"
	"time"

	"tcw1/internal/models"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrMembershipNotFound = errors.New("membership not found")
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID uint, skip, limit int) ([]models.Order, int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return &order, nil
}

func (r *orderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uint, skip, limit int) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := q.Order("created_at DESC").Offset(skip).Limit(limit).Find(&orders).Error
	return orders, total, err
}

type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	GetByUserID(ctx context.Context, userID uint) (*models.Membership, error)
	Update(ctx context.Context, membership *models.Membership) error
	ListDueForRenewal(ctx context.Context, now time.Time) ([]models.Membership, error)
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *membershipRepository) GetByUserID(ctx context.Context, userID uint) (*models.Membership, error) {
	var membership models.Membership
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&membership).Error; err != nil {
		return nil, notFound(err, ErrMembershipNotFound)
	}
	return &membership, nil
}

func (r *membershipRepository) Update(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Save(membership).Error
}

func (r *membershipRepository) ListDueForRenewal(ctx context.Context, now time.Time) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.WithContext(ctx).
		Where("auto_renew = ? AND status = ? AND next_payment_date <= ?", true, models.MembershipStatusActive, now).
		Find(&memberships).Error
	return memberships, err
}
