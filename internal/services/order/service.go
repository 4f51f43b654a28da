// Package order handles catalog orders from creation to delivery.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tcw1/internal/logger"
	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/utils"
	"tcw1/internal/validation"

	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// totalTolerance is the largest accepted gap between the declared total and the item sum.
var totalTolerance = decimal.NewFromFloat(0.01)

type Service interface {
	CreateOrder(ctx context.Context, input CreateInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	GetUserOrders(ctx context.Context, userID uint, skip, limit int) (*ListResult, error)
	UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uint, status string) (*models.Order, error)
	AddShippingInfo(ctx context.Context, id uint, address models.ShippingAddress, trackingNumber string) (*models.Order, error)
	CancelOrder(ctx context.Context, id, requesterID uint, isAdmin bool) (*models.Order, error)
}

type CreateInput struct {
	UserID          uint                    `json:"-"`
	Items           []models.OrderItem      `json:"items"`
	TotalAmount     float64                 `json:"totalAmount"`
	PaymentMethod   string                  `json:"paymentMethod"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress"`
	Notes           string                  `json:"notes"`
}

type ListResult struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Skip   int            `json:"skip"`
	Limit  int            `json:"limit"`
}

type service struct {
	repo repositories.OrderRepository
	now  func() time.Time
}

func NewService(repo repositories.OrderRepository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) CreateOrder(ctx context.Context, input CreateInput) (*models.Order, error) {
	method := strings.ToLower(strings.TrimSpace(input.PaymentMethod))

	v := validation.New()
	v.OrderItems(input.Items)
	v.OneOf("paymentMethod", method, models.PaymentMethods...)
	v.Positive("totalAmount", input.TotalAmount)
	if input.ShippingAddress != nil {
		v.ShippingAddress(*input.ShippingAddress)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	items := make(models.OrderItems, len(input.Items))
	sum := decimal.Zero
	for i, item := range input.Items {
		if item.TotalPrice == 0 {
			item.TotalPrice = decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2).InexactFloat64()
		}
		sum = sum.Add(decimal.NewFromFloat(item.TotalPrice))
		items[i] = item
	}
	if sum.Sub(decimal.NewFromFloat(input.TotalAmount)).Abs().GreaterThan(totalTolerance) {
		return nil, fmt.Errorf("%w: items sum to %s", ErrTotalMismatch, sum.StringFixed(2))
	}

	number, err := s.orderNumber()
	if err != nil {
		return nil, err
	}

	o := &models.Order{
		OrderNumber:   number,
		UserID:        input.UserID,
		Items:         items,
		TotalAmount:   input.TotalAmount,
		Currency:      models.CurrencyUSD,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: method,
		Notes:         strings.TrimSpace(input.Notes),
	}
	if input.ShippingAddress != nil {
		o.ShippingAddress = *input.ShippingAddress
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	logger.Log.Infow("📦 Order created", "order_number", o.OrderNumber, "user_id", o.UserID, "total", o.TotalAmount)
	return o, nil
}

// orderNumber builds ORD-<unix ms>-<9 random upper alphanumerics>.
func (s *service) orderNumber() (string, error) {
	suffix, err := utils.RandomUpperAlphanum(9)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%d-%s", s.now().UnixMilli(), suffix), nil
}

func (s *service) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *service) GetUserOrders(ctx context.Context, userID uint, skip, limit int) (*ListResult, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	orders, total, err := s.repo.ListByUser(ctx, userID, skip, limit)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &ListResult{Orders: orders, Total: total, Skip: skip, Limit: limit}, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	v := validation.New()
	v.OneOf("status", status, models.OrderStatuses...)
	if err := v.Err(); err != nil {
		return nil, err
	}

	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	o.Status = status
	if status == models.OrderStatusDelivered {
		now := s.now().UTC()
		o.CompletedAt = &now
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) UpdatePaymentStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	v := validation.New()
	v.OneOf("paymentStatus", status, models.PaymentStatuses...)
	if err := v.Err(); err != nil {
		return nil, err
	}

	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	o.PaymentStatus = status
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// AddShippingInfo stores the delivery address and tracking number and marks the order shipped.
func (s *service) AddShippingInfo(ctx context.Context, id uint, address models.ShippingAddress, trackingNumber string) (*models.Order, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	v := validation.New()
	v.ShippingAddress(address)
	v.Required("trackingNumber", trackingNumber)
	if err := v.Err(); err != nil {
		return nil, err
	}

	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == models.OrderStatusCancelled {
		return nil, ErrOrderCancelled
	}

	o.ShippingAddress = address
	o.TrackingNumber = trackingNumber
	o.Status = models.OrderStatusShipped
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) CancelOrder(ctx context.Context, id, requesterID uint, isAdmin bool) (*models.Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != requesterID && !isAdmin {
		return nil, ErrNotOwner
	}
	switch o.Status {
	case models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled:
		return nil, ErrCannotCancel
	}

	o.Status = models.OrderStatusCancelled
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	logger.Log.Infow("🚫 Order cancelled", "order_number", o.OrderNumber, "by", requesterID)
	return o, nil
}
