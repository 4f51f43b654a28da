package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"

	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"

	PaymentMethodCrypto       = "crypto"
	PaymentMethodPayPal       = "paypal"
	PaymentMethodBankTransfer = "bank_transfer"
)

var OrderStatuses = []string{
	OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
	OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
}

var PaymentStatuses = []string{PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded}

var PaymentMethods = []string{PaymentMethodCrypto, PaymentMethodPayPal, PaymentMethodBankTransfer}

type OrderItem struct {
	ProductID   uint    `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	TotalPrice  float64 `json:"totalPrice"`
}

// OrderItems is stored as a jsonb array on the order row.
type OrderItems []OrderItem

func (o OrderItems) Value() (driver.Value, error) {
	b, err := json.Marshal([]OrderItem(o))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *OrderItems) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*o = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported order items source %T", value)
	}
	return json.Unmarshal(data, (*[]OrderItem)(o))
}

func (OrderItems) GormDataType() string {
	return "jsonb"
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type Order struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null" json:"orderNumber"`
	UserID          uint            `gorm:"index;not null" json:"userId"`
	Items           OrderItems      `gorm:"not null" json:"items"`
	TotalAmount     float64         `gorm:"type:numeric(20,2);not null" json:"totalAmount"`
	Currency        string          `gorm:"default:'USD'" json:"currency"`
	Status          string          `gorm:"index;default:'pending'" json:"status"`
	PaymentStatus   string          `gorm:"default:'pending'" json:"paymentStatus"`
	PaymentMethod   string          `gorm:"not null" json:"paymentMethod"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
