package models

import (
	"time"

	"github.com/lib/pq"
)

// Product is a catalog item sold directly by a seller account.
type Product struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Description    string         `gorm:"not null" json:"description"`
	SKU            string         `gorm:"uniqueIndex;not null" json:"sku"`
	Price          float64        `gorm:"type:numeric(20,2);not null" json:"price"`
	Currency       string         `gorm:"default:'USD'" json:"currency"`
	Category       string         `gorm:"index;not null" json:"category"`
	Stock          int            `gorm:"default:0" json:"stock"`
	Images         pq.StringArray `gorm:"type:text[]" json:"images"`
	Specifications JSON           `json:"specifications,omitempty"`
	SellerID       uint           `gorm:"index;not null" json:"sellerId"`
	IsActive       bool           `gorm:"index;default:true" json:"isActive"`
	Rating         float64        `gorm:"default:0" json:"rating"`
	Reviews        int            `gorm:"default:0" json:"reviews"`
	CreatedAt      time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

const (
	ConditionNew     = "new"
	ConditionLikeNew = "like-new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"

	ListingStatusActive   = "active"
	ListingStatusSold     = "sold"
	ListingStatusExpired  = "expired"
	ListingStatusDelisted = "delisted"
)

var ListingConditions = []string{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor}

var ListingStatuses = []string{ListingStatusActive, ListingStatusSold, ListingStatusExpired, ListingStatusDelisted}

// MarketplaceListing is a user-to-user offer on the marketplace.
type MarketplaceListing struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	SellerID      uint           `gorm:"index;not null" json:"sellerId"`
	Title         string         `gorm:"not null" json:"title"`
	Description   string         `gorm:"not null" json:"description"`
	Category      string         `gorm:"index;not null" json:"category"`
	Condition     string         `gorm:"default:'good'" json:"condition"`
	Price         float64        `gorm:"type:numeric(20,2);not null" json:"price"`
	Currency      string         `gorm:"default:'USD'" json:"currency"`
	Quantity      int            `gorm:"default:1" json:"quantity"`
	Images        pq.StringArray `gorm:"type:text[]" json:"images"`
	Status        string         `gorm:"index;default:'active'" json:"status"`
	Rating        float64        `gorm:"default:0" json:"rating"`
	Sales         int            `gorm:"default:0" json:"sales"`
	Tags          pq.StringArray `gorm:"type:text[]" json:"tags"`
	Location      string         `json:"location,omitempty"`
	ShipsTo       pq.StringArray `gorm:"type:text[]" json:"shipsTo"`
	ShippingCost  float64        `gorm:"type:numeric(20,2);default:0" json:"shippingCost"`
	AcceptsOffers bool           `gorm:"default:true" json:"acceptsOffers"`
	ExpiresAt     time.Time      `gorm:"index" json:"expiresAt"`
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}
