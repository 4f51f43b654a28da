package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	TierBasic    = "basic"
	TierPremium  = "premium"
	TierGold     = "gold"
	TierPlatinum = "platinum"

	MembershipStatusActive    = "active"
	MembershipStatusInactive  = "inactive"
	MembershipStatusSuspended = "suspended"
	MembershipStatusCancelled = "cancelled"
)

var MembershipTiers = []string{TierBasic, TierPremium, TierGold, TierPlatinum}

// TierFees is the monthly fee in USD for each tier.
var TierFees = map[string]float64{
	TierBasic:    0,
	TierPremium:  9.99,
	TierGold:     29.99,
	TierPlatinum: 99.99,
}

var TierBenefits = map[string][]string{
	TierBasic: {"Access to platform", "Standard support"},
	TierPremium: {
		"Access to platform", "Priority support", "Advanced features", "Monthly webinars",
	},
	TierGold: {
		"Access to platform", "Priority 24/7 support", "All advanced features",
		"Weekly webinars", "Personal account manager",
	},
	TierPlatinum: {
		"Everything in Gold", "Dedicated account manager", "Custom integrations",
		"Priority API access", "VIP events",
	},
}

type Membership struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	UserID          uint           `gorm:"uniqueIndex;not null" json:"userId"`
	Tier            string         `gorm:"default:'basic'" json:"tier"`
	Status          string         `gorm:"index;default:'active'" json:"status"`
	StartDate       time.Time      `json:"startDate"`
	EndDate         *time.Time     `json:"endDate,omitempty"`
	RenewalDate     *time.Time     `json:"renewalDate,omitempty"`
	AutoRenew       bool           `gorm:"default:true" json:"autoRenew"`
	MonthlyFee      float64        `gorm:"type:numeric(20,2);not null" json:"monthlyFee"`
	Currency        string         `gorm:"default:'USD'" json:"currency"`
	Benefits        pq.StringArray `gorm:"type:text[]" json:"benefits"`
	PaymentMethod   string         `gorm:"not null" json:"paymentMethod"`
	LastPaymentDate *time.Time     `json:"lastPaymentDate,omitempty"`
	NextPaymentDate *time.Time     `gorm:"index" json:"nextPaymentDate,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}
