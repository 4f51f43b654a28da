package models

import "time"

const (
	DepositStatusPending   = "pending"
	DepositStatusConfirmed = "confirmed"
	DepositStatusFailed    = "failed"
	DepositStatusCancelled = "cancelled"

	DefaultRequiredConfirmations = 3
)

// DepositConfirmation tracks an incoming deposit until it has enough confirmations.
type DepositConfirmation struct {
	ID                    uint       `gorm:"primarykey" json:"id"`
	UserID                uint       `gorm:"index;not null" json:"userId"`
	DepositAmount         float64    `gorm:"type:numeric(30,10);not null" json:"depositAmount"`
	Currency              string     `gorm:"not null" json:"currency"`
	TransactionHash       string     `gorm:"index" json:"transactionHash,omitempty"`
	FromAddress           string     `json:"fromAddress,omitempty"`
	ToAddress             string     `json:"toAddress,omitempty"`
	Status                string     `gorm:"index;default:'pending'" json:"status"`
	Confirmations         int        `gorm:"default:0" json:"confirmations"`
	RequiredConfirmations int        `gorm:"default:3" json:"requiredConfirmations"`
	DepositDate           time.Time  `gorm:"index" json:"depositDate"`
	ConfirmedAt           *time.Time `json:"confirmedAt,omitempty"`
	FailureReason         string     `json:"failureReason,omitempty"`
	Notes                 string     `json:"notes,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
	ApprovalStatusExpired  = "expired"
)

// LoginApproval is a pending sign-in from a device that the account owner must confirm.
type LoginApproval struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"userId"`
	IPAddress       string     `gorm:"not null" json:"ipAddress"`
	UserAgent       string     `gorm:"not null" json:"userAgent"`
	DeviceName      string     `json:"deviceName,omitempty"`
	Status          string     `gorm:"index;default:'pending'" json:"status"`
	ApprovalToken   string     `gorm:"uniqueIndex;not null" json:"approvalToken"`
	ExpiresAt       time.Time  `gorm:"index" json:"expiresAt"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (a *LoginApproval) IsExpired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}
