package models

import "time"

const (
	WalletTypeBTC    = "BTC"
	WalletTypeETH    = "ETH"
	WalletTypeUSDT   = "USDT"
	WalletTypePayPal = "PAYPAL"
)

var WalletTypes = []string{WalletTypeBTC, WalletTypeETH, WalletTypeUSDT, WalletTypePayPal}

// UserWallet is an address assigned to a user for one asset type.
type UserWallet struct {
	ID                  uint       `gorm:"primarykey" json:"id"`
	UserID              uint       `gorm:"index;not null" json:"userId"`
	WalletAddress       string     `gorm:"not null" json:"walletAddress"`
	WalletType          string     `gorm:"index;not null" json:"walletType"`
	Balance             float64    `gorm:"type:numeric(30,10);default:0" json:"balance"`
	IsActive            bool       `gorm:"index;default:true" json:"isActive"`
	IsVerified          bool       `gorm:"default:false" json:"isVerified"`
	PublicKey           string     `json:"publicKey,omitempty"`
	EncryptedPrivateKey string     `json:"-"`
	DerivationPath      string     `json:"derivationPath,omitempty"`
	AssignedAt          time.Time  `json:"assignedAt"`
	LastSyncedAt        *time.Time `json:"lastSyncedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

const (
	RequestTypeManualDeposit  = "manual-deposit"
	RequestTypeManualWithdraw = "manual-withdraw"

	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// WalletRequest asks an admin for a new wallet or a manual transfer.
type WalletRequest struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"userId"`
	WalletType      string     `gorm:"index;not null" json:"walletType"`
	Status          string     `gorm:"index;default:'pending'" json:"status"`
	WalletAddress   string     `json:"walletAddress,omitempty"`
	Reference       string     `json:"reference,omitempty"`
	ProofFile       string     `json:"proofFile,omitempty"`
	Amount          float64    `gorm:"type:numeric(30,10);default:0" json:"amount,omitempty"`
	RequestedAt     time.Time  `json:"requestedAt"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	ApprovalNotes   string     `json:"approvalNotes,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// IsManual reports whether the request is a manual deposit or withdrawal.
func (r *WalletRequest) IsManual() bool {
	return r.WalletType == RequestTypeManualDeposit || r.WalletType == RequestTypeManualWithdraw
}
