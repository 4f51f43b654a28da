// Package walletrequest handles user requests for new wallets and manual
// deposits or withdrawals, and their review by admins.
package walletrequest

import (
	"context"
	"errors"
	"strings"
	"time"

	"tcw1/internal/logger"
	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/services/chain"
	"tcw1/internal/services/wallet"
)

var requestTypes = []string{
	models.WalletTypeBTC,
	models.WalletTypeETH,
	models.WalletTypeUSDT,
	models.WalletTypePayPal,
	models.RequestTypeManualDeposit,
	models.RequestTypeManualWithdraw,
}

type Service interface {
	CreateRequest(ctx context.Context, input CreateInput) (*models.WalletRequest, error)
	ApproveRequest(ctx context.Context, id uint, address, notes string) (*models.WalletRequest, error)
	RejectRequest(ctx context.Context, id uint, reason string) (*models.WalletRequest, error)
	GetUserRequests(ctx context.Context, userID uint) ([]models.WalletRequest, error)
	GetPendingRequests(ctx context.Context) ([]models.WalletRequest, error)
}

type CreateInput struct {
	UserID     uint    `json:"-"`
	WalletType string  `json:"walletType"`
	Reference  string  `json:"reference"`
	ProofFile  string  `json:"proofFile"`
	Amount     float64 `json:"amount"`
}

type service struct {
	repo    repositories.WalletRequestRepository
	wallets wallet.Service
	now     func() time.Time
}

func NewService(repo repositories.WalletRequestRepository, wallets wallet.Service) Service {
	return &service{
		repo:    repo,
		wallets: wallets,
		now:     time.Now,
	}
}

func (s *service) CreateRequest(ctx context.Context, input CreateInput) (*models.WalletRequest, error) {
	walletType := normalizeType(input.WalletType)
	if walletType == "" {
		return nil, ErrInvalidWalletType
	}

	req := &models.WalletRequest{
		UserID:     input.UserID,
		WalletType: walletType,
		Reference:  strings.TrimSpace(input.Reference),
		ProofFile:  strings.TrimSpace(input.ProofFile),
		Amount:     input.Amount,
	}

	// manual transfers may be filed repeatedly
	if !req.IsManual() {
		if _, err := s.repo.FindPending(ctx, input.UserID, walletType); err == nil {
			return nil, ErrDuplicatePending
		} else if !errors.Is(err, repositories.ErrWalletRequestNotFound) {
			return nil, err
		}
	}

	req.Status = models.RequestStatusPending
	req.RequestedAt = s.now().UTC()
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ApproveRequest approves a pending request. For crypto wallet types an
// address is generated when none is supplied, and the wallet is assigned to
// the user in the same transaction as the approval. PayPal wallets need the
// account email as address.
func (s *service) ApproveRequest(ctx context.Context, id uint, address, notes string) (*models.WalletRequest, error) {
	req, err := s.getPending(ctx, id)
	if err != nil {
		return nil, err
	}

	address = strings.TrimSpace(address)
	var w *models.UserWallet
	if !req.IsManual() {
		w, err = s.prepareWallet(ctx, req, address)
		if err != nil {
			return nil, err
		}
		address = w.WalletAddress
	}

	now := s.now().UTC()
	req.Status = models.RequestStatusApproved
	req.WalletAddress = address
	req.ApprovedAt = &now
	req.ApprovalNotes = strings.TrimSpace(notes)
	approved, err := s.repo.Approve(ctx, req, w)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, ErrNotPending
	}

	if w != nil {
		s.wallets.InvalidateWalletCache(ctx, req.UserID)
	}
	logger.Log.Infow("✅ Wallet request approved", "request_id", req.ID, "user_id", req.UserID, "type", req.WalletType)
	return req, nil
}

func (s *service) prepareWallet(ctx context.Context, req *models.WalletRequest, address string) (*models.UserWallet, error) {
	assign := wallet.AssignInput{UserID: req.UserID, WalletType: req.WalletType, Address: address}
	if address == "" {
		if req.WalletType == models.WalletTypePayPal {
			return nil, ErrAddressRequired
		}
		generated, err := chain.GenerateAddress(req.WalletType)
		if err != nil {
			return nil, err
		}
		assign.Address = generated.Address
		assign.PublicKey = generated.PublicKey
		assign.DerivationPath = generated.DerivationPath
	}
	return s.wallets.PrepareWallet(ctx, assign)
}

func (s *service) RejectRequest(ctx context.Context, id uint, reason string) (*models.WalletRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	req, err := s.getPending(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	req.Status = models.RequestStatusRejected
	req.RejectedAt = &now
	req.RejectionReason = reason
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) GetUserRequests(ctx context.Context, userID uint) ([]models.WalletRequest, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetPendingRequests(ctx context.Context) ([]models.WalletRequest, error) {
	return s.repo.ListPending(ctx)
}

func (s *service) getPending(ctx context.Context, id uint) (*models.WalletRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletRequestNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrNotPending
	}
	return req, nil
}

func normalizeType(t string) string {
	t = strings.TrimSpace(t)
	for _, allowed := range requestTypes {
		if strings.EqualFold(t, allowed) {
			return allowed
		}
	}
	return ""
}
