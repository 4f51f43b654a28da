package wallet

import (
	"context"
	"errors"

	"tcw1/internal/logger"
	"tcw1/internal/models"
	"tcw1/internal/services/chain"
)

func (s *service) AssignWallet(ctx context.Context, input AssignInput) (*models.UserWallet, error) {
	w, err := s.PrepareWallet(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}

	s.InvalidateWalletCache(ctx, input.UserID)
	logger.Log.Infow("👛 Wallet assigned", "user_id", input.UserID, "type", w.WalletType)
	return w, nil
}

func (s *service) PrepareWallet(ctx context.Context, input AssignInput) (*models.UserWallet, error) {
	walletType, err := normalizeType(input.WalletType)
	if err != nil {
		return nil, err
	}
	if !chain.ValidateAddress(walletType, input.Address) {
		return nil, ErrInvalidAddress
	}

	if _, err := s.GetWallet(ctx, input.UserID, walletType); err == nil {
		return nil, ErrWalletExists
	} else if !errors.Is(err, ErrWalletNotFound) {
		return nil, err
	}

	return &models.UserWallet{
		UserID:         input.UserID,
		WalletAddress:  input.Address,
		WalletType:     walletType,
		PublicKey:      input.PublicKey,
		DerivationPath: input.DerivationPath,
		IsActive:       true,
		AssignedAt:     s.now().UTC(),
	}, nil
}

// UpdateBalance overwrites the cached balance with a value synced from outside.
func (s *service) UpdateBalance(ctx context.Context, userID uint, walletType string, balance float64) (*models.UserWallet, error) {
	if balance < 0 {
		return nil, ErrNegativeBalance
	}
	w, err := s.GetWallet(ctx, userID, walletType)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	w.Balance = balance
	w.LastSyncedAt = &now
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}

	s.InvalidateWalletCache(ctx, userID)
	return w, nil
}

// Credit adds amount to the user's active wallet and reports whether one existed.
func (s *service) Credit(ctx context.Context, userID uint, walletType string, amount float64) (bool, error) {
	if amount <= 0 {
		return false, ErrInvalidAmount
	}
	walletType, err := normalizeType(walletType)
	if err != nil {
		return false, err
	}

	credited, err := s.repo.Credit(ctx, userID, walletType, amount, s.now().UTC())
	if err != nil {
		return false, err
	}
	if credited {
		s.InvalidateWalletCache(ctx, userID)
	}
	return credited, nil
}

func (s *service) DeactivateWallet(ctx context.Context, userID uint, walletType string) error {
	w, err := s.GetWallet(ctx, userID, walletType)
	if err != nil {
		return err
	}

	w.IsActive = false
	if err := s.repo.Update(ctx, w); err != nil {
		return err
	}

	s.InvalidateWalletCache(ctx, userID)
	return nil
}
