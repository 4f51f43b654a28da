package wallet

import (
	"context"
	"errors"
	"strings"

	"tcw1/internal/models"
	"tcw1/internal/repositories"
)

func (s *service) GetUserWallets(ctx context.Context, userID uint) ([]models.UserWallet, error) {
	if wallets, ok := s.cachedWallets(ctx, userID); ok {
		return wallets, nil
	}

	wallets, err := s.repo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.storeWallets(ctx, userID, wallets)
	return wallets, nil
}

func (s *service) GetWallet(ctx context.Context, userID uint, walletType string) (*models.UserWallet, error) {
	walletType, err := normalizeType(walletType)
	if err != nil {
		return nil, err
	}

	w, err := s.repo.FindActive(ctx, userID, walletType)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return w, nil
}

func normalizeType(walletType string) (string, error) {
	walletType = strings.ToUpper(strings.TrimSpace(walletType))
	for _, t := range models.WalletTypes {
		if t == walletType {
			return walletType, nil
		}
	}
	return "", ErrInvalidWalletType
}
