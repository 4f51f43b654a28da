package walletrequest

import (
	"context"
	"errors"
	"testing"

	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/services/chain"
	"tcw1/internal/services/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, req *models.WalletRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id uint) (*models.WalletRequest, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*models.WalletRequest); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepository) Update(ctx context.Context, req *models.WalletRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockRequestRepository) Approve(ctx context.Context, req *models.WalletRequest, w *models.UserWallet) (bool, error) {
	args := m.Called(ctx, req, w)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestRepository) FindPending(ctx context.Context, userID uint, walletType string) (*models.WalletRequest, error) {
	args := m.Called(ctx, userID, walletType)
	if r, ok := args.Get(0).(*models.WalletRequest); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepository) ListByUser(ctx context.Context, userID uint) ([]models.WalletRequest, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.WalletRequest), args.Error(1)
}

func (m *MockRequestRepository) ListPending(ctx context.Context) ([]models.WalletRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.WalletRequest), args.Error(1)
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) AssignWallet(ctx context.Context, input wallet.AssignInput) (*models.UserWallet, error) {
	args := m.Called(ctx, input)
	if w, ok := args.Get(0).(*models.UserWallet); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

// PrepareWallet also accepts a builder as first return value, so tests can
// echo the generated address back.
func (m *MockWalletService) PrepareWallet(ctx context.Context, input wallet.AssignInput) (*models.UserWallet, error) {
	args := m.Called(ctx, input)
	switch v := args.Get(0).(type) {
	case *models.UserWallet:
		return v, args.Error(1)
	case func(wallet.AssignInput) *models.UserWallet:
		return v(input), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletService) InvalidateWalletCache(ctx context.Context, userID uint) {
	m.Called(ctx, userID)
}

func (m *MockWalletService) DeactivateWallet(ctx context.Context, userID uint, walletType string) error {
	return m.Called(ctx, userID, walletType).Error(0)
}

func (m *MockWalletService) GetUserWallets(ctx context.Context, userID uint) ([]models.UserWallet, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.UserWallet), args.Error(1)
}

func (m *MockWalletService) GetWallet(ctx context.Context, userID uint, walletType string) (*models.UserWallet, error) {
	args := m.Called(ctx, userID, walletType)
	if w, ok := args.Get(0).(*models.UserWallet); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletService) UpdateBalance(ctx context.Context, userID uint, walletType string, balance float64) (*models.UserWallet, error) {
	args := m.Called(ctx, userID, walletType, balance)
	if w, ok := args.Get(0).(*models.UserWallet); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletService) Credit(ctx context.Context, userID uint, walletType string, amount float64) (bool, error) {
	args := m.Called(ctx, userID, walletType, amount)
	return args.Bool(0), args.Error(1)
}

func TestService_CreateRequest(t *testing.T) {
	t.Run("crypto request", func(t *testing.T) {
		repo := new(MockRequestRepository)
		s := NewService(repo, new(MockWalletService))
		repo.On("FindPending", mock.Anything, uint(1), "ETH").Return(nil, repositories.ErrWalletRequestNotFound)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		req, err := s.CreateRequest(context.Background(), CreateInput{UserID: 1, WalletType: "eth"})
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusPending, req.Status)
		assert.Equal(t, "ETH", req.WalletType)
		assert.False(t, req.RequestedAt.IsZero())
	})

	t.Run("duplicate pending crypto request", func(t *testing.T) {
		repo := new(MockRequestRepository)
		s := NewService(repo, new(MockWalletService))
		repo.On("FindPending", mock.Anything, uint(1), "BTC").Return(&models.WalletRequest{ID: 2}, nil)

		_, err := s.CreateRequest(context.Background(), CreateInput{UserID: 1, WalletType: "BTC"})
		assert.ErrorIs(t, err, ErrDuplicatePending)
	})

	t.Run("manual requests are never deduplicated", func(t *testing.T) {
		repo := new(MockRequestRepository)
		s := NewService(repo, new(MockWalletService))
		repo.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()

		for i := 0; i < 2; i++ {
			_, err := s.CreateRequest(context.Background(), CreateInput{UserID: 1, WalletType: "manual-deposit", Reference: "REF-1", Amount: 100})
			require.NoError(t, err)
		}
		repo.AssertNotCalled(t, "FindPending", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown type", func(t *testing.T) {
		s := NewService(new(MockRequestRepository), new(MockWalletService))
		_, err := s.CreateRequest(context.Background(), CreateInput{UserID: 1, WalletType: "PAYPAL"})
		assert.ErrorIs(t, err, ErrInvalidWalletType)
	})
}

func TestService_ApproveRequest(t *testing.T) {
	prepared := func(in wallet.AssignInput) *models.UserWallet {
		return &models.UserWallet{UserID: in.UserID, WalletType: in.WalletType, WalletAddress: in.Address, IsActive: true}
	}

	t.Run("generates an address when none is given", func(t *testing.T) {
		repo := new(MockRequestRepository)
		wallets := new(MockWalletService)
		s := NewService(repo, wallets)

		req := &models.WalletRequest{ID: 4, UserID: 9, WalletType: "ETH", Status: models.RequestStatusPending}
		repo.On("GetByID", mock.Anything, uint(4)).Return(req, nil)
		wallets.On("PrepareWallet", mock.Anything, mock.MatchedBy(func(in wallet.AssignInput) bool {
			return in.UserID == 9 && in.WalletType == "ETH" && chain.ValidateAddress("ETH", in.Address) && in.PublicKey != ""
		})).Return(prepared, nil)
		repo.On("Approve", mock.Anything, req, mock.MatchedBy(func(w *models.UserWallet) bool {
			return w != nil && w.UserID == 9 && w.WalletType == "ETH"
		})).Return(true, nil)
		wallets.On("InvalidateWalletCache", mock.Anything, uint(9)).Return()

		got, err := s.ApproveRequest(context.Background(), 4, "", "looks good")
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusApproved, got.Status)
		assert.True(t, chain.ValidateAddress("ETH", got.WalletAddress))
		assert.Equal(t, "looks good", got.ApprovalNotes)
		assert.NotNil(t, got.ApprovedAt)
		wallets.AssertExpectations(t)
		repo.AssertExpectations(t)
		wallets.AssertNotCalled(t, "AssignWallet", mock.Anything, mock.Anything)
	})

	t.Run("manual request is approved without a wallet", func(t *testing.T) {
		repo := new(MockRequestRepository)
		wallets := new(MockWalletService)
		s := NewService(repo, wallets)

		req := &models.WalletRequest{ID: 5, WalletType: models.RequestTypeManualWithdraw, Status: models.RequestStatusPending}
		repo.On("GetByID", mock.Anything, uint(5)).Return(req, nil)
		repo.On("Approve", mock.Anything, req, (*models.UserWallet)(nil)).Return(true, nil)

		_, err := s.ApproveRequest(context.Background(), 5, "", "")
		require.NoError(t, err)
		wallets.AssertNotCalled(t, "PrepareWallet", mock.Anything, mock.Anything)
		wallets.AssertNotCalled(t, "InvalidateWalletCache", mock.Anything, mock.Anything)
	})

	t.Run("paypal needs an address", func(t *testing.T) {
		repo := new(MockRequestRepository)
		s := NewService(repo, new(MockWalletService))
		repo.On("GetByID", mock.Anything, uint(8)).Return(&models.WalletRequest{WalletType: models.WalletTypePayPal, Status: models.RequestStatusPending}, nil)

		_, err := s.ApproveRequest(context.Background(), 8, "", "")
		assert.ErrorIs(t, err, ErrAddressRequired)
	})

	t.Run("already reviewed", func(t *testing.T) {
		repo := new(MockRequestRepository)
		s := NewService(repo, new(MockWalletService))
		repo.On("GetByID", mock.Anything, uint(6)).Return(&models.WalletRequest{Status: models.RequestStatusRejected}, nil)

		_, err := s.ApproveRequest(context.Background(), 6, "", "")
		assert.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("reviewed by someone else in the meantime", func(t *testing.T) {
		repo := new(MockRequestRepository)
		wallets := new(MockWalletService)
		s := NewService(repo, wallets)

		req := &models.WalletRequest{ID: 3, UserID: 1, WalletType: "BTC", Status: models.RequestStatusPending}
		repo.On("GetByID", mock.Anything, uint(3)).Return(req, nil)
		wallets.On("PrepareWallet", mock.Anything, mock.Anything).
			Return(prepared, nil)
		repo.On("Approve", mock.Anything, req, mock.Anything).Return(false, nil)

		_, err := s.ApproveRequest(context.Background(), 3, "", "")
		assert.ErrorIs(t, err, ErrNotPending)
		wallets.AssertNotCalled(t, "InvalidateWalletCache", mock.Anything, mock.Anything)
	})

	t.Run("storage failure leaves no wallet behind", func(t *testing.T) {
		repo := new(MockRequestRepository)
		wallets := new(MockWalletService)
		s := NewService(repo, wallets)

		req := &models.WalletRequest{ID: 2, UserID: 1, WalletType: "BTC", Status: models.RequestStatusPending}
		repo.On("GetByID", mock.Anything, uint(2)).Return(req, nil)
		wallets.On("PrepareWallet", mock.Anything, mock.Anything).
			Return(prepared, nil)
		repo.On("Approve", mock.Anything, req, mock.Anything).Return(false, errors.New("connection reset"))

		_, err := s.ApproveRequest(context.Background(), 2, "", "")
		assert.Error(t, err)
		wallets.AssertNotCalled(t, "AssignWallet", mock.Anything, mock.Anything)
		wallets.AssertNotCalled(t, "InvalidateWalletCache", mock.Anything, mock.Anything)
	})

	t.Run("invalid assignment keeps the request pending", func(t *testing.T) {
		repo := new(MockRequestRepository)
		wallets := new(MockWalletService)
		s := NewService(repo, wallets)

		req := &models.WalletRequest{ID: 7, UserID: 1, WalletType: "BTC", Status: models.RequestStatusPending}
		repo.On("GetByID", mock.Anything, uint(7)).Return(req, nil)
		wallets.On("PrepareWallet", mock.Anything, mock.Anything).Return(nil, wallet.ErrWalletExists)

		_, err := s.ApproveRequest(context.Background(), 7, "", "")
		assert.ErrorIs(t, err, wallet.ErrWalletExists)
		assert.Equal(t, models.RequestStatusPending, req.Status)
		repo.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_RejectRequest(t *testing.T) {
	repo := new(MockRequestRepository)
	s := NewService(repo, new(MockWalletService))

	_, err := s.RejectRequest(context.Background(), 1, "  ")
	assert.ErrorIs(t, err, ErrReasonRequired)

	req := &models.WalletRequest{ID: 1, Status: models.RequestStatusPending}
	repo.On("GetByID", mock.Anything, uint(1)).Return(req, nil)
	repo.On("Update", mock.Anything, req).Return(nil)
	repo.On("GetByID", mock.Anything, uint(2)).Return(nil, repositories.ErrWalletRequestNotFound)

	got, err := s.RejectRequest(context.Background(), 1, "proof unreadable")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, got.Status)
	assert.Equal(t, "proof unreadable", got.RejectionReason)

	_, err = s.RejectRequest(context.Background(), 2, "x")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}
