package wallet

import (
	"context"
	"testing"
	"time"

	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/repositories/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const ethAddress = "0x52908400098527886E0F7030069857D2E4169EE7"

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, w *models.UserWallet) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWalletRepository) Update(ctx context.Context, w *models.UserWallet) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWalletRepository) FindActive(ctx context.Context, userID uint, walletType string) (*models.UserWallet, error) {
	args := m.Called(ctx, userID, walletType)
	if w, ok := args.Get(0).(*models.UserWallet); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletRepository) ListActive(ctx context.Context, userID uint) ([]models.UserWallet, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.UserWallet), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, userID uint, walletType string, amount float64, at time.Time) (bool, error) {
	args := m.Called(ctx, userID, walletType, amount, at)
	return args.Bool(0), args.Error(1)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordCacheHit(name string)  { m.Called(name) }
func (m *MockMetrics) RecordCacheMiss(name string) { m.Called(name) }

func newTestCache(t *testing.T) *cache.CacheService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := cache.NewRedisClient(&cache.RedisConfig{Host: mr.Host(), Port: mr.Port()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewCacheService(client, time.Minute)
}

func TestWalletService_AssignWallet(t *testing.T) {
	tests := []struct {
		name      string
		input     AssignInput
		setupMock func(*MockWalletRepository)
		wantErr   error
	}{
		{
			name:  "successful assignment",
			input: AssignInput{UserID: 1, Address: ethAddress, WalletType: "eth"},
			setupMock: func(repo *MockWalletRepository) {
				repo.On("FindActive", mock.Anything, uint(1), "ETH").Return(nil, repositories.ErrWalletNotFound)
				repo.On("Create", mock.Anything, mock.MatchedBy(func(w *models.UserWallet) bool {
					return w.WalletType == "ETH" && w.IsActive && !w.AssignedAt.IsZero()
				})).Return(nil)
			},
		},
		{
			name:  "duplicate active wallet",
			input: AssignInput{UserID: 1, Address: ethAddress, WalletType: "ETH"},
			setupMock: func(repo *MockWalletRepository) {
				repo.On("FindActive", mock.Anything, uint(1), "ETH").Return(&models.UserWallet{ID: 3}, nil)
			},
			wantErr: ErrWalletExists,
		},
		{
			name:    "address does not match type",
			input:   AssignInput{UserID: 1, Address: ethAddress, WalletType: "BTC"},
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "unknown type",
			input:   AssignInput{UserID: 1, Address: ethAddress, WalletType: "DOGE"},
			wantErr: ErrInvalidWalletType,
		},
		{
			name:  "paypal by email",
			input: AssignInput{UserID: 2, Address: "payee@example.com", WalletType: "PAYPAL"},
			setupMock: func(repo *MockWalletRepository) {
				repo.On("FindActive", mock.Anything, uint(2), "PAYPAL").Return(nil, repositories.ErrWalletNotFound)
				repo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockWalletRepository)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			s := NewService(repo, nil, nil)
			w, err := s.AssignWallet(context.Background(), tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.input.Address, w.WalletAddress)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestWalletService_PrepareWalletDoesNotPersist(t *testing.T) {
	repo := new(MockWalletRepository)
	repo.On("FindActive", mock.Anything, uint(4), "ETH").Return(nil, repositories.ErrWalletNotFound)

	s := NewService(repo, nil, nil)
	w, err := s.PrepareWallet(context.Background(), AssignInput{UserID: 4, Address: ethAddress, WalletType: "eth"})
	require.NoError(t, err)
	assert.Equal(t, "ETH", w.WalletType)
	assert.True(t, w.IsActive)
	assert.Zero(t, w.ID)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWalletService_GetUserWalletsUsesCache(t *testing.T) {
	repo := new(MockWalletRepository)
	metrics := new(MockMetrics)
	c := newTestCache(t)
	s := NewService(repo, c, metrics)
	ctx := context.Background()

	wallets := []models.UserWallet{{ID: 1, UserID: 5, WalletType: "BTC", Balance: 0.5, IsActive: true}}
	repo.On("ListActive", mock.Anything, uint(5)).Return(wallets, nil).Once()
	metrics.On("RecordCacheMiss", "wallets").Return().Once()
	metrics.On("RecordCacheHit", "wallets").Return().Once()

	first, err := s.GetUserWallets(ctx, 5)
	require.NoError(t, err)
	second, err := s.GetUserWallets(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, first[0].Balance, second[0].Balance)

	repo.AssertExpectations(t)
	metrics.AssertExpectations(t)

	// a credit drops the cached list
	repo.On("Credit", mock.Anything, uint(5), "BTC", 0.25, mock.Anything).Return(true, nil)
	repo.On("ListActive", mock.Anything, uint(5)).Return([]models.UserWallet{{ID: 1, UserID: 5, WalletType: "BTC", Balance: 0.75, IsActive: true}}, nil).Once()
	metrics.On("RecordCacheMiss", "wallets").Return().Once()

	credited, err := s.Credit(ctx, 5, "btc", 0.25)
	require.NoError(t, err)
	assert.True(t, credited)

	third, err := s.GetUserWallets(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 0.75, third[0].Balance)
}

func TestWalletService_UpdateBalance(t *testing.T) {
	repo := new(MockWalletRepository)
	s := NewService(repo, nil, nil)
	w := &models.UserWallet{UserID: 1, WalletType: "ETH", IsActive: true}
	repo.On("FindActive", mock.Anything, uint(1), "ETH").Return(w, nil)
	repo.On("Update", mock.Anything, w).Return(nil)

	_, err := s.UpdateBalance(context.Background(), 1, "ETH", -1)
	assert.ErrorIs(t, err, ErrNegativeBalance)

	got, err := s.UpdateBalance(context.Background(), 1, "ETH", 3.5)
	require.NoError(t, err)
	assert.Equal(t, 3.5, got.Balance)
	assert.NotNil(t, got.LastSyncedAt)
}

func TestWalletService_DeactivateWallet(t *testing.T) {
	repo := new(MockWalletRepository)
	s := NewService(repo, nil, nil)
	w := &models.UserWallet{UserID: 1, WalletType: "USDT", IsActive: true}
	repo.On("FindActive", mock.Anything, uint(1), "USDT").Return(w, nil)
	repo.On("FindActive", mock.Anything, uint(1), "BTC").Return(nil, repositories.ErrWalletNotFound)
	repo.On("Update", mock.Anything, w).Return(nil)

	require.NoError(t, s.DeactivateWallet(context.Background(), 1, "USDT"))
	assert.False(t, w.IsActive)

	assert.ErrorIs(t, s.DeactivateWallet(context.Background(), 1, "BTC"), ErrWalletNotFound)
}

func TestWalletService_CreditValidation(t *testing.T) {
	s := NewService(new(MockWalletRepository), nil, nil)

	_, err := s.Credit(context.Background(), 1, "BTC", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = s.Credit(context.Background(), 1, "USD", 10)
	assert.ErrorIs(t, err, ErrInvalidWalletType)
}
