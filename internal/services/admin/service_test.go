package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetCachedByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) IncrementTokenVersion(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *models.BlockchainTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) GetByHash(ctx context.Context, hash string) (*models.BlockchainTransaction, error) {
	args := m.Called(ctx, hash)
	if tx, ok := args.Get(0).(*models.BlockchainTransaction); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx *models.BlockchainTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) ConfirmPending(ctx context.Context, hash string, block uint64, confirmations int, at time.Time) (bool, error) {
	args := m.Called(ctx, hash, block, confirmations, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID uint, filter repositories.TransactionFilter) ([]models.BlockchainTransaction, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]models.BlockchainTransaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTrades(ctx context.Context, userID uint) ([]models.BlockchainTransaction, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.BlockchainTransaction), args.Error(1)
}

func (m *MockTransactionRepository) ListRecentVerified(ctx context.Context, limit int) ([]models.BlockchainTransaction, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.BlockchainTransaction), args.Error(1)
}

func (m *MockTransactionRepository) ListPending(ctx context.Context) ([]models.BlockchainTransaction, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.BlockchainTransaction), args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, offset, limit int) ([]models.BlockchainTransaction, int64, error) {
	args := m.Called(ctx, offset, limit)
	txs, _ := args.Get(0).([]models.BlockchainTransaction)
	return txs, args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) VolumeByCurrency(ctx context.Context) ([]repositories.CurrencyVolume, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repositories.CurrencyVolume), args.Error(1)
}

type fixedPricer map[string]float64

func (p fixedPricer) Price(_ context.Context, currency string) (float64, error) {
	price, ok := p[currency]
	if !ok {
		return 0, errors.New("no price")
	}
	return price, nil
}

func newTestService() (Service, *MockUserRepository, *MockTransactionRepository) {
	users := new(MockUserRepository)
	txs := new(MockTransactionRepository)
	return NewService(users, txs, fixedPricer{"BTC": 40000, "ETH": 2000}), users, txs
}

func TestService_GetStats(t *testing.T) {
	s, users, txs := newTestService()
	users.On("CountByRole", mock.Anything, "").Return(int64(12), nil)
	users.On("CountByRole", mock.Anything, models.RoleAdmin).Return(int64(2), nil)
	txs.On("List", mock.Anything, 0, 1).Return(nil, int64(30), nil)
	txs.On("VolumeByCurrency", mock.Anything).Return([]repositories.CurrencyVolume{
		{Currency: "BTC", Total: 0.5},
		{Currency: "ETH", Total: 2},
		{Currency: "DOGE", Total: 1000},
	}, nil)

	stats, err := s.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalAdmins)
	assert.Equal(t, int64(30), stats.TotalTransactions)
	assert.Equal(t, 24000.0, stats.TotalTransactionVolume)
}

func TestService_MakeUserAdmin(t *testing.T) {
	s, users, _ := newTestService()
	u := &models.User{Role: models.RoleUser, TokenVersion: 1}
	u.ID = 5
	users.On("GetByID", mock.Anything, uint(5)).Return(u, nil)
	users.On("Update", mock.Anything, u).Return(nil)
	users.On("IncrementTokenVersion", mock.Anything, uint(5)).Return(nil)

	got, err := s.MakeUserAdmin(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Equal(t, 2, got.TokenVersion)

	_, err = s.MakeUserAdmin(context.Background(), 5)
	assert.ErrorIs(t, err, ErrAlreadyAdmin)
}

func TestService_PromoteByEmailUnknown(t *testing.T) {
	s, users, _ := newTestService()
	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repositories.ErrUserNotFound)

	_, err := s.PromoteByEmail(context.Background(), "Nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_UpdateUserDetails(t *testing.T) {
	s, users, _ := newTestService()
	u := &models.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	users.On("GetByID", mock.Anything, uint(1)).Return(u, nil)
	users.On("Update", mock.Anything, u).Return(nil)

	phone := "+2348000000000"
	got, err := s.UpdateUserDetails(context.Background(), 1, UserUpdate{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, got.Phone)
	assert.Equal(t, "ada@example.com", got.Email)

	empty := " "
	_, err = s.UpdateUserDetails(context.Background(), 1, UserUpdate{FirstName: &empty})
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)
}

func TestService_SetUserStatus(t *testing.T) {
	s, users, _ := newTestService()
	u := &models.User{Status: models.UserStatusActive}
	u.ID = 3
	users.On("GetByID", mock.Anything, uint(3)).Return(u, nil)
	users.On("Update", mock.Anything, u).Return(nil)
	users.On("IncrementTokenVersion", mock.Anything, uint(3)).Return(nil).Once()

	got, err := s.SetUserStatus(context.Background(), 3, "Suspended")
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, got.Status)

	got, err = s.SetUserStatus(context.Background(), 3, "active")
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, got.Status)
	users.AssertNumberOfCalls(t, "IncrementTokenVersion", 1)

	_, err = s.SetUserStatus(context.Background(), 3, "banned")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_DeleteUser(t *testing.T) {
	s, users, _ := newTestService()
	users.On("Delete", mock.Anything, uint(2)).Return(nil)
	users.On("Delete", mock.Anything, uint(3)).Return(repositories.ErrUserNotFound)

	assert.ErrorIs(t, s.DeleteUser(context.Background(), 1, 1), ErrCannotDeleteSelf)
	assert.NoError(t, s.DeleteUser(context.Background(), 1, 2))
	assert.ErrorIs(t, s.DeleteUser(context.Background(), 1, 3), ErrUserNotFound)
}

func TestService_GetAllUsersStripsCredentials(t *testing.T) {
	s, users, _ := newTestService()
	users.On("List", mock.Anything, 0, DefaultLimit).Return([]models.User{{Email: "a@b.co", Password: "hash"}}, int64(1), nil)

	list, err := s.GetAllUsers(context.Background(), -1, 0)
	require.NoError(t, err)
	require.Len(t, list.Users, 1)
	assert.Equal(t, "a@b.co", list.Users[0].Email)
}
