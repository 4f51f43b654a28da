package membership

import (
	"context"
	"errors"
	"testing"
	"time"

	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/services/billing"
	"tcw1/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) Create(ctx context.Context, ms *models.Membership) error {
	return m.Called(ctx, ms).Error(0)
}

func (m *MockMembershipRepository) GetByUserID(ctx context.Context, userID uint) (*models.Membership, error) {
	args := m.Called(ctx, userID)
	if ms, ok := args.Get(0).(*models.Membership); ok {
		return ms, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMembershipRepository) Update(ctx context.Context, ms *models.Membership) error {
	return m.Called(ctx, ms).Error(0)
}

func (m *MockMembershipRepository) ListDueForRenewal(ctx context.Context, now time.Time) ([]models.Membership, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]models.Membership), args.Error(1)
}

type MockCharger struct {
	mock.Mock
}

func (m *MockCharger) Charge(ctx context.Context, charge billing.Charge) (*billing.Result, error) {
	args := m.Called(ctx, charge)
	if r, ok := args.Get(0).(*billing.Result); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordRenewal(result string) {
	m.Called(result)
}

var fixedNow = time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)

func newTestService() (*service, *MockMembershipRepository, *MockCharger, *MockMetrics) {
	repo := new(MockMembershipRepository)
	charger := new(MockCharger)
	metrics := new(MockMetrics)
	s := NewService(repo, charger, metrics).(*service)
	s.now = func() time.Time { return fixedNow }
	return s, repo, charger, metrics
}

func TestService_CreateMembership(t *testing.T) {
	t.Run("new membership", func(t *testing.T) {
		s, repo, _, _ := newTestService()
		repo.On("GetByUserID", mock.Anything, uint(1)).Return(nil, repositories.ErrMembershipNotFound)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		m, err := s.CreateMembership(context.Background(), CreateInput{UserID: 1, Tier: "Gold", PaymentMethod: "pm_card_visa"})
		require.NoError(t, err)
		assert.Equal(t, models.TierGold, m.Tier)
		assert.Equal(t, 29.99, m.MonthlyFee)
		assert.Equal(t, models.TierBenefits[models.TierGold], []string(m.Benefits))
		assert.Equal(t, models.MembershipStatusActive, m.Status)
		assert.True(t, m.AutoRenew)
		assert.Equal(t, fixedNow.AddDate(0, 1, 0), *m.NextPaymentDate)
	})

	t.Run("existing active membership", func(t *testing.T) {
		s, repo, _, _ := newTestService()
		repo.On("GetByUserID", mock.Anything, uint(1)).Return(&models.Membership{Status: models.MembershipStatusActive}, nil)

		_, err := s.CreateMembership(context.Background(), CreateInput{UserID: 1, Tier: "basic", PaymentMethod: "card"})
		assert.ErrorIs(t, err, ErrMembershipExists)
	})

	t.Run("cancelled membership is reactivated", func(t *testing.T) {
		s, repo, _, _ := newTestService()
		ended := fixedNow.Add(-24 * time.Hour)
		cancelled := &models.Membership{ID: 4, UserID: 1, Tier: models.TierPremium, Status: models.MembershipStatusCancelled, EndDate: &ended}
		repo.On("GetByUserID", mock.Anything, uint(1)).Return(cancelled, nil)
		repo.On("Update", mock.Anything, cancelled).Return(nil)

		m, err := s.CreateMembership(context.Background(), CreateInput{UserID: 1, Tier: "platinum", PaymentMethod: "card"})
		require.NoError(t, err)
		assert.Equal(t, uint(4), m.ID)
		assert.Equal(t, models.MembershipStatusActive, m.Status)
		assert.Nil(t, m.EndDate)
		assert.Equal(t, 99.99, m.MonthlyFee)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown tier", func(t *testing.T) {
		s, _, _, _ := newTestService()
		_, err := s.CreateMembership(context.Background(), CreateInput{UserID: 1, Tier: "diamond", PaymentMethod: "card"})
		var verr *validation.Error
		assert.ErrorAs(t, err, &verr)
	})
}

func TestService_UpgradeAndCancel(t *testing.T) {
	s, repo, _, _ := newTestService()
	m := &models.Membership{UserID: 1, Tier: models.TierBasic, Status: models.MembershipStatusActive, AutoRenew: true}
	repo.On("GetByUserID", mock.Anything, uint(1)).Return(m, nil)
	repo.On("Update", mock.Anything, m).Return(nil)

	got, err := s.UpgradeMembership(context.Background(), 1, "premium")
	require.NoError(t, err)
	assert.Equal(t, 9.99, got.MonthlyFee)
	assert.Contains(t, got.Benefits, "Monthly webinars")

	got, err = s.CancelMembership(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusCancelled, got.Status)
	assert.False(t, got.AutoRenew)
	assert.Equal(t, fixedNow, *got.EndDate)

	_, err = s.UpgradeMembership(context.Background(), 1, "gold")
	assert.ErrorIs(t, err, ErrMembershipCancelled)
}

func TestService_ProcessAutoRenewal(t *testing.T) {
	s, repo, charger, metrics := newTestService()
	due := fixedNow.Add(-time.Hour)
	memberships := []models.Membership{
		{ID: 1, UserID: 10, Tier: models.TierGold, MonthlyFee: 29.99, Currency: "USD", PaymentMethod: "pm_ok", Status: models.MembershipStatusActive, NextPaymentDate: &due},
		{ID: 2, UserID: 11, Tier: models.TierPremium, MonthlyFee: 9.99, Currency: "USD", PaymentMethod: "pm_declined", Status: models.MembershipStatusActive, NextPaymentDate: &due},
		{ID: 3, UserID: 12, Tier: models.TierBasic, MonthlyFee: 0, Currency: "USD", PaymentMethod: "card", Status: models.MembershipStatusActive, NextPaymentDate: &due},
	}
	repo.On("ListDueForRenewal", mock.Anything, fixedNow).Return(memberships, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	charger.On("Charge", mock.Anything, mock.MatchedBy(func(c billing.Charge) bool { return c.PaymentMethod == "pm_ok" })).
		Return(&billing.Result{ID: "pi_1", Status: billing.StatusSucceeded}, nil)
	charger.On("Charge", mock.Anything, mock.MatchedBy(func(c billing.Charge) bool { return c.PaymentMethod == "pm_declined" })).
		Return(nil, errors.New("card declined"))
	metrics.On("RecordRenewal", RenewalResultRenewed).Return()
	metrics.On("RecordRenewal", RenewalResultFailed).Return()

	summary, err := s.ProcessAutoRenewal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Renewed)
	assert.Equal(t, 1, summary.Suspended)

	updated := repo.Calls
	var statuses []string
	for _, call := range updated {
		if call.Method == "Update" {
			statuses = append(statuses, call.Arguments.Get(1).(*models.Membership).Status)
		}
	}
	assert.Equal(t, []string{models.MembershipStatusActive, models.MembershipStatusSuspended, models.MembershipStatusActive}, statuses)
	assert.Equal(t, fixedNow.AddDate(0, 1, 0), *memberships[0].NextPaymentDate)
	assert.Equal(t, "membership-1-20240131", charger.Calls[0].Arguments.Get(1).(billing.Charge).IdempotencyKey)
	metrics.AssertNumberOfCalls(t, "RecordRenewal", 3)
}
