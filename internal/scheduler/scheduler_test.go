package scheduler

import (
	"context"
	"errors"
	"testing"

	"tcw1/internal/services/membership"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordJobRun(job, result string) {
	m.Called(job, result)
}

type stubRenewer struct{ err error }

func (s stubRenewer) ProcessAutoRenewal(context.Context) (*membership.RenewalSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &membership.RenewalSummary{Renewed: 2}, nil
}

type stubExpirer struct{ calls *int }

func (s stubExpirer) ExpireOldListings(context.Context) (int64, error) {
	*s.calls++
	return 1, nil
}

func (s stubExpirer) ExpireStale(context.Context) (int64, error) {
	*s.calls++
	return 0, nil
}

func TestScheduler_RunOnce(t *testing.T) {
	metrics := new(MockMetrics)
	metrics.On("RecordJobRun", JobListingExpiry, "success").Return()
	metrics.On("RecordJobRun", JobApprovalExpiry, "success").Return()
	metrics.On("RecordJobRun", JobMembershipRenewal, "error").Return()

	calls := 0
	s := New(metrics)
	jobs := Maintenance(Specs{Renewal: "@daily", ListingExpiry: "@hourly", ApprovalExpiry: "*/15 * * * *"},
		stubRenewer{err: errors.New("db down")}, stubExpirer{&calls}, stubExpirer{&calls})
	require.NoError(t, Register(s, jobs))

	require.NoError(t, s.RunOnce(context.Background(), JobListingExpiry))
	require.NoError(t, s.RunOnce(context.Background(), JobApprovalExpiry))
	assert.Equal(t, 2, calls)

	err := s.RunOnce(context.Background(), JobMembershipRenewal)
	assert.EqualError(t, err, "db down")

	err = s.RunOnce(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownJob)
	metrics.AssertExpectations(t)
}

func TestScheduler_AddRejectsBadSpecAndDuplicates(t *testing.T) {
	s := New(nil)
	noop := func(context.Context) error { return nil }

	assert.Error(t, s.Add(Job{Name: "bad", Spec: "every tuesday", Run: noop}))
	require.NoError(t, s.Add(Job{Name: "manual", Run: noop}))
	assert.Error(t, s.Add(Job{Name: "manual", Run: noop}))
	assert.Empty(t, s.cron.Entries())
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Add(Job{Name: "tick", Spec: "@every 1h", Run: func(context.Context) error { return nil }}))
	s.Start()
	assert.Len(t, s.cron.Entries(), 1)
	assert.NoError(t, s.Stop(context.Background()))
}
