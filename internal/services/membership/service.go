// Package membership manages paid membership tiers and their monthly renewal.
package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tcw1/internal/logger"
	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/services/billing"
	"tcw1/internal/validation"

	"github.com/lib/pq"
)

const (
	RenewalResultRenewed = "renewed"
	RenewalResultFailed  = "failed"
)

type Service interface {
	CreateMembership(ctx context.Context, input CreateInput) (*models.Membership, error)
	GetUserMembership(ctx context.Context, userID uint) (*models.Membership, error)
	UpgradeMembership(ctx context.Context, userID uint, tier string) (*models.Membership, error)
	CancelMembership(ctx context.Context, userID uint) (*models.Membership, error)
	ProcessAutoRenewal(ctx context.Context) (*RenewalSummary, error)
}

type MetricsCollector interface {
	RecordRenewal(result string)
}

type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRenewal(string) {}

type CreateInput struct {
	UserID        uint   `json:"-"`
	Tier          string `json:"tier"`
	PaymentMethod string `json:"paymentMethod"`
}

// RenewalSummary reports one pass over the memberships due for payment.
type RenewalSummary struct {
	Renewed   int `json:"renewed"`
	Suspended int `json:"suspended"`
}

type service struct {
	repo    repositories.MembershipRepository
	charger billing.Charger
	metrics MetricsCollector
	now     func() time.Time
}

func NewService(repo repositories.MembershipRepository, charger billing.Charger, metrics MetricsCollector) Service {
	if charger == nil {
		charger = billing.NoopCharger{}
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{
		repo:    repo,
		charger: charger,
		metrics: metrics,
		now:     time.Now,
	}
}

// CreateMembership starts a membership billed at the tier fee. A cancelled
// membership is reactivated in place.
func (s *service) CreateMembership(ctx context.Context, input CreateInput) (*models.Membership, error) {
	tier := strings.ToLower(strings.TrimSpace(input.Tier))
	method := strings.TrimSpace(input.PaymentMethod)

	v := validation.New()
	v.OneOf("tier", tier, models.MembershipTiers...)
	v.Required("paymentMethod", method)
	if err := v.Err(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByUserID(ctx, input.UserID)
	if err != nil && !errors.Is(err, repositories.ErrMembershipNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status != models.MembershipStatusCancelled {
		return nil, ErrMembershipExists
	}

	m := existing
	if m == nil {
		m = &models.Membership{UserID: input.UserID}
	}
	now := s.now().UTC()
	next := now.AddDate(0, 1, 0)
	m.Status = models.MembershipStatusActive
	m.StartDate = now
	m.EndDate = nil
	m.AutoRenew = true
	m.Currency = models.CurrencyUSD
	m.PaymentMethod = method
	m.NextPaymentDate = &next
	m.RenewalDate = &next
	applyTier(m, tier)

	if existing == nil {
		err = s.repo.Create(ctx, m)
	} else {
		err = s.repo.Update(ctx, m)
	}
	if err != nil {
		return nil, err
	}

	logger.Log.Infow("🎟️ Membership started", "user_id", m.UserID, "tier", m.Tier, "reactivated", existing != nil)
	return m, nil
}

func (s *service) GetUserMembership(ctx context.Context, userID uint) (*models.Membership, error) {
	m, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *service) UpgradeMembership(ctx context.Context, userID uint, tier string) (*models.Membership, error) {
	tier = strings.ToLower(strings.TrimSpace(tier))
	v := validation.New()
	v.OneOf("tier", tier, models.MembershipTiers...)
	if err := v.Err(); err != nil {
		return nil, err
	}

	m, err := s.GetUserMembership(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m.Status == models.MembershipStatusCancelled {
		return nil, ErrMembershipCancelled
	}

	applyTier(m, tier)
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) CancelMembership(ctx context.Context, userID uint) (*models.Membership, error) {
	m, err := s.GetUserMembership(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	m.Status = models.MembershipStatusCancelled
	m.EndDate = &now
	m.AutoRenew = false
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ProcessAutoRenewal charges every active auto-renewing membership that is
// due. Paid memberships move to the next month; failed charges suspend.
func (s *service) ProcessAutoRenewal(ctx context.Context) (*RenewalSummary, error) {
	now := s.now().UTC()
	due, err := s.repo.ListDueForRenewal(ctx, now)
	if err != nil {
		return nil, err
	}

	summary := &RenewalSummary{}
	for i := range due {
		m := &due[i]
		if err := s.charge(ctx, m); err != nil {
			logger.Log.Warnw("Membership renewal failed", "user_id", m.UserID, "tier", m.Tier, "error", err)
			m.Status = models.MembershipStatusSuspended
			m.Notes = fmt.Sprintf("renewal failed on %s: %v", now.Format(time.DateOnly), err)
			if err := s.repo.Update(ctx, m); err != nil {
				return summary, err
			}
			s.metrics.RecordRenewal(RenewalResultFailed)
			summary.Suspended++
			continue
		}

		next := now.AddDate(0, 1, 0)
		m.LastPaymentDate = &now
		m.NextPaymentDate = &next
		m.RenewalDate = &next
		if err := s.repo.Update(ctx, m); err != nil {
			return summary, err
		}
		s.metrics.RecordRenewal(RenewalResultRenewed)
		summary.Renewed++
	}

	if len(due) > 0 {
		logger.Log.Infow("🔁 Memberships processed", "renewed", summary.Renewed, "suspended", summary.Suspended)
	}
	return summary, nil
}

func (s *service) charge(ctx context.Context, m *models.Membership) error {
	if m.MonthlyFee <= 0 {
		return nil
	}
	period := m.NextPaymentDate
	if period == nil {
		period = &m.StartDate
	}
	_, err := s.charger.Charge(ctx, billing.Charge{
		UserID:         m.UserID,
		Amount:         m.MonthlyFee,
		Currency:       m.Currency,
		PaymentMethod:  m.PaymentMethod,
		Description:    fmt.Sprintf("%s membership renewal", m.Tier),
		IdempotencyKey: fmt.Sprintf("membership-%d-%s", m.ID, period.Format("20060102")),
	})
	return err
}

func applyTier(m *models.Membership, tier string) {
	m.Tier = tier
	m.MonthlyFee = models.TierFees[tier]
	m.Benefits = pq.StringArray(models.TierBenefits[tier])
}
