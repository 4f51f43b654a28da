// Package loginapproval lets an account owner confirm sign-ins from new devices.
package loginapproval

import (
	"context"
	"errors"
	"strings"
	"time"

	"tcw1/internal/logger"
	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/utils"
	"tcw1/internal/validation"
)

const (
	// TokenTTL is how long an approval link stays valid.
	TokenTTL = 24 * time.Hour

	tokenBytes = 32
)

type Service interface {
	CreateApproval(ctx context.Context, userID uint, ip, userAgent, deviceName string) (*models.LoginApproval, error)
	RequestApproval(ctx context.Context, email, ip, userAgent, deviceName string) error
	ApproveLogin(ctx context.Context, token string) (*models.LoginApproval, error)
	RejectLogin(ctx context.Context, token, reason string) (*models.LoginApproval, error)
	GetStatus(ctx context.Context, token string) (*Status, error)
	GetPendingApprovals(ctx context.Context, userID uint) ([]models.LoginApproval, error)
	ExpireStale(ctx context.Context) (int64, error)
}

// Notifier delivers the approval link to the account owner.
type Notifier interface {
	SendLoginApprovalRequest(ctx context.Context, email, token, ip, device string)
}

// UserLookup resolves account owners by id or email.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Status is the public view of an approval, safe to poll by token.
type Status struct {
	Status     string     `json:"status"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	RejectedAt *time.Time `json:"rejectedAt,omitempty"`
}

type service struct {
	repo     repositories.LoginApprovalRepository
	users    UserLookup
	notifier Notifier
	now      func() time.Time
}

func NewService(repo repositories.LoginApprovalRepository, users UserLookup, notifier Notifier) Service {
	return &service{
		repo:     repo,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *service) CreateApproval(ctx context.Context, userID uint, ip, userAgent, deviceName string) (*models.LoginApproval, error) {
	ip = strings.TrimSpace(ip)
	userAgent = strings.TrimSpace(userAgent)

	v := validation.New()
	v.Required("ipAddress", ip)
	v.Required("userAgent", userAgent)
	if err := v.Err(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	token, err := utils.RandomHex(tokenBytes)
	if err != nil {
		return nil, err
	}

	approval := &models.LoginApproval{
		UserID:        user.ID,
		IPAddress:     ip,
		UserAgent:     userAgent,
		DeviceName:    strings.TrimSpace(deviceName),
		Status:        models.ApprovalStatusPending,
		ApprovalToken: token,
		ExpiresAt:     s.now().UTC().Add(TokenTTL),
	}
	if err := s.repo.Create(ctx, approval); err != nil {
		return nil, err
	}

	s.notifier.SendLoginApprovalRequest(ctx, user.Email, token, ip, approval.DeviceName)
	logger.Log.Infow("🔐 Login approval requested", "user_id", user.ID, "ip", ip)
	return approval, nil
}

// RequestApproval starts an approval for the account with the given email.
// Unknown emails succeed silently so the endpoint reveals nothing about accounts.
func (s *service) RequestApproval(ctx context.Context, email, ip, userAgent, deviceName string) error {
	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return err
	}
	_, err = s.CreateApproval(ctx, user.ID, ip, userAgent, deviceName)
	return err
}

func (s *service) ApproveLogin(ctx context.Context, token string) (*models.LoginApproval, error) {
	approval, err := s.pending(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	approval.Status = models.ApprovalStatusApproved
	approval.ApprovedAt = &now
	if err := s.repo.Update(ctx, approval); err != nil {
		return nil, err
	}
	logger.Log.Infow("✅ Login approved", "user_id", approval.UserID, "ip", approval.IPAddress)
	return approval, nil
}

func (s *service) RejectLogin(ctx context.Context, token, reason string) (*models.LoginApproval, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	approval, err := s.pending(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	approval.Status = models.ApprovalStatusRejected
	approval.RejectedAt = &now
	approval.RejectionReason = reason
	if err := s.repo.Update(ctx, approval); err != nil {
		return nil, err
	}
	logger.Log.Warnw("⛔ Login rejected", "user_id", approval.UserID, "ip", approval.IPAddress)
	return approval, nil
}

func (s *service) GetStatus(ctx context.Context, token string) (*Status, error) {
	approval, err := s.byToken(ctx, token)
	if err != nil {
		return nil, err
	}

	status := approval.Status
	if status == models.ApprovalStatusPending && approval.IsExpired(s.now()) {
		status = models.ApprovalStatusExpired
	}
	return &Status{
		Status:     status,
		ExpiresAt:  approval.ExpiresAt,
		ApprovedAt: approval.ApprovedAt,
		RejectedAt: approval.RejectedAt,
	}, nil
}

func (s *service) GetPendingApprovals(ctx context.Context, userID uint) ([]models.LoginApproval, error) {
	return s.repo.ListPendingByUser(ctx, userID, s.now().UTC())
}

// ExpireStale marks every pending approval past its deadline as expired.
func (s *service) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireBefore(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Log.Infow("⌛ Login approvals expired", "count", n)
	}
	return n, nil
}

// pending loads a pending approval, expiring it when its deadline has passed.
func (s *service) pending(ctx context.Context, token string) (*models.LoginApproval, error) {
	approval, err := s.byToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if approval.Status != models.ApprovalStatusPending {
		return nil, ErrNotPending
	}
	if approval.IsExpired(s.now()) {
		approval.Status = models.ApprovalStatusExpired
		if err := s.repo.Update(ctx, approval); err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}
	return approval, nil
}

func (s *service) byToken(ctx context.Context, token string) (*models.LoginApproval, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	approval, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrApprovalNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return approval, nil
}
