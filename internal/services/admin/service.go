// Package admin exposes platform statistics and user management for admins.
package admin

import (
	"context"
	"errors"
	"strings"

	"tcw1/internal/logger"
	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/validation"

	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

type Service interface {
	GetStats(ctx context.Context) (*Stats, error)
	GetAllUsers(ctx context.Context, skip, limit int) (*UserList, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
	MakeUserAdmin(ctx context.Context, id uint) (*models.User, error)
	PromoteByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserDetails(ctx context.Context, id uint, update UserUpdate) (*models.User, error)
	SetUserStatus(ctx context.Context, id uint, status string) (*models.User, error)
	DeleteUser(ctx context.Context, actorID, id uint) error
	GetAllTransactions(ctx context.Context, skip, limit int) (*TransactionList, error)
}

// Pricer converts crypto amounts to USD.
type Pricer interface {
	Price(ctx context.Context, currency string) (float64, error)
}

type Stats struct {
	TotalUsers             int64   `json:"totalUsers"`
	TotalAdmins            int64   `json:"totalAdmins"`
	TotalTransactions      int64   `json:"totalTransactions"`
	TotalTransactionVolume float64 `json:"totalTransactionVolume"`
}

// UserUpdate holds the only profile fields an admin may edit.
type UserUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
}

type UserList struct {
	Users []models.UserProfile `json:"users"`
	Total int64                `json:"total"`
	Skip  int                  `json:"skip"`
	Limit int                  `json:"limit"`
}

type TransactionList struct {
	Transactions []models.BlockchainTransaction `json:"transactions"`
	Total        int64                          `json:"total"`
	Skip         int                            `json:"skip"`
	Limit        int                            `json:"limit"`
}

type service struct {
	users  repositories.UserRepository
	txs    repositories.TransactionRepository
	prices Pricer
}

func NewService(users repositories.UserRepository, txs repositories.TransactionRepository, prices Pricer) Service {
	return &service{users: users, txs: txs, prices: prices}
}

func (s *service) GetStats(ctx context.Context) (*Stats, error) {
	totalUsers, err := s.users.CountByRole(ctx, "")
	if err != nil {
		return nil, err
	}
	totalAdmins, err := s.users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	_, totalTxs, err := s.txs.List(ctx, 0, 1)
	if err != nil {
		return nil, err
	}
	volume, err := s.volumeUSD(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalUsers:             totalUsers,
		TotalAdmins:            totalAdmins,
		TotalTransactions:      totalTxs,
		TotalTransactionVolume: volume,
	}, nil
}

// volumeUSD prices the summed amount of each currency at the current quote.
func (s *service) volumeUSD(ctx context.Context) (float64, error) {
	volumes, err := s.txs.VolumeByCurrency(ctx)
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	for _, v := range volumes {
		price := 1.0
		if v.Currency != models.CurrencyUSD {
			price, err = s.prices.Price(ctx, v.Currency)
			if err != nil {
				logger.Log.Warnw("Skipping volume without a price", "currency", v.Currency, "error", err)
				continue
			}
		}
		total = total.Add(decimal.NewFromFloat(v.Total).Mul(decimal.NewFromFloat(price)))
	}
	return total.Round(2).InexactFloat64(), nil
}

func (s *service) GetAllUsers(ctx context.Context, skip, limit int) (*UserList, error) {
	skip, limit = clampPage(skip, limit)
	users, total, err := s.users.List(ctx, skip, limit)
	if err != nil {
		return nil, err
	}

	profiles := make([]models.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	return &UserList{Users: profiles, Total: total, Skip: skip, Limit: limit}, nil
}

func (s *service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// MakeUserAdmin grants the admin role and revokes the user's existing tokens
// so the next sign-in carries the new role.
func (s *service) MakeUserAdmin(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.promote(ctx, user)
}

func (s *service) PromoteByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.promote(ctx, user)
}

func (s *service) promote(ctx context.Context, user *models.User) (*models.User, error) {
	if user.IsAdmin() {
		return nil, ErrAlreadyAdmin
	}

	user.Role = models.RoleAdmin
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.users.IncrementTokenVersion(ctx, user.ID); err != nil {
		return nil, err
	}
	user.TokenVersion++

	logger.Log.Infow("👑 User promoted to admin", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *service) UpdateUserDetails(ctx context.Context, id uint, update UserUpdate) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		user.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		user.LastName = strings.TrimSpace(*update.LastName)
	}
	if update.Phone != nil {
		user.Phone = strings.TrimSpace(*update.Phone)
	}

	v := validation.New()
	v.Required("firstName", user.FirstName)
	v.MaxLength("firstName", user.FirstName, validation.MaxNameLength)
	v.Required("lastName", user.LastName)
	v.MaxLength("lastName", user.LastName, validation.MaxNameLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUserStatus suspends or reactivates an account. Suspension revokes
// every token the user holds.
func (s *service) SetUserStatus(ctx context.Context, id uint, status string) (*models.User, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != models.UserStatusActive && status != models.UserStatusSuspended {
		return nil, ErrInvalidStatus
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status == status {
		return user, nil
	}

	user.Status = status
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if status == models.UserStatusSuspended {
		if err := s.users.IncrementTokenVersion(ctx, user.ID); err != nil {
			return nil, err
		}
		user.TokenVersion++
	}
	logger.Log.Infow("User status changed", "user_id", user.ID, "status", status)
	return user, nil
}

func (s *service) DeleteUser(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return ErrCannotDeleteSelf
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	logger.Log.Infow("🗑️ User deleted", "user_id", id, "by", actorID)
	return nil
}

func (s *service) GetAllTransactions(ctx context.Context, skip, limit int) (*TransactionList, error) {
	skip, limit = clampPage(skip, limit)
	txs, total, err := s.txs.List(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []models.BlockchainTransaction{}
	}
	return &TransactionList{Transactions: txs, Total: total, Skip: skip, Limit: limit}, nil
}

func clampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit
}
