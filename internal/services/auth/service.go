package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"tcw1/internal/logger"
	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/services/notification"
	"tcw1/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Signup(ctx context.Context, input SignupInput) (*Result, error)
	Login(ctx context.Context, input LoginInput) (*Result, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	SetupTwoFactor(ctx context.Context, userID uint) (*TwoFactorSetup, error)
	VerifyAndEnableTwoFactor(ctx context.Context, userID uint, code string) error
	DisableTwoFactor(ctx context.Context, userID uint, password string) error
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
	GetUserTokenVersion(ctx context.Context, userID uint) (int, error)
}

// TokenIssuer is satisfied by utils.TokenManager.
type TokenIssuer interface {
	GenerateTokens(claims *models.UserClaims) (string, string, error)
	ParseRefreshToken(token string) (*models.UserClaims, error)
}

type MetricsCollector interface {
	RecordLogin(result string)
}

type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLogin(string) {}

type SignupInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	TOTPToken string `json:"totpToken"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Result struct {
	User   *models.User
	Tokens TokenPair
}

type service struct {
	userRepo repositories.UserRepository
	tokens   TokenIssuer
	notifier notification.Service
	metrics  MetricsCollector
	hashCost int
	now      func() time.Time
}

func NewService(userRepo repositories.UserRepository, tokens TokenIssuer, notifier notification.Service, metrics MetricsCollector) Service {
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{
		userRepo: userRepo,
		tokens:   tokens,
		notifier: notifier,
		metrics:  metrics,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func (s *service) Signup(ctx context.Context, input SignupInput) (*Result, error) {
	email := validation.NormalizeEmail(input.Email)
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)

	v := validation.New()
	v.Signup(email, input.Password, firstName, lastName)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:              email,
		Password:           string(hashed),
		FirstName:          firstName,
		LastName:           lastName,
		Role:               models.RoleUser,
		Status:             models.UserStatusActive,
		TokenVersion:       1,
		ShowOnlineStatus:   true,
		ShowProfilePicture: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	logger.Log.Infow("✅ User signed up", "user_id", user.ID)
	s.notifier.SendWelcome(ctx, user.Email, user.FirstName)
	return &Result{User: user, Tokens: *tokens}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Result, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.metrics.RecordLogin("invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		logger.Log.Infow("login failed: wrong password", "user_id", user.ID)
		s.metrics.RecordLogin("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if user.Status == models.UserStatusSuspended {
		s.metrics.RecordLogin("suspended")
		return nil, ErrAccountSuspended
	}

	if user.TwoFactorEnabled {
		code := strings.TrimSpace(input.TOTPToken)
		if code == "" {
			s.metrics.RecordLogin("2fa_required")
			return nil, ErrTwoFactorRequired
		}
		if !validateTOTP(code, user.TwoFactorSecret, s.now()) {
			remaining, ok := consumeBackupCode(strings.ToUpper(code), user.BackupCodes)
			if !ok {
				s.metrics.RecordLogin("invalid_2fa")
				return nil, ErrInvalidTwoFactorCode
			}
			user.BackupCodes = remaining
			logger.Log.Infow("backup code used", "user_id", user.ID, "remaining", len(remaining))
		}
	}

	now := s.now().UTC()
	user.LastLoginAt = &now
	user.LastLoginIP = input.IP
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin("success")
	s.notifier.SendLoginNotification(ctx, user.Email, input.IP, input.UserAgent)
	return &Result{User: user, Tokens: *tokens}, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenVersionMismatch
	}
	return s.issueTokens(user)
}

func (s *service) Logout(ctx context.Context, userID uint) error {
	if err := s.userRepo.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidOldPassword
	}

	v := validation.New()
	v.Password("newPassword", newPassword)
	if err := v.Err(); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return err
	}

	user.Password = string(hashed)
	user.TokenVersion++
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.notifier.SendPasswordChanged(ctx, user.Email)
	return nil
}

func (s *service) SetupTwoFactor(ctx context.Context, userID uint) (*TwoFactorSetup, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, ErrTwoFactorAlreadyActive
	}

	key, err := generateTOTPKey(user.Email)
	if err != nil {
		return nil, err
	}
	plain, hashed, err := generateBackupCodes(s.hashCost)
	if err != nil {
		return nil, err
	}

	user.TwoFactorSecret = key.Secret()
	user.BackupCodes = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return &TwoFactorSetup{
		Secret:      key.Secret(),
		OTPAuthURL:  key.URL(),
		BackupCodes: plain,
	}, nil
}

func (s *service) VerifyAndEnableTwoFactor(ctx context.Context, userID uint, code string) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.TwoFactorEnabled {
		return ErrTwoFactorAlreadyActive
	}
	if user.TwoFactorSecret == "" {
		return ErrTwoFactorNotSetUp
	}
	if !validateTOTP(strings.TrimSpace(code), user.TwoFactorSecret, s.now()) {
		return ErrInvalidTwoFactorCode
	}

	user.TwoFactorEnabled = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	logger.Log.Infow("🔐 Two-factor enabled", "user_id", user.ID)
	s.notifier.SendTwoFactorEnabled(ctx, user.Email)
	return nil
}

func (s *service) DisableTwoFactor(ctx context.Context, userID uint, password string) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrInvalidPassword
	}

	user.TwoFactorEnabled = false
	user.TwoFactorSecret = ""
	user.BackupCodes = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.notifier.SendTwoFactorDisabled(ctx, user.Email)
	return nil
}

// GetUserByID returns the cached view of a user, without credentials.
func (s *service) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetCachedByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// loadUser reads the full record for password and two-factor checks.
func (s *service) loadUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *service) GetUserTokenVersion(ctx context.Context, userID uint) (int, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.TokenVersion, nil
}

func (s *service) issueTokens(user *models.User) (*TokenPair, error) {
	access, refresh, err := s.tokens.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	})
	if err != nil {
		logger.Log.Errorw("error generating tokens", "user_id", user.ID, "error", err)
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
