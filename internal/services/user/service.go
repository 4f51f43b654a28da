// Package user serves the signed-in user's profile, privacy settings and friends.
package user

import (
	"context"
	"errors"
	"strings"

	"tcw1/internal/models"
	"tcw1/internal/repositories"
	"tcw1/internal/validation"
)

type Service interface {
	GetProfile(ctx context.Context, userID uint) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.UserProfile, error)
	GetPrivacy(ctx context.Context, userID uint) (*Privacy, error)
	UpdatePrivacy(ctx context.Context, userID uint, update PrivacyUpdate) (*Privacy, error)

	SendFriendRequest(ctx context.Context, fromID, toID uint) (*models.FriendRequest, error)
	GetFriendRequests(ctx context.Context, userID uint) (*FriendRequests, error)
	RespondFriendRequest(ctx context.Context, requestID, userID uint, accept bool) (*models.FriendRequest, error)
	ListFriends(ctx context.Context, userID uint) ([]models.UserProfile, error)
}

type ProfileUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
}

type Privacy struct {
	ShowOnlineStatus   bool `json:"showOnlineStatus"`
	ShowProfilePicture bool `json:"showProfilePicture"`
}

type PrivacyUpdate struct {
	ShowOnlineStatus   *bool `json:"showOnlineStatus"`
	ShowProfilePicture *bool `json:"showProfilePicture"`
}

type service struct {
	repo    repositories.UserRepository
	friends repositories.FriendRepository
}

func NewService(repo repositories.UserRepository, friends repositories.FriendRepository) Service {
	return &service{
		repo:    repo,
		friends: friends,
	}
}

func (s *service) getUser(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *service) GetProfile(ctx context.Context, userID uint) (*models.UserProfile, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := u.Profile()
	return &profile, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.UserProfile, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		u.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		u.LastName = strings.TrimSpace(*update.LastName)
	}
	if update.Phone != nil {
		u.Phone = strings.TrimSpace(*update.Phone)
	}

	v := validation.New()
	v.Required("firstName", u.FirstName)
	v.MaxLength("firstName", u.FirstName, validation.MaxNameLength)
	v.Required("lastName", u.LastName)
	v.MaxLength("lastName", u.LastName, validation.MaxNameLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	profile := u.Profile()
	return &profile, nil
}

func (s *service) GetPrivacy(ctx context.Context, userID uint) (*Privacy, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Privacy{ShowOnlineStatus: u.ShowOnlineStatus, ShowProfilePicture: u.ShowProfilePicture}, nil
}

func (s *service) UpdatePrivacy(ctx context.Context, userID uint, update PrivacyUpdate) (*Privacy, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.ShowOnlineStatus != nil {
		u.ShowOnlineStatus = *update.ShowOnlineStatus
	}
	if update.ShowProfilePicture != nil {
		u.ShowProfilePicture = *update.ShowProfilePicture
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return &Privacy{ShowOnlineStatus: u.ShowOnlineStatus, ShowProfilePicture: u.ShowProfilePicture}, nil
}
