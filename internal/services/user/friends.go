package user

import (
	"context"
	"errors"
	"time"

	"tcw1/internal/models"
	"tcw1/internal/repositories"
)

// FriendRequests are the pending requests to and from a user.
type FriendRequests struct {
	Incoming []models.FriendRequest `json:"incoming"`
	Outgoing []models.FriendRequest `json:"outgoing"`
}

func (s *service) SendFriendRequest(ctx context.Context, fromID, toID uint) (*models.FriendRequest, error) {
	if fromID == toID {
		return nil, ErrSelfRequest
	}
	if _, err := s.getUser(ctx, toID); err != nil {
		return nil, err
	}

	existing, err := s.friends.FindBetween(ctx, fromID, toID)
	switch {
	case err == nil && existing.Status == models.FriendRequestAccepted:
		return nil, ErrAlreadyFriends
	case err == nil:
		return nil, ErrRequestExists
	case !errors.Is(err, repositories.ErrFriendRequestNotFound):
		return nil, err
	}

	req := &models.FriendRequest{
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     models.FriendRequestPending,
	}
	if err := s.friends.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) GetFriendRequests(ctx context.Context, userID uint) (*FriendRequests, error) {
	incoming, err := s.friends.ListIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	outgoing, err := s.friends.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	if incoming == nil {
		incoming = []models.FriendRequest{}
	}
	if outgoing == nil {
		outgoing = []models.FriendRequest{}
	}
	return &FriendRequests{Incoming: incoming, Outgoing: outgoing}, nil
}

func (s *service) RespondFriendRequest(ctx context.Context, requestID, userID uint, accept bool) (*models.FriendRequest, error) {
	req, err := s.friends.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrFriendRequestNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.ToUserID != userID {
		return nil, ErrNotRecipient
	}
	if req.Status != models.FriendRequestPending {
		return nil, ErrAlreadyResponded
	}

	now := time.Now().UTC()
	req.RespondedAt = &now
	req.Status = models.FriendRequestRejected
	if accept {
		req.Status = models.FriendRequestAccepted
	}
	if err := s.friends.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListFriends returns the public profiles of every accepted friend.
func (s *service) ListFriends(ctx context.Context, userID uint) ([]models.UserProfile, error) {
	ids, err := s.friends.ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.UserProfile{}, nil
	}

	users, err := s.friends.ListUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	profiles := make([]models.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	return profiles, nil
}
