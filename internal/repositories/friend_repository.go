package repositories

import (
	"context"
	"errors"

	"tcw1/internal/models"

	"gorm.io/gorm"
)

var ErrFriendRequestNotFound = errors.New("friend request not found")

type FriendRepository interface {
	Create(ctx context.Context, req *models.FriendRequest) error
	GetByID(ctx context.Context, id uint) (*models.FriendRequest, error)
	Update(ctx context.Context, req *models.FriendRequest) error

	// FindBetween returns a pending or accepted request between two users in either direction.
	FindBetween(ctx context.Context, a, b uint) (*models.FriendRequest, error)

	ListIncoming(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	ListFriendIDs(ctx context.Context, userID uint) ([]uint, error)
	ListUsers(ctx context.Context, ids []uint) ([]models.User, error)
}

type friendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) Create(ctx context.Context, req *models.FriendRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *friendRepository) GetByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, notFound(err, ErrFriendRequestNotFound)
	}
	return &req, nil
}

func (r *friendRepository) Update(ctx context.Context, req *models.FriendRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *friendRepository) FindBetween(ctx context.Context, a, b uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)) AND status IN ?",
			a, b, b, a, []string{models.FriendRequestPending, models.FriendRequestAccepted}).
		First(&req).Error
	if err != nil {
		return nil, notFound(err, ErrFriendRequestNotFound)
	}
	return &req, nil
}

func (r *friendRepository) ListIncoming(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("to_user_id = ? AND status = ?", userID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *friendRepository) ListOutgoing(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND status = ?", userID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *friendRepository) ListFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var reqs []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("(from_user_id = ? OR to_user_id = ?) AND status = ?", userID, userID, models.FriendRequestAccepted).
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(reqs))
	for _, req := range reqs {
		if req.FromUserID == userID {
			ids = append(ids, req.ToUserID)
		} else {
			ids = append(ids, req.FromUserID)
		}
	}
	return ids, nil
}

func (r *friendRepository) ListUsers(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("first_name").Find(&users).Error
	return users, err
}
