package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

type User struct {
	gorm.Model
	Email              string `gorm:"uniqueIndex;not null"`
	Password           string `gorm:"not null" json:"-"`
	FirstName          string `gorm:"not null"`
	LastName           string `gorm:"not null"`
	Phone              string
	Role               string         `gorm:"default:'user'"`
	Status             string         `gorm:"default:'active'"`
	TwoFactorEnabled   bool           `gorm:"default:false"`
	TwoFactorSecret    string         `json:"-"`
	BackupCodes        pq.StringArray `gorm:"type:text[]" json:"-"`
	TokenVersion       int            `gorm:"default:1"`
	LastLoginAt        *time.Time
	LastLoginIP        string
	ShowOnlineStatus   bool `gorm:"default:true"`
	ShowProfilePicture bool `gorm:"default:true"`
}

// UserProfile is the outward view of a user. It never carries credentials.
type UserProfile struct {
	ID                 uint       `json:"id"`
	Email              string     `json:"email"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	Phone              string     `json:"phone,omitempty"`
	Role               string     `json:"role"`
	Status             string     `json:"status"`
	TwoFactorEnabled   bool       `json:"twoFactorEnabled"`
	LastLoginAt        *time.Time `json:"lastLogin,omitempty"`
	ShowOnlineStatus   bool       `json:"showOnlineStatus"`
	ShowProfilePicture bool       `json:"showProfilePicture"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Phone:              u.Phone,
		Role:               u.Role,
		Status:             u.Status,
		TwoFactorEnabled:   u.TwoFactorEnabled,
		LastLoginAt:        u.LastLoginAt,
		ShowOnlineStatus:   u.ShowOnlineStatus,
		ShowProfilePicture: u.ShowProfilePicture,
		CreatedAt:          u.CreatedAt,
	}
}

// WithoutCredentials returns a copy with the password hash and two-factor
// secrets cleared. Cached user records have this shape.
func (u *User) WithoutCredentials() *User {
	c := *u
	c.Password = ""
	c.TwoFactorSecret = ""
	c.BackupCodes = nil
	return &c
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FriendRequest links two users. An accepted request makes them friends.
type FriendRequest struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	FromUserID  uint       `gorm:"index;not null" json:"fromUserId"`
	ToUserID    uint       `gorm:"index;not null" json:"toUserId"`
	Status      string     `gorm:"default:'pending';index" json:"status"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)
