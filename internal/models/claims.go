package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	// Admin permissions
	PermissionReadAdmin  = "admin:read"
	PermissionWriteAdmin = "admin:write"

	// User permissions
	PermissionWalletRead     = "wallet:read"
	PermissionWalletWrite    = "wallet:write"
	PermissionTradeWrite     = "trade:write"
	PermissionOrderWrite     = "order:write"
	PermissionListingWrite   = "listing:write"
	PermissionChangePassword = "user:change-password"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (c *UserClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	user := []string{
		PermissionWalletRead,
		PermissionWalletWrite,
		PermissionTradeWrite,
		PermissionOrderWrite,
		PermissionListingWrite,
		PermissionChangePassword,
	}
	switch role {
	case RoleAdmin:
		return append(user, PermissionReadAdmin, PermissionWriteAdmin)
	case RoleUser:
		return user
	default:
		return []string{}
	}
}
