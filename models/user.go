package models

import "time"

// Role classifies a user account.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is a recognized role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Password   string    `json:"-"` // Never send password in JSON
	Avatar     string    `json:"avatar"`
	Role       Role      `json:"role"`
	IsDisabled bool      `json:"is_disabled"`
	LastSeen   time.Time `json:"last_seen"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserResponse is the safe version of User for API responses
type UserResponse struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Avatar     string    `json:"avatar"`
	Role       Role      `json:"role"`
	IsDisabled bool      `json:"is_disabled"`
	LastSeen   time.Time `json:"last_seen"`
	CreatedAt  time.Time `json:"created_at"`
	Online     bool      `json:"online"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Avatar:     u.Avatar,
		Role:       u.Role,
		IsDisabled: u.IsDisabled,
		LastSeen:   u.LastSeen,
		CreatedAt:  u.CreatedAt,
		Online:     false,
	}
}
