package models

import (
	"time"
)

// User represents a dashboard account.
type User struct {
	ID                    uint       `json:"id" gorm:"primaryKey"`
	Email                 string     `json:"email" gorm:"type:varchar(100);not null;unique;index"`
	Username              string     `json:"username" gorm:"type:varchar(50);not null;index"`
	PasswordHash          string     `json:"-" gorm:"type:varchar(255);not null"`
	IsAdmin               bool       `json:"isAdmin" gorm:"default:false;index"`
	RequirePasswordChange bool       `json:"requirePasswordChange" gorm:"default:false"`
	CreatedAt             time.Time  `json:"createdAt"`
	LastLoginAt           *time.Time `json:"lastLoginAt"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// UserResponse is the admin-facing user shape (no password hash).
type UserResponse struct {
	ID                    uint       `json:"id"`
	Email                 string     `json:"email"`
	Username              string     `json:"username"`
	IsAdmin               bool       `json:"isAdmin"`
	RequirePasswordChange bool       `json:"requirePasswordChange"`
	CreatedAt             time.Time  `json:"createdAt"`
	LastLoginAt           *time.Time `json:"lastLoginAt,omitempty"`
}

// CreateUserRequest is the admin request to create a user directly.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	IsAdmin  bool   `json:"isAdmin"`
}

// UpdateUserRequest is the admin request to update a user. All fields optional.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=8"`
	IsAdmin  *bool   `json:"isAdmin,omitempty"`
}
