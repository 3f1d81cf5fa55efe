package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token                 string    `json:"token"`
	Username              string    `json:"username"`
	Email                 string    `json:"email"`
	IsAdmin               bool      `json:"isAdmin"`
	RequirePasswordChange bool      `json:"requirePasswordChange"`
	ExpiresAt             time.Time `json:"expiresAt"`
}

// ForgotPasswordRequest represents the forgot-password request
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ChangePasswordRequest represents a request to change the caller's password.
// CurrentPassword is optional: the forced-change flow after a reset does not
// know the temporary password holder's previous one.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// MessageResponse is the generic `{"message": ...}` body.
type MessageResponse struct {
	Message string `json:"message"`
}

// JWTClaims represents the JWT claims
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}
