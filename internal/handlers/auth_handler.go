package handlers

import (
	"errors"
	"net/http"

	"github.com/rigaku-tools/machine-fleet-backend/internal/models"
	"github.com/rigaku-tools/machine-fleet-backend/internal/services/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService *auth.AuthService
}

func NewAuthHandler(authService *auth.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Register with a Rigaku email address and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	response, err := h.authService.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmailDomain),
			errors.Is(err, auth.ErrUndeliverableEmail),
			errors.Is(err, auth.ErrEmailExists):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			logrus.Errorf("Registration failed for %s: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register"})
		}
		return
	}

	logrus.Infof("User registered successfully: %s", response.Email)
	c.JSON(http.StatusOK, response)
}

// Login godoc
// @Summary Authenticate a user
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} models.MessageResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	response, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			return
		}
		logrus.Errorf("Login failed for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to login"})
		return
	}

	logrus.Infof("User logged in successfully: %s", response.Email)
	c.JSON(http.StatusOK, response)
}

// ForgotPassword godoc
// @Summary Request a password reset
// @Description Sends a temporary password if the account exists. The response
// @Description never reveals whether it does.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.ForgotPasswordRequest true "Account email"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	response, err := h.authService.ForgotPassword(&req)
	if err != nil {
		logrus.Errorf("Password reset failed for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An unexpected error occurred while processing your request"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Description Change password. Accounts in the forced-change flow may omit
// @Description the current password.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ChangePasswordRequest true "Change password request"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.MessageResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userEmail := c.MustGet("user_email").(string)

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	if err := h.authService.ChangePassword(userEmail, &req); err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordIncorrect), errors.Is(err, auth.ErrPasswordUnchanged):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, auth.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
		default:
			logrus.Errorf("Password change failed for %s: %v", userEmail, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "An unexpected error occurred while changing password"})
		}
		return
	}

	logrus.Infof("Password changed successfully for user: %s", userEmail)
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
