package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rigaku-tools/machine-fleet-backend/internal/database/repository"
	"github.com/rigaku-tools/machine-fleet-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserEmailExists = errors.New("a user with this email already exists")
)

// UserService is the admin-facing CRUD over accounts. The self-deletion guard
// lives at the handler boundary, not here.
type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{userRepo: repository.NewUserRepository(db)}
}

// GetAllUsers returns every account.
func (s *UserService) GetAllUsers() ([]models.UserResponse, error) {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	responses := make([]models.UserResponse, len(users))
	for i := range users {
		responses[i] = mapUser(&users[i])
	}
	return responses, nil
}

// GetUserByID returns one account or ErrUserNotFound.
func (s *UserService) GetUserByID(id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	resp := mapUser(user)
	return &resp, nil
}

// CreateUser creates an account with an admin-chosen username and password.
func (s *UserService) CreateUser(req *models.CreateUserRequest) (*models.UserResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrUserEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(req.Email),
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		IsAdmin:      req.IsAdmin,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	resp := mapUser(user)
	return &resp, nil
}

// UpdateUser applies the supplied fields to an account.
func (s *UserService) UpdateUser(id uint, req *models.UpdateUserRequest) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Email != nil && strings.ToLower(*req.Email) != user.Email {
		exists, err := s.userRepo.ExistsByEmail(*req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return nil, ErrUserEmailExists
		}
		user.Email = strings.ToLower(*req.Email)
	}

	if req.Username != nil && *req.Username != "" {
		user.Username = *req.Username
	}

	if req.Password != nil && *req.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	resp := mapUser(user)
	return &resp, nil
}

// DeleteUser removes an account.
func (s *UserService) DeleteUser(id uint) error {
	_, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.userRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func mapUser(user *models.User) models.UserResponse {
	return models.UserResponse{
		ID:                    user.ID,
		Email:                 user.Email,
		Username:              user.Username,
		IsAdmin:               user.IsAdmin,
		RequirePasswordChange: user.RequirePasswordChange,
		CreatedAt:             user.CreatedAt,
		LastLoginAt:           user.LastLoginAt,
	}
}
