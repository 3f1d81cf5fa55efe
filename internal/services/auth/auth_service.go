package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/rigaku-tools/machine-fleet-backend/internal/database/repository"
	"github.com/rigaku-tools/machine-fleet-backend/internal/models"
	"github.com/rigaku-tools/machine-fleet-backend/internal/services/email"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Domain errors surfaced to handlers. Handlers map these onto status codes
// with errors.Is.
var (
	ErrInvalidEmailDomain = errors.New("only Rigaku email addresses (@rigaku.com) are allowed")
	ErrUndeliverableEmail = errors.New("email address appears to be undeliverable")
	ErrEmailExists        = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordIncorrect  = errors.New("current password is incorrect")
	ErrPasswordUnchanged  = errors.New("new password must be different from the current password")
)

const tokenTTL = 24 * time.Hour

// genericResetMessage never varies with account existence, so the endpoint
// cannot be used to enumerate accounts.
const genericResetMessage = "If an account with this email exists, a password reset has been sent."

type AuthService struct {
	db        *gorm.DB
	userRepo  *repository.UserRepository
	sender    email.Sender
	validator email.Validator
	jwtSecret []byte
	issuer    string
	audience  string
}

func NewAuthService(db *gorm.DB, sender email.Sender, validator email.Validator) *AuthService {
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		jwtSecret = []byte("default-secret-key-change-in-production")
		logrus.Warn("JWT_SECRET not set, using default development secret")
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "MachineManagementAPI"
	}
	audience := os.Getenv("JWT_AUDIENCE")
	if audience == "" {
		audience = "MachineManagementClient"
	}

	return &AuthService{
		db:        db,
		userRepo:  repository.NewUserRepository(db),
		sender:    sender,
		validator: validator,
		jwtSecret: jwtSecret,
		issuer:    issuer,
		audience:  audience,
	}
}

// Register creates an account for a Rigaku address and signs it in.
func (s *AuthService) Register(req *models.RegisterRequest) (*models.AuthResponse, error) {
	normEmail := strings.ToLower(req.Email)

	if !strings.HasSuffix(normEmail, "@rigaku.com") {
		return nil, ErrInvalidEmailDomain
	}

	if s.validator != nil && !s.validator.IsValidEmail(req.Email) {
		return nil, ErrUndeliverableEmail
	}

	exists, err := s.userRepo.ExistsByEmail(normEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        normEmail,
		Username:     DeriveUsername(normEmail),
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Welcome email is best-effort: registration already succeeded.
	if err := s.sender.SendEmail(user.Email, "Welcome - Machine Control System", welcomeBody(user.Username)); err != nil {
		logrus.Warnf("Failed to send welcome email to %s: %v", user.Email, err)
	}

	return s.buildAuthResponse(user)
}

// Login authenticates by email and password.
func (s *AuthService) Login(req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		logrus.Warnf("Failed to update last login for user %d: %v", user.ID, err)
	}

	return s.buildAuthResponse(user)
}

// ForgotPassword resets the account to a temporary password and emails it.
// The password mutation and the email send share one transaction: if the mail
// cannot be delivered the old password stays valid, so nobody is locked out
// by a reset they never received.
func (s *AuthService) ForgotPassword(req *models.ForgotPasswordRequest) (*models.MessageResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.MessageResponse{Message: genericResetMessage}, nil
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	tempPassword, err := GenerateTemporaryPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate temporary password: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		user.PasswordHash = string(hashedPassword)
		user.RequirePasswordChange = true
		if err := s.userRepo.WithTx(tx).Update(user); err != nil {
			return fmt.Errorf("failed to store temporary password: %w", err)
		}
		if err := s.sender.SendEmail(user.Email, "Password Reset - Machine Control System", passwordResetBody(user.Username, tempPassword)); err != nil {
			return fmt.Errorf("failed to deliver reset email: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.MessageResponse{Message: genericResetMessage}, nil
}

// ChangePassword replaces the caller's password. Accounts flagged with
// requirePasswordChange (post-reset) skip current-password verification; the
// flag is cleared on success either way.
func (s *AuthService) ChangePassword(userEmail string, req *models.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByEmail(userEmail)
	if err != nil {
		return ErrUserNotFound
	}

	if !user.RequirePasswordChange {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return ErrPasswordIncorrect
		}
		if req.NewPassword == req.CurrentPassword {
			return ErrPasswordUnchanged
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	user.RequirePasswordChange = false
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// ValidateToken validates and parses a JWT token. The default zero leeway
// applies, so an expired token is rejected immediately.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) buildAuthResponse(user *models.User) (*models.AuthResponse, error) {
	expiresAt := time.Now().Add(tokenTTL)

	role := "User"
	if user.IsAdmin {
		role = "Admin"
	}

	claims := &models.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     role,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.AuthResponse{
		Token:                 token,
		Username:              user.Username,
		Email:                 user.Email,
		IsAdmin:               user.IsAdmin,
		RequirePasswordChange: user.RequirePasswordChange,
		ExpiresAt:             expiresAt,
	}, nil
}

// DeriveUsername turns the local part of an email into a display name:
// "jane.m.doe@rigaku.com" becomes "Jane M Doe".
func DeriveUsername(emailAddr string) string {
	local := strings.Split(emailAddr, "@")[0]
	parts := strings.Split(local, ".")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
	}
	return strings.Join(parts, " ")
}

const (
	uppercaseChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowercaseChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars      = "0123456789"
	tempPasswordLen = 12
)

// GenerateTemporaryPassword builds a 12-character password with at least one
// uppercase letter, one lowercase letter and one digit, then shuffles it so
// the guaranteed characters are not positionally predictable.
func GenerateTemporaryPassword() (string, error) {
	combined := uppercaseChars + lowercaseChars + digitChars

	password := make([]byte, tempPasswordLen)
	var err error
	if password[0], err = randomChar(uppercaseChars); err != nil {
		return "", err
	}
	if password[1], err = randomChar(lowercaseChars); err != nil {
		return "", err
	}
	if password[2], err = randomChar(digitChars); err != nil {
		return "", err
	}
	for i := 3; i < tempPasswordLen; i++ {
		if password[i], err = randomChar(combined); err != nil {
			return "", err
		}
	}

	// Fisher-Yates shuffle
	for i := len(password) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		password[i], password[j.Int64()] = password[j.Int64()], password[i]
	}

	return string(password), nil
}

func randomChar(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[n.Int64()], nil
}
