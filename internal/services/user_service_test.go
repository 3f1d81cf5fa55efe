package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rigaku-tools/machine-fleet-backend/internal/models"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(newTestDB(t))
}

func TestCreateUser(t *testing.T) {
	svc := newUserService(t)

	created, err := svc.CreateUser(&models.CreateUserRequest{
		Email:    "Jane.Doe@Rigaku.com",
		Username: "Jane Doe",
		Password: "password123",
		IsAdmin:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "jane.doe@rigaku.com", created.Email, "emails are stored lowercased")
	assert.Equal(t, "Jane Doe", created.Username)
	assert.True(t, created.IsAdmin)
	assert.False(t, created.RequirePasswordChange)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.CreateUser(&models.CreateUserRequest{
		Email: "jane.doe@rigaku.com", Username: "Jane", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.CreateUser(&models.CreateUserRequest{
		Email: "JANE.DOE@rigaku.com", Username: "Other", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestGetAllUsersOrderedByID(t *testing.T) {
	svc := newUserService(t)

	for _, email := range []string{"a@rigaku.com", "b@rigaku.com", "c@rigaku.com"} {
		_, err := svc.CreateUser(&models.CreateUserRequest{Email: email, Username: email, Password: "password123"})
		require.NoError(t, err)
	}

	users, err := svc.GetAllUsers()
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.True(t, users[0].ID < users[1].ID && users[1].ID < users[2].ID)
}

func TestUpdateUser(t *testing.T) {
	svc := newUserService(t)

	created, err := svc.CreateUser(&models.CreateUserRequest{
		Email: "jane.doe@rigaku.com", Username: "Jane", Password: "password123",
	})
	require.NoError(t, err)

	username := "Jane Renamed"
	isAdmin := true
	updated, err := svc.UpdateUser(created.ID, &models.UpdateUserRequest{
		Username: &username,
		IsAdmin:  &isAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Renamed", updated.Username)
	assert.True(t, updated.IsAdmin)
	assert.Equal(t, created.Email, updated.Email)
}

func TestUpdateUserPasswordIsHashed(t *testing.T) {
	svc := newUserService(t)

	created, err := svc.CreateUser(&models.CreateUserRequest{
		Email: "jane.doe@rigaku.com", Username: "Jane", Password: "password123",
	})
	require.NoError(t, err)

	password := "replacement-pass1"
	_, err = svc.UpdateUser(created.ID, &models.UpdateUserRequest{Password: &password})
	require.NoError(t, err)

	user, err := svc.userRepo.GetByID(created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, password, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)))
}

func TestUpdateUserRejectsTakenEmail(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.CreateUser(&models.CreateUserRequest{
		Email: "jane.doe@rigaku.com", Username: "Jane", Password: "password123",
	})
	require.NoError(t, err)
	other, err := svc.CreateUser(&models.CreateUserRequest{
		Email: "john.smith@rigaku.com", Username: "John", Password: "password123",
	})
	require.NoError(t, err)

	taken := "jane.doe@rigaku.com"
	_, err = svc.UpdateUser(other.ID, &models.UpdateUserRequest{Email: &taken})
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestDeleteUser(t *testing.T) {
	svc := newUserService(t)

	created, err := svc.CreateUser(&models.CreateUserRequest{
		Email: "jane.doe@rigaku.com", Username: "Jane", Password: "password123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(created.ID))

	_, err = svc.GetUserByID(created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, svc.DeleteUser(created.ID), ErrUserNotFound)
}
