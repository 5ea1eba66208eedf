package service

import (
	"testing"
	"time"

	"github.com/mlhuang/tastemap-backend/internal/app/model"
	"github.com/mlhuang/tastemap-backend/internal/app/repository"
	"github.com/mlhuang/tastemap-backend/internal/db"
	"github.com/mlhuang/tastemap-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	svc := NewAuthService(userRepo, testJWTSecret, time.Hour)

	return svc, testDB
}

func TestAuthService_Register(t *testing.T) {
	svc, testDB, input := setupRegister(t)

	user, err := svc.Register(input)
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "new@example.com", user.Email)
	assert.False(t, user.IsAdmin)

	// The password is stored hashed, never in the clear
	var stored model.User
	require.NoError(t, testDB.First(&stored, user.ID).Error)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.True(t, util.VerifyPassword(stored.PasswordHash, "password123"))
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	svc, _, input := setupRegister(t)
	input.PasswordCheck = "different"

	_, err := svc.Register(input)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, input := setupRegister(t)

	_, err := svc.Register(input)
	require.NoError(t, err)

	_, err = svc.Register(input)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	svc, _, input := setupRegister(t)
	input.Email = "  New@Example.COM "

	user, err := svc.Register(input)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestAuthService_Login(t *testing.T) {
	svc, _, input := setupRegister(t)

	_, err := svc.Register(input)
	require.NoError(t, err)

	token, user, err := svc.Login(LoginInput{Email: "new@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "new@example.com", user.Email)

	claims, err := util.ValidateToken(token, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.False(t, claims.IsAdmin)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _, input := setupRegister(t)

	_, err := svc.Register(input)
	require.NoError(t, err)

	_, _, err = svc.Login(LoginInput{Email: "new@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	_, _, err := svc.Login(LoginInput{Email: "ghost@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func setupRegister(t *testing.T) (AuthService, *gorm.DB, RegisterInput) {
	svc, testDB := setupAuthServiceTest(t)
	return svc, testDB, RegisterInput{
		Name:          "New User",
		Email:         "new@example.com",
		Password:      "password123",
		PasswordCheck: "password123",
	}
}
