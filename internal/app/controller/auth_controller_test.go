package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mlhuang/tastemap-backend/internal/app/repository"
	"github.com/mlhuang/tastemap-backend/internal/app/service"
	"github.com/mlhuang/tastemap-backend/internal/db"
	"github.com/mlhuang/tastemap-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthControllerTest(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(userRepo, "test-secret", time.Hour)

	ctrl := NewAuthController(authService, time.Hour)
	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()
	router.POST("/signup", ctrl.SignUp)
	router.POST("/signin", ctrl.SignIn)
	router.GET("/logout", authMiddleware.Authenticate(), ctrl.Logout)

	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthController_SignUp(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := postJSON(t, router, "/signup", service.RegisterInput{
		Name:          "Test User",
		Email:         "test@example.com",
		Password:      "password123",
		PasswordCheck: "password123",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "/signin", response["redirect"])
	assert.NotNil(t, response["user"])
}

func TestAuthController_SignUp_PasswordMismatch(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := postJSON(t, router, "/signup", service.RegisterInput{
		Name:          "Test User",
		Email:         "test@example.com",
		Password:      "password123",
		PasswordCheck: "password456",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthController_SignUp_DuplicateEmail(t *testing.T) {
	router := setupAuthControllerTest(t)

	input := service.RegisterInput{
		Name:          "Test User",
		Email:         "test@example.com",
		Password:      "password123",
		PasswordCheck: "password123",
	}
	require.Equal(t, http.StatusCreated, postJSON(t, router, "/signup", input).Code)

	w := postJSON(t, router, "/signup", input)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthController_SignIn_SetsCookie(t *testing.T) {
	router := setupAuthControllerTest(t)

	require.Equal(t, http.StatusCreated, postJSON(t, router, "/signup", service.RegisterInput{
		Name:          "Test User",
		Email:         "test@example.com",
		Password:      "password123",
		PasswordCheck: "password123",
	}).Code)

	w := postJSON(t, router, "/signin", service.LoginInput{
		Email:    "test@example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var tokenCookie *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "token" {
			tokenCookie = cookie
		}
	}
	require.NotNil(t, tokenCookie, "session cookie must be set on sign-in")
	assert.NotEmpty(t, tokenCookie.Value)
	assert.True(t, tokenCookie.HttpOnly)
}

func TestAuthController_SignIn_WrongPassword(t *testing.T) {
	router := setupAuthControllerTest(t)

	require.Equal(t, http.StatusCreated, postJSON(t, router, "/signup", service.RegisterInput{
		Name:          "Test User",
		Email:         "test@example.com",
		Password:      "password123",
		PasswordCheck: "password123",
	}).Code)

	w := postJSON(t, router, "/signin", service.LoginInput{
		Email:    "test@example.com",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_Logout_ClearsCookieAndRedirects(t *testing.T) {
	router := setupAuthControllerTest(t)

	require.Equal(t, http.StatusCreated, postJSON(t, router, "/signup", service.RegisterInput{
		Name:          "Test User",
		Email:         "test@example.com",
		Password:      "password123",
		PasswordCheck: "password123",
	}).Code)

	signin := postJSON(t, router, "/signin", service.LoginInput{
		Email:    "test@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, signin.Code)

	var tokenCookie *http.Cookie
	for _, cookie := range signin.Result().Cookies() {
		if cookie.Name == "token" {
			tokenCookie = cookie
		}
	}
	require.NotNil(t, tokenCookie)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(tokenCookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "token" {
			assert.Empty(t, cookie.Value)
			assert.Negative(t, cookie.MaxAge)
		}
	}
}
