package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mlhuang/tastemap-backend/internal/app/service"
	apperrors "github.com/mlhuang/tastemap-backend/internal/errors"
	"github.com/mlhuang/tastemap-backend/internal/middleware"
)

const tokenCookieName = "token"

type AuthController struct {
	authService service.AuthService
	tokenExpiry time.Duration
}

func NewAuthController(authService service.AuthService, tokenExpiry time.Duration) *AuthController {
	return &AuthController{
		authService: authService,
		tokenExpiry: tokenExpiry,
	}
}

// GetSignUpPage serves the registration page payload
// GET /signup
func (ctrl *AuthController) GetSignUpPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page": "signup",
	})
}

// GetSignInPage serves the sign-in page payload
// GET /signin
func (ctrl *AuthController) GetSignInPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page": "signin",
	})
}

// SignUp registers a new account and sends the user to the sign-in page
// POST /signup
func (ctrl *AuthController) SignUp(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	user, err := ctrl.authService.Register(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Passwords do not match",
			})
		case errors.Is(err, service.ErrEmailAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Email is already registered",
			})
		case errors.Is(err, service.ErrSignupFieldMissing):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Name, email and password are required",
			})
		case apperrors.IsUniqueViolation(err):
			// A concurrent signup can win the email between check and insert
			info := apperrors.ParseError(err, "user")
			apperrors.Conflict(c, info.Code, info.Message)
		default:
			log.Error("Sign up failed", err, map[string]interface{}{
				"email": input.Email,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create account",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Account created",
		"user":     user,
		"redirect": "/signin",
	})
}

// SignIn checks credentials and sets the session cookie
// POST /signin
func (ctrl *AuthController) SignIn(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	token, user, err := ctrl.authService.Login(input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid email or password",
			})
			return
		}
		log.Error("Sign in failed", err, map[string]interface{}{
			"email": input.Email,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to sign in",
		})
		return
	}

	c.SetCookie(tokenCookieName, token, int(ctrl.tokenExpiry.Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Signed in",
		"token":    token,
		"user":     user,
		"redirect": "/restaurants",
	})
}

// Logout revokes the session token and clears the cookie
// GET /logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token := middleware.GetToken(c)
	if token != "" {
		if err := ctrl.authService.Logout(c.Request.Context(), token); err != nil {
			log.Warn("Token revocation failed during logout", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	c.SetCookie(tokenCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/signin")
}
