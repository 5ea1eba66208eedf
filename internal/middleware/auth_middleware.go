package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mlhuang/tastemap-backend/pkg/logger"
	"github.com/mlhuang/tastemap-backend/pkg/redis"
	"github.com/mlhuang/tastemap-backend/pkg/util"
)

const (
	ContextUserIDKey    = "user_id"
	ContextUserEmailKey = "user_email"
	ContextIsAdminKey   = "user_is_admin"
	ContextTokenKey     = "auth_token"

	tokenCookieName = "token"
	signInPath      = "/signin"
	rootPath        = "/"
)

// AuthMiddleware guards routes with a session token. The token travels in
// the "token" cookie; an Authorization Bearer header works as a fallback
// for API clients.
type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// Authenticate redirects unauthenticated requests to the sign-in page.
// On success the user identity and the raw token land in the gin context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Redirect(http.StatusFound, signInPath)
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			logger.Debug("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Redirect(http.StatusFound, signInPath)
			c.Abort()
			return
		}

		revoked, err := redis.IsTokenRevoked(c.Request.Context(), token)
		if err != nil {
			logger.Warn("Token revocation check failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		if revoked {
			c.Redirect(http.StatusFound, signInPath)
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserEmailKey, claims.Email)
		c.Set(ContextIsAdminKey, claims.IsAdmin)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// RequireAdmin sends authenticated non-admins back to the front page.
// It must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetUserIsAdmin(c) {
			logger.Warn("Admin route denied", map[string]interface{}{
				"user_id": GetUserID(c),
				"path":    c.Request.URL.Path,
			})
			c.Redirect(http.StatusFound, rootPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(tokenCookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func GetUserEmail(c *gin.Context) string {
	if v, ok := c.Get(ContextUserEmailKey); ok {
		if email, ok := v.(string); ok {
			return email
		}
	}
	return ""
}

func GetUserIsAdmin(c *gin.Context) bool {
	if v, ok := c.Get(ContextIsAdminKey); ok {
		if isAdmin, ok := v.(bool); ok {
			return isAdmin
		}
	}
	return false
}

func GetToken(c *gin.Context) string {
	if v, ok := c.Get(ContextTokenKey); ok {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}
