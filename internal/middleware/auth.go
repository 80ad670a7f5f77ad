package middleware

import (
	"context"
	"strings"

	"training_tracker/internal/access"
	"training_tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// TokenAuthenticator verifies a raw bearer token.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*util.Claims, error)
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie("session_token"); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware rejects requests without a valid session token and stores
// the claims under util.ContextUserKey.
func AuthMiddleware(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			util.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// Require applies the access gate for level to every request of a group.
// It must run after AuthMiddleware.
func Require(level access.Level) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.Check(CallerFrom(c), level); err != nil {
			util.HandleError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CallerFrom returns the authenticated caller, or nil.
func CallerFrom(c *gin.Context) *access.Caller {
	return access.FromClaims(util.GetUserFromContext(c))
}
