package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adobah666/edutrack-sub001/internal/models"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
	"github.com/adobah666/edutrack-sub001/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// CallerFromContext returns the caller attached by JWT, or an anonymous caller.
func CallerFromContext(c *gin.Context) models.Caller {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return models.Caller{}
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return models.Caller{}
	}
	return models.CallerFromClaims(claims)
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
