package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/everafterhq/everafter/internal/auth"
	"github.com/everafterhq/everafter/internal/models"
	"github.com/everafterhq/everafter/pkg/errors"
	"github.com/everafterhq/everafter/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
	CtxRoleKey   = "userRole"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxRoleKey, claims.Role)
		if claims.WeddingID != "" {
			c.Set(CtxWeddingIDKey, claims.WeddingID)
		}

		c.Next()
	}
}

// RequireAdmin gates the back-office routes to admin accounts.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRoleKey) != models.RoleAdmin {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireWedding ensures the authenticated couple token is bound to a tenant.
func RequireWedding() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxWeddingIDKey) == "" {
			response.Error(c, errors.ErrForbidden.WithMessage("No wedding is linked to this account"))
			c.Abort()
			return
		}
		c.Next()
	}
}
