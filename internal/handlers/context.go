package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/everafterhq/everafter/internal/middleware"
	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
	"github.com/everafterhq/everafter/pkg/response"
)

// tenantWedding returns the wedding resolved by the tenant middleware on
// public guest routes. It writes the error response itself when missing.
func tenantWedding(c *gin.Context) (*models.Wedding, bool) {
	wedding, ok := middleware.WeddingFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrNotFound.WithMessage("wedding not found"))
		return nil, false
	}
	return wedding, true
}

// coupleWeddingID returns the wedding bound into the couple's access token.
func coupleWeddingID(c *gin.Context) (string, bool) {
	weddingID := c.GetString(middleware.CtxWeddingIDKey)
	if weddingID == "" {
		response.Error(c, appErrors.ErrForbidden.WithMessage("No wedding is linked to this account"))
		return "", false
	}
	return weddingID, true
}

func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}
