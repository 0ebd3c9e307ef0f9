package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/everafterhq/everafter/pkg/errors"
	"github.com/everafterhq/everafter/pkg/response"
)

// NotFoundHandler is the fallback for unmatched routes.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, appErrors.ErrNotFound.WithMessage("Route not found"))
}
