package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	appErrors "github.com/everafterhq/everafter/pkg/errors"
	"github.com/everafterhq/everafter/pkg/response"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(requestContext(c))
	}
	if err != nil {
		response.Error(c, appErrors.ErrTransientFailure.WithMessage("database is unreachable").WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}
