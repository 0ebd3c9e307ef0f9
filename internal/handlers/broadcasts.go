package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/response"
)

type BroadcastHandler struct {
	svc *services.BroadcastService
}

func NewBroadcastHandler(svc *services.BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{svc: svc}
}

type broadcastRequest struct {
	Subject      string     `json:"subject" validate:"required,max=255"`
	Body         string     `json:"body" validate:"required"`
	CTALink      string     `json:"cta_link" validate:"omitempty,url,max=2048"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// GET /api/broadcasts
func (h *BroadcastHandler) List(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	messages, err := h.svc.List(requestContext(c), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, messages)
}

// POST /api/broadcasts
func (h *BroadcastHandler) Create(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req broadcastRequest
	if !bindAndValidate(c, &req) {
		return
	}

	message, err := h.svc.Create(requestContext(c), weddingID, services.BroadcastInput{
		Subject:      req.Subject,
		Body:         req.Body,
		CTALink:      req.CTALink,
		ScheduledFor: req.ScheduledFor,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, message)
}

// GET /api/broadcasts/:id
func (h *BroadcastHandler) Get(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	message, err := h.svc.Get(requestContext(c), weddingID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, message)
}

// POST /api/broadcasts/:id/cancel
func (h *BroadcastHandler) Cancel(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	message, err := h.svc.Cancel(requestContext(c), weddingID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, message)
}
