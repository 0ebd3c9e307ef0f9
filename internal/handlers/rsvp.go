package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/everafterhq/everafter/internal/models"
	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/response"
)

// RSVPHandler serves the public guest-facing RSVP flow. The routes carry no
// tenant middleware: the shared code in the URL is the credential and the
// wedding is resolved from it on every call.
type RSVPHandler struct {
	svc *services.RSVPService
}

func NewRSVPHandler(svc *services.RSVPService) *RSVPHandler {
	return &RSVPHandler{svc: svc}
}

// GET /rsvp/:code
func (h *RSVPHandler) Lookup(c *gin.Context) {
	wedding, guests, err := h.svc.Lookup(requestContext(c), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"wedding": wedding,
		"guests":  guests,
	})
}

type submitRSVPRequest struct {
	EventID      string `json:"event_id" validate:"required,uuid4"`
	GuestID      string `json:"guest_id" validate:"required,uuid4"`
	Status       string `json:"status" validate:"required,oneof=ATTENDING DECLINED"`
	PlusOneCount int    `json:"plus_one_count" validate:"min=0,max=10"`
	PlusOneName  string `json:"plus_one_name" validate:"max=255"`
	MealChoice   string `json:"meal_choice" validate:"max=64"`
	DietaryNotes string `json:"dietary_notes"`
}

// POST /rsvp/:code
func (h *RSVPHandler) Submit(c *gin.Context) {
	wedding, _, err := h.svc.Lookup(requestContext(c), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var req submitRSVPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	invitation, err := h.svc.Submit(requestContext(c), wedding.ID, services.SubmitInput{
		EventID:      req.EventID,
		GuestID:      req.GuestID,
		Status:       models.RSVPStatus(req.Status),
		PlusOneCount: req.PlusOneCount,
		PlusOneName:  req.PlusOneName,
		MealChoice:   req.MealChoice,
		DietaryNotes: req.DietaryNotes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invitation)
}
