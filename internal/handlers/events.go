package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/everafterhq/everafter/internal/models"
	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/response"
)

type EventHandler struct {
	svc  *services.EventService
	rsvp *services.RSVPService
}

func NewEventHandler(svc *services.EventService, rsvp *services.RSVPService) *EventHandler {
	return &EventHandler{svc: svc, rsvp: rsvp}
}

type mealOptionRequest struct {
	ID    string `json:"id" validate:"required,max=64"`
	Label string `json:"label" validate:"required,max=255"`
}

type eventRequest struct {
	Name         string              `json:"name" validate:"required,max=255"`
	StartsAt     time.Time           `json:"starts_at"`
	EndsAt       time.Time           `json:"ends_at"`
	Venue        string              `json:"venue" validate:"max=255"`
	Address      string              `json:"address"`
	MealOptions  []mealOptionRequest `json:"meal_options" validate:"dive"`
	DisplayOrder int                 `json:"display_order"`
}

func (r eventRequest) toInput() services.EventInput {
	options := make([]models.MealOption, 0, len(r.MealOptions))
	for _, option := range r.MealOptions {
		options = append(options, models.MealOption{ID: option.ID, Label: option.Label})
	}

	return services.EventInput{
		Name:         r.Name,
		StartsAt:     r.StartsAt,
		EndsAt:       r.EndsAt,
		Venue:        r.Venue,
		Address:      r.Address,
		MealOptions:  options,
		DisplayOrder: r.DisplayOrder,
	}
}

// GET /api/events
func (h *EventHandler) List(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	events, err := h.svc.List(requestContext(c), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, events)
}

// POST /api/events
func (h *EventHandler) Create(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req eventRequest
	if !bindAndValidate(c, &req) {
		return
	}

	event, err := h.svc.Create(requestContext(c), weddingID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, event)
}

// PUT /api/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req eventRequest
	if !bindAndValidate(c, &req) {
		return
	}

	event, err := h.svc.Update(requestContext(c), weddingID, c.Param("id"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, event)
}

// DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(requestContext(c), weddingID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type inviteRequest struct {
	GuestID string `json:"guest_id" validate:"required,uuid4"`
}

// POST /api/events/:id/invitations
func (h *EventHandler) Invite(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req inviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	invitation, err := h.svc.Invite(requestContext(c), weddingID, c.Param("id"), req.GuestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, invitation)
}

// DELETE /api/events/:id/invitations/:guestId
func (h *EventHandler) Uninvite(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	err := h.svc.Uninvite(requestContext(c), weddingID, c.Param("id"), c.Param("guestId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/events/:id/summary
func (h *EventHandler) Summary(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	summary, err := h.rsvp.AggregateEvent(requestContext(c), weddingID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

// GET /api/rsvps/summary
func (h *EventHandler) WeddingSummary(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	summary, err := h.rsvp.AggregateWedding(requestContext(c), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

type overrideRequest struct {
	GuestID string  `json:"guest_id" validate:"required,uuid4"`
	Status  *string `json:"status" validate:"omitempty,oneof=ATTENDING DECLINED MAYBE"`
}

// PUT /api/events/:id/rsvp
func (h *EventHandler) OverrideRSVP(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req overrideRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var status *models.RSVPStatus
	if req.Status != nil {
		s := models.RSVPStatus(*req.Status)
		status = &s
	}

	invitation, err := h.rsvp.Override(requestContext(c), weddingID, c.Param("id"), req.GuestID, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invitation)
}
