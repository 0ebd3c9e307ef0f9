package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/response"
)

type GuestHandler struct {
	svc *services.GuestService
}

func NewGuestHandler(svc *services.GuestService) *GuestHandler {
	return &GuestHandler{svc: svc}
}

type guestRequest struct {
	DisplayName  string `json:"display_name" validate:"required,max=255"`
	PartyName    string `json:"party_name" validate:"max=255"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=64"`
	AllowPlusOne bool   `json:"allow_plus_one"`
}

func (r guestRequest) toInput() services.GuestInput {
	return services.GuestInput{
		DisplayName:  r.DisplayName,
		PartyName:    r.PartyName,
		Email:        r.Email,
		Phone:        r.Phone,
		AllowPlusOne: r.AllowPlusOne,
	}
}

// GET /api/guests
func (h *GuestHandler) List(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	guests, err := h.svc.List(requestContext(c), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, guests)
}

// POST /api/guests
func (h *GuestHandler) Create(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req guestRequest
	if !bindAndValidate(c, &req) {
		return
	}

	guest, err := h.svc.Create(requestContext(c), weddingID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, guest)
}

type importGuestsRequest struct {
	Guests []guestRequest `json:"guests" validate:"required,min=1,max=500,dive"`
}

// POST /api/guests/import
func (h *GuestHandler) Import(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req importGuestsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	inputs := make([]services.GuestInput, 0, len(req.Guests))
	for _, guest := range req.Guests {
		inputs = append(inputs, guest.toInput())
	}

	guests, err := h.svc.Import(requestContext(c), weddingID, inputs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, guests)
}

// PUT /api/guests/:id
func (h *GuestHandler) Update(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req guestRequest
	if !bindAndValidate(c, &req) {
		return
	}

	guest, err := h.svc.Update(requestContext(c), weddingID, c.Param("id"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, guest)
}

// DELETE /api/guests/:id
func (h *GuestHandler) Delete(c *gin.Context) {
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
