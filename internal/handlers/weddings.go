package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/everafterhq/everafter/internal/database"
	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/response"
)

type WeddingHandler struct {
	svc *services.WeddingService
}

func NewWeddingHandler(svc *services.WeddingService) *WeddingHandler {
	return &WeddingHandler{svc: svc}
}

type createWeddingRequest struct {
	CoupleNames string     `json:"couple_names" validate:"required,max=255"`
	WeddingDate *time.Time `json:"wedding_date"`
	Subdomain   string     `json:"subdomain" validate:"required,max=63"`
	RSVPCode    string     `json:"rsvp_code" validate:"max=32"`
	ThemeID     string     `json:"theme_id" validate:"max=64"`
}

// POST /api/weddings
func (h *WeddingHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createWeddingRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.CreateWeddingInput{
		OwnerID:     userID,
		CoupleNames: req.CoupleNames,
		Subdomain:   req.Subdomain,
		RSVPCode:    req.RSVPCode,
		ThemeID:     req.ThemeID,
	}
	if req.WeddingDate != nil {
		input.WeddingDate = *req.WeddingDate
	}

	wedding, err := h.svc.Create(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, wedding)
}

// GET /api/weddings
func (h *WeddingHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	weddings, err := h.svc.ListForOwner(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, weddings)
}

// GET /api/wedding
func (h *WeddingHandler) Get(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	wedding, err := h.svc.GetByID(requestContext(c), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, wedding)
}

type updateSettingsRequest struct {
	CoupleNames   *string        `json:"couple_names" validate:"omitempty,max=255"`
	WeddingDate   *time.Time     `json:"wedding_date"`
	Subdomain     *string        `json:"subdomain" validate:"omitempty,max=63"`
	RSVPCode      *string        `json:"rsvp_code" validate:"omitempty,max=32"`
	ThemeID       *string        `json:"theme_id" validate:"omitempty,max=64"`
	ThemeSettings datatypes.JSON `json:"theme_settings"`
}

// PATCH /api/wedding
func (h *WeddingHandler) UpdateSettings(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req updateSettingsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	wedding, err := h.svc.UpdateSettings(requestContext(c), weddingID, services.UpdateSettingsInput{
		CoupleNames:   req.CoupleNames,
		WeddingDate:   req.WeddingDate,
		Subdomain:     req.Subdomain,
		RSVPCode:      req.RSVPCode,
		ThemeID:       req.ThemeID,
		ThemeSettings: req.ThemeSettings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, wedding)
}

// GET /api/wedding/themes
func (h *WeddingHandler) Themes(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"themes": database.Themes()})
}
