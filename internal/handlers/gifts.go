package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/response"
)

type GiftHandler struct {
	svc *services.GiftService
}

func NewGiftHandler(svc *services.GiftService) *GiftHandler {
	return &GiftHandler{svc: svc}
}

type giftRequest struct {
	Name              string `json:"name" validate:"required,max=255"`
	Description       string `json:"description"`
	TargetAmountCents int64  `json:"target_amount_cents" validate:"min=0"`
	PaymentIBAN       string `json:"payment_iban" validate:"max=34"`
	PaymentBIC        string `json:"payment_bic" validate:"max=11"`
}

func (r giftRequest) toInput() services.GiftInput {
	return services.GiftInput{
		Name:              r.Name,
		Description:       r.Description,
		TargetAmountCents: r.TargetAmountCents,
		PaymentIBAN:       r.PaymentIBAN,
		PaymentBIC:        r.PaymentBIC,
	}
}

// GET /api/gifts
func (h *GiftHandler) List(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	gifts, err := h.svc.List(requestContext(c), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gifts)
}

// POST /api/gifts
func (h *GiftHandler) Create(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req giftRequest
	if !bindAndValidate(c, &req) {
		return
	}

	gift, err := h.svc.Create(requestContext(c), weddingID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gift)
}

// PUT /api/gifts/:id
func (h *GiftHandler) Update(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req giftRequest
	if !bindAndValidate(c, &req) {
		return
	}

	gift, err := h.svc.Update(requestContext(c), weddingID, c.Param("id"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gift)
}

// DELETE /api/gifts/:id
func (h *GiftHandler) Delete(c *gin.Context) {
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

// POST /api/gifts/:id/release
func (h *GiftHandler) Release(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	gift, err := h.svc.Release(requestContext(c), weddingID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gift)
}

// GET /registry serves the public registry for the tenant site.
func (h *GiftHandler) PublicList(c *gin.Context) {
	wedding, ok := tenantWedding(c)
	if !ok {
		return
	}

	gifts, err := h.svc.List(requestContext(c), wedding.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gifts)
}

type claimGiftRequest struct {
	ClaimantName string `json:"claimant_name" validate:"required,max=255"`
}

// POST /registry/:id/claim
func (h *GiftHandler) Claim(c *gin.Context) {
	wedding, ok := tenantWedding(c)
	if !ok {
		return
	}

	var req claimGiftRequest
	if !bindAndValidate(c, &req) {
		return
	}

	gift, err := h.svc.Claim(requestContext(c), wedding.ID, c.Param("id"), req.ClaimantName)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gift)
}

const defaultQRSize = 256

// GET /registry/:id/qr renders a PNG payment code for the claimed gift.
func (h *GiftHandler) PaymentQR(c *gin.Context) {
	wedding, ok := tenantWedding(c)
	if !ok {
		return
	}

	size := defaultQRSize
	if raw := c.Query("size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 64 && parsed <= 1024 {
			size = parsed
		}
	}

	png, err := h.svc.PaymentQR(requestContext(c), wedding.ID, c.Param("id"), size)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
