package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/everafterhq/everafter/internal/models"
	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/response"
)

type PhotoHandler struct {
	svc *services.PhotoService
}

func NewPhotoHandler(svc *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{svc: svc}
}

type uploadPhotoRequest struct {
	UploaderName string `json:"uploader_name" validate:"max=255"`
	StorageKey   string `json:"storage_key" validate:"required,max=512"`
	Caption      string `json:"caption" validate:"max=500"`
}

// POST /photos is the public guest upload; it lands in the moderation queue.
func (h *PhotoHandler) Upload(c *gin.Context) {
	wedding, ok := tenantWedding(c)
	if !ok {
		return
	}

	var req uploadPhotoRequest
	if !bindAndValidate(c, &req) {
		return
	}

	photo, err := h.svc.Upload(requestContext(c), wedding.ID, services.UploadInput{
		UploaderName: req.UploaderName,
		StorageKey:   req.StorageKey,
		Caption:      req.Caption,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, photo)
}

// GET /photos is the public gallery, approved photos only.
func (h *PhotoHandler) PublicList(c *gin.Context) {
	wedding, ok := tenantWedding(c)
	if !ok {
		return
	}

	photos, err := h.svc.List(requestContext(c), wedding.ID, models.PhotoApproved)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, photos)
}

// GET /api/photos?status=PENDING
func (h *PhotoHandler) List(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	photos, err := h.svc.List(requestContext(c), weddingID, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, photos)
}

// POST /api/photos/:id/approve
func (h *PhotoHandler) Approve(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	photo, err := h.svc.Approve(requestContext(c), weddingID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, photo)
}

// POST /api/photos/:id/reject
func (h *PhotoHandler) Reject(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	photo, err := h.svc.Reject(requestContext(c), weddingID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, photo)
}

// DELETE /api/photos/:id
func (h *PhotoHandler) Delete(c *gin.Context) {
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
