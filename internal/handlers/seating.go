package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/response"
)

type SeatingHandler struct {
	svc *services.SeatingService
}

func NewSeatingHandler(svc *services.SeatingService) *SeatingHandler {
	return &SeatingHandler{svc: svc}
}

type tableRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Capacity int    `json:"capacity" validate:"required,min=1,max=100"`
}

// GET /api/seating/tables
func (h *SeatingHandler) ListTables(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	tables, err := h.svc.ListTables(requestContext(c), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tables)
}

// POST /api/seating/tables
func (h *SeatingHandler) CreateTable(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req tableRequest
	if !bindAndValidate(c, &req) {
		return
	}

	table, err := h.svc.CreateTable(requestContext(c), weddingID, services.TableInput{
		Name:     req.Name,
		Capacity: req.Capacity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, table)
}

// PUT /api/seating/tables/:id
func (h *SeatingHandler) UpdateTable(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req tableRequest
	if !bindAndValidate(c, &req) {
		return
	}

	table, err := h.svc.UpdateTable(requestContext(c), weddingID, c.Param("id"), services.TableInput{
		Name:     req.Name,
		Capacity: req.Capacity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, table)
}

// DELETE /api/seating/tables/:id
func (h *SeatingHandler) DeleteTable(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteTable(requestContext(c), weddingID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type assignRequest struct {
	GuestID string `json:"guest_id" validate:"required,uuid4"`
	TableID string `json:"table_id" validate:"required,uuid4"`
}

// POST /api/seating/assignments
func (h *SeatingHandler) Assign(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	var req assignRequest
	if !bindAndValidate(c, &req) {
		return
	}

	guest, err := h.svc.Assign(requestContext(c), weddingID, req.GuestID, req.TableID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, guest)
}

// DELETE /api/seating/assignments/:guestId
func (h *SeatingHandler) Unassign(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	guest, err := h.svc.Unassign(requestContext(c), weddingID, c.Param("guestId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, guest)
}

// GET /api/seating/chart
func (h *SeatingHandler) Chart(c *gin.Context) {
	weddingID, ok := coupleWeddingID(c)
	if !ok {
		return
	}

	chart, err := h.svc.Chart(requestContext(c), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, chart)
}
