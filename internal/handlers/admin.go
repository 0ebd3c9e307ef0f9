package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/response"
)

// AdminHandler is the platform back-office. Routes are mounted behind the
// admin-role middleware, so every request here already carries an admin token.
type AdminHandler struct {
	svc      *services.AdminService
	weddings *services.WeddingService
}

func NewAdminHandler(svc *services.AdminService, weddings *services.WeddingService) *AdminHandler {
	return &AdminHandler{svc: svc, weddings: weddings}
}

// GET /api/admin/tenants
func (h *AdminHandler) ListTenants(c *gin.Context) {
	filter := services.TenantFilter{Search: c.Query("search")}

	if raw := c.Query("suspended"); raw != "" {
		suspended, err := strconv.ParseBool(raw)
		if err == nil {
			filter.Suspended = &suspended
		}
	}
	if raw := c.Query("page"); raw != "" {
		filter.Page, _ = strconv.Atoi(raw)
	}
	if raw := c.Query("per_page"); raw != "" {
		filter.PerPage, _ = strconv.Atoi(raw)
	}

	page, err := h.svc.ListTenants(requestContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, page)
}

type suspendRequest struct {
	Suspended bool `json:"suspended"`
}

// PUT /api/admin/tenants/:id/suspension
func (h *AdminHandler) SetSuspended(c *gin.Context) {
	var req suspendRequest
	if !bindAndValidate(c, &req) {
		return
	}

	wedding, err := h.svc.SetSuspended(requestContext(c), c.Param("id"), req.Suspended)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, wedding)
}

// DELETE /api/admin/tenants/:id
func (h *AdminHandler) DeleteTenant(c *gin.Context) {
	if err := h.weddings.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}
