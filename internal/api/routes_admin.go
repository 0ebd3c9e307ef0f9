package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/everafterhq/everafter/internal/auth"
	"github.com/everafterhq/everafter/internal/handlers"
	"github.com/everafterhq/everafter/internal/middleware"
)

// registerAdminRoutes mounts the platform back-office.
func registerAdminRoutes(r *gin.Engine, jwt *iauth.JWTService, svcs Services) {
	adminHandler := handlers.NewAdminHandler(svcs.Admin, svcs.Weddings)

	admin := r.Group("/api/admin")
	admin.Use(middleware.Auth(jwt), middleware.RequireAdmin())
	{
		admin.GET("/tenants", adminHandler.ListTenants)
		admin.PUT("/tenants/:id/suspension", adminHandler.SetSuspended)
		admin.DELETE("/tenants/:id", adminHandler.DeleteTenant)
		admin.GET("/stats", adminHandler.Stats)
	}
}
