package api

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/app"
	iauth "github.com/everafterhq/everafter/internal/auth"
	"github.com/everafterhq/everafter/internal/cache"
	"github.com/everafterhq/everafter/internal/handlers"
	"github.com/everafterhq/everafter/internal/middleware"
	"github.com/everafterhq/everafter/internal/services"
)

// Services bundles the application services the router exposes. OIDC and MFA
// may be nil when the matching feature is disabled in config.
type Services struct {
	Auth       *services.AuthService
	Weddings   *services.WeddingService
	Guests     *services.GuestService
	Events     *services.EventService
	RSVPs      *services.RSVPService
	Seating    *services.SeatingService
	Gifts      *services.GiftService
	Broadcasts *services.BroadcastService
	Photos     *services.PhotoService
	Admin      *services.AdminService

	OIDC *iauth.OIDCAuthenticator
	MFA  *iauth.MFAService
}

// NewRouter builds the Gin engine, wires middleware and registers all routes:
// the public guest surface, the authenticated couple API and the back-office.
func NewRouter(db *gorm.DB, cfg *app.Config, jwt *iauth.JWTService, store cache.Store, svcs Services) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.NewHealthHandler(db).Health)
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	registerPublicRoutes(r, db, cfg, store, svcs)
	registerCoupleRoutes(r, jwt, svcs)
	registerAdminRoutes(r, jwt, svcs)

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		return cors.Default()
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowCredentials = true
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", middleware.SubdomainHeader)
	return cors.New(config)
}
