package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/app"
	"github.com/everafterhq/everafter/internal/cache"
	"github.com/everafterhq/everafter/internal/handlers"
	"github.com/everafterhq/everafter/internal/middleware"
)

// registerPublicRoutes mounts the guest-facing surface: RSVP code lookup and
// submission, the gift registry and the photo wall. There is no
// authentication. The RSVP code and the tenant subdomain are the only
// credentials guests hold, so everything here sits behind the rate limiter.
func registerPublicRoutes(r *gin.Engine, db *gorm.DB, cfg *app.Config, store cache.Store, svcs Services) {
	var rateStore middleware.RateStore
	if cfg.RateLimit.Enabled {
		rateStore = middleware.NewStoreRateStore(store)
		if rateStore == nil {
			rateStore = middleware.NewMemoryRateStore()
		}
	}
	limited := middleware.RateLimit(rateStore, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)

	rsvpHandler := handlers.NewRSVPHandler(svcs.RSVPs)
	rsvp := r.Group("/rsvp", limited)
	{
		rsvp.GET("/:code", rsvpHandler.Lookup)
		rsvp.POST("/:code", rsvpHandler.Submit)
	}

	// Registry and photo wall resolve their tenant from the subdomain.
	tenant := middleware.Tenant(db, cfg.Server.BaseDomain)

	giftHandler := handlers.NewGiftHandler(svcs.Gifts)
	registry := r.Group("/registry", limited, tenant)
	{
		registry.GET("", giftHandler.PublicList)
		registry.POST("/:id/claim", giftHandler.Claim)
		registry.GET("/:id/qr", giftHandler.PaymentQR)
	}

	photoHandler := handlers.NewPhotoHandler(svcs.Photos)
	photos := r.Group("/photos", limited, tenant)
	{
		photos.GET("", photoHandler.PublicList)
		photos.POST("", photoHandler.Upload)
	}
}
