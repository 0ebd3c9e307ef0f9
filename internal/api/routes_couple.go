package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/everafterhq/everafter/internal/auth"
	"github.com/everafterhq/everafter/internal/handlers"
	"github.com/everafterhq/everafter/internal/middleware"
)

// registerCoupleRoutes mounts the authenticated couple dashboard API.
func registerCoupleRoutes(r *gin.Engine, jwt *iauth.JWTService, svcs Services) {
	authHandler := handlers.NewAuthHandler(svcs.Auth, svcs.OIDC, svcs.MFA)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/oidc", authHandler.OIDCStart)
		auth.GET("/oidc/callback", authHandler.OIDCCallback)
	}

	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	api.GET("/auth/me", authHandler.Me)
	api.POST("/auth/mfa/enroll", authHandler.MFAEnroll)
	api.POST("/auth/mfa/activate", authHandler.MFAActivate)
	api.POST("/auth/mfa/disable", authHandler.MFADisable)

	weddingHandler := handlers.NewWeddingHandler(svcs.Weddings)
	// Creating a wedding is the one couple action that works without a bound
	// tenant; the fresh wedding is picked up on the next login.
	api.POST("/weddings", weddingHandler.Create)
	api.GET("/weddings", weddingHandler.ListMine)

	couple := api.Group("")
	couple.Use(middleware.RequireWedding())

	couple.GET("/wedding", weddingHandler.Get)
	couple.PATCH("/wedding", weddingHandler.UpdateSettings)
	couple.GET("/wedding/themes", weddingHandler.Themes)

	guestHandler := handlers.NewGuestHandler(svcs.Guests)
	guests := couple.Group("/guests")
	{
		guests.GET("", guestHandler.List)
		guests.POST("", guestHandler.Create)
		guests.POST("/import", guestHandler.Import)
		guests.PUT("/:id", guestHandler.Update)
		guests.DELETE("/:id", guestHandler.Delete)
	}

	eventHandler := handlers.NewEventHandler(svcs.Events, svcs.RSVPs)
	events := couple.Group("/events")
	{
		events.GET("", eventHandler.List)
		events.POST("", eventHandler.Create)
		events.PUT("/:id", eventHandler.Update)
		events.DELETE("/:id", eventHandler.Delete)
		events.POST("/:id/invitations", eventHandler.Invite)
		events.DELETE("/:id/invitations/:guestId", eventHandler.Uninvite)
		events.GET("/:id/summary", eventHandler.Summary)
		events.PUT("/:id/rsvp", eventHandler.OverrideRSVP)
	}
	couple.GET("/rsvps/summary", eventHandler.WeddingSummary)

	seatingHandler := handlers.NewSeatingHandler(svcs.Seating)
	seating := couple.Group("/seating")
	{
		seating.GET("/tables", seatingHandler.ListTables)
		seating.POST("/tables", seatingHandler.CreateTable)
		seating.PUT("/tables/:id", seatingHandler.UpdateTable)
		seating.DELETE("/tables/:id", seatingHandler.DeleteTable)
		seating.POST("/assignments", seatingHandler.Assign)
		seating.DELETE("/assignments/:guestId", seatingHandler.Unassign)
		seating.GET("/chart", seatingHandler.Chart)
	}

	giftHandler := handlers.NewGiftHandler(svcs.Gifts)
	gifts := couple.Group("/gifts")
	{
		gifts.GET("", giftHandler.List)
		gifts.POST("", giftHandler.Create)
		gifts.PUT("/:id", giftHandler.Update)
		gifts.DELETE("/:id", giftHandler.Delete)
		gifts.POST("/:id/release", giftHandler.Release)
	}

	broadcastHandler := handlers.NewBroadcastHandler(svcs.Broadcasts)
	broadcasts := couple.Group("/broadcasts")
	{
		broadcasts.GET("", broadcastHandler.List)
		broadcasts.POST("", broadcastHandler.Create)
		broadcasts.GET("/:id", broadcastHandler.Get)
		broadcasts.POST("/:id/cancel", broadcastHandler.Cancel)
	}

	photoHandler := handlers.NewPhotoHandler(svcs.Photos)
	photos := couple.Group("/photos")
	{
		photos.GET("", photoHandler.List)
		photos.POST("/:id/approve", photoHandler.Approve)
		photos.POST("/:id/reject", photoHandler.Reject)
		photos.DELETE("/:id", photoHandler.Delete)
	}
}
