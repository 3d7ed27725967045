package http

import (
	"github.com/gin-gonic/gin"

	"github.com/layer-3/gmstreak/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(checkinService *service.CheckinService) *gin.Engine {
	router := gin.Default()

	// Create handlers
	handlers := NewCheckinHandlers(checkinService)

	// Session routes
	session := router.Group("/session")
	{
		session.POST("/connect", handlers.Connect)
		session.GET("/restore", handlers.Restore)
		session.POST("/disconnect", SessionMiddleware(checkinService), handlers.Disconnect)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(SessionMiddleware(checkinService))
	{
		api.POST("/checkin", handlers.CheckIn)
		api.GET("/record", handlers.Record)
		api.POST("/share", handlers.Share)
	}

	// Read-only profile view, no session required
	profile := router.Group("/profile")
	{
		profile.GET("/:address", handlers.Profile)
		profile.GET("/:address/card", handlers.ShareCard)
	}

	return router
}
