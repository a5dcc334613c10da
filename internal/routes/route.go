package routes

import (
	"github.com/gatherly/api/internal/container"
	"github.com/gatherly/api/internal/handlers"
	"github.com/gatherly/api/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	auth := middleware.AuthMiddleware(container.Config.JWKSURL, container.Logger)

	// API version 1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "gatherly-api",
			})
		})
	}

	events := v1.Group("/events")
	{
		// Public reads
		events.GET("/search", handlers.SearchEvents(container.SearchService))
		events.GET("/filter", handlers.FilterEvents(container.SearchService))
		events.GET("/random", handlers.RandomEvents(container.EventService))

		// Authenticated listings must register before the :id wildcard.
		events.GET("/mine", auth, handlers.ListCreatedEvents(container.EventService))
		events.GET("/joined", auth, handlers.ListJoinedEvents(container.EventService))

		events.POST("/new", auth, handlers.CreateEvent(container.EventService))
		events.POST("/improve", auth, handlers.ImproveDescription(container.AssistService))

		events.GET("/:id", handlers.GetEvent(container.EventService))
		events.PUT("/:id", auth, handlers.UpdateEvent(container.EventService))
		events.PATCH("/:id", auth, handlers.UpdateEvent(container.EventService))
		events.DELETE("/:id", auth, handlers.DeleteEvent(container.EventService))

		events.POST("/:id/join", auth, handlers.JoinEvent(container.EventService))
		events.POST("/:id/leave", auth, handlers.LeaveEvent(container.EventService))
		events.POST("/:id/cancel", auth, handlers.CancelEvent(container.EventService))
	}

	return r
}
