package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fueldash/internal/handler"
	"fueldash/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	OrderHandler        *handler.OrderHandler
	OfferHandler        *handler.OfferHandler
	DriverHandler       *handler.DriverHandler
	NotificationHandler *handler.NotificationHandler
	WSHandler           *handler.WSHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Order routes.
		orders := v1.Group("/orders")
		{
			orders.POST("", deps.OrderHandler.CreateOrder)
			orders.GET("", deps.OrderHandler.GetAll)
			orders.GET("/:id", deps.OrderHandler.GetOrder)
			orders.POST("/:id/cancel", deps.OrderHandler.CancelOrder)
			orders.GET("/:id/offers", deps.OrderHandler.ListOffers)
			orders.POST("/:id/offers/:offerId/accept", deps.OrderHandler.AcceptOffer)
			orders.POST("/:id/start", deps.OrderHandler.StartDelivery)
			orders.POST("/:id/pickup", deps.OrderHandler.MarkPickedUp)
			orders.POST("/:id/complete", deps.OrderHandler.CompleteDelivery)
		}

		// Offer routes.
		offers := v1.Group("/offers")
		{
			offers.GET("", deps.OfferHandler.ListOpen)
			offers.POST("/:id/accept", deps.OfferHandler.Accept)
			offers.POST("/:id/reject", deps.OfferHandler.Reject)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.POST("/:id/availability", deps.DriverHandler.SetAvailability)
		}

		// Notification routes.
		v1.GET("/notifications", deps.NotificationHandler.List)
		v1.POST("/devices", deps.NotificationHandler.RegisterDevice)

		// Live notification channel.
		v1.GET("/ws", deps.WSHandler.Connect)
	}

	return router
}
