package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"ridebook/internal/domain"
	"ridebook/internal/handler"
	"ridebook/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler        *handler.UserHandler
	DriverHandler      *handler.DriverHandler
	RideRequestHandler *handler.RideRequestHandler
	RideHandler        *handler.RideHandler
	BookingHandler     *handler.BookingHandler
	PaymentHandler     *handler.PaymentHandler
	ReviewHandler      *handler.ReviewHandler
	FareHandler        *handler.FareHandler
	RedisClient        *redis.Client
	NewRelicApp        *newrelic.Application
	Logger             *logrus.Logger
	JWTSecret          string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient, deps.Logger))

	auth := middleware.AuthMiddleware(deps.JWTSecret)
	driverOnly := middleware.RequireRole(domain.RoleDriver)
	adminOnly := middleware.RequireAdmin()

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("", deps.UserHandler.Register)
			users.GET("/me", auth, deps.UserHandler.Me)
			users.PATCH("/me/contact", auth, deps.UserHandler.UpdateContact)
			users.GET("", auth, adminOnly, deps.UserHandler.List)
		}

		// Driver routes.
		drivers := v1.Group("/drivers", auth)
		{
			drivers.POST("", deps.DriverHandler.Register)
			drivers.GET("/me", deps.DriverHandler.Me)
			drivers.PATCH("/me/online", deps.DriverHandler.SetOnline)
			drivers.GET("/me/earnings", deps.DriverHandler.Earnings)

			drivers.GET("", adminOnly, deps.DriverHandler.List)
			drivers.POST("/:id/approve", adminOnly, deps.DriverHandler.Approve)
			drivers.POST("/:id/reject", adminOnly, deps.DriverHandler.Reject)
			drivers.POST("/:id/suspend", adminOnly, deps.DriverHandler.Suspend)
			drivers.POST("/:id/reactivate", adminOnly, deps.DriverHandler.Reactivate)
		}

		// On-demand ride request routes.
		requests := v1.Group("/ride-requests", auth)
		{
			requests.POST("", deps.RideRequestHandler.Request)
			requests.POST("/estimate", deps.RideRequestHandler.Estimate)
			requests.GET("/history", deps.RideRequestHandler.MyHistory)
			requests.GET("/open", driverOnly, deps.RideRequestHandler.Open)
			requests.GET("/driver-history", driverOnly, deps.RideRequestHandler.DriverHistory)
			requests.GET("/:id", deps.RideRequestHandler.Get)
			requests.POST("/:id/accept", driverOnly, deps.RideRequestHandler.Accept)
			requests.PATCH("/:id/status", driverOnly, deps.RideRequestHandler.UpdateStatus)
			requests.POST("/:id/cancel", deps.RideRequestHandler.Cancel)
			requests.POST("/:id/assign", adminOnly, deps.RideRequestHandler.Assign)
			requests.GET("", adminOnly, deps.RideRequestHandler.ListAll)
		}

		// Published ride listing routes.
		rides := v1.Group("/rides")
		{
			rides.GET("", deps.RideHandler.ListActive)
			rides.GET("/slug/:slug", deps.RideHandler.GetBySlug)
			rides.GET("/all", auth, adminOnly, deps.RideHandler.ListAll)
			rides.GET("/available", auth, driverOnly, deps.RideHandler.Available)
			rides.GET("/:id", deps.RideHandler.Get)
			rides.POST("", auth, deps.RideHandler.Create)
			rides.PATCH("/:id", auth, deps.RideHandler.Update)
			rides.POST("/:id/accept", auth, driverOnly, deps.RideHandler.Accept)
			rides.POST("/:id/decline", auth, driverOnly, deps.RideHandler.Decline)
		}

		// Booking routes.
		bookings := v1.Group("/bookings", auth)
		{
			bookings.POST("", deps.BookingHandler.Create)
			bookings.GET("", deps.BookingHandler.List)
			bookings.GET("/:id", deps.BookingHandler.Get)
			bookings.POST("/:id/pay", deps.BookingHandler.RetryPayment)
		}

		// Payment routes. Gateway callbacks are unauthenticated form posts.
		payments := v1.Group("/payments")
		{
			payments.POST("/success", deps.PaymentHandler.Success)
			payments.POST("/fail", deps.PaymentHandler.Fail)
			payments.POST("/cancel", deps.PaymentHandler.Cancel)
			payments.GET("/validate", deps.PaymentHandler.Validate)
			payments.POST("/rides/:id", auth, deps.PaymentHandler.InitRidePayment)
			payments.GET("/:tranID", auth, deps.PaymentHandler.Get)
		}

		// Review routes.
		reviews := v1.Group("/reviews")
		{
			reviews.POST("", auth, deps.ReviewHandler.Create)
			reviews.PATCH("/:id", auth, deps.ReviewHandler.Update)
			reviews.DELETE("/:id", auth, deps.ReviewHandler.Delete)
			reviews.GET("/received", auth, deps.ReviewHandler.Received)
			reviews.GET("/stats/:userID", deps.ReviewHandler.Stats)
		}

		// Fare routes.
		fares := v1.Group("/fares")
		{
			fares.POST("/estimate", deps.FareHandler.Estimate)
			fares.GET("/configs/:vehicleType", deps.FareHandler.GetConfig)
			fares.GET("/configs", auth, adminOnly, deps.FareHandler.Configs)
			fares.PUT("/configs/:vehicleType", auth, adminOnly, deps.FareHandler.UpdateConfig)
		}
	}

	return router
}
