package routes

import (
	"time"

	"homeservice/handlers"
	"homeservice/middleware"
	"homeservice/models"
	"homeservice/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RegisterUserRoutes registers account endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.POST("/register", hb.User.RegisterHandler)
		api.POST("/login", hb.User.LoginHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/me", hb.User.ProfileHandler)
		api.PUT("/address", hb.User.SaveAddressHandler)
		api.PUT("/fcm-token", hb.User.SaveFCMTokenHandler)
	}
}

// RegisterCatalogRoutes registers the public catalog.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.GET("", hb.Catalog.ListServicesHandler)
		// Admins may read inactive entries, so identify them when a token is sent.
		api.GET("/:id", middleware.OptionalAuth(), hb.Catalog.GetServiceHandler)
	}
}

func RegisterCouponRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/coupons")
	{
		api.GET("/available", hb.Coupon.AvailableHandler)
		api.POST("/apply", middleware.JWTAuthMiddleware(), hb.Coupon.ApplyHandler)
	}
}

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.GET("/slots", hb.Booking.SlotsHandler)
		bookingGroup.POST("/quote", hb.Booking.QuoteHandler)

		bookingGroup.Use(middleware.JWTAuthMiddleware())
		bookingGroup.POST("", middleware.RequireRole(models.RoleCustomer), hb.Booking.CreateHandler)
		bookingGroup.GET("/mine", hb.Booking.ListMineHandler)
		bookingGroup.GET("/:id", hb.Booking.GetHandler)
		bookingGroup.POST("/:id/cancel", hb.Booking.CancelHandler)
		bookingGroup.POST("/:id/complete", middleware.RequireRole(models.RoleProvider), hb.Booking.CompleteHandler)
	}

	providerGroup := r.Group("/api/providers")
	{
		providerGroup.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RoleProvider))
		providerGroup.GET("/:providerId/bookings", hb.Booking.ProviderBookingsHandler)
	}
}

// RegisterPaymentRoutes sets up order creation, verification and the gateway webhook.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	paymentGroup := r.Group("/api/payments")
	{
		// Stripe authenticates itself with the signature header.
		paymentGroup.POST("/stripe/webhook", hb.Payment.StripeWebhookHandler)

		protected := paymentGroup.Group("")
		protected.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RoleCustomer))
		protected.POST("/:bookingId/order", hb.Payment.CreateOrderHandler)
		protected.POST("/:bookingId/verify", hb.Payment.VerifyHandler)
		protected.POST("/:bookingId/cash", hb.Payment.CashHandler)
	}
}

func RegisterFeedbackRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	feedbackGroup := r.Group("/api/feedback")
	{
		feedbackGroup.GET("/provider/:providerId/summary", hb.Feedback.ProviderSummaryHandler)

		feedbackGroup.Use(middleware.JWTAuthMiddleware())
		feedbackGroup.POST("", middleware.RequireRole(models.RoleCustomer), hb.Feedback.SubmitHandler)
		feedbackGroup.PUT("/:id", middleware.RequireRole(models.RoleCustomer), hb.Feedback.UpdateHandler)
		feedbackGroup.GET("/booking/:bookingId", hb.Feedback.GetByBookingHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RoleAdmin))
		adminGroup.POST("/services", hb.Catalog.CreateServiceHandler)
		adminGroup.PUT("/services/:id", hb.Catalog.UpdateServiceHandler)
		adminGroup.PATCH("/services/:id/active", hb.Catalog.SetActiveHandler)
		adminGroup.POST("/coupons", hb.Coupon.CreateHandler)
		adminGroup.GET("/coupons", hb.Coupon.ListHandler)
		adminGroup.PUT("/bookings/:id/provider", hb.Booking.AssignProviderHandler)
	}
}

// RegisterOpsRoutes exposes health and Prometheus metrics.
func RegisterOpsRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, logger *zap.Logger, maxRequestsPerMin int) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(utils.ErrorHandler())
	r.Use(middleware.RequestLogger(logger))
	if maxRequestsPerMin > 0 {
		r.Use(middleware.RateLimitMiddleware(maxRequestsPerMin))
	}

	RegisterUserRoutes(r, hb)
	RegisterCatalogRoutes(r, hb)
	RegisterCouponRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterFeedbackRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterOpsRoutes(r, hb)
}
