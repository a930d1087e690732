package router

import (
	"time"

	"sewago/config"
	"sewago/internal/domain"
	"sewago/internal/handler"
	"sewago/internal/middleware"
	"sewago/internal/registry"
	"sewago/internal/repository"
	"sewago/internal/service"
	"sewago/pkg/gateway"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Gateway adapters, built once from config and passed by reference.
	providers := map[gateway.Gateway]gateway.Provider{
		gateway.Esewa: gateway.NewEsewaProvider(
			cfg.Esewa.MerchantCode, cfg.Esewa.ServiceURL, cfg.Esewa.VerifyURL,
			cfg.Esewa.SuccessURL, cfg.Esewa.FailureURL, cfg.Payment.GatewayTimeout,
		),
		gateway.Khalti: gateway.NewKhaltiProvider(
			cfg.Khalti.SecretKey, cfg.Khalti.InitiateURL, cfg.Khalti.VerifyURL,
			cfg.Khalti.ReturnURL, cfg.Khalti.WebsiteURL, cfg.Payment.GatewayTimeout,
		),
	}
	txRegistry := registry.New(rdb, cfg.Payment.TransactionTTL)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	smsSvc := service.NewSMSService(&cfg.SMS)
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, smsSvc)
	bookingSvc := service.NewBookingService(bookingRepo, serviceRepo, notifSvc)
	paymentSvc := service.NewPaymentService(bookingRepo, txRegistry, providers, notifSvc)
	sewaiSvc := service.NewSewaAIService()

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	serviceHandler := handler.NewServiceHandler(serviceRepo)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	reviewHandler := handler.NewReviewHandler(reviewRepo, bookingRepo)
	sewaiHandler := handler.NewSewaAIHandler(sewaiSvc)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	providerMw := middleware.RequireRole(domain.RoleProvider)

	api := r.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "healthy", "message": "SewaGo API is running"})
		})

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		services := api.Group("/services")
		{
			services.GET("", serviceHandler.List)
			services.GET("/:id", serviceHandler.Get)
			services.POST("", authMw, providerMw, serviceHandler.Create)
		}

		bookings := api.Group("/bookings")
		bookings.Use(authMw)
		{
			bookings.POST("", bookingHandler.Create)
			bookings.GET("", bookingHandler.List)
			bookings.GET("/:id", bookingHandler.Get)
			bookings.POST("/:id/confirm", providerMw, bookingHandler.Confirm)
			bookings.POST("/:id/cancel", bookingHandler.Cancel)
			bookings.POST("/:id/complete", providerMw, bookingHandler.Complete)
		}

		payments := api.Group("/payments")
		payments.Use(authMw)
		{
			payments.POST("/initiate", paymentHandler.Initiate)
			payments.POST("/verify", paymentHandler.Verify)
			payments.GET("/status/:booking_id", paymentHandler.Status)
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("/provider/:provider_id", reviewHandler.ListByProvider)
			reviews.POST("", authMw, reviewHandler.Create)
		}

		api.POST("/sewai/chat", authMw, sewaiHandler.Chat)

		notifications := api.Group("/notifications")
		notifications.Use(authMw)
		{
			notifications.GET("", notificationHandler.List)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
		}
	}

	return r
}
