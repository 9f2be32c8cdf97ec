package main

import (
	_ "beautyhub-backend/api/swagger" // swagger docs
	"beautyhub-backend/internal/config"
	"beautyhub-backend/internal/database"
	"beautyhub-backend/internal/handler"
	"beautyhub-backend/internal/middleware"
	"beautyhub-backend/internal/repository"
	"beautyhub-backend/internal/sender"
	"beautyhub-backend/internal/service"
	"beautyhub-backend/internal/websocket"
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           BeautyHub Marketplace API
// @version         1.0
// @description     Salon marketplace backend: vendor onboarding, discovery, bookings and payments.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL")

	// Set up WebSocket Hub for the staff dashboard feed
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Outbound delivery. Without SMTP credentials emails are written to the
	// application log; without Twilio credentials reminders are skipped.
	var emailSender sender.EmailSender
	if smtpSender, smtpErr := sender.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass); smtpErr != nil {
		logger.Warn("smtp not configured, emails will be logged only", zap.Error(smtpErr))
		emailSender = sender.NewLogSender(logger)
	} else {
		emailSender = smtpSender
	}

	var messenger sender.MessageSender
	if twilioSender, twErr := sender.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, cfg.TwilioWhatsAppNumber); twErr != nil {
		logger.Warn("twilio not configured, booking reminders disabled", zap.Error(twErr))
	} else {
		messenger = twilioSender
	}

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	vendorRepo := repository.NewVendorRequestRepository(db)
	salonRepo := repository.NewSalonRepository(db)
	tokenRepo := repository.NewRegistrationTokenRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	emailLogRepo := repository.NewEmailLogRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)

	middleware.InitPermissionMiddleware(db)

	notificationService, err := service.NewNotificationService(emailLogRepo, emailSender, cfg.TemplatesDir, logger)
	if err != nil {
		logger.Fatal("notification service init failed", zap.Error(err))
	}
	userService := service.NewUserService(userRepo)
	roleService := service.NewRoleService(db)
	approvalService := service.NewApprovalService(
		txManager, vendorRepo, salonRepo, tokenRepo, userRepo, auditRepo,
		notificationService, wsHub, logger, cfg.FrontendBaseURL, cfg.RegistrationTokenTTL,
	)
	salonService := service.NewSalonService(salonRepo, bookingRepo, auditRepo, txManager)
	bookingService := service.NewBookingService(
		bookingRepo, salonRepo, userRepo, auditRepo, txManager,
		notificationService, wsHub, logger,
	)
	paymentService := service.NewPaymentService(
		paymentRepo, bookingRepo, salonRepo, auditRepo, txManager,
		notificationService, logger,
	)
	reminderService := service.NewReminderService(bookingRepo, messenger, logger)
	auditService := service.NewAuditService(db)
	statisticsService := service.NewStatisticsService(statsRepo, paymentRepo)

	if err := roleService.SeedDefaultRolesAndPermissions(context.Background()); err != nil {
		logger.Warn("role seeding failed", zap.Error(err))
	}

	// Scheduled jobs: email retry sweep every 5 minutes, appointment
	// reminders each morning.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("*/5 * * * *", func() {
		notificationService.ProcessDueRetries(context.Background())
	}); err != nil {
		logger.Fatal("failed to schedule email retry sweep", zap.Error(err))
	}
	if _, err := scheduler.AddFunc("0 9 * * *", func() {
		reminderService.SendDailyReminders(context.Background())
	}); err != nil {
		logger.Fatal("failed to schedule reminder sweep", zap.Error(err))
	}
	if _, err := scheduler.AddFunc("30 3 * * *", func() {
		now := time.Now()
		pruned, pruneErr := tokenRepo.DeleteExpired(context.Background(), now)
		if pruneErr != nil {
			logger.Error("registration token prune failed", zap.Error(pruneErr))
		} else if pruned > 0 {
			logger.Info("expired registration tokens pruned", zap.Int64("count", pruned))
		}
		if pruneErr := userRepo.DeleteExpiredRefreshTokens(context.Background(), now); pruneErr != nil {
			logger.Error("refresh token prune failed", zap.Error(pruneErr))
		}
	}); err != nil {
		logger.Fatal("failed to schedule token prune", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	vendorRequestHandler := handler.NewVendorRequestHandler(approvalService)
	salonHandler := handler.NewSalonHandler(salonService)
	bookingHandler := handler.NewBookingHandler(bookingService, reminderService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	emailLogHandler := handler.NewEmailLogHandler(notificationService)
	auditHandler := handler.NewAuditHandler(auditService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "Idempotency-Key"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Idempotency guard for mutating endpoints, active only when Redis is
	// configured. Requests without an Idempotency-Key header pass through.
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		router.Use(middleware.IdempotencyMiddleware(rdb, 24*time.Hour))
		logger.Info("idempotency middleware enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	roleHandler.RegisterRoutes(router.Group(""))
	vendorRequestHandler.RegisterRoutes(router.Group(""))
	salonHandler.RegisterRoutes(router.Group(""))
	bookingHandler.RegisterRoutes(router.Group(""))
	paymentHandler.RegisterRoutes(router.Group(""))
	emailLogHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))

	logger.Info("server listening", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
