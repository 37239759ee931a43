package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identityapp "github.com/quotewire/backend/internal/application/identity"
	quotingapp "github.com/quotewire/backend/internal/application/quoting"
	"github.com/quotewire/backend/internal/infrastructure/auth"
	"github.com/quotewire/backend/internal/infrastructure/billing"
	"github.com/quotewire/backend/internal/infrastructure/config"
	"github.com/quotewire/backend/internal/infrastructure/event"
	"github.com/quotewire/backend/internal/infrastructure/logger"
	"github.com/quotewire/backend/internal/infrastructure/persistence"
	"github.com/quotewire/backend/internal/interfaces/http/handler"
	"github.com/quotewire/backend/internal/interfaces/http/middleware"
	"github.com/quotewire/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting QuoteWire Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	quoteRepo := persistence.NewGormQuoteRepository(db.DB)

	// Token blacklist backs logout. Redis gives revocations effect across
	// instances; without it each process keeps its own in-memory set.
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		blacklist = redisBlacklist
		log.Info("Redis token blacklist enabled",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis not configured, using in-memory token blacklist")
	}

	// Hosted checkout provider
	stripeConfig := &billing.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		IsTestMode:    cfg.Stripe.IsTestMode,
		Currency:      cfg.Stripe.Currency,
		PublicBaseURL: cfg.App.PublicBaseURL,
	}
	checkout, err := billing.NewStripeAdapter(stripeConfig, log)
	if err != nil {
		log.Fatal("Failed to initialize checkout provider", zap.Error(err))
	}

	// Domain event bus with activity logging
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(quotingapp.NewQuoteActivityHandler(log))
	eventBus.Subscribe(identityapp.NewUserRegisteredHandler(log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, profileRepo, jwtService, blacklist, log)
	authService.SetEventPublisher(eventBus)
	quoteService := quotingapp.NewQuoteService(quoteRepo, clientRepo, profileRepo, checkout, log)
	quoteService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	quoteHandler := handler.NewQuoteHandler(quoteService)
	publicHandler := handler.NewPublicHandler(quoteService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/signup",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/public",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Auth routes - signup, login and refresh are public, the rest
	// require a valid access token
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/signup", authHandler.Signup)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.GET("/user", authHandler.GetUser)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.PUT("/profile", authHandler.UpdateProfile)

	// Quote routes - owner-scoped, always authenticated
	quoteRoutes := router.NewDomainGroup("quotes", "/quotes")
	quoteRoutes.POST("", quoteHandler.CreateQuote)
	quoteRoutes.GET("", quoteHandler.ListQuotes)
	quoteRoutes.GET("/:id", quoteHandler.GetQuote)
	quoteRoutes.PUT("/:id/send", quoteHandler.SendQuote)

	// Public routes - reached by clients through the quote link, no
	// authentication, optionally rate limited more aggressively
	publicRoutes := router.NewDomainGroup("public", "/public")
	if cfg.HTTP.PublicRateLimitEnabled {
		publicLimiter := middleware.NewRateLimiter(cfg.HTTP.PublicRateLimitRequests, cfg.HTTP.PublicRateLimitWindow)
		publicRoutes.Use(middleware.RateLimit(publicLimiter))
		log.Info("Public rate limiting enabled",
			zap.Int("requests", cfg.HTTP.PublicRateLimitRequests),
			zap.Duration("window", cfg.HTTP.PublicRateLimitWindow),
		)
	}
	publicRoutes.GET("/quotes/:linkId", publicHandler.GetQuote)
	publicRoutes.POST("/quotes/:linkId/accept", publicHandler.AcceptQuote)
	publicRoutes.GET("/payment/success", publicHandler.PaymentSuccess)
	publicRoutes.POST("/payment/webhook", publicHandler.Webhook)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(authRoutes).
		Register(quoteRoutes).
		Register(publicRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Failed to stop event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
