package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/config"
	"github.com/yourusername/prepcall-api/internal/handler"
	"github.com/yourusername/prepcall-api/internal/middleware"
	"github.com/yourusername/prepcall-api/internal/repository"
	"github.com/yourusername/prepcall-api/internal/service"
)

func main() {
	// ── Logging ──────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// ── Config ───────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("Starting PrepCall API")

	// ── Database ─────────────────────────────────────────
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connected")

	// ── Redis ────────────────────────────────────────────
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid REDIS_URL")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping Redis")
	}
	log.Info().Msg("Redis connected")

	// ── Repositories ─────────────────────────────────────
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	draftStore := repository.NewDraftStore(redisClient)

	// ── Services ─────────────────────────────────────────
	llm := service.NewLLMClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL)
	storage := service.NewImageKitClient(cfg.ImageKitPrivateKey, cfg.ImageKitURLEndpoint, cfg.ImageKitUploadURL)

	var voice service.VoiceProvider
	if cfg.VoiceProviderMode == "inline" {
		voice = service.NewInlineVoiceProvider(cfg.VapiPublicKey)
	} else {
		voice = service.NewVapiClient(cfg.VapiPrivateKey, cfg.VapiPhoneNumberID, cfg.VapiBaseURL)
	}
	log.Info().Str("mode", cfg.VoiceProviderMode).Msg("Voice provider ready")

	// ── Handlers ─────────────────────────────────────────
	authHandler := handler.NewAuthHandler(userRepo)
	extractHandler := handler.NewExtractHandler()
	uploadHandler := handler.NewUploadHandler(storage)
	reportHandler := handler.NewReportHandler(llm, sessionRepo)
	questionHandler := handler.NewQuestionHandler(llm, sessionRepo)
	voiceHandler := handler.NewVoiceHandler(voice, sessionRepo)
	sessionHandler := handler.NewSessionHandler(sessionRepo)
	draftHandler := handler.NewDraftHandler(draftStore)
	interviewHandler := handler.NewInterviewHandler(sessionRepo)

	// ── Middleware ────────────────────────────────────────
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.FirebaseProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firebase auth")
	}
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS)

	// ── Router ───────────────────────────────────────────
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check (unauthenticated)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "prepcall-api",
			"time":    time.Now().UTC(),
		})
	})

	// ── Authenticated Routes ─────────────────────────────
	api := r.Group("/api", authMiddleware.Authenticate(), rateLimiter.Limit())
	{
		// After auth middleware verifies Firebase token, resolve internal user ID
		api.Use(resolveUserID(userRepo))

		// Auth
		api.POST("/auth/signin", authHandler.SignIn)

		// Intake
		api.POST("/extract-text", extractHandler.Extract)
		api.POST("/upload", uploadHandler.Upload)

		// AI
		api.POST("/generate-ats-report", reportHandler.Generate)
		api.POST("/generate-questions", questionHandler.Generate)
		api.POST("/generate-followup", questionHandler.FollowUp)
		api.POST("/setup-vapi", voiceHandler.Setup)

		// Sessions
		api.POST("/sessions", sessionHandler.Create)
		api.GET("/sessions", sessionHandler.List)
		api.GET("/sessions/:id", sessionHandler.Get)
		api.PUT("/sessions/:id/config", sessionHandler.UpdateConfig)
		api.PUT("/sessions/:id/status", sessionHandler.UpdateStatus)
		api.POST("/sessions/:id/complete", sessionHandler.Complete)
		api.GET("/progress", sessionHandler.Progress)

		// Live interview
		api.POST("/sessions/:id/interview/events", interviewHandler.HandleEvent)
		api.GET("/sessions/:id/interview/transcript", interviewHandler.Transcript)
		api.POST("/sessions/:id/interview/end", interviewHandler.End)

		// Drafts
		api.POST("/drafts", draftHandler.Save)
		api.GET("/drafts/:id", draftHandler.Get)
		api.PUT("/drafts/:id", draftHandler.Save)
		api.DELETE("/drafts/:id", draftHandler.Delete)
	}

	// ── Server ───────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("PrepCall API server running")

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// resolveUserID maps Firebase UID to internal user UUID for all subsequent handlers
func resolveUserID(userRepo *repository.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		firebaseUID := middleware.GetFirebaseUID(c)
		if firebaseUID == "" {
			c.Next()
			return
		}

		user, err := userRepo.FindByFirebaseUID(c.Request.Context(), firebaseUID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to resolve user ID")
			c.Next()
			return
		}
		if user != nil {
			c.Set(middleware.ContextKeyUserID, user.ID.String())
		}

		c.Next()
	}
}

// requestLogger logs every request with zerolog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}
