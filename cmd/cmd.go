package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wardrobe-backend/internal/cache"
	"wardrobe-backend/internal/config"
	"wardrobe-backend/internal/database"
	"wardrobe-backend/internal/handlers"
	"wardrobe-backend/internal/live"
	"wardrobe-backend/internal/metrics"
	"wardrobe-backend/internal/middleware"
	"wardrobe-backend/internal/repository"
	"wardrobe-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Apply schema migrations
	if err := database.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Connect to redis
	redisClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping redis")
	}
	defer redisClient.Close()
	tokenStore := cache.NewTokenStore(redisClient)

	// Live change bus and metrics
	bus := live.NewBus()
	collector := metrics.NewCollector()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	garmentRepo := repository.NewGarmentRepository(db, bus)
	outfitRepo := repository.NewOutfitRepository(db, bus)

	// Initialize services
	userService := services.NewUserService(userRepo, tokenStore, cfg.JWT.Secret)
	garmentService := services.NewGarmentService(garmentRepo)
	ratingSync := services.NewRatingSynchronizer(outfitRepo, garmentRepo, bus, collector)
	outfitService := services.NewOutfitService(outfitRepo, ratingSync)
	uploadService, err := services.NewUploadService(
		context.Background(),
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create upload service")
	}
	wsHub := services.NewWSHub()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	garmentHandler := handlers.NewGarmentHandler(garmentService)
	outfitHandler := handlers.NewOutfitHandler(outfitService)
	uploadHandler := handlers.NewUploadHandler(uploadService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, userService, ratingSync, bus)

	rateLimiter := middleware.NewRateLimiter()

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(rateLimiter.Handler)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users/register", userHandler.Register)
		r.Post("/users/login", userHandler.Login)
		r.Post("/users/refresh", userHandler.Refresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Post("/users/logout", userHandler.Logout)
			r.Get("/users/me", userHandler.Me)
			r.Put("/users/me", userHandler.UpdateProfile)

			r.Get("/garments", garmentHandler.ListGarments)
			r.Post("/garments", garmentHandler.CreateGarment)
			r.Get("/garments/{garment_id}", garmentHandler.GetGarment)
			r.Put("/garments/{garment_id}", garmentHandler.UpdateGarment)
			r.Delete("/garments/{garment_id}", garmentHandler.DeleteGarment)
			r.Put("/garments/{garment_id}/rating", garmentHandler.RateGarment)
			r.Put("/garments/{garment_id}/favorite", garmentHandler.SetFavorite)

			r.Get("/outfits", outfitHandler.ListOutfits)
			r.Post("/outfits", outfitHandler.CreateOutfit)
			r.Get("/outfits/{outfit_id}", outfitHandler.GetOutfit)
			r.Put("/outfits/{outfit_id}", outfitHandler.UpdateOutfit)
			r.Delete("/outfits/{outfit_id}", outfitHandler.DeleteOutfit)
			r.Put("/outfits/{outfit_id}/favorite", outfitHandler.SetFavorite)

			r.Post("/uploads", uploadHandler.PresignUpload)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Prometheus metrics
	r.Handle("/metrics", collector.Handler())

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
