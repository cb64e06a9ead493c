package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/blog-content-api/internal/api"
	"github.com/blog-content-api/internal/authz"
	"github.com/blog-content-api/internal/cache"
	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/database"
	"github.com/blog-content-api/internal/identity"
	"github.com/blog-content-api/internal/repository"
	"github.com/blog-content-api/internal/service"
	"github.com/blog-content-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	rollback := flag.Bool("rollback", false, "roll back the most recent migration and exit")
	tokenUser := flag.Int64("issue-token", 0, "print a signed token for this user id and exit")
	tokenRole := flag.String("role", string(authz.RoleUser), "role for -issue-token (user|admin)")
	flag.Parse()

	// A missing .env file is fine; the environment wins either way
	_ = godotenv.Load()

	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting Blog Content API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.NewWithOptions(cfg.Log.Level, cfg.Log.Format, os.Stdout)

	gate := identity.NewGate(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if *tokenUser > 0 {
		token, err := gate.Issue(authz.Principal{ID: *tokenUser, Role: authz.Role(*tokenRole), Enabled: true})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to issue token")
		}
		fmt.Println(token)
		return
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if *rollback {
		if err := db.MigrateDown(cfg.Database.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to roll back migration")
		}
		log.Info().Msg("Rolled back one migration")
		return
	}

	// Run migrations
	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Optional redis for view de-duplication and comment throttling
	var (
		views   cache.ViewRecorder
		limiter cache.RateLimiter
	)
	rdb, err := cache.NewClient(context.Background(), cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	if rdb != nil {
		defer rdb.Close()
		views = cache.NewViewRecorder(rdb, cfg.Redis.ViewWindow)
		limiter = cache.NewRateLimiter(rdb, cfg.Redis.CommentRateLimit, cfg.Redis.CommentRateWin)
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize services
	services := service.NewServices(repos, cfg, views, log)

	// Initialize router
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(services, api.Dependencies{
		Gate:           gate,
		CommentLimiter: limiter,
		Health:         db.HealthCheck,
	}, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("driver", db.Driver()).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	stats := db.Stats()
	log.Info().Int("open_connections", stats.OpenConnections).Msg("Server exited gracefully")
}
