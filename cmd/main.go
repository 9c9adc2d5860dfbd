package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/config"
	"github.com/joy095/settlement/config/db"
	redisclient "github.com/joy095/settlement/config/redis"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/middlewares/cors"
	logger_middleware "github.com/joy095/settlement/middlewares/logger"
	"github.com/joy095/settlement/repositories"
	"github.com/joy095/settlement/repositories/memory"
	"github.com/joy095/settlement/repositories/postgres"
	"github.com/joy095/settlement/routes"
	"github.com/joy095/settlement/services"
	"github.com/joy095/settlement/utils/mail"
	"github.com/redis/go-redis/v9"
)

func init() {
	config.LoadEnv()
	logger.InitLoggers()
}

func main() {
	settings, err := config.Load()
	if err != nil {
		logger.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	var repo repositories.Repository
	if settings.DatabaseURL != "" {
		pool, err := db.Connect(settings.DatabaseURL)
		if err != nil {
			logger.ErrorLogger.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		store := postgres.New(pool)
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err = store.Migrate(migrateCtx)
		cancel()
		if err != nil {
			logger.ErrorLogger.Fatalf("Failed to apply schema: %v", err)
		}
		repo = store
	} else {
		logger.WarnLogger.Warn("DATABASE_URL not set, using the in-memory store (data is lost on restart)")
		repo = memory.New()
	}

	var rdb *redis.Client
	var locker services.Locker = services.NewLocalLocker()
	if settings.RedisURL != "" {
		rdb, err = redisclient.GetRedisClient(ctx, settings.RedisURL)
		if err != nil {
			logger.ErrorLogger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisclient.CloseRedis()
		locker = services.NewRedisLocker(rdb)
	} else {
		logger.WarnLogger.Warn("REDIS_URL not set, settlement locks and rate limits are per process")
	}

	notifier := mail.NewMailer(settings.SMTPHost, settings.SMTPPort, settings.SMTPUser, settings.SMTPPassword, settings.SMTPFrom)
	svc := services.New(repo, locker, settings, notifier)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())
	r.Use(logger_middleware.GinLogger())

	routes.RegisterRoutes(r, routes.Deps{
		Services:       svc,
		JWTSecret:      []byte(settings.JWTSecret),
		Redis:          rdb,
		SettlementRate: settings.SettlementRate,
	})

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s...", settings.Port)
		logger.InfoLogger.Info("Server is started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorLogger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.InfoLogger.Info("Server exited")
}
