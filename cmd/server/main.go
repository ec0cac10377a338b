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

	"github.com/Ayash-Bera/student-lookup/internal/api"
	"github.com/Ayash-Bera/student-lookup/internal/api/handlers"
	"github.com/Ayash-Bera/student-lookup/internal/config"
	"github.com/Ayash-Bera/student-lookup/internal/database"
	"github.com/Ayash-Bera/student-lookup/internal/health"
	"github.com/Ayash-Bera/student-lookup/internal/models"
	"github.com/Ayash-Bera/student-lookup/internal/repository"
	"github.com/Ayash-Bera/student-lookup/internal/services"
	"github.com/Ayash-Bera/student-lookup/internal/store"
	"github.com/Ayash-Bera/student-lookup/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.InitLogger(cfg.Log.Level)
	if err := cfg.ValidateMongo(); err != nil {
		logger.WithError(err).Fatal("Configuration validation failed")
	}
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	dbManager, err := database.NewManager(ctx, &database.Config{
		MongoURI:    cfg.Mongo.URI,
		MongoDB:     cfg.Mongo.Database,
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.Log.Level,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		dbManager.Close()
		logger.WithError(err).Fatal("Database migration failed")
	}

	gateway := store.NewMongoGateway(dbManager.Collection(cfg.Mongo.Collection), logger)

	var cache services.ResultCache
	if dbManager.Redis != nil {
		cache = database.NewCache(dbManager.Redis, logger)
	}

	var audit models.LookupAuditRepository
	if dbManager.DB != nil {
		audit = repository.NewRepositoryManager(dbManager.DB).LookupAudit
	}

	lookupService := services.NewLookupService(gateway, cache, audit, cfg.Redis.TTL, logger)

	router := api.NewRouter(api.RouterDeps{
		Students:  handlers.NewStudentHandler(lookupService, audit, cfg.Server.QueryTimeout, logger),
		Health:    handlers.NewHealthHandler(health.ForManager(dbManager, logger)),
		RateLimit: cfg.Server.RateLimit,
		Logger:    logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":       cfg.Server.Port,
			"collection": cfg.Mongo.Collection,
			"cache":      cache != nil,
			"audit":      audit != nil,
		}).Info("Server running")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shut down server cleanly")
	}

	logger.Info("Server stopped")
}
