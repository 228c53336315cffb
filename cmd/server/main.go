package main

import (
	"alcyxob/fitness-catalog/internal/api"
	"alcyxob/fitness-catalog/internal/config"
	"alcyxob/fitness-catalog/internal/logging"
	"alcyxob/fitness-catalog/internal/repository/mongo"
	"alcyxob/fitness-catalog/internal/service"
	"alcyxob/fitness-catalog/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Exercise Catalog API
// @version 1.0
// @description Parses exercise catalog lines into typed library records and serves the library.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting exercise catalog server",
		zap.String("address", cfg.Server.Address),
		zap.String("database", cfg.Database.Name),
		zap.Int("catalogWorkers", cfg.Catalog.Workers),
		zap.Int("catalogMaxLines", cfg.Catalog.MaxLines),
	)
	if cfg.JWT.Secret == "" {
		logger.Fatal("jwt.secret is required")
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("Could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		logger.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			logger.Error("Index creation failed", zap.Error(err))
			return
		}
		logger.Info("Index creation process completed")
	}()

	// --- Initialize Storage ---
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 30*time.Second)
	fileStorage, err := storage.NewS3Storage(storageCtx, cfg.S3, logger)
	storageCancel()
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", zap.Error(err))
	}

	// --- Initialize Repositories ---
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	importRepo := mongo.NewMongoCatalogImportRepository(appDB)

	// --- Initialize Services ---
	exerciseService := service.NewExerciseService(exerciseRepo, logger)
	catalogService := service.NewCatalogService(exerciseRepo, importRepo, fileStorage, service.CatalogOptions{
		Workers:  cfg.Catalog.Workers,
		MaxLines: cfg.Catalog.MaxLines,
	}, logger)

	// --- Initialize Gin Engine ---
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(api.RequestLogger(logger), gin.Recovery())

	api.SetupRoutes(router, cfg.JWT.Secret, exerciseService, catalogService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("Server exiting")
}
