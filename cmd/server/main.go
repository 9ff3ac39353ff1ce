package main

import (
	"baisics/coach-api/internal/api"
	"baisics/coach-api/internal/cache"
	"baisics/coach-api/internal/config"
	"baisics/coach-api/internal/logger"
	"baisics/coach-api/internal/metrics"
	"baisics/coach-api/internal/repository"
	"baisics/coach-api/internal/repository/gormrepo"
	"baisics/coach-api/internal/repository/mongo"
	"baisics/coach-api/internal/service"
	"baisics/coach-api/internal/storage"
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

// @title Coach API
// @version 1.0
// @description Coaching backend: programs, nutrition targets, food and workout logging, milestones.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "."
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: Invalid config: %v", err)
	}

	appLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("server_starting",
		zap.String("address", cfg.Server.Address),
		zap.String("database_driver", cfg.Database.Driver),
	)

	// --- Database Connection ---
	repos, closeDB, err := openRepositories(cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("database_connection_failed", zap.Error(err))
	}
	defer closeDB()

	// --- Target Cache ---
	var targetCache cache.TargetCache = cache.Noop{}
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := cache.Connect(ctx, cfg.Redis, appLogger)
		cancel()
		if err != nil {
			appLogger.Warn("target_cache_disabled", zap.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
			targetCache = cache.NewRedisTargetCache(redisClient, cfg.Redis.TargetTTL)
		}
	}

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.BucketName != "" {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3, appLogger)
		if err != nil {
			appLogger.Fatal("s3_storage_init_failed", zap.Error(err))
		}
	} else {
		appLogger.Warn("photo_storage_disabled", zap.String("reason", "s3.bucket_name not set"))
	}

	reg := metrics.New()

	// --- Initialize Services ---
	resolver := service.NewTargetResolver(repos.Programs, repos.NutritionPlans, reg, appLogger)
	nutritionService := service.NewNutritionService(resolver, repos.NutritionPlans, repos.Programs, targetCache, appLogger)
	milestoneService := service.NewMilestoneService(repos.WorkoutLogs, repos.Milestones, reg, appLogger)

	services := api.Services{
		Auth:      service.NewAuthService(repos.Users, cfg.JWT.Secret, cfg.JWT.Expiration),
		Coach:     service.NewCoachService(repos.Users, appLogger),
		Program:   service.NewProgramService(repos.Programs, nutritionService, appLogger),
		Nutrition: nutritionService,
		FoodLog:   service.NewFoodLogService(repos.FoodLogs, nutritionService, cfg.Nutrition.ComplianceTolerancePct, appLogger),
		Workout:   service.NewWorkoutService(repos.WorkoutLogs, repos.Programs, repos.Exercises, milestoneService, reg, appLogger),
		Milestone: milestoneService,
		Exercise:  service.NewExerciseService(repos.Exercises),
		BodyStat:  service.NewBodyStatService(repos.BodyStats, fileStorage, appLogger),
	}

	// --- Initialize Gin Engine ---
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	api.SetupRoutes(router, services, appLogger, reg, cfg.Server.CORSOrigins)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("listen_failed", zap.Error(err))
		}
	}()
	appLogger.Info("server_listening", zap.String("address", cfg.Server.Address))

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("server_shutting_down")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("server_forced_shutdown", zap.Error(err))
	}
	appLogger.Info("server_exited")
}

// openRepositories connects the configured backend. The returned func
// releases the connection.
func openRepositories(cfg config.DatabaseConfig, logger *zap.Logger) (*repository.Repositories, func(), error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(cfg.Name)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, db, logger); err != nil {
			_ = mongo.DisconnectDB(client)
			return nil, nil, err
		}

		closeFn := func() {
			if err := mongo.DisconnectDB(client); err != nil {
				logger.Error("mongo_disconnect_failed", zap.Error(err))
			}
		}
		return mongo.NewRepositories(db), closeFn, nil

	default:
		db, err := gormrepo.Open(cfg.Driver, cfg.URI, logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := gormrepo.Close(db); err != nil {
				logger.Error("database_close_failed", zap.Error(err))
			}
		}
		return gormrepo.NewRepositories(db), closeFn, nil
	}
}
