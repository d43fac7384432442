package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"task-manager/configs"
	v1 "task-manager/internal/api/v1"
	"task-manager/internal/config"
	"task-manager/internal/repository"
	"task-manager/pkg/database"
	"task-manager/pkg/logger"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load config
	cfg := configs.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Inisialisasi logger
	if err := logger.InitLoggers(cfg.LogDir, cfg.Debug); err != nil {
		log.Fatalf("Failed to initialize loggers: %v", err)
	}
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application",
		zap.String("app", cfg.AppName),
		zap.String("version", cfg.AppVersion),
		zap.String("time", time.Now().Format(time.RFC3339)),
	)

	// Inisialisasi database
	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.ErrorLogger.Fatal("Failed to connect database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	logger.SystemLogger.Info("Database connected", zap.String("driver", cfg.DBDriver))

	// Buat tabel jika belum ada
	if err := repository.Migrate(db); err != nil {
		logger.ErrorLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis opsional: tanpa REDIS_HOST cache dan denylist tidak aktif
	redisClient, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.ErrorLogger.Fatal("Failed to connect redis", zap.String("addr", cfg.RedisAddr()), zap.Error(err))
	}
	if redisClient == nil {
		logger.SystemLogger.Warn("REDIS_HOST not set, task cache and token revocation disabled")
	} else {
		logger.SystemLogger.Info("Redis connected", zap.String("addr", cfg.RedisAddr()))
	}

	deps := config.NewDependencies(cfg, db, redisClient)
	if err := deps.SeedAdmin(ctx); err != nil {
		logger.ErrorLogger.Fatal("Failed to seed admin user", zap.Error(err))
	}

	go deps.Hub.Run(ctx)

	app := v1.NewApp(deps)
	go func() {
		logger.SystemLogger.Info("Application ready", zap.String("addr", cfg.ListenAddr()))
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			// satu operasi supaya urutannya terjaga: HTTP dulu, lalu hub dan storage
			"app": func(ctx context.Context) error {
				logger.SystemLogger.Info("Graceful shutdown initiated")
				errs := []error{app.ShutdownWithContext(ctx)}
				cancel()
				if redisClient != nil {
					errs = append(errs, redisClient.Close())
				}
				errs = append(errs, database.Close(db))
				return errors.Join(errs...)
			},
		},
	)

	exitCode := <-wait
	logger.SystemLogger.Info("Application stopped", zap.Int("exit_code", exitCode))
	logger.SyncLoggers()
	os.Exit(exitCode)
}
