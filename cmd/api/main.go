package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"trade-market/internal/config"
	"trade-market/internal/database"
	"trade-market/internal/logger"
	"trade-market/internal/repository"
	"trade-market/internal/repository/memory"
	"trade-market/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	migrationStatus := flag.Bool("migration-status", false, "print the migration status and exit")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.NewWithFile(cfg.Server.Env, logger.FileOptions{
		Path:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting trade market API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
	)

	ctx := context.Background()

	var (
		uow      repository.UnitOfWork
		dbHandle database.Service
	)

	if *migrationStatus && !cfg.Store.HasMigrations() {
		log.Fatal("Migration status needs a database store",
			zap.String("store", cfg.Store.Driver),
			zap.String("required", config.StoreDriverPostgres),
		)
	}

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn("Using in-memory store, data is lost on restart")
		uow = memory.NewStore()
	case config.StoreDriverPostgres:
		dbHandle, err = database.New(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		log.Info("Database health check", zap.Any("health", dbHandle.Health(ctx)))

		if *migrationStatus {
			if err := database.GetMigrationStatus(ctx, dbHandle.DB(), cfg.Database.MigrationsDir); err != nil {
				log.Fatal("Failed to read migration status", zap.Error(err))
			}
			return
		}

		if err := database.RunMigrations(ctx, dbHandle.DB(), cfg.Database.MigrationsDir, log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
		uow = repository.NewUnitOfWork(dbHandle.DB())
	default:
		log.Fatal("Unknown store driver", zap.String("driver", cfg.Store.Driver))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unavailable, rate limiting fails open", zap.Error(err))
		}
	}

	var srv *server.Server
	if dbHandle != nil {
		srv = server.NewServer(cfg, log, uow, dbHandle.DB(), redisClient)
	} else {
		srv = server.NewServer(cfg, log, uow, nil, redisClient)
	}

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
