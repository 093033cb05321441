package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"trade-market/internal/config"
	"trade-market/internal/metrics"
	custommiddleware "trade-market/internal/middleware"
	"trade-market/internal/repository"
	"trade-market/internal/service"
	"trade-market/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

// NewServer wires services over uow and mounts every route. db and
// redisClient are optional; they are only closed and health-checked here.
func NewServer(cfg *config.Config, logger *zap.Logger, uow repository.UnitOfWork, db *sql.DB, redisClient *redis.Client) *Server {
	server := &Server{
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	server.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      server.routes(uow),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

func (s *Server) routes(uow repository.UnitOfWork) http.Handler {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack(s.logger)...)
	router.Use(metrics.InstrumentHandler)
	router.Use(custommiddleware.CORSMiddleware(s.config.CORS.AllowedOrigins, s.config.Server.Env == "development"))

	if s.redis != nil && s.config.RateLimit.Requests > 0 {
		router.Use(custommiddleware.RateLimitMiddleware(s.redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: s.config.RateLimit.Requests,
			Window:            time.Duration(s.config.RateLimit.WindowSeconds) * time.Second,
			KeyPrefix:         "trade_market_rate_limit",
			ExemptPaths:       []string{"/health", "/metrics"},
		}, s.logger))
	}

	router.Get("/health", s.health)
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Initialize services
	productService := service.NewProductService(uow)
	customerService := service.NewCustomerService(uow)
	receiptService := service.NewReceiptService(uow)
	statisticService := service.NewStatisticService(uow.Receipts())

	// Register routes
	transport.NewProductHandler(productService, s.logger).RegisterRoutes(router)
	transport.NewCustomerHandler(customerService, s.logger).RegisterRoutes(router)
	transport.NewReceiptHandler(receiptService, s.logger).RegisterRoutes(router)
	transport.NewStatisticHandler(statisticService, s.logger).RegisterRoutes(router)

	return router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "store": s.config.Store.Driver}
	code := http.StatusOK

	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			s.logger.Warn("Database health check failed", zap.Error(err))
			status["status"] = "degraded"
			status["database"] = "down"
			code = http.StatusServiceUnavailable
		} else {
			status["database"] = "up"
		}
	}

	if s.redis != nil {
		if err := s.redis.Ping(r.Context()).Err(); err != nil {
			// Rate limiting fails open, so redis alone does not degrade the service.
			status["redis"] = "down"
		} else {
			status["redis"] = "up"
		}
	}

	custommiddleware.RespondWithJSON(w, code, status)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
