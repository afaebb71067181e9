// Package server defines the core Server struct that composes the app's main dependencies.
//
// It contains the initialization logic to spin up the HTTP server
// and handles graceful shutdowns.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the MongoDB client (one per process)
//   - the optional Redis client backing the listing cache
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/listings-api/internal/config"
	"github.com/deppfellow/listings-api/internal/database"
	"github.com/deppfellow/listings-api/internal/lib/cache"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/listings-api/internal/logger"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself; that lives in httpServer and is
// configured by SetupHTTPServer.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	// DB is the single store handle shared by every request.
	DB *database.Database

	// Redis is nil when no address is configured.
	Redis *redis.Client

	// Cache is backed by Redis, or a no-op without it.
	Cache cache.Cache

	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies.
//
// A store connection failure is returned as *database.ConnectionError and
// must stop startup. Redis is optional: a failed ping is logged and the
// service runs without its cache.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(ctx, cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Cache:         cache.Noop{},
	}

	if cfg.Redis.Enabled() {
		server.Redis = newRedis(ctx, cfg, logger, loggerService)
		if server.Redis != nil {
			server.Cache = cache.NewRedisCache(server.Redis, cfg.Redis.CacheTTL)
		}
	}

	return server, nil
}

func newRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	if loggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error().Err(err).Msg("failed to connect to Redis, continuing without cache")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("address", cfg.Redis.Address).Msg("connected to Redis")
	return client
}

// SetupHTTPServer configures the internal net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, then closes the store and Redis
// clients.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if err := s.DB.Close(ctx); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}

	return nil
}
