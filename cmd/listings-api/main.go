package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/listings-api/internal/config"
	"github.com/deppfellow/listings-api/internal/handler"
	"github.com/deppfellow/listings-api/internal/logger"
	"github.com/deppfellow/listings-api/internal/repository"
	"github.com/deppfellow/listings-api/internal/router"
	"github.com/deppfellow/listings-api/internal/server"
	"github.com/deppfellow/listings-api/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		startupLog := logger.NewStartupLogger()
		startupLog.Fatal().Err(err).Str("phase", "startup").Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout+5*time.Second)
	srv, err := server.New(startupCtx, cfg, &log, loggerService)
	cancelStartup()
	if err != nil {
		log.Fatal().Err(err).Str("phase", "startup").Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)
	services := service.NewServices(srv, repos)
	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server exited properly")
}
