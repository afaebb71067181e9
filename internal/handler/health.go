package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/listings-api/internal/middleware"
	"github.com/deppfellow/listings-api/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthCheck probes one dependency.
type HealthCheck struct {
	Name string

	// Required checks turn the overall status unhealthy when they fail.
	Required bool

	Ping func(ctx context.Context) error
}

// HealthHandler reports dependency health on /status.
type HealthHandler struct {
	Handler
	checks  []HealthCheck
	timeout time.Duration
}

// NewHealthHandler probes the store (required) and Redis (optional) when
// each is configured and listed in observability.health_checks.checks.
func NewHealthHandler(s *server.Server) *HealthHandler {
	obs := s.Config.Observability

	var checks []HealthCheck
	if s.DB != nil && obs.HealthCheckEnabled("database") {
		checks = append(checks, HealthCheck{Name: "database", Required: true, Ping: s.DB.Ping})
	}
	if s.Redis != nil && obs.HealthCheckEnabled("redis") {
		checks = append(checks, HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}})
	}

	return newHealthHandler(s, checks)
}

func newHealthHandler(s *server.Server, checks []HealthCheck) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		checks:  checks,
		timeout: s.Config.Observability.HealthChecks.Timeout,
	}
}

// CheckHealth returns 200 when every required check passes, 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
	}
	checks := make(map[string]interface{}, len(h.checks))
	response["checks"] = checks

	isHealthy := true
	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		checkStart := time.Now()
		err := check.Ping(ctx)
		cancel()

		result := map[string]interface{}{
			"status":        "healthy",
			"response_time": time.Since(checkStart).String(),
		}

		if err != nil {
			result["status"] = "unhealthy"
			result["error"] = err.Error()
			if check.Required {
				isHealthy = false
			}

			logger.Error().
				Err(err).
				Str("check", check.Name).
				Dur("response_time", time.Since(checkStart)).
				Msg("health check failed")

			if app := h.server.LoggerService.GetApplication(); app != nil {
				app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
					"check_type":       check.Name,
					"operation":        "health_check",
					"error_type":       check.Name + "_unhealthy",
					"response_time_ms": time.Since(checkStart).Milliseconds(),
					"error_message":    err.Error(),
				})
			}
		}

		checks[check.Name] = result
	}

	if !isHealthy {
		response["status"] = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	return c.JSON(http.StatusOK, response)
}
