package router

import (
	"github.com/deppfellow/listings-api/internal/handler"
	"github.com/deppfellow/listings-api/static"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the
// listings API: liveness, health, docs and the embedded doc assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/", h.System.Root)

	// Health status endpoint (used by Kubernetes/monitors).
	r.GET("/status", h.Health.CheckHealth)

	// openapi.json and openapi.html, compiled into the binary.
	r.StaticFS("/static", static.Files)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
