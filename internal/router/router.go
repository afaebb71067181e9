// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/deppfellow/listings-api/internal/handler"
	"github.com/deppfellow/listings-api/internal/middleware"
	"github.com/deppfellow/listings-api/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance serving every route.
//
// Middleware order matters: the rate limiter rejects early, tracing must
// start before the context enhancer reads the transaction, and the request
// logger needs the enhanced logger.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.RateLimit.Limit(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	api := router.Group("/api")
	h.Listings.RegisterRoutes(api.Group("/listings"))

	return router
}
