package handler

import (
	"fmt"
	"net/http"

	"github.com/deppfellow/listings-api/internal/server"
	"github.com/deppfellow/listings-api/static"
	"github.com/labstack/echo/v4"
)

// OpenAPIHandler serves the API documentation page. The page loads
// /static/openapi.json, which is embedded in the binary.
type OpenAPIHandler struct {
	Handler
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// ServeOpenAPIUI writes the documentation page with caching disabled.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	page, err := static.Files.ReadFile("openapi.html")
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.HTMLBlob(http.StatusOK, page)
}
