package handler

import (
	"net/http"

	"github.com/deppfellow/listings-api/internal/server"
	"github.com/labstack/echo/v4"
)

// SystemHandler answers the root liveness probe.
type SystemHandler struct {
	Handler
}

func NewSystemHandler(s *server.Server) *SystemHandler {
	return &SystemHandler{
		Handler: NewHandler(s),
	}
}

// Root responds to GET / without touching any dependency.
func (h *SystemHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: "DATABASE TEST"})
}
