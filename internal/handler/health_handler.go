package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pong godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /pong [get]
func Pong(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: "pong"})
}

// Healthz answers plain "ok" for container health checks.
func Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
