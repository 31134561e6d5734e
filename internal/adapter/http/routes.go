// Package http provides the HTTP handler layer for the fare watch API.
package http

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterRoutes registers all fare watch API routes.
// It creates a versioned API group and attaches the handler methods.
func RegisterRoutes(e *echo.Echo, h *WatchHandler) {
	// Health check endpoint (no version prefix)
	e.GET("/health", h.Health)

	// Incoming bot updates
	e.POST("/telegram/webhook", h.TelegramWebhook)

	// API v1 group
	api := e.Group("/api/v1")
	api.POST("/search", h.TriggerSearch)

	// API documentation
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
