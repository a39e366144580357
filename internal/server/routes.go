package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Channel connection flow
	s.echo.GET("/auth/connect", s.handleConnect)
	s.echo.GET("/auth/callback", s.handleOAuthCallback)

	// Analytics API
	api := s.echo.Group("/api", newRateLimiter(s.config.APIRateLimit, s.config.APIRateBurst))
	api.GET("/creators/:id/analytics", s.handleGetAnalytics)
	api.POST("/creators/:id/disconnect", s.handleDisconnect)
}
