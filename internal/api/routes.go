package api

import (
	_ "embed"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/danbi-labs/probot/internal/auth"
	"github.com/danbi-labs/probot/internal/relay"
)

//go:embed index.html
var landingPage []byte

// InitRoutes initializes all API routes. A nil verifier leaves the
// WebSocket endpoint open to every client.
func InitRoutes(e *echo.Echo, handler *relay.Handler, hub *relay.Hub, verifier *auth.Verifier, logger *zap.Logger) {
	// Landing page
	e.GET("/", func(c echo.Context) error {
		return c.HTMLBlob(http.StatusOK, landingPage)
	})

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:      "ok",
			Service:     "probot",
			Connections: hub.Count(),
		})
	})

	// WebSocket endpoint
	e.GET("/ws", func(c echo.Context) error {
		if verifier != nil {
			return websocketWithAuth(handler, c, verifier, logger)
		}
		return handler.ServeWS(c)
	})
}

// websocketWithAuth handles WebSocket connections with JWT authentication
func websocketWithAuth(handler *relay.Handler, c echo.Context, verifier *auth.Verifier, logger *zap.Logger) error {
	// Accept the token from the Authorization header or, for browser
	// clients that cannot set headers on WebSocket requests, a query
	// parameter.
	var token string
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if token == "" {
		token = c.QueryParam("token")
	}

	if token == "" {
		logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "JWT token is required",
		})
	}

	claims, err := verifier.ValidateToken(token)
	if err != nil {
		logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired JWT token",
		})
	}

	logger.Info("WebSocket connection authenticated",
		zap.String("client_id", claims.ClientID))

	return handler.ServeWS(c)
}
