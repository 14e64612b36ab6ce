package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/danbi-labs/probot/internal/api"
	"github.com/danbi-labs/probot/internal/auth"
	"github.com/danbi-labs/probot/internal/config"
	"github.com/danbi-labs/probot/internal/gateway"
	"github.com/danbi-labs/probot/internal/relay"
)

func main() {
	godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.AllowedOrigins,
		}))
	} else {
		e.Use(middleware.CORS())
	}

	// Pick the response decoder for the bot gateway
	var decoder gateway.ResponseDecoder = gateway.StructuredDecoder{}
	if cfg.ResponseMode == config.ModeRaw {
		decoder = gateway.RawDecoder{}
	}
	bot := gateway.NewClient(cfg.APIURL, decoder, cfg.Timeout(), logger)

	// Initialize the connection registry and relay handler
	hub := relay.NewHub(logger)
	go hub.Run()
	handler := relay.NewHandler(hub, bot, cfg.Name, cfg.AllowedOrigins, logger)

	// Token validation is only enforced when a secret is configured
	var verifier *auth.Verifier
	if cfg.AuthEnabled() {
		verifier = auth.NewVerifier(cfg.JWTSecret)
	}

	// Initialize API routes
	api.InitRoutes(e, handler, hub, verifier, logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Relay server started",
		zap.String("port", port),
		zap.String("botName", cfg.Name),
		zap.String("responseMode", cfg.ResponseMode))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
