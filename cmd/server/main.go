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

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/internal/api"
	"github.com/Naimurthedang/bondly-main/internal/auth"
	"github.com/Naimurthedang/bondly-main/internal/views"
	"github.com/Naimurthedang/bondly-main/internal/websocket"
	"github.com/Naimurthedang/bondly-main/usecase"
)

func main() {
	envErr := godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if envErr != nil {
		logger.Info("No .env file loaded", zap.Error(envErr))
	}
	if !auth.LoadSecretFromEnv() {
		logger.Warn("JWT_SECRET is not set, using the development secret")
	}

	ctx := context.Background()

	catalog, err := entities.LoadCatalog()
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}

	// Initialize adapters
	gateway, credentials, err := newGateway(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to initialize AI gateway", zap.Error(err))
	}
	speech, err := newSpeech(gateway, logger)
	if err != nil {
		logger.Fatal("Failed to initialize speech provider", zap.Error(err))
	}
	sessions, closeSessions, err := newSessionRepository(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to initialize session store", zap.Error(err))
	}
	defer closeSessions()
	media, closeMedia, err := newMediaStore(logger)
	if err != nil {
		logger.Fatal("Failed to initialize media store", zap.Error(err))
	}
	defer closeMedia()

	deps := &views.Deps{
		Gateway:     gateway,
		Speech:      speech,
		Transcriber: newTranscriber(gateway, logger),
		Credentials: credentials,
		Media:       media,
		Player:      newPlayer(logger),
		Catalog:     catalog,
		Logger:      logger,
	}
	if err := deps.Validate(); err != nil {
		logger.Fatal("Invalid view dependencies", zap.Error(err))
	}

	// Initialize usecase services
	shell := usecase.NewShellService(sessions, deps, logger)
	capture := usecase.NewCaptureService(shell, logger)

	// Initialize WebSocket hub with the capture service
	hubCtx, stopHub := context.WithCancel(ctx)
	hub := websocket.NewHub(capture, logger)
	go hub.Run(hubCtx)

	cleanup := websocket.NewSessionCleanupService(shell, envMinutes("SESSION_CLEANUP_MINUTES", 0, logger), 0, logger)
	cleanup.Start()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize API routes
	api.InitRoutes(e, api.NewServer(shell, media, catalog, logger), hub, logger)

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

	logger.Info("Bondly server started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	cleanup.Stop()
	stopHub()

	logger.Info("Server exited")
}
