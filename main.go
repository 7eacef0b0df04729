// Package main provides the main entry point for the ERA4 frontend service
//
// @title ERA4 Frontend API
// @version 1.0.0
// @description Animal selector page and file upload echo service
// @BasePath /
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirphl/era4-frontend/app/handlers"
	"github.com/amirphl/era4-frontend/app/middleware"
	"github.com/amirphl/era4-frontend/app/router"
	businessflow "github.com/amirphl/era4-frontend/business_flow"
	"github.com/amirphl/era4-frontend/config"
	"github.com/gofiber/fiber/v3"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func() error
}

func main() {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logWriter, closeLog := cfg.Logging.Writer()
	log.SetOutput(logWriter)
	log.SetFlags(log.LstdFlags | log.LUTC)

	cfg.Logging.Infof("Starting ERA4 frontend (%s)", cfg.Deployment)

	app := initializeApplication(cfg, logWriter)
	app.stopFuncs = append(app.stopFuncs, closeLog)

	app.router.SetupRoutes()

	if err := cfg.Static.EnsureImagesDir(); err != nil {
		log.Fatalf("Failed to prepare static directory: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	cfg.Logging.Infof("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	cfg.Logging.Infof("Server stopped")

	for _, fn := range app.stopFuncs {
		if err := fn(); err != nil {
			fmt.Fprintf(os.Stderr, "cleanup failed: %v\n", err)
		}
	}
}

// initializeApplication wires flows, handlers and the router
func initializeApplication(cfg *config.ProductionConfig, accessLog io.Writer) *Application {
	uploadFlow := businessflow.NewUploadFlow(middleware.NewUploadMetrics())

	pageHandler := handlers.NewPageHandler(cfg.Deployment.Version)
	uploadHandler := handlers.NewUploadHandler(uploadFlow)

	appRouter := router.NewFiberRouter(cfg, accessLog, pageHandler, uploadHandler)

	return &Application{
		router: appRouter,
		config: cfg,
		server: appRouter.GetApp(),
	}
}
