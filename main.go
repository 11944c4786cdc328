package main

import (
	"context"
	"log"

	"gonarrate/internal/config"
	"gonarrate/internal/container"
	"gonarrate/internal/errors"
	"gonarrate/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	ctx := context.Background()
	if err := appContainer.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// With WARM_CACHE set, a missing dataset stops startup instead of the first page view
	if err := appContainer.Warm(ctx); err != nil {
		log.Fatalf("Failed to warm dataset cache: %v", errors.Wrap(err, "warm cache"))
	}

	server := ui.NewServer(appContainer)
	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
