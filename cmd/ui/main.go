package main

import (
	"context"
	"log"
	"os"

	"gonarrate/internal/config"
	"gonarrate/internal/container"
	"gonarrate/internal/testkit"
	"gonarrate/ui"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// DEMO=true previews a generated content tree instead of PAGE_FILE/DATA_DIR
	if os.Getenv("DEMO") == "true" {
		dir, err := os.MkdirTemp("", "gonarrate-demo-")
		if err != nil {
			log.Fatalf("Failed to create demo directory: %v", err)
		}
		defer os.RemoveAll(dir)

		kit, err := testkit.NewTestKit(dir)
		if err != nil {
			log.Fatalf("Failed to generate demo data: %v", err)
		}
		demo := kit.Config()
		demo.Server.Port = appConfig.Server.Port
		demo.LogLevel = appConfig.LogLevel
		appConfig = demo
		log.Printf("Using synthetic demo data in %s", dir)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.Init(context.Background()); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	app, err := ui.NewApp(appContainer, ui.Config{
		Port: appConfig.Server.Port,
	})
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	log.Printf("Starting gonarrate preview on http://localhost:%s", appConfig.Server.Port)
	log.Fatal(app.Start())
}
