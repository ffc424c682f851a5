package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"

	"github.com/yuzuru-dev/fedilike/backend/internal/router"
	"github.com/yuzuru-dev/fedilike/backend/pkg/config"
	"github.com/yuzuru-dev/fedilike/backend/pkg/firebase"
	"github.com/yuzuru-dev/fedilike/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logging
	logger.Init(cfg.Env)
	defer logger.Sync()

	// Initialize store connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure store connections are closed when main exits

	// Initialize Firebase push (optional)
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	stopWorkers := router.SetupRoutes(e, db, firebaseApp, cfg)
	defer stopWorkers()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
