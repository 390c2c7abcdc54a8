package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"dispatchboard/adapters/postgres"
	"dispatchboard/internal"
	"dispatchboard/internal/config"
	"dispatchboard/internal/container"
	"dispatchboard/ui"
)

func main() {
	// Local development settings; absence is fine in deployed environments
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := internal.NewDefaultLogger()

	db, err := postgres.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}

	c, err := container.New(cfg, logger)
	if err != nil {
		log.Fatalf("container error: %v", err)
	}
	if err := c.InitWithDatabase(context.Background(), db); err != nil {
		log.Fatalf("initialization error: %v", err)
	}
	defer c.Close()

	server := ui.NewApp(cfg.Server, c.Dashboard, logger)
	if err := server.Start(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
