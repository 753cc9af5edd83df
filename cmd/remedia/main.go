package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/terraincognita07/remedia/internal/api"
	"github.com/terraincognita07/remedia/internal/cli"
	"github.com/terraincognita07/remedia/internal/config"
	"github.com/terraincognita07/remedia/internal/db"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("config failed: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "reset-admin-pass" {
		if len(os.Args) < 3 {
			log.Fatal("usage: remedia reset-admin-pass ROOMCODE")
		}
		if err := cli.RunResetAdminPassCommand(cfg.DBPath, os.Args[2]); err != nil {
			log.Fatalf("reset admin passphrase failed: %v", err)
		}
		return
	}

	location := config.Location(cfg.Timezone)
	time.Local = location

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	handler := api.NewHandler(database, cfg.SecretKey, location)

	app := fiber.New(fiber.Config{
		AppName:               "Remedia",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Remedia listening on http://0.0.0.0:%s (db: %s, tz: %s)", cfg.Port, cfg.DBPath, location.String())
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
