package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/sunshinelabs/sunshined/internal/api/http"
	"github.com/sunshinelabs/sunshined/internal/config"
	"github.com/sunshinelabs/sunshined/internal/geo"
	"github.com/sunshinelabs/sunshined/internal/scheduler"
	"github.com/sunshinelabs/sunshined/internal/store"
	"github.com/sunshinelabs/sunshined/internal/weather"
	"github.com/sunshinelabs/sunshined/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound forecast calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// SQLite-backed forecast cache.
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	fetcher := providers.NewDailyForecastFetcher(httpClient, cfg.BaseURL, cfg.APIKey, cfg.ForecastDays)

	// Core service: fetch -> parse -> upsert.
	service := weather.NewService(st, fetcher)

	// Mutable preferences; a location change drops the cache and reloads,
	// so rows for the old place never leak into the new one.
	prefs := config.NewPreferences(cfg.Location)
	prefs.Subscribe(func(loc weather.Location) {
		log.Printf("INFO: location changed to %s, reloading cache", loc.Key())
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := service.ClearAndRefresh(ctx, loc); err != nil {
				log.Printf("reload after location change failed: %v", err)
			}
		}()
	})

	resolver := geo.NewResolver(cfg.GeocoderAPIKey)

	// Scheduler that periodically refreshes the cache.
	sched := scheduler.New(prefs, cfg.SyncInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "sunshined",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "sunshined",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:  service,
		Prefs:    prefs,
		Resolver: resolver,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
