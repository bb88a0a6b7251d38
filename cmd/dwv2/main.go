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

	httpapi "github.com/5ivekayri/DWv2/internal/api/http"
	"github.com/5ivekayri/DWv2/internal/cache"
	"github.com/5ivekayri/DWv2/internal/config"
	"github.com/5ivekayri/DWv2/internal/health"
	"github.com/5ivekayri/DWv2/internal/ingest"
	"github.com/5ivekayri/DWv2/internal/reco"
	"github.com/5ivekayri/DWv2/internal/scheduler"
	"github.com/5ivekayri/DWv2/internal/station"
	"github.com/5ivekayri/DWv2/internal/weather"
	"github.com/5ivekayri/DWv2/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	ttlCache := cache.New()
	registry := health.NewRegistry(ttlCache)

	// Local station store + gate; fed by MQTT when a broker is configured.
	obsStore := station.NewStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	gate := station.NewGate(obsStore, cfg.LocalMaxAge)

	ordered, err := providers.Build(cfg.ProviderOrder, providers.Credentials{
		OpenWeatherKey: cfg.OpenWeatherAPIKey,
		YandexKey:      cfg.YandexAPIKey,
	}, httpClient)
	if err != nil {
		log.Fatalf("failed to build providers: %v", err)
	}

	service := weather.NewService(
		weather.NewProviderSet(ordered...),
		ttlCache,
		weather.WithGate(gate),
		weather.WithTTLs(cfg.CurrentTTL, cfg.ForecastTTL),
		weather.WithFailureHook(func(provider string, err error) {
			registry.RecordProviderError(provider)
		}),
	)

	if cfg.MQTTHost != "" {
		consumer := ingest.NewConsumer(ingest.Config{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			ClientID: cfg.MQTTClientID,
		}, obsStore, registry)
		if err := consumer.Start(); err != nil {
			log.Printf("WARN: MQTT ingestion unavailable: %v", err)
		} else {
			defer consumer.Stop()
		}
	}

	var recoService *reco.Service
	if cfg.OpenRouterAPIKey != "" {
		recoService = reco.NewService(service, ttlCache, cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterURL)
	}

	sched := scheduler.New(cfg.WarmLocations, cfg.WarmInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "dwv2",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
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

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "dwv2",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Weather:     service,
		Reco:        recoService,
		Health:      registry,
		GeocoderKey: cfg.GeocoderAPIKey,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
