package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	httpapi "github.com/i474232898/energy-estimator/internal/api/http"
	"github.com/i474232898/energy-estimator/internal/config"
	"github.com/i474232898/energy-estimator/internal/scheduler"
	"github.com/i474232898/energy-estimator/internal/store"
	"github.com/i474232898/energy-estimator/internal/weather"
	"github.com/i474232898/energy-estimator/internal/weather/providers"
)

// Probe targets for the keyless upstreams.
const probePlace = "Berlin"

var probeCoords = weather.Coordinates{Lat: 52.52, Lon: 13.41}

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	opts := providers.Options{
		Client:     httpClient,
		MaxRetries: cfg.MaxRetries,
		RPS:        cfg.RPS,
		Burst:      cfg.Burst,
	}

	var geocoder weather.Geocoder = providers.NewOpenMeteoGeocoder(opts)
	if cfg.GeocoderAPIKey != "" {
		// The Google client sends through the default transport with no
		// timeout of its own.
		if t, ok := http.DefaultTransport.(*http.Transport); ok {
			t.DialContext = (&net.Dialer{Timeout: cfg.HTTPTimeout, KeepAlive: 30 * time.Second}).DialContext
			t.TLSHandshakeTimeout = cfg.HTTPTimeout
			t.ResponseHeaderTimeout = cfg.HTTPTimeout
		}
		geocoder = providers.NewGoogleGeocoder(opts, cfg.GeocoderAPIKey)
		log.Println("INFO: using Google geocoding")
	}
	forecast := providers.NewOpenMeteoProvider(opts)
	conditions := providers.NewOpenWeatherProvider(opts, cfg.OpenWeatherAPIKey)
	if cfg.OpenWeatherAPIKey == "" {
		log.Println("INFO: OPENWEATHER_KEY not set; OpenWeather-backed endpoints will fail")
	}

	service := weather.NewService(geocoder, forecast, conditions, cfg.Calculator, cfg.HTTPTimeout)

	// Upstream probes, kept in memory with configured retention.
	probeStore := store.NewMemoryStore(cfg.ProbeMaxHistory, cfg.ProbeMaxAge)
	probes := []scheduler.Probe{
		scheduler.ProviderProbe(forecast, probeCoords),
	}
	if cfg.GeocoderAPIKey == "" {
		probes = append(probes, scheduler.GeocoderProbe(geocoder, probePlace))
	}
	sched := scheduler.New(probes, cfg.ProbeInterval, probeStore)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "energy-estimator",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * cfg.HTTPTimeout,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:  service,
		Defaults: cfg.Equipment,
		Probes:   probeStore,
	})

	// Start server with graceful shutdown
	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
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
