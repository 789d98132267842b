package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/energy-estimator/internal/energy"
)

type AppConfig struct {
	Port string

	OpenWeatherAPIKey string
	// GeocoderAPIKey switches geocoding to Google when set.
	GeocoderAPIKey string

	// HTTPTimeout bounds the upstream calls of a single request.
	HTTPTimeout time.Duration

	// Upstream resilience.
	MaxRetries int
	RPS        float64
	Burst      int

	// Upstream probing. A zero interval disables it.
	ProbeInterval   time.Duration
	ProbeMaxHistory int
	ProbeMaxAge     time.Duration

	// Equipment used when a request does not name its own.
	Equipment energy.Equipment

	// Calculator tuning values.
	Calculator energy.Calculator
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv parses the process environment without touching .env files.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "3000")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = getenvInt("UPSTREAM_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_MAX_RETRIES: must not be negative")
	}
	if cfg.RPS, err = getenvFloat("UPSTREAM_RPS", 5); err != nil {
		return nil, err
	}
	if cfg.Burst, err = getenvInt("UPSTREAM_BURST", 5); err != nil {
		return nil, err
	}

	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ProbeMaxHistory, err = getenvInt("PROBE_MAX_HISTORY", 96); err != nil { // roughly 24h at 15-minute intervals
		return nil, err
	}
	if cfg.ProbeMaxAge, err = getenvDuration("PROBE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}

	eq := energy.DefaultEquipment()
	if eq.Panel.Area, err = getenvFloat("DEFAULT_PANEL_AREA", eq.Panel.Area); err != nil {
		return nil, err
	}
	if eq.Panel.Efficiency, err = getenvFloat("DEFAULT_PANEL_EFF", eq.Panel.Efficiency); err != nil {
		return nil, err
	}
	if eq.Rotor.Area, err = getenvFloat("DEFAULT_ROTOR_AREA", eq.Rotor.Area); err != nil {
		return nil, err
	}
	if eq.Rotor.Efficiency, err = getenvFloat("DEFAULT_ROTOR_EFF", eq.Rotor.Efficiency); err != nil {
		return nil, err
	}
	if err := validateEquipment(eq); err != nil {
		return nil, err
	}
	cfg.Equipment = eq

	calc := energy.Default()
	if calc.AirDensity, err = getenvFloat("AIR_DENSITY", calc.AirDensity); err != nil {
		return nil, err
	}
	if calc.AirDensity <= 0 {
		return nil, fmt.Errorf("invalid AIR_DENSITY: must be positive")
	}
	if calc.PanelDerating, err = getenvFloat("PANEL_DERATING", calc.PanelDerating); err != nil {
		return nil, err
	}
	if calc.PanelDerating <= 0 || calc.PanelDerating > 1 {
		return nil, fmt.Errorf("invalid PANEL_DERATING: must be in (0, 1]")
	}
	cfg.Calculator = calc

	return cfg, nil
}

// equipmentEnv maps equipment validation namespaces to their env keys.
var equipmentEnv = map[string]string{
	"Equipment.Panel.Area":       "DEFAULT_PANEL_AREA",
	"Equipment.Panel.Efficiency": "DEFAULT_PANEL_EFF",
	"Equipment.Rotor.Area":       "DEFAULT_ROTOR_AREA",
	"Equipment.Rotor.Efficiency": "DEFAULT_ROTOR_EFF",
}

func validateEquipment(eq energy.Equipment) error {
	err := validator.New().Struct(eq)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("invalid default equipment: %w", err)
	}
	fe := verrs[0]
	key, ok := equipmentEnv[fe.Namespace()]
	if !ok {
		key = fe.Namespace()
	}
	return fmt.Errorf("invalid %s: failed %q check: %w", key, fe.Tag(), err)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
