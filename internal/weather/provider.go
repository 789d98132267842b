package weather

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrLocationNotFound is returned when a place name does not resolve.
	ErrLocationNotFound = errors.New("location not found")

	// ErrUpstream wraps every failure of an external data source, including
	// timeouts and payloads missing expected fields.
	ErrUpstream = errors.New("upstream error")
)

// Geocoder resolves a place name to its best matching coordinates.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, name string) (Place, error)
}

// Provider fetches an hourly sample (including radiation) for coordinates.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, coords Coordinates) (Sample, error)
}

// ConditionsProvider serves city-keyed current conditions and forecasts.
type ConditionsProvider interface {
	Name() string
	Current(ctx context.Context, city string) (Observation, error)
	CurrentAt(ctx context.Context, coords Coordinates) (json.RawMessage, error)
	Forecast(ctx context.Context, city string) (json.RawMessage, error)
}
