package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/energy-estimator/internal/weather"
)

// The geocoder package keeps its key in a package variable.
var googleKeyOnce sync.Once

// GoogleGeocoder implements weather.Geocoder on the Google Geocoding API.
type GoogleGeocoder struct {
	name    string
	limiter *rate.Limiter
	circuit *gobreaker.CircuitBreaker
}

func NewGoogleGeocoder(opts Options, apiKey string) *GoogleGeocoder {
	googleKeyOnce.Do(func() {
		geocoder.ApiKey = apiKey
	})
	return &GoogleGeocoder{
		name:    "google-geocoding",
		limiter: opts.httpConfig().Limiter,
		circuit: newCircuitBreaker("google-geocoding"),
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

// Geocode resolves name as a city. The underlying client has no context
// support and sends through http.DefaultTransport, so cancellation abandons
// the lookup rather than aborting it. The abandoned goroutine lives until
// that transport gives up; main bounds it with dial and header timeouts.
func (g *GoogleGeocoder) Geocode(ctx context.Context, name string) (weather.Place, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return weather.Place{}, fmt.Errorf("rate limit wait canceled: %w", err)
		}
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			// The client indexes the first result even when an OK reply has none.
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", errInvalidJSON, r)}
			}
		}()

		out, err := g.circuit.Execute(func() (interface{}, error) {
			loc, err := geocoder.Geocoding(geocoder.Address{City: name})
			if err != nil && isZeroResults(err) {
				// Not an upstream fault; keep the breaker closed.
				return nil, nil
			}
			return loc, err
		})
		if err != nil {
			done <- result{err: err}
			return
		}
		loc, ok := out.(geocoder.Location)
		if !ok {
			done <- result{err: fmt.Errorf("%w: %q", weather.ErrLocationNotFound, name)}
			return
		}
		done <- result{loc: loc}
	}()

	select {
	case <-ctx.Done():
		return weather.Place{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return weather.Place{}, r.err
		}
		return weather.Place{
			Name:        name,
			Coordinates: weather.Coordinates{Lat: r.loc.Latitude, Lon: r.loc.Longitude},
		}, nil
	}
}

// isZeroResults reports whether the geocoder found nothing, as opposed to
// failing. The client only exposes the API status as error text.
func isZeroResults(err error) bool {
	msg := strings.ToUpper(err.Error())
	for _, marker := range []string{"ZERO_RESULTS", "NO RESULTS", "NOT FOUND"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
