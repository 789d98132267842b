package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/energy-estimator/internal/weather"
)

const openMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// OpenMeteoGeocoder implements weather.Geocoder on the keyless Open-Meteo
// geocoding API.
type OpenMeteoGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoGeocoder(opts Options) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		name:    "openmeteo-geocoding",
		baseURL: openMeteoGeocodingURL,
		httpCfg: opts.httpConfig(),
		circuit: newCircuitBreaker("openmeteo-geocoding"),
	}
}

func (g *OpenMeteoGeocoder) Name() string {
	return g.name
}

// Geocode asks for the single best match for name.
func (g *OpenMeteoGeocoder) Geocode(ctx context.Context, name string) (weather.Place, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", name)
		values.Set("count", "1")
		values.Set("language", "en")
		values.Set("format", "json")

		u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, http.NoBody)
	}

	resp, err := doRequestWithResilience(ctx, g.name, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return weather.Place{}, err
	}

	body, err := readJSON(resp)
	if err != nil {
		return weather.Place{}, err
	}

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Admin1    string  `json:"admin1"`
			Country   string  `json:"country"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Place{}, fmt.Errorf("decode geocoding: %w", err)
	}

	if len(payload.Results) == 0 {
		return weather.Place{}, fmt.Errorf("%w: %q", weather.ErrLocationNotFound, name)
	}

	r := payload.Results[0]
	return weather.Place{
		Name:        displayName(r.Name, r.Admin1, r.Country),
		Coordinates: weather.Coordinates{Lat: r.Latitude, Lon: r.Longitude},
	}, nil
}

func displayName(parts ...string) string {
	var kept []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(kept) > 0 && kept[len(kept)-1] == p {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ", ")
}
