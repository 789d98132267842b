package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/energy-estimator/internal/weather"
)

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

var errNoAPIKey = errors.New("openweather api key is not configured")

// OpenWeatherProvider implements weather.ConditionsProvider for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(opts Options, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: openWeatherBaseURL,
		httpCfg: opts.httpConfig(),
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Current fetches current conditions for a city. An unknown city is
// reported as weather.ErrLocationNotFound.
func (p *OpenWeatherProvider) Current(ctx context.Context, city string) (weather.Observation, error) {
	values := url.Values{}
	values.Set("q", city)

	raw, err := p.get(ctx, "weather", values)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return weather.Observation{}, fmt.Errorf("%w: %q", weather.ErrLocationNotFound, city)
		}
		return weather.Observation{}, err
	}

	var payload struct {
		Coord struct {
			Lon float64 `json:"lon"`
			Lat float64 `json:"lat"`
		} `json:"coord"`
		Main *struct {
			Temp     *float64 `json:"temp"`
			Humidity *float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Clouds struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Dt  int64 `json:"dt"`
		Sys struct {
			Sunrise int64 `json:"sunrise"`
			Sunset  int64 `json:"sunset"`
		} `json:"sys"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return weather.Observation{}, fmt.Errorf("decode current weather: %w", err)
	}
	if payload.Main == nil || payload.Main.Temp == nil || payload.Main.Humidity == nil {
		return weather.Observation{}, fmt.Errorf("%w: main.temp/main.humidity", errMissingField)
	}

	sample := weather.Sample{
		Time:          time.Unix(payload.Dt, 0).UTC(),
		TemperatureC:  *payload.Main.Temp,
		HumidityPct:   *payload.Main.Humidity,
		WindSpeedMS:   payload.Wind.Speed,
		WindDeg:       payload.Wind.Deg,
		CloudCoverPct: payload.Clouds.All,
	}
	if payload.Dt == 0 {
		sample.Time = time.Now().UTC()
	}
	if payload.Sys.Sunrise > 0 && payload.Sys.Sunset > 0 {
		sample.Sunrise = time.Unix(payload.Sys.Sunrise, 0).UTC()
		sample.Sunset = time.Unix(payload.Sys.Sunset, 0).UTC()
	}

	return weather.Observation{
		Place: weather.Place{
			Name:        payload.Name,
			Coordinates: weather.Coordinates{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon},
		},
		Sample: sample,
		Raw:    raw,
	}, nil
}

// CurrentAt returns the current-weather payload for coordinates unchanged.
func (p *OpenWeatherProvider) CurrentAt(ctx context.Context, coords weather.Coordinates) (json.RawMessage, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	return p.get(ctx, "weather", values)
}

// Forecast returns the 5 day / 3 hour forecast payload for a city unchanged.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, city string) (json.RawMessage, error) {
	values := url.Values{}
	values.Set("q", city)

	raw, err := p.get(ctx, "forecast", values)
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("%w: %q", weather.ErrLocationNotFound, city)
	}
	return raw, err
}

func (p *OpenWeatherProvider) get(ctx context.Context, path string, values url.Values) (json.RawMessage, error) {
	if p.apiKey == "" {
		return nil, errNoAPIKey
	}

	buildRequest := func() (*http.Request, error) {
		q := url.Values{}
		for k, v := range values {
			q[k] = v
		}
		q.Set("appid", p.apiKey)
		q.Set("units", "metric")

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, path, q.Encode())
		return http.NewRequest(http.MethodGet, u, http.NoBody)
	}

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	return readJSON(resp)
}
