package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/energy-estimator/internal/weather"
)

const (
	openMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"

	openMeteoCurrentVars = "temperature_2m,relative_humidity_2m,wind_speed_10m,wind_direction_10m,cloud_cover,shortwave_radiation"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(opts Options) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: openMeteoForecastURL,
		httpCfg: opts.httpConfig(),
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Fetch returns the current conditions, today's hourly radiation series and
// today's sunrise and sunset for the coordinates.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, coords weather.Coordinates) (weather.Sample, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(coords.Lat, 'f', 4, 64))
		values.Set("longitude", strconv.FormatFloat(coords.Lon, 'f', 4, 64))
		values.Set("current", openMeteoCurrentVars)
		values.Set("hourly", "shortwave_radiation")
		values.Set("daily", "sunrise,sunset")
		values.Set("wind_speed_unit", "ms")
		values.Set("timeformat", "unixtime")
		values.Set("timezone", "auto")
		values.Set("forecast_days", "1")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, http.NoBody)
	}

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Sample{}, err
	}

	body, err := readJSON(resp)
	if err != nil {
		return weather.Sample{}, err
	}

	var payload struct {
		Current *struct {
			Time               int64    `json:"time"`
			Temperature        *float64 `json:"temperature_2m"`
			RelativeHumidity   *float64 `json:"relative_humidity_2m"`
			WindSpeed          *float64 `json:"wind_speed_10m"`
			WindDirection      float64  `json:"wind_direction_10m"`
			CloudCover         *float64 `json:"cloud_cover"`
			ShortwaveRadiation *float64 `json:"shortwave_radiation"`
		} `json:"current"`
		Hourly struct {
			ShortwaveRadiation []*float64 `json:"shortwave_radiation"`
		} `json:"hourly"`
		Daily struct {
			Sunrise []int64 `json:"sunrise"`
			Sunset  []int64 `json:"sunset"`
		} `json:"daily"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Sample{}, fmt.Errorf("decode forecast: %w", err)
	}

	cur := payload.Current
	if cur == nil {
		return weather.Sample{}, fmt.Errorf("%w: current", errMissingField)
	}
	for field, v := range map[string]*float64{
		"temperature_2m":       cur.Temperature,
		"relative_humidity_2m": cur.RelativeHumidity,
		"wind_speed_10m":       cur.WindSpeed,
		"cloud_cover":          cur.CloudCover,
		"shortwave_radiation":  cur.ShortwaveRadiation,
	} {
		if v == nil {
			return weather.Sample{}, fmt.Errorf("%w: current.%s", errMissingField, field)
		}
	}

	sample := weather.Sample{
		Time:          time.Unix(cur.Time, 0).UTC(),
		TemperatureC:  *cur.Temperature,
		HumidityPct:   *cur.RelativeHumidity,
		WindSpeedMS:   *cur.WindSpeed,
		WindDeg:       cur.WindDirection,
		CloudCoverPct: *cur.CloudCover,
		RadiationWM2:  *cur.ShortwaveRadiation,
	}
	if cur.Time == 0 {
		sample.Time = time.Now().UTC()
	}

	// Gaps in the hourly series are reported as null; they contribute nothing.
	for _, r := range payload.Hourly.ShortwaveRadiation {
		if r == nil {
			sample.HourlyRadiation = append(sample.HourlyRadiation, 0)
			continue
		}
		sample.HourlyRadiation = append(sample.HourlyRadiation, *r)
	}

	if len(payload.Daily.Sunrise) > 0 && len(payload.Daily.Sunset) > 0 {
		sample.Sunrise = time.Unix(payload.Daily.Sunrise[0], 0).UTC()
		sample.Sunset = time.Unix(payload.Daily.Sunset[0], 0).UTC()
	}

	return sample, nil
}
