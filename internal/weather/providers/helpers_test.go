package providers

import (
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
)

// newMockOptions returns provider options whose client is served by a fresh
// mock transport. Rate limiting is off and retries follow maxRetries.
func newMockOptions(t *testing.T, maxRetries int) (Options, *httpmock.MockTransport) {
	t.Helper()

	mock := httpmock.NewMockTransport()
	return Options{
		Client:     &http.Client{Transport: mock},
		MaxRetries: maxRetries,
	}, mock
}

const openMeteoForecastResponse = `{
  "latitude": 52.52,
  "longitude": 13.41,
  "current": {
    "time": 1736769600,
    "interval": 900,
    "temperature_2m": 1.5,
    "relative_humidity_2m": 85,
    "wind_speed_10m": 5,
    "wind_direction_10m": 250,
    "cloud_cover": 40,
    "shortwave_radiation": 500
  },
  "hourly": {
    "time": [1736726400, 1736730000, 1736733600, 1736737200],
    "shortwave_radiation": [0, 100, null, 300]
  },
  "daily": {
    "time": [1736726400],
    "sunrise": [1736752200],
    "sunset": [1736782200]
  }
}`

const openMeteoGeocodingResponse = `{
  "results": [
    {"id": 2950159, "name": "Berlin", "latitude": 52.52437, "longitude": 13.41053, "country": "Germany", "admin1": "Land Berlin"}
  ],
  "generationtime_ms": 0.9
}`

const openWeatherCurrentResponse = `{
  "coord": {"lon": 24.9384, "lat": 60.1699},
  "weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}],
  "main": {"temp": -0.5, "feels_like": -4.1, "pressure": 1014, "humidity": 88},
  "wind": {"speed": 4.12, "deg": 240},
  "clouds": {"all": 75},
  "dt": 1736769600,
  "sys": {"country": "FI", "sunrise": 1736750400, "sunset": 1736773200},
  "name": "Helsinki"
}`
