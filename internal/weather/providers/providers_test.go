package providers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/energy-estimator/internal/weather"
)

func TestOpenMeteoProvider_Fetch(t *testing.T) {
	opts, mock := newMockOptions(t, 0)
	mock.RegisterResponder(http.MethodGet, openMeteoForecastURL,
		httpmock.NewStringResponder(http.StatusOK, openMeteoForecastResponse))

	p := NewOpenMeteoProvider(opts)
	sample, err := p.Fetch(context.Background(), weather.Coordinates{Lat: 52.52, Lon: 13.41})

	require.NoError(t, err)
	assert.InDelta(t, 1.5, sample.TemperatureC, 0.001)
	assert.InDelta(t, 85, sample.HumidityPct, 0.001)
	assert.InDelta(t, 5, sample.WindSpeedMS, 0.001)
	assert.InDelta(t, 250, sample.WindDeg, 0.001)
	assert.InDelta(t, 40, sample.CloudCoverPct, 0.001)
	assert.InDelta(t, 500, sample.RadiationWM2, 0.001)
	assert.Equal(t, []float64{0, 100, 0, 300}, sample.HourlyRadiation)
	assert.Equal(t, int64(1736752200), sample.Sunrise.Unix())
	assert.Equal(t, int64(1736782200), sample.Sunset.Unix())
	assert.Equal(t, 1, mock.GetTotalCallCount())
}

func TestOpenMeteoProvider_Fetch_MissingField(t *testing.T) {
	opts, mock := newMockOptions(t, 0)
	mock.RegisterResponder(http.MethodGet, openMeteoForecastURL,
		httpmock.NewStringResponder(http.StatusOK, `{"current": {"time": 1736769600, "temperature_2m": 3}}`))

	_, err := NewOpenMeteoProvider(opts).Fetch(context.Background(), weather.Coordinates{Lat: 1, Lon: 2})

	require.Error(t, err)
	assert.ErrorIs(t, err, errMissingField)
}

func TestOpenMeteoProvider_Fetch_InvalidJSON(t *testing.T) {
	opts, mock := newMockOptions(t, 0)
	mock.RegisterResponder(http.MethodGet, openMeteoForecastURL,
		httpmock.NewStringResponder(http.StatusOK, `{invalid json`))

	_, err := NewOpenMeteoProvider(opts).Fetch(context.Background(), weather.Coordinates{})

	assert.ErrorIs(t, err, errInvalidJSON)
}

func TestOpenMeteoProvider_Fetch_NoRetryByDefault(t *testing.T) {
	opts, mock := newMockOptions(t, 0)
	mock.RegisterResponder(http.MethodGet, openMeteoForecastURL,
		httpmock.NewStringResponder(http.StatusServiceUnavailable, `{}`))

	_, err := NewOpenMeteoProvider(opts).Fetch(context.Background(), weather.Coordinates{})

	assert.ErrorIs(t, err, errServerError)
	assert.Equal(t, 1, mock.GetTotalCallCount())
}

func TestOpenMeteoProvider_Fetch_RetriesServerErrors(t *testing.T) {
	opts, mock := newMockOptions(t, 2)
	p := NewOpenMeteoProvider(opts)
	p.httpCfg.Backoff.InitialInterval = time.Millisecond
	p.httpCfg.Backoff.MaxInterval = time.Millisecond

	mock.RegisterResponder(http.MethodGet, openMeteoForecastURL,
		httpmock.ResponderFromMultipleResponses([]*http.Response{
			httpmock.NewStringResponse(http.StatusBadGateway, `{}`),
			httpmock.NewStringResponse(http.StatusOK, openMeteoForecastResponse),
		}))

	sample, err := p.Fetch(context.Background(), weather.Coordinates{})

	require.NoError(t, err)
	assert.InDelta(t, 500, sample.RadiationWM2, 0.001)
	assert.Equal(t, 2, mock.GetTotalCallCount())
}

func TestOpenMeteoGeocoder_Geocode(t *testing.T) {
	opts, mock := newMockOptions(t, 0)
	mock.RegisterResponderWithQuery(http.MethodGet, openMeteoGeocodingURL,
		map[string]string{"name": "Berlin", "count": "1", "language": "en", "format": "json"},
		httpmock.NewStringResponder(http.StatusOK, openMeteoGeocodingResponse))

	place, err := NewOpenMeteoGeocoder(opts).Geocode(context.Background(), "Berlin")

	require.NoError(t, err)
	assert.Equal(t, "Berlin, Land Berlin, Germany", place.Name)
	assert.InDelta(t, 52.52437, place.Lat, 0.00001)
	assert.InDelta(t, 13.41053, place.Lon, 0.00001)
}

func TestOpenMeteoGeocoder_Geocode_NoResults(t *testing.T) {
	opts, mock := newMockOptions(t, 0)
	mock.RegisterResponder(http.MethodGet, openMeteoGeocodingURL,
		httpmock.NewStringResponder(http.StatusOK, `{"generationtime_ms": 0.4}`))

	_, err := NewOpenMeteoGeocoder(opts).Geocode(context.Background(), "Nowhereville")

	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestOpenWeatherProvider_Current(t *testing.T) {
	opts, mock := newMockOptions(t, 0)
	mock.RegisterResponder(http.MethodGet, openWeatherBaseURL+"/weather",
		httpmock.NewStringResponder(http.StatusOK, openWeatherCurrentResponse))

	obs, err := NewOpenWeatherProvider(opts, "test-api-key").Current(context.Background(), "Helsinki")

	require.NoError(t, err)
	assert.Equal(t, "Helsinki", obs.Place.Name)
	assert.InDelta(t, 60.1699, obs.Place.Lat, 0.0001)
	assert.InDelta(t, -0.5, obs.Sample.TemperatureC, 0.001)
	assert.InDelta(t, 88, obs.Sample.HumidityPct, 0.001)
	assert.InDelta(t, 240, obs.Sample.WindDeg, 0.001)
	assert.InDelta(t, 75, obs.Sample.CloudCoverPct, 0.001)
	assert.Equal(t, int64(1736750400), obs.Sample.Sunrise.Unix())
	assert.JSONEq(t, openWeatherCurrentResponse, string(obs.Raw))
}

func TestOpenWeatherProvider_Current_NotFound(t *testing.T) {
	opts, mock := newMockOptions(t, 0)
	mock.RegisterResponder(http.MethodGet, openWeatherBaseURL+"/weather",
		httpmock.NewStringResponder(http.StatusNotFound, `{"cod": "404", "message": "city not found"}`))

	_, err := NewOpenWeatherProvider(opts, "test-api-key").Current(context.Background(), "Atlantis")

	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestOpenWeatherProvider_NoAPIKey(t *testing.T) {
	opts, mock := newMockOptions(t, 0)

	_, err := NewOpenWeatherProvider(opts, "").Forecast(context.Background(), "Helsinki")

	assert.ErrorIs(t, err, errNoAPIKey)
	assert.Equal(t, 0, mock.GetTotalCallCount())
}

func TestOpenWeatherProvider_HTTPError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       error
	}{
		{"bad_request", http.StatusBadRequest, errUnexpected},
		{"unauthorized", http.StatusUnauthorized, errUnexpected},
		{"too_many_requests", http.StatusTooManyRequests, errRateLimited},
		{"internal_server_error", http.StatusInternalServerError, errServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, mock := newMockOptions(t, 0)
			mock.RegisterResponder(http.MethodGet, openWeatherBaseURL+"/weather",
				httpmock.NewStringResponder(tt.statusCode, `{"cod": 401, "message": "Invalid API key"}`))

			_, err := NewOpenWeatherProvider(opts, "test-api-key").CurrentAt(context.Background(), weather.Coordinates{Lat: 1, Lon: 2})

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestOpenWeatherProvider_ForecastPassthrough(t *testing.T) {
	opts, mock := newMockOptions(t, 0)
	body := `{"cod": "200", "cnt": 1, "list": [{"dt": 1736769600, "main": {"temp": 2.1}}], "city": {"name": "Oslo"}}`
	mock.RegisterResponder(http.MethodGet, openWeatherBaseURL+"/forecast",
		httpmock.NewStringResponder(http.StatusOK, body))

	raw, err := NewOpenWeatherProvider(opts, "test-api-key").Forecast(context.Background(), "Oslo")

	require.NoError(t, err)
	assert.JSONEq(t, body, string(raw))
}

func TestDoRequestWithResilience_CircuitOpens(t *testing.T) {
	opts, mock := newMockOptions(t, 0)
	mock.RegisterResponder(http.MethodGet, openMeteoForecastURL,
		httpmock.NewStringResponder(http.StatusInternalServerError, `{}`))

	p := NewOpenMeteoProvider(opts)
	// gobreaker trips after more than five consecutive failures by default.
	for i := 0; i < 6; i++ {
		_, err := p.Fetch(context.Background(), weather.Coordinates{})
		require.ErrorIs(t, err, errServerError)
	}

	_, err := p.Fetch(context.Background(), weather.Coordinates{})
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, 6, mock.GetTotalCallCount())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Berlin, Germany", displayName("Berlin", "Berlin", "Germany"))
	assert.Equal(t, "Oslo, Norway", displayName("Oslo", " ", "Norway"))
}

func TestIsZeroResults(t *testing.T) {
	assert.True(t, isZeroResults(errors.New("ZERO_RESULTS")))
	assert.True(t, isZeroResults(errors.New("no results found")))
	assert.False(t, isZeroResults(errors.New("REQUEST_DENIED")))
}
