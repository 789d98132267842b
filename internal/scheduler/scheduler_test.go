package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/energy-estimator/internal/store"
	"github.com/i474232898/energy-estimator/internal/weather"
)

type stubGeocoder struct {
	err   error
	calls []string
}

func (g *stubGeocoder) Name() string { return "stub-geocoder" }

func (g *stubGeocoder) Geocode(_ context.Context, name string) (weather.Place, error) {
	g.calls = append(g.calls, name)
	return weather.Place{Name: name}, g.err
}

func TestRunOnce_RecordsResults(t *testing.T) {
	st := store.NewMemoryStore(10, time.Hour)
	geo := &stubGeocoder{}
	failing := Probe{
		Name:  "broken",
		Check: func(context.Context) error { return errors.New("connection refused") },
	}

	s := New([]Probe{GeocoderProbe(geo, "Berlin"), failing}, time.Minute, st)
	s.RunOnce(context.Background())

	ok, err := st.GetLatest("stub-geocoder")
	require.NoError(t, err)
	assert.True(t, ok.OK)
	assert.Empty(t, ok.Error)
	assert.Equal(t, []string{"Berlin"}, geo.calls)

	bad, err := st.GetLatest("broken")
	require.NoError(t, err)
	assert.False(t, bad.OK)
	assert.Equal(t, "connection refused", bad.Error)
}

func TestStart_DisabledWithoutInterval(t *testing.T) {
	st := store.NewMemoryStore(10, time.Hour)
	s := New([]Probe{GeocoderProbe(&stubGeocoder{}, "Berlin")}, 0, st)

	require.NoError(t, s.Start())
	s.Stop()

	assert.Empty(t, st.Upstreams())
}
