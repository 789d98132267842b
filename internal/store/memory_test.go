package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetLatest(t *testing.T) {
	s := NewMemoryStore(0, 0)

	_, err := s.GetLatest("openmeteo")
	require.ErrorIs(t, err, ErrNotFound)

	now := time.Now().UTC()
	s.SaveResult(ProbeResult{Upstream: "openmeteo", CheckedAt: now.Add(-time.Minute), OK: false, Error: "boom"})
	s.SaveResult(ProbeResult{Upstream: "openmeteo", CheckedAt: now, OK: true})

	latest, err := s.GetLatest("openmeteo")
	require.NoError(t, err)
	assert.True(t, latest.OK)
	assert.Equal(t, now, latest.CheckedAt)
}

func TestMemoryStore_RetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		s.SaveResult(ProbeResult{Upstream: "geo", CheckedAt: now.Add(time.Duration(i) * time.Second)})
	}

	history, err := s.GetHistory("geo")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, now.Add(3*time.Second), history[0].CheckedAt)
	assert.Equal(t, now.Add(4*time.Second), history[1].CheckedAt)
}

func TestMemoryStore_RetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)
	now := time.Now().UTC()

	s.SaveResult(ProbeResult{Upstream: "geo", CheckedAt: now.Add(-3 * time.Hour)})
	s.SaveResult(ProbeResult{Upstream: "geo", CheckedAt: now.Add(-2 * time.Hour)})
	s.SaveResult(ProbeResult{Upstream: "geo", CheckedAt: now})

	history, err := s.GetHistory("geo")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, now, history[0].CheckedAt)

	// A lone stale result is still the latest known state.
	s.SaveResult(ProbeResult{Upstream: "stale", CheckedAt: now.Add(-5 * time.Hour)})
	_, err = s.GetLatest("stale")
	assert.NoError(t, err)
}

func TestMemoryStore_Upstreams(t *testing.T) {
	s := NewMemoryStore(0, 0)
	s.SaveResult(ProbeResult{Upstream: "b"})
	s.SaveResult(ProbeResult{Upstream: "a"})

	assert.Equal(t, []string{"a", "b"}, s.Upstreams())
}
