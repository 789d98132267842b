package energy

import (
	"math"
	"time"
)

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// WindDirection maps a bearing in degrees to one of eight compass labels.
func WindDirection(deg float64) string {
	idx := int(math.Round(deg/45)) % 8
	if idx < 0 {
		idx += 8
	}
	return compassPoints[idx]
}

// SunHours returns the daylight length in hours, rounded to one decimal.
// Missing or inverted times yield zero.
func SunHours(sunrise, sunset time.Time) float64 {
	if sunrise.IsZero() || sunset.IsZero() || !sunset.After(sunrise) {
		return 0
	}
	return Round1(sunset.Sub(sunrise).Seconds() / 3600)
}
