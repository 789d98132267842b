package weather

import (
	"time"

	"github.com/sj14/astral/pkg/astral"
)

// fillSunTimes computes sunrise and sunset for the sample date when the
// provider left them out. Polar day or night leaves them zero.
func fillSunTimes(coords Coordinates, s *Sample) {
	if !s.Sunrise.IsZero() && !s.Sunset.IsZero() {
		return
	}

	date := s.Time
	if date.IsZero() {
		date = time.Now().UTC()
	}
	observer := astral.Observer{Latitude: coords.Lat, Longitude: coords.Lon}

	sunrise, err := astral.Sunrise(observer, date)
	if err != nil {
		return
	}
	sunset, err := astral.Sunset(observer, date)
	if err != nil {
		return
	}
	s.Sunrise = sunrise.UTC()
	s.Sunset = sunset.UTC()
}
