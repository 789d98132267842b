package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/i474232898/energy-estimator/internal/energy"
	"github.com/i474232898/energy-estimator/internal/metrics"
)

// DefaultTimeout bounds the upstream calls made for a single request.
const DefaultTimeout = 10 * time.Second

// Service composes geocoding, weather retrieval and the energy calculator.
// It holds no per-request state.
type Service struct {
	geocoder   Geocoder
	provider   Provider
	conditions ConditionsProvider
	calc       energy.Calculator
	timeout    time.Duration
}

// NewService creates a new Service. A non-positive timeout falls back to
// DefaultTimeout.
func NewService(geocoder Geocoder, provider Provider, conditions ConditionsProvider, calc energy.Calculator, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		geocoder:   geocoder,
		provider:   provider,
		conditions: conditions,
		calc:       calc,
		timeout:    timeout,
	}
}

// Calculator returns the tuning values the service computes with.
func (s *Service) Calculator() energy.Calculator {
	return s.calc
}

// Estimate resolves the requested location, fetches one weather sample for
// it and derives the solar, wind and icing estimates.
func (s *Service) Estimate(ctx context.Context, req EstimateRequest) (Estimate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	place, err := s.resolve(ctx, req)
	if err != nil {
		return Estimate{}, err
	}

	if s.provider == nil {
		return Estimate{}, fmt.Errorf("%w: no weather provider configured", ErrUpstream)
	}
	sample, err := s.provider.Fetch(ctx, place.Coordinates)
	if err != nil {
		log.Printf("ERROR: provider %s fetch failed for %s: %v", s.provider.Name(), place.Name, err)
		return Estimate{}, classify(err)
	}
	fillSunTimes(place.Coordinates, &sample)

	panel, rotor := req.Equipment.Panel, req.Equipment.Rotor
	hourly := sample.HourlyRadiation
	if len(hourly) == 0 {
		hourly = []float64{sample.RadiationWM2}
	}

	metrics.EstimatesComputed.WithLabelValues("weather").Inc()

	return Estimate{
		Location: place,
		Weather:  sample,
		SunHours: energy.SunHours(sample.Sunrise, sample.Sunset),
		Solar: SolarEstimate{
			EnergyWh:       s.calc.SolarEnergy(sample.RadiationWM2, panel),
			DailyEnergyKWh: s.calc.SolarEnergyDaily(hourly, panel),
			Panel:          panel,
		},
		Wind: WindEstimate{
			PowerW:         s.calc.WindPower(sample.WindSpeedMS, rotor),
			DailyEnergyKWh: s.calc.WindEnergyDaily(sample.WindSpeedMS, rotor),
			SweptArea:      energy.Round2(rotor.SweptArea()),
			AirDensity:     s.calc.AirDensity,
			Rotor:          rotor,
		},
		Ice: s.calc.IceRisk(sample.TemperatureC, sample.HumidityPct),
	}, nil
}

// Advanced fetches current conditions for a city and derives the icing,
// wind direction and solar outlook figures.
func (s *Service) Advanced(ctx context.Context, city string) (AdvancedReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.conditions == nil {
		return AdvancedReport{}, fmt.Errorf("%w: no conditions provider configured", ErrUpstream)
	}
	obs, err := s.conditions.Current(ctx, city)
	if err != nil {
		log.Printf("ERROR: provider %s current conditions failed for %s: %v", s.conditions.Name(), city, err)
		return AdvancedReport{}, classify(err)
	}

	sample := obs.Sample
	fillSunTimes(obs.Place.Coordinates, &sample)

	name := obs.Place.Name
	if name == "" {
		name = city
	}

	metrics.EstimatesComputed.WithLabelValues("weather-advanced").Inc()

	return AdvancedReport{
		City:        name,
		Temperature: energy.Round2(sample.TemperatureC),
		Humidity:    energy.Round2(sample.HumidityPct),
		IceRisk:     s.calc.IceRisk(sample.TemperatureC, sample.HumidityPct),
		Wind: WindReport{
			Speed:     energy.Round2(sample.WindSpeedMS),
			Deg:       sample.WindDeg,
			Direction: energy.WindDirection(sample.WindDeg),
		},
		Solar: SolarReport{
			SunHours:          energy.SunHours(sample.Sunrise, sample.Sunset),
			Clouds:            sample.CloudCoverPct,
			SolarIntensity:    energy.Round2(energy.SolarIntensity(sample.CloudCoverPct)),
			PanelOutputFactor: s.calc.PanelOutputFactor(sample.CloudCoverPct),
		},
		Raw: obs.Raw,
	}, nil
}

// CurrentAt returns the upstream current-conditions payload unchanged.
func (s *Service) CurrentAt(ctx context.Context, coords Coordinates) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.conditions == nil {
		return nil, fmt.Errorf("%w: no conditions provider configured", ErrUpstream)
	}
	raw, err := s.conditions.CurrentAt(ctx, coords)
	if err != nil {
		log.Printf("ERROR: provider %s current conditions failed for %.4f,%.4f: %v", s.conditions.Name(), coords.Lat, coords.Lon, err)
		return nil, classify(err)
	}
	return raw, nil
}

// Forecast returns the upstream multi-day forecast payload unchanged.
func (s *Service) Forecast(ctx context.Context, city string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.conditions == nil {
		return nil, fmt.Errorf("%w: no conditions provider configured", ErrUpstream)
	}
	raw, err := s.conditions.Forecast(ctx, city)
	if err != nil {
		log.Printf("ERROR: provider %s forecast failed for %s: %v", s.conditions.Name(), city, err)
		return nil, classify(err)
	}
	return raw, nil
}

func (s *Service) resolve(ctx context.Context, req EstimateRequest) (Place, error) {
	if req.Coords != nil {
		return Place{
			Name:        fmt.Sprintf("%.4f,%.4f", req.Coords.Lat, req.Coords.Lon),
			Coordinates: *req.Coords,
		}, nil
	}

	city := strings.TrimSpace(req.City)
	if city == "" {
		return Place{}, fmt.Errorf("%w: empty place name", ErrLocationNotFound)
	}
	if s.geocoder == nil {
		return Place{}, fmt.Errorf("%w: no geocoder configured", ErrUpstream)
	}

	place, err := s.geocoder.Geocode(ctx, city)
	if err != nil {
		if !errors.Is(err, ErrLocationNotFound) {
			log.Printf("ERROR: geocoder %s failed for %q: %v", s.geocoder.Name(), city, err)
		}
		return Place{}, classify(err)
	}
	return place, nil
}

// classify keeps ErrLocationNotFound and folds everything else into
// ErrUpstream.
func classify(err error) error {
	if errors.Is(err, ErrLocationNotFound) || errors.Is(err, ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
