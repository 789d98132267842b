package weather

import (
	"encoding/json"
	"time"

	"github.com/i474232898/energy-estimator/internal/energy"
)

// Coordinates is a point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Place is a resolved location.
type Place struct {
	Name string `json:"name"`
	Coordinates
}

// Sample is a single point-in-time weather reading. HourlyRadiation holds
// the upcoming hourly shortwave radiation series when the provider has one.
type Sample struct {
	Time            time.Time `json:"time"`
	TemperatureC    float64   `json:"temperature"`
	HumidityPct     float64   `json:"humidity"`
	WindSpeedMS     float64   `json:"windSpeed"`
	WindDeg         float64   `json:"windDeg"`
	CloudCoverPct   float64   `json:"cloudCover"`
	RadiationWM2    float64   `json:"radiation"`
	HourlyRadiation []float64 `json:"-"`
	Sunrise         time.Time `json:"sunrise"`
	Sunset          time.Time `json:"sunset"`
}

// Observation is a current-conditions reading together with the raw
// upstream payload it was decoded from.
type Observation struct {
	Place  Place           `json:"place"`
	Sample Sample          `json:"sample"`
	Raw    json.RawMessage `json:"-"`
}

// EstimateRequest identifies the location and equipment of a /weather call.
// Either City or Coords must be set.
type EstimateRequest struct {
	City      string
	Coords    *Coordinates
	Equipment energy.Equipment
}

// SolarEstimate is the panel output for the sampled hour and the next day.
type SolarEstimate struct {
	EnergyWh       float64      `json:"energyWh"`
	DailyEnergyKWh float64      `json:"dailyEnergyKWh"`
	Panel          energy.Panel `json:"panel"`
}

// WindEstimate is the rotor output for the sampled wind speed.
type WindEstimate struct {
	PowerW         float64      `json:"powerW"`
	DailyEnergyKWh float64      `json:"dailyEnergyKWh"`
	SweptArea      float64      `json:"sweptArea"`
	AirDensity     float64      `json:"airDensity"`
	Rotor          energy.Rotor `json:"rotor"`
}

// Estimate is the response shape of /weather.
type Estimate struct {
	Location Place          `json:"location"`
	Weather  Sample         `json:"weather"`
	SunHours float64        `json:"sunHours"`
	Solar    SolarEstimate  `json:"solar"`
	Wind     WindEstimate   `json:"wind"`
	Ice      energy.IceRisk `json:"ice"`
}

// WindReport describes the wind of an advanced report.
type WindReport struct {
	Speed     float64 `json:"speed"`
	Deg       float64 `json:"deg"`
	Direction string  `json:"direction"`
}

// SolarReport describes the solar outlook of an advanced report.
type SolarReport struct {
	SunHours          float64 `json:"sunHours"`
	Clouds            float64 `json:"clouds"`
	SolarIntensity    float64 `json:"solarIntensity"`
	PanelOutputFactor float64 `json:"panelOutputFactor"`
}

// AdvancedReport is the response shape of /weather-advanced.
type AdvancedReport struct {
	City        string          `json:"city"`
	Temperature float64         `json:"temperature"`
	Humidity    float64         `json:"humidity"`
	IceRisk     energy.IceRisk  `json:"iceRisk"`
	Wind        WindReport      `json:"wind"`
	Solar       SolarReport     `json:"solar"`
	Raw         json.RawMessage `json:"raw"`
}
