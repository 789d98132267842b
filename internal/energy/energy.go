// Package energy holds the pure solar, wind and icing calculations used by
// every estimate endpoint. Nothing in here performs I/O.
package energy

import "math"

const (
	// DefaultAirDensity is the sea level air density in kg/m³.
	DefaultAirDensity = 1.225

	// DefaultPanelDerating approximates angle and soiling losses.
	DefaultPanelDerating = 0.8

	hoursPerDay = 24
)

// Calculator carries the tuning values used by the derived metrics.
// The zero value is not useful; start from Default.
type Calculator struct {
	AirDensity    float64
	PanelDerating float64
	IceThresholds []IceThreshold
}

// Default returns a Calculator with the stock tuning values.
func Default() Calculator {
	return Calculator{
		AirDensity:    DefaultAirDensity,
		PanelDerating: DefaultPanelDerating,
		IceThresholds: DefaultIceThresholds(),
	}
}

// SimpleSolar returns the energy produced by a constant load over hours.
func SimpleSolar(watt, hours float64) float64 {
	return watt * hours
}

// SimpleWind is the textbook 0.5·A·v³ estimate without density or efficiency.
func SimpleWind(speed, area float64) float64 {
	return 0.5 * area * math.Pow(speed, 3)
}

// SolarEnergy converts an irradiance sample in W/m² into Wh over one hour.
func (c Calculator) SolarEnergy(radiation float64, p Panel) float64 {
	return Round2(radiation * p.Area * p.Efficiency)
}

// SolarEnergyDaily sums up to 24 hourly irradiance samples and returns kWh.
func (c Calculator) SolarEnergyDaily(hourly []float64, p Panel) float64 {
	if len(hourly) > hoursPerDay {
		hourly = hourly[:hoursPerDay]
	}
	var sum float64
	for _, r := range hourly {
		sum += r
	}
	return Round2(sum * p.Area * p.Efficiency / 1000)
}

// WindPower returns the rotor output in W for a wind speed in m/s.
func (c Calculator) WindPower(speed float64, r Rotor) float64 {
	return Round2(c.windPower(speed, r))
}

// WindEnergyDaily assumes the instantaneous power holds for a full day.
func (c Calculator) WindEnergyDaily(speed float64, r Rotor) float64 {
	return Round2(c.windPower(speed, r) * hoursPerDay / 1000)
}

func (c Calculator) windPower(speed float64, r Rotor) float64 {
	return 0.5 * c.AirDensity * r.SweptArea() * math.Pow(speed, 3) * r.Efficiency
}

// SolarIntensity maps cloud cover in percent to a 0..1 clear-sky fraction.
func SolarIntensity(cloudCover float64) float64 {
	v := (100 - cloudCover) / 100
	return math.Max(0, math.Min(1, v))
}

// PanelOutputFactor derates the solar intensity for real panel losses.
func (c Calculator) PanelOutputFactor(cloudCover float64) float64 {
	return Round2(SolarIntensity(cloudCover) * c.PanelDerating)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
