package energy

// IceLevel is an ordinal icing likelihood.
type IceLevel string

const (
	IceNone     IceLevel = "none"
	IceModerate IceLevel = "moderate"
	IceHigh     IceLevel = "high"
	IceVeryHigh IceLevel = "very-high"
)

// IceThreshold matches when the temperature is at or below MaxTemp and the
// humidity is at or above MinHumidity.
type IceThreshold struct {
	MaxTemp     float64
	MinHumidity float64
	Level       IceLevel
}

// DefaultIceThresholds returns the stock table, most severe first.
func DefaultIceThresholds() []IceThreshold {
	return []IceThreshold{
		{MaxTemp: 0, MinHumidity: 80, Level: IceVeryHigh},
		{MaxTemp: 2, MinHumidity: 80, Level: IceHigh},
		{MaxTemp: 4, MinHumidity: 70, Level: IceModerate},
	}
}

// IceRisk is the classification returned to clients.
type IceRisk struct {
	Risk  bool     `json:"risk"`
	Level IceLevel `json:"level"`
}

// IceRisk classifies a temperature (°C) and relative humidity (%).
// Thresholds are evaluated in order and the first match wins.
func (c Calculator) IceRisk(temp, humidity float64) IceRisk {
	for _, t := range c.IceThresholds {
		if temp <= t.MaxTemp && humidity >= t.MinHumidity {
			return IceRisk{Risk: t.Level != IceNone, Level: t.Level}
		}
	}
	return IceRisk{Risk: false, Level: IceNone}
}
