package energy

import "math"

// Stock equipment used when the caller does not supply its own.
const (
	DefaultPanelArea       = 1.6
	DefaultPanelEfficiency = 0.20
	DefaultRotorArea       = 3
	DefaultRotorEfficiency = 0.35
)

// Panel describes a photovoltaic panel.
type Panel struct {
	Area       float64 `json:"area" validate:"gt=0"`
	Efficiency float64 `json:"efficiency" validate:"gt=0,lte=1"`
}

// Rotor describes a wind turbine. When Diameter is set it takes precedence
// over Area.
type Rotor struct {
	Area       float64 `json:"area" validate:"gte=0"`
	Diameter   float64 `json:"diameter,omitempty" validate:"gte=0"`
	Efficiency float64 `json:"efficiency" validate:"gt=0,lte=1"`
}

// SweptArea returns the circular area traced by the blades in m².
func (r Rotor) SweptArea() float64 {
	if r.Diameter > 0 {
		radius := r.Diameter / 2
		return math.Pi * radius * radius
	}
	return r.Area
}

// Equipment is the full profile an estimate is computed for.
type Equipment struct {
	Panel Panel `json:"panel"`
	Rotor Rotor `json:"rotor"`
}

// DefaultEquipment returns the stock panel and rotor.
func DefaultEquipment() Equipment {
	return Equipment{
		Panel: Panel{Area: DefaultPanelArea, Efficiency: DefaultPanelEfficiency},
		Rotor: Rotor{Area: DefaultRotorArea, Efficiency: DefaultRotorEfficiency},
	}
}
