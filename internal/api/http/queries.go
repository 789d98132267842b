package httpapi

import (
	"errors"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/energy-estimator/internal/energy"
	"github.com/i474232898/energy-estimator/internal/weather"
)

var validate = validator.New()

const (
	solarExample    = "/solar?watt=300&hours=5"
	windExample     = "/wind?speed=5&area=3"
	totalExample    = "/total?watt=300&hours=5&speed=5&area=3"
	weatherExample  = "/weather?city=Berlin&panel_area=1.6&panel_eff=0.2&rotor_area=3&rotor_eff=0.35"
	advancedExample = "/weather-advanced?city=Berlin"
	coordsExample   = "/weather-by-coords?lat=52.52&lon=13.41"
	forecastExample = "/forecast?city=Berlin"
)

type solarQuery struct {
	Watt  string `query:"watt" validate:"required,numeric"`
	Hours string `query:"hours" validate:"required,numeric"`
}

type windQuery struct {
	Speed string `query:"speed" validate:"required,numeric"`
	Area  string `query:"area" validate:"required,numeric"`
}

type totalQuery struct {
	Watt  string `query:"watt" validate:"required,numeric"`
	Hours string `query:"hours" validate:"required,numeric"`
	Speed string `query:"speed" validate:"required,numeric"`
	Area  string `query:"area" validate:"required,numeric"`
}

type cityQuery struct {
	City string `query:"city" validate:"required"`
}

type coordsQuery struct {
	Lat string `query:"lat" validate:"required,latitude"`
	Lon string `query:"lon" validate:"required,longitude"`
}

// weatherQuery takes either a city or a lat/lon pair plus optional equipment.
type weatherQuery struct {
	City          string `query:"city"`
	Lat           string `query:"lat" validate:"omitempty,latitude"`
	Lon           string `query:"lon" validate:"omitempty,longitude"`
	PanelArea     string `query:"panel_area" validate:"omitempty,numeric"`
	PanelEff      string `query:"panel_eff" validate:"omitempty,numeric"`
	RotorArea     string `query:"rotor_area" validate:"omitempty,numeric"`
	RotorDiameter string `query:"rotor_diameter" validate:"omitempty,numeric"`
	RotorEff      string `query:"rotor_eff" validate:"omitempty,numeric"`
}

// bindQuery parses the query string into dst and validates it. Fields that
// are absent produce a missing-parameter error listing required; anything
// else that fails validation is reported as invalid.
func bindQuery(c *fiber.Ctx, dst interface{}, example string, required ...string) error {
	if err := c.QueryParser(dst); err != nil {
		return invalidParams(example, err.Error())
	}

	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return missingParams(example, required...)
		}
		invalid = append(invalid, queryName(fe))
	}
	return invalidParams(example, invalid...)
}

// queryName maps a validation failure back to its query parameter name.
func queryName(fe validator.FieldError) string {
	names := map[string]string{
		"Watt": "watt", "Hours": "hours", "Speed": "speed", "Area": "area",
		"City": "city", "Lat": "lat", "Lon": "lon",
		"PanelArea": "panel_area", "PanelEff": "panel_eff",
		"RotorArea": "rotor_area", "RotorDiameter": "rotor_diameter", "RotorEff": "rotor_eff",
	}
	if n, ok := names[fe.StructField()]; ok {
		return n
	}
	return fe.Field()
}

// equipmentParams maps equipment validation namespaces to query parameters.
var equipmentParams = map[string]string{
	"Equipment.Panel.Area":       "panel_area",
	"Equipment.Panel.Efficiency": "panel_eff",
	"Equipment.Rotor.Area":       "rotor_area",
	"Equipment.Rotor.Diameter":   "rotor_diameter",
	"Equipment.Rotor.Efficiency": "rotor_eff",
}

func (q weatherQuery) toRequest(defaults energy.Equipment) (weather.EstimateRequest, error) {
	req := weather.EstimateRequest{City: q.City, Equipment: defaults}

	switch {
	case (q.Lat == "") != (q.Lon == ""):
		return req, missingParams(weatherExample, "lat", "lon")
	case q.Lat != "":
		lat, _ := strconv.ParseFloat(q.Lat, 64)
		lon, _ := strconv.ParseFloat(q.Lon, 64)
		req.Coords = &weather.Coordinates{Lat: lat, Lon: lon}
	case q.City == "":
		return req, missingParams(weatherExample, "city or lat+lon")
	}

	eq := &req.Equipment
	overrides := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"panel_area", q.PanelArea, &eq.Panel.Area},
		{"panel_eff", q.PanelEff, &eq.Panel.Efficiency},
		{"rotor_area", q.RotorArea, &eq.Rotor.Area},
		{"rotor_diameter", q.RotorDiameter, &eq.Rotor.Diameter},
		{"rotor_eff", q.RotorEff, &eq.Rotor.Efficiency},
	}
	for _, o := range overrides {
		if o.raw == "" {
			continue
		}
		v, err := parseFloats(o.raw)
		if err != nil {
			return req, invalidParams(weatherExample, o.name)
		}
		*o.dst = v[0]
	}

	if err := validate.Struct(req.Equipment); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			var fields []string
			for _, fe := range verrs {
				name, ok := equipmentParams[fe.Namespace()]
				if !ok {
					name = fe.Namespace()
				}
				fields = append(fields, name)
			}
			return req, invalidParams(weatherExample, fields...)
		}
		return req, err
	}
	return req, nil
}

func (q coordsQuery) toCoordinates() weather.Coordinates {
	lat, _ := strconv.ParseFloat(q.Lat, 64)
	lon, _ := strconv.ParseFloat(q.Lon, 64)
	return weather.Coordinates{Lat: lat, Lon: lon}
}

var errNotFinite = errors.New("value out of range")

// parseFloats parses each value, rejecting anything that does not fit a
// finite float64.
func parseFloats(raw ...string) ([]float64, error) {
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		if !isFinite(v) {
			return nil, errNotFinite
		}
		out[i] = v
	}
	return out, nil
}

func isFinite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}
