package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/energy-estimator/internal/energy"
	"github.com/i474232898/energy-estimator/internal/metrics"
	"github.com/i474232898/energy-estimator/internal/store"
	"github.com/i474232898/energy-estimator/internal/weather"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Service  *weather.Service
	Defaults energy.Equipment
	// Probes is optional; /health omits upstream state without it.
	Probes *store.MemoryStore
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		withHistory := c.QueryBool("history")
		upstreams := fiber.Map{}
		history := fiber.Map{}
		if deps.Probes != nil {
			for _, name := range deps.Probes.Upstreams() {
				if latest, err := deps.Probes.GetLatest(name); err == nil {
					upstreams[name] = latest
				}
				if !withHistory {
					continue
				}
				if results, err := deps.Probes.GetHistory(name); err == nil {
					history[name] = results
				}
			}
		}

		body := fiber.Map{
			"status":    "ok",
			"service":   "energy-estimator",
			"upstreams": upstreams,
		}
		if withHistory {
			body["history"] = history
		}
		return c.JSON(body)
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/solar", func(c *fiber.Ctx) error {
		var q solarQuery
		if err := bindQuery(c, &q, solarExample, "watt", "hours"); err != nil {
			return err
		}
		v, err := parseFloats(q.Watt, q.Hours)
		if err != nil {
			return invalidParams(solarExample, "watt", "hours")
		}
		watt, hours := v[0], v[1]
		result := energy.SimpleSolar(watt, hours)
		if !isFinite(result) {
			return invalidParams(solarExample, "watt", "hours")
		}

		metrics.EstimatesComputed.WithLabelValues("solar").Inc()
		return c.JSON(fiber.Map{
			"watt":    watt,
			"hours":   hours,
			"energy":  result,
			"message": "solar calculation ok",
		})
	})

	app.Get("/wind", func(c *fiber.Ctx) error {
		var q windQuery
		if err := bindQuery(c, &q, windExample, "speed", "area"); err != nil {
			return err
		}
		v, err := parseFloats(q.Speed, q.Area)
		if err != nil {
			return invalidParams(windExample, "speed", "area")
		}
		speed, area := v[0], v[1]
		result := energy.SimpleWind(speed, area)
		if !isFinite(result) {
			return invalidParams(windExample, "speed", "area")
		}

		metrics.EstimatesComputed.WithLabelValues("wind").Inc()
		return c.JSON(fiber.Map{
			"speed":   speed,
			"area":    area,
			"power":   result,
			"message": "wind calculation ok",
		})
	})

	app.Get("/total", func(c *fiber.Ctx) error {
		var q totalQuery
		if err := bindQuery(c, &q, totalExample, "watt", "hours", "speed", "area"); err != nil {
			return err
		}
		v, err := parseFloats(q.Watt, q.Hours, q.Speed, q.Area)
		if err != nil {
			return invalidParams(totalExample, "watt", "hours", "speed", "area")
		}
		watt, hours, speed, area := v[0], v[1], v[2], v[3]

		solar := energy.SimpleSolar(watt, hours)
		wind := energy.SimpleWind(speed, area)
		if !isFinite(solar, wind, solar+wind) {
			return invalidParams(totalExample, "watt", "hours", "speed", "area")
		}

		metrics.EstimatesComputed.WithLabelValues("total").Inc()
		return c.JSON(fiber.Map{
			"solar": fiber.Map{
				"watt":   watt,
				"hours":  hours,
				"energy": solar,
			},
			"wind": fiber.Map{
				"speed": speed,
				"area":  area,
				"power": wind,
			},
			"total":   solar + wind,
			"message": "total calculation ok",
		})
	})

	app.Get("/weather", func(c *fiber.Ctx) error {
		var q weatherQuery
		if err := bindQuery(c, &q, weatherExample); err != nil {
			return err
		}
		req, err := q.toRequest(deps.Defaults)
		if err != nil {
			return err
		}

		estimate, err := deps.Service.Estimate(c.UserContext(), req)
		if err != nil {
			return err
		}
		if !isFinite(estimate.Solar.EnergyWh, estimate.Solar.DailyEnergyKWh,
			estimate.Wind.PowerW, estimate.Wind.DailyEnergyKWh, estimate.Wind.SweptArea) {
			return invalidParams(weatherExample, "panel_area", "rotor_area", "rotor_diameter")
		}
		return c.JSON(estimate)
	})

	app.Get("/weather-advanced", func(c *fiber.Ctx) error {
		var q cityQuery
		if err := bindQuery(c, &q, advancedExample, "city"); err != nil {
			return err
		}

		report, err := deps.Service.Advanced(c.UserContext(), q.City)
		if err != nil {
			return err
		}
		return c.JSON(report)
	})

	app.Get("/weather-by-coords", func(c *fiber.Ctx) error {
		var q coordsQuery
		if err := bindQuery(c, &q, coordsExample, "lat", "lon"); err != nil {
			return err
		}

		raw, err := deps.Service.CurrentAt(c.UserContext(), q.toCoordinates())
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(raw)
	})

	app.Get("/forecast", func(c *fiber.Ctx) error {
		var q cityQuery
		if err := bindQuery(c, &q, forecastExample, "city"); err != nil {
			return err
		}

		raw, err := deps.Service.Forecast(c.UserContext(), q.City)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(raw)
	})
}
