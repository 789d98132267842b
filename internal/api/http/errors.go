package httpapi

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/energy-estimator/internal/weather"
)

// paramError is a missing or malformed query parameter.
type paramError struct {
	Message  string
	Example  string
	Required []string
}

func (e *paramError) Error() string {
	return e.Message
}

// ErrorHandler renders every handler error as a JSON body with an "error"
// field and the matching status code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var pe *paramError
	if errors.As(err, &pe) {
		body := fiber.Map{
			"error":   pe.Message,
			"example": pe.Example,
		}
		if len(pe.Required) > 0 {
			body["required"] = pe.Required
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	if errors.Is(err, weather.ErrLocationNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Location not found"})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	log.Printf("ERROR: %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
}

func missingParams(example string, required ...string) *paramError {
	return &paramError{
		Message:  "Missing one or more parameters",
		Example:  example,
		Required: required,
	}
}

func invalidParams(example string, fields ...string) *paramError {
	return &paramError{
		Message: "Invalid value for: " + strings.Join(fields, ", "),
		Example: example,
	}
}
