package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/metrics"
)

// RequestMetrics counts responses by status code. Errors returned down the
// chain have not been rendered yet, so their code is taken from the error.
func RequestMetrics(collector *metrics.Collector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		collector.RecordHTTPStatus(status)
		return err
	}
}
