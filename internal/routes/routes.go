package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"push-notifications-relay/internal/controller"
)

// Register attaches all HTTP routes to the Fiber app.
func Register(app *fiber.App, reportController controller.ReportController, rdb *redis.Client) {
	reports := app.Group("/v1/reports")
	reports.Post("/delivered", reportController.ReportDelivery)
	reports.Post("/opened", reportController.ReportOpen)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := rdb.Ping(c.Context()).Err(); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "redis unreachable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
