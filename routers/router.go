package routers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/m-ce-m1/html-bot/controllers"
	"github.com/m-ce-m1/html-bot/middlewares"
)

// SetupRoutes registers the admin HTTP API. Everything except health and
// login sits behind the JWT middleware.
func SetupRoutes(app *fiber.App, jwtSecret string) {
	api := app.Group("/api")
	api.Get("/health", controllers.HealthCheck)

	auth := api.Group("/auth")
	auth.Post("/login", controllers.LoginAdmin)

	protected := middlewares.Protected(jwtSecret)

	topics := api.Group("/topics", protected)
	topics.Get("/", controllers.GetTopics)
	topics.Post("/", controllers.CreateTopic)
	topics.Patch("/:id/availability", controllers.UpdateTopicAvailability)
	topics.Patch("/:id/attempt-limit", controllers.UpdateTopicLimit)

	api.Get("/attempts", protected, controllers.GetAttempts)

	stats := api.Group("/stats", protected)
	stats.Get("/summary", controllers.GetStatsSummary)
	stats.Get("/export", controllers.ExportStats)

	app.Use(middlewares.NotFound)
}
