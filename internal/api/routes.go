package api

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// SetupRoutes registers middleware and the v1 API. promHandler may be nil.
func SetupRoutes(app *fiber.App, handler *Handler, promHandler http.Handler, log *zap.Logger) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,HEAD,DELETE",
	}))

	// Custom logger middleware
	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	if promHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promHandler))
	}

	// API v1 routes
	api := app.Group("/api/v1")

	api.Get("/health", handler.GetHealth)
	api.Get("/metrics", handler.GetMetrics)
	api.Get("/cities", handler.GetCities)
	api.Put("/cities", handler.UpdateCities)
	api.Post("/scheduler/run", handler.RunScheduler)

	api.Get("/weather", handler.GetWeather)

	sessions := api.Group("/sessions")
	sessions.Post("/", handler.CreateSession)
	sessions.Get("/:id", handler.GetSession)
	sessions.Delete("/:id", handler.DeleteSession)
	sessions.Post("/:id/search", handler.Search)
	sessions.Post("/:id/geolocation", handler.Geolocation)
	sessions.Delete("/:id/view", handler.ClearView)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Endpoint not found",
			"path":    c.Path(),
			"success": false,
		})
	})

	log.Info("Routes registered")
}
