package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	database "sifs_backend/internals/databases"
)

func BaseRoutes(app *fiber.App, db *gorm.DB, environment string) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("SIFS certificate service 🚀")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "disabled"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			dbStatus = "Connected"
			if err := database.Ping(ctx, db); err != nil {
				dbStatus = "Database connection error"
				serverStatus = "DOWN"
				httpStatus = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    environment,
		})
	})
}
