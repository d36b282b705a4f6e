package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS returns a permissive CORS middleware for the REST API.
func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,PUT,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept," + fiber.HeaderXRequestID,
		ExposeHeaders: fiber.HeaderXRequestID,
	})
}
