package main

import (
	_ "embed"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"cachelock-service/internal/infra/discovery"
)

//go:embed data.json
var jsonData []byte

type registry struct {
	Connections map[string]discovery.ConnectionResponse `json:"connections"`
	Credentials map[string]discovery.CredentialResponse `json:"credentials"`
}

func main() {
	var reg registry
	if err := json.Unmarshal(jsonData, &reg); err != nil {
		log.Fatalf("[Mock Discovery] invalid data.json: %v", err)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	app.Get("/api/v1/connections/:key", func(c *fiber.Ctx) error {
		// Simulate network latency (10-60ms)
		time.Sleep(time.Duration(10+time.Now().UnixNano()%50) * time.Millisecond)

		key := c.Params("key")
		record, ok := reg.Connections[key]
		log.Printf("[Mock Discovery] %s %s request_id=%s found=%t", c.Method(), c.Path(), c.Get(fiber.HeaderXRequestID), ok)
		if !ok {
			return c.SendStatus(fiber.StatusNotFound)
		}

		record.Key = key
		return c.JSON(record)
	})

	app.Get("/api/v1/credentials/:key", func(c *fiber.Ctx) error {
		key := c.Params("key")
		record, ok := reg.Credentials[key]
		log.Printf("[Mock Discovery] %s %s request_id=%s found=%t", c.Method(), c.Path(), c.Get(fiber.HeaderXRequestID), ok)
		if !ok {
			return c.SendStatus(fiber.StatusNotFound)
		}

		record.Key = key
		return c.JSON(record)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	addr := ":8081"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	log.Printf("Mock Discovery running on %s", addr)
	log.Fatal(app.Listen(addr))
}
