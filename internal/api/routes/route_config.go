package routes

import (
	"HerbPass/domain"
	"HerbPass/internal/api/handlers"
	"HerbPass/internal/api/presenters"
	"HerbPass/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App             *fiber.App
	BatchHandler    handlers.BatchHandler
	LedgerHandler   handlers.LedgerHandler
	ArtifactHandler handlers.ArtifactHandler
	Middleware      middleware.Middleware
	// Metrics serves the Prometheus exposition; nil disables /metrics.
	Metrics fiber.Handler
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.RequestID())
	c.App.Use(c.Middleware.RequestLogger())
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Farmer()
	c.Lab()
	c.Pharma()
	c.Consumer()
	c.GuestRoute()
}

func (c *Config) Farmer() {
	farmer := c.App.Group("/api/v1/farmer")
	farmer.Post("/batches", c.BatchHandler.CreateBatch)
}

func (c *Config) Lab() {
	lab := c.App.Group("/api/v1/lab")
	lab.Post("/reports", c.LedgerHandler.AppendLabReport)
	lab.Get("/reports/:id/verify", c.LedgerHandler.VerifyLabReport)
}

func (c *Config) Pharma() {
	pharma := c.App.Group("/api/v1/pharma")
	pharma.Post("/statuses", c.LedgerHandler.AppendStatus)
	pharma.Get("/statuses/:batchId/current", c.LedgerHandler.GetCurrentStatus)
}

// Consumer routes are what a printed locator resolves to.
func (c *Config) Consumer() {
	c.App.Get("/batch/:id", c.BatchHandler.GetBatchView)
	c.App.Get("/api/v1/batches/code/:code", c.BatchHandler.GetBatchViewByCode)
	c.App.Get("/uploads/:ref", c.ArtifactHandler.FetchArtifact)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessPing)
	})
	if c.Metrics != nil {
		c.App.Get("/metrics", c.Metrics)
	}
}
