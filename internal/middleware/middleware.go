package middleware

import (
	"HerbPass/internal/api/presenters"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

type (
	Middleware interface {
		CORSMiddleware() fiber.Handler
		RequestID() fiber.Handler
		RequestLogger() fiber.Handler
	}

	middleware struct {
		logger *zap.Logger
	}
)

func NewMiddleware(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &middleware{logger: logger}
}

// CORSMiddleware is open to every origin: the verification page is reached by
// scanning a printed locator from any device.
func (m *middleware) CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	})
}

func (m *middleware) RequestID() fiber.Handler {
	return requestid.New()
}

func (m *middleware) RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the app error handler has not rendered err yet
			status = fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if id, ok := c.Locals("requestid").(string); ok {
			fields = append(fields, zap.String("request_id", id))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		if cause, ok := c.Locals(presenters.ErrorLocal).(error); ok {
			fields = append(fields, zap.NamedError("cause", cause))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			m.logger.Error("request failed", fields...)
		case status >= fiber.StatusBadRequest:
			m.logger.Warn("request rejected", fields...)
		default:
			m.logger.Debug("request served", fields...)
		}
		return err
	}
}
