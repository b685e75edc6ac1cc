package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/climate-api/internal/climate"
)

// AppOptions configures the fiber application.
type AppOptions struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp builds the fiber app with the shared error handler and middleware.
func NewApp(logger *zap.SugaredLogger, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "climate-api",
		DisableStartupMessage: true,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		ErrorHandler:          NewErrorHandler(logger),
	})

	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(requestLogger(logger))
	app.Use(recover.New())

	return app
}

// NewErrorHandler renders every error as {"error": true, "message": ...}.
// Server-side failures get a fixed message; the full error goes to the log.
func NewErrorHandler(logger *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)
		msg := err.Error()
		if code >= fiber.StatusInternalServerError {
			logger.Errorw("request failed",
				"requestId", c.Locals("requestid"),
				"path", c.Path(),
				"status", code,
				"error", err,
			)
			msg = serverMessage(code)
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": msg,
		})
	}
}

func serverMessage(code int) string {
	switch code {
	case fiber.StatusServiceUnavailable:
		return "climate data store unavailable"
	case fiber.StatusGatewayTimeout:
		return "climate data query timed out"
	default:
		return "failed to fetch climate data"
	}
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, climate.ErrMalformedDate):
		return fiber.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, climate.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func requestLogger(logger *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}

		logger.Infow("http request",
			"requestId", c.Locals("requestid"),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"durationMs", time.Since(start).Milliseconds(),
		)
		return err
	}
}
