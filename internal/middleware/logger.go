package middleware

import (
	"runtime/debug"
	"time"

	"task-manager/internal/api/response"
	"task-manager/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler memulihkan panic dan mencatat setiap request beserta status
// dan latency-nya.
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorLogger.Error("Recovered from panic",
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
					zap.String("path", c.Path()),
				)
				err = response.Fail(c, fiber.StatusInternalServerError, response.CodeInternal, "Internal server error")
			}
			logRequest(c, time.Since(start))
		}()

		// error diselesaikan di sini supaya status yang dicatat sudah final
		if chainErr := c.Next(); chainErr != nil {
			if handlerErr := c.App().ErrorHandler(c, chainErr); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		return nil
	}
}

func logRequest(c *fiber.Ctx, latency time.Duration) {
	status := c.Response().StatusCode()
	// path tanpa query: token WebSocket dikirim lewat query string
	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.String("ip", c.IP()),
		zap.Duration("latency", latency),
	}
	switch {
	case status >= fiber.StatusInternalServerError:
		logger.RequestLogger.Error("Request failed", fields...)
	case status >= fiber.StatusBadRequest:
		logger.RequestLogger.Warn("Request rejected", fields...)
	default:
		logger.RequestLogger.Info("Request completed", fields...)
	}
}
