package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/bodega-stock/pkg/logger"
)

// HeaderRequestID cabecera de correlación. Si el cliente no la envía se genera una.
const HeaderRequestID = "X-Request-ID"

// RequestLogger registra una línea por petición (método, ruta, status, latencia, request id).
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(HeaderRequestID, reqID)

		err := c.Next()
		if err != nil {
			// el error handler de Fiber escribe la respuesta; se registra el status final
			_ = c.App().ErrorHandler(c, err)
		}

		status := c.Response().StatusCode()
		rl := log.WithStr("request_id", reqID)
		ev := rl.Info()
		if status >= fiber.StatusInternalServerError {
			ev = rl.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("http")
		return nil
	}
}
