package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger attaches a request scoped logger to the request context. The request
// id is taken from X-Request-ID when the caller sent one.
func Logger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		requestID := c.Request().Header.Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, requestID)

		ctx := c.Request().Context()

		logger := log.With().Str("request_id", requestID).Logger()
		ctx = logger.WithContext(ctx)

		c.SetRequest(c.Request().WithContext(ctx))

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		latency := time.Since(start).Milliseconds()

		req := c.Request()
		res := c.Response()

		level := zerolog.InfoLevel
		if res.Status >= http.StatusInternalServerError {
			level = zerolog.ErrorLevel
		}

		log.Ctx(c.Request().Context()).WithLevel(level).
			Str("method", req.Method).
			Str("endpoint", req.URL.Path).
			Int("status", res.Status).
			Int64("latency", latency).
			Msg("Request processed")

		return nil
	}
}
