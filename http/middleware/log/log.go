// Package log implements a logging middleware
package log

import (
	"net/http"
	"strings"
	"time"

	"github.com/ob1/scannerd/log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Config struct {
	// Skipper defines a function to skip middleware.
	Skipper middleware.Skipper
	Logger  log.Logger
}

var DefaultConfig = Config{
	Skipper: func(c echo.Context) bool {
		switch c.Path() {
		case "/ping", "/metrics":
			return true
		}

		return false
	},
	Logger: log.New("HTTP"),
}

func New() echo.MiddlewareFunc {
	return NewWithConfig(DefaultConfig)
}

// NewWithConfig returns a middleware for logging HTTP requests. Failed
// requests are logged as warnings, requests that start or stop scanner
// processes as info, everything else as debug. Event streams are logged
// when they are opened and again when they are closed.
func NewWithConfig(config Config) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultConfig.Skipper
	}

	if config.Logger == nil {
		config.Logger = DefaultConfig.Logger
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			start := time.Now()

			req := c.Request()
			res := c.Response()

			path := req.URL.Path
			raw := req.URL.RawQuery

			stream := isStream(req)
			if stream {
				config.Logger.Info().WithFields(log.Fields{
					"client": c.RealIP(),
					"path":   path,
				}).Log("Stream opened")
			}

			if err := next(c); err != nil {
				c.Error(err)
			}

			latency := time.Since(start)

			if raw != "" {
				path = path + "?" + raw
			}

			logger := config.Logger.WithFields(log.Fields{
				"client":      c.RealIP(),
				"method":      req.Method,
				"path":        path,
				"status":      res.Status,
				"status_text": http.StatusText(res.Status),
				"size_bytes":  res.Size,
				"latency_ms":  latency.Milliseconds(),
				"user_agent":  req.Header.Get("User-Agent"),
			})

			if route := c.Path(); len(route) != 0 && route != req.URL.Path {
				logger = logger.WithField("route", route)
			}

			switch {
			case stream && res.Status < 400:
				logger.Info().Log("Stream closed")
			case res.Status >= 400:
				logger.Warn().Log("")
			case req.Method == http.MethodPost:
				logger.Info().Log("")
			default:
				logger.Debug().Log("")
			}

			return nil
		}
	}
}

// isStream returns whether the request asks for a WebSocket or a
// long-lived event stream.
func isStream(req *http.Request) bool {
	if strings.EqualFold(req.Header.Get(echo.HeaderUpgrade), "websocket") {
		return true
	}

	accept := req.Header.Get(echo.HeaderAccept)

	return strings.Contains(accept, "text/event-stream") || strings.Contains(accept, "application/x-json-stream")
}
