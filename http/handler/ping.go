package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PingHandler answers liveness probes.
type PingHandler struct {
	alive func() error
}

// NewPing returns a PingHandler. The alive function reports whether the
// service is still able to take requests. A nil function means always.
func NewPing(alive func() error) *PingHandler {
	return &PingHandler{
		alive: alive,
	}
}

// Ping returns pong
// @Summary Liveliness check
// @Description Liveliness check. Returns 503 once the coordinator has shut down.
// @ID ping
// @Produce text/plain
// @Success 200 {string} string "pong"
// @Failure 503 {string} string
// @Router /ping [get]
func (p *PingHandler) Ping(c echo.Context) error {
	if p.alive != nil {
		if err := p.alive(); err != nil {
			return c.String(http.StatusServiceUnavailable, err.Error())
		}
	}

	return c.String(http.StatusOK, "pong")
}
