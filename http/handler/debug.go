package handler

import (
	"net/http"
	"net/http/pprof"

	"github.com/labstack/echo/v4"
)

// NewMetrics returns an echo handler serving the prometheus registry
// behind h.
// @Summary Prometheus metrics
// @Description Prometheus metrics
// @ID metrics
// @Produce text/plain
// @Success 200 {string} string
// @Router /metrics [get]
func NewMetrics(h http.Handler) echo.HandlerFunc {
	return echo.WrapHandler(h)
}

// RegisterProfiling adds the pprof endpoints to the group.
// @Summary Retrieve profiling data from the application
// @Description Retrieve profiling data from the application
// @ID profiling
// @Produce text/html
// @Success 200 {string} string
// @Router /profiling [get]
func RegisterProfiling(g *echo.Group) {
	g.GET("/", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	g.GET("/cmdline", echo.WrapHandler(http.HandlerFunc(pprof.Cmdline)))
	g.GET("/profile", echo.WrapHandler(http.HandlerFunc(pprof.Profile)))
	g.Match([]string{http.MethodGet, http.MethodPost}, "/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
	g.GET("/trace", echo.WrapHandler(http.HandlerFunc(pprof.Trace)))

	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		g.GET("/"+name, echo.WrapHandler(pprof.Handler(name)))
	}
}
