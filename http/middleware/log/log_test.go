package log

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ob1/scannerd/log"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestLogLevels(t *testing.T) {
	buffer := log.NewBufferWriter(log.Ldebug, 10)

	router := echo.New()
	router.Use(NewWithConfig(Config{
		Logger: log.New("HTTP").WithOutput(buffer),
	}))

	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	fail := func(c echo.Context) error { return c.NoContent(http.StatusConflict) }

	router.GET("/ping", ok)
	router.GET("/api/v1/slots", ok)
	router.POST("/api/v1/scan", ok)
	router.POST("/api/v1/upgrade", fail)

	for _, r := range []struct{ method, path string }{
		{"GET", "/ping"},
		{"GET", "/api/v1/slots"},
		{"POST", "/api/v1/scan"},
		{"POST", "/api/v1/upgrade"},
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(r.method, r.path, nil)
		router.ServeHTTP(w, req)
	}

	events := buffer.Events()
	require.Equal(t, 3, len(events))

	require.Equal(t, log.Ldebug, events[0].Level)
	require.Equal(t, "/api/v1/slots", events[0].Data["path"])

	require.Equal(t, log.Linfo, events[1].Level)
	require.Equal(t, "/api/v1/scan", events[1].Data["path"])

	require.Equal(t, log.Lwarn, events[2].Level)
	require.Equal(t, http.StatusConflict, events[2].Data["status"])
}

func TestLogStream(t *testing.T) {
	buffer := log.NewBufferWriter(log.Ldebug, 10)

	router := echo.New()
	router.Use(NewWithConfig(Config{
		Logger: log.New("HTTP").WithOutput(buffer),
	}))

	router.GET("/api/v1/slots/:kind", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/slots/scan", nil)
	req.Header.Set(echo.HeaderAccept, "text/event-stream")
	router.ServeHTTP(w, req)

	events := buffer.Events()
	require.Equal(t, 2, len(events))

	require.Equal(t, "Stream opened", events[0].Message)
	require.Equal(t, log.Linfo, events[0].Level)

	require.Equal(t, "Stream closed", events[1].Message)
	require.Equal(t, "/api/v1/slots/:kind", events[1].Data["route"])
}
