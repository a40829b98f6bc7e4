package api

import (
	"net/http"
	"strings"

	"github.com/ob1/scannerd/http/api"
	"github.com/ob1/scannerd/http/handler/util"
	"github.com/ob1/scannerd/log"

	"github.com/labstack/echo/v4"
)

// The LogHandler type provides handler functions for reading the application log
type LogHandler struct {
	buffer log.BufferWriter
}

// NewLog return a new Log type. You have to provide log buffer.
func NewLog(buffer log.BufferWriter) *LogHandler {
	l := &LogHandler{
		buffer: buffer,
	}

	if l.buffer == nil {
		l.buffer = log.NewBufferWriter(log.Lsilent, 1)
	}

	return l
}

// Log returns the last log lines of the application
// @Summary Application log
// @Description Get the last log lines of the application. The lines can be filtered by regular expressions for the component, the level and the message.
// @ID log
// @Param format query string false "Format of the list of log events (*console, raw)"
// @Param event query string false "Regular expression for the component"
// @Param level query string false "Regular expression for the level"
// @Param message query string false "Regular expression for the message"
// @Produce json
// @Success 200 {array} api.LogEvent "application log"
// @Success 200 {array} string "application log"
// @Security BasicAuth
// @Router /api/v1/log [get]
func (p *LogHandler) Log(c echo.Context) error {
	format := util.DefaultQuery(c, "format", "console")

	filter := api.LogEventFilter{
		Component: c.QueryParam("event"),
		Level:     c.QueryParam("level"),
		Message:   c.QueryParam("message"),
	}

	if err := filter.Compile(); err != nil {
		return api.Err(http.StatusBadRequest, "", "invalid filter: %s", err.Error())
	}

	events := p.buffer.Events()

	if format == "raw" {
		list := []api.LogEvent{}

		for _, e := range events {
			le := api.LogEvent{}
			le.Unmarshal(e)

			if !le.Filter(&filter) {
				continue
			}

			list = append(list, le)
		}

		return c.JSON(http.StatusOK, list)
	}

	formatter := log.NewConsoleFormatter(false)

	lines := []string{}

	for _, e := range events {
		le := api.LogEvent{}
		le.Unmarshal(e)

		if !le.Filter(&filter) {
			continue
		}

		lines = append(lines, strings.TrimSpace(formatter.String(e)))
	}

	return c.JSON(http.StatusOK, lines)
}
