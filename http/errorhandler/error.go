package errorhandler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ob1/scannerd/http/api"
	"github.com/ob1/scannerd/log"

	"github.com/labstack/echo/v4"
)

// New returns an echo error handler that responds with an api.Error.
// Server errors are logged to the logger, which may be nil.
func New(logger log.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = log.New("")
	}

	return func(err error, c echo.Context) {
		e := toAPIError(err)

		if e.Code >= http.StatusInternalServerError {
			logger.Error().WithFields(log.Fields{
				"method": c.Request().Method,
				"path":   c.Request().URL.Path,
				"code":   e.Code,
			}).WithError(err).Log("Request failed")
		}

		if c.Response().Committed {
			return
		}

		if c.Request().Method == http.MethodHead {
			c.NoContent(e.Code)
			return
		}

		c.JSON(e.Code, e)
	}
}

// HTTPErrorHandler is an error handler without logging
func HTTPErrorHandler(err error, c echo.Context) {
	New(nil)(err, c)
}

func toAPIError(err error) api.Error {
	var aerr api.Error
	if errors.As(err, &aerr) {
		return aerr
	}

	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		if inner, ok := herr.Internal.(*echo.HTTPError); ok {
			herr = inner
		}

		return api.Error{
			Code:    herr.Code,
			Message: http.StatusText(herr.Code),
			Details: strings.Split(fmt.Sprintf("%v", herr.Message), "\n"),
		}
	}

	return api.ErrFrom(http.StatusInternalServerError, err)
}
