package util

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/ob1/scannerd/encoding/json"

	"github.com/labstack/echo/v4"
)

// MaxBodySize is the max. size of a JSON request body. The API only takes
// small requests, a scan filter or a few credentials.
const MaxBodySize = 64 * 1024

// ShouldBindJSONValidation binds the JSON body to obj and validates it if
// requested.
func ShouldBindJSONValidation(c echo.Context, obj interface{}, validate bool) error {
	req := c.Request()

	if req.ContentLength == 0 {
		return fmt.Errorf("request doesn't contain any content")
	}

	if ctype := req.Header.Get(echo.HeaderContentType); !strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
		return fmt.Errorf("request doesn't contain JSON content")
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, MaxBodySize+1))
	if err != nil {
		return err
	}

	if len(body) > MaxBodySize {
		return fmt.Errorf("request body is larger than %d bytes", MaxBodySize)
	}

	if err := json.Unmarshal(body, obj); err != nil {
		return json.FormatError(body, err)
	}

	if validate {
		return c.Validate(obj)
	}

	return nil
}

// ShouldBindJSON binds the body data of the request to the given object. An error is
// returned if the body data is not valid JSON or the validation of the unmarshalled
// data failed.
func ShouldBindJSON(c echo.Context, obj interface{}) error {
	return ShouldBindJSONValidation(c, obj, true)
}

// ShouldBindOptionalJSON is like ShouldBindJSON, but an empty body leaves
// obj untouched.
func ShouldBindOptionalJSON(c echo.Context, obj interface{}) error {
	if c.Request().ContentLength == 0 {
		return c.Validate(obj)
	}

	return ShouldBindJSON(c, obj)
}

// PathParam returns the unescaped path parameter, or an empty string if it
// can't be unescaped.
func PathParam(c echo.Context, name string) string {
	param, err := url.PathUnescape(c.Param(name))
	if err != nil {
		return ""
	}

	return param
}

// DefaultQuery returns the trimmed query parameter, or defValue if it is
// missing or blank.
func DefaultQuery(c echo.Context, name, defValue string) string {
	if param := strings.TrimSpace(c.QueryParam(name)); len(param) != 0 {
		return param
	}

	return defValue
}
