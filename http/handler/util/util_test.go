package util

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ob1/scannerd/http/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type request struct {
	Subnet string `json:"subnet" validate:"omitempty,ipv4"`
}

func newContext(body string) echo.Context {
	e := echo.New()
	e.Validator = validator.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan?kind=%20scan%20", strings.NewReader(body))
	if len(body) != 0 {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	return e.NewContext(req, httptest.NewRecorder())
}

func TestShouldBindJSON(t *testing.T) {
	r := request{}
	require.NoError(t, ShouldBindJSON(newContext(`{"subnet":"10.0.1.0"}`), &r))
	require.Equal(t, "10.0.1.0", r.Subnet)

	require.Error(t, ShouldBindJSON(newContext(`{"subnet":"nope"}`), &r))
	require.Error(t, ShouldBindJSON(newContext(`{"subnet":`), &r))
	require.Error(t, ShouldBindJSON(newContext(""), &r))
}

func TestShouldBindJSONTooLarge(t *testing.T) {
	body := `{"subnet":"` + strings.Repeat("1", MaxBodySize) + `"}`

	r := request{}
	err := ShouldBindJSON(newContext(body), &r)
	require.ErrorContains(t, err, "larger than")
}

func TestShouldBindOptionalJSON(t *testing.T) {
	r := request{}
	require.NoError(t, ShouldBindOptionalJSON(newContext(""), &r))
	require.Equal(t, "", r.Subnet)
}

func TestDefaultQuery(t *testing.T) {
	c := newContext("")

	require.Equal(t, "scan", DefaultQuery(c, "kind", "all"))
	require.Equal(t, "all", DefaultQuery(c, "address", "all"))
}
