package mock

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ob1/scannerd/coordinator"
	"github.com/ob1/scannerd/encoding/json"
	"github.com/ob1/scannerd/http/api"
	"github.com/ob1/scannerd/http/errorhandler"
	"github.com/ob1/scannerd/http/validator"
	"github.com/ob1/scannerd/internal/testhelper"
	"github.com/ob1/scannerd/scanner"

	"github.com/invopop/jsonschema"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

// DummyCoordinator returns a coordinator that runs the ob1-scanner
// stand-in from internal/testhelper. pathPrefix is the path from the
// calling package to the root of the module.
func DummyCoordinator(pathPrefix string) (coordinator.Coordinator, error) {
	binary, err := testhelper.BuildBinary("ob1-scanner", filepath.Join(pathPrefix, "internal/testhelper"))
	if err != nil {
		return nil, fmt.Errorf("failed to build helper program: %w", err)
	}

	return coordinator.New(coordinator.Config{
		Binary:      binary,
		FirmwareDir: "/opt/firmware",
		KillTimeout: 2 * time.Second,
		MaxLogs:     100,
		Credentials: scanner.Credentials{
			SSHUser:     scanner.DefaultSSHUser,
			SSHPassword: scanner.DefaultSSHPassword,
			UIUser:      scanner.DefaultUIUser,
			UIPassword:  scanner.DefaultUIPassword,
		},
	})
}

func DummyEcho() *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = errorhandler.HTTPErrorHandler
	router.Logger.SetOutput(io.Discard)
	router.Validator = validator.New()

	return router
}

type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Raw     []byte
	Data    interface{}
}

func Request(t require.TestingT, httpstatus int, router *echo.Echo, method, path string, data io.Reader) *Response {
	return RequestEx(t, httpstatus, router, method, path, data, true)
}

func RequestEx(t require.TestingT, httpstatus int, router *echo.Echo, method, path string, data io.Reader, checkResponse bool) *Response {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, data)
	if data != nil {
		req.Header.Add("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)

	var response *Response = nil

	if checkResponse {
		response = CheckResponse(t, w.Result())
	} else {
		response = CheckResponseMinimal(t, w.Result())
	}

	require.Equal(t, httpstatus, w.Code, string(response.Raw))

	return response
}

func CheckResponseMinimal(t require.TestingT, res *http.Response) *Response {
	response := &Response{
		Code: res.StatusCode,
	}

	res.Body.Close()

	return response
}

func CheckResponse(t require.TestingT, res *http.Response) *Response {
	response := &Response{
		Code: res.StatusCode,
	}

	body, err := io.ReadAll(res.Body)
	require.Equal(t, nil, err)

	response.Raw = body

	if strings.Contains(res.Header.Get("Content-Type"), "application/json") {
		err := json.Unmarshal(body, &response.Data)
		require.Equal(t, nil, err)
	} else {
		response.Data = body
	}

	if response.Code != http.StatusOK {
		if err, ok := response.Data.(api.Error); ok {
			response.Message = err.Message
		}
	}

	return response
}

func Validate(t require.TestingT, datatype, data interface{}) bool {
	schema, err := jsonschema.Reflect(datatype).MarshalJSON()
	require.NoError(t, err)

	schemaLoader := gojsonschema.NewStringLoader(string(schema))
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	require.Equal(t, nil, err)
	require.Equal(t, true, result.Valid(), result.Errors())

	return true
}

func Read(t require.TestingT, path string) io.Reader {
	data, err := os.ReadFile(path)
	require.Equal(t, nil, err)

	return bytes.NewReader(data)
}
