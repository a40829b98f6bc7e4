package api

import (
	"net/http"
	"testing"

	"github.com/ob1/scannerd/config"
	"github.com/ob1/scannerd/config/store"
	"github.com/ob1/scannerd/config/vars"
	"github.com/ob1/scannerd/http/mock"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func getDummyConfigRouter(t *testing.T) *echo.Echo {
	router := mock.DummyEcho()

	cfg := config.New()
	cfg.DB.Dir = "."
	cfg.Scanner.Binary = "true"
	cfg.Credentials.SSH.Password = "secret"

	s := store.NewDummy()
	require.NoError(t, s.SetActive(cfg))

	handler := NewConfig(s)

	router.Add("GET", "/", handler.Get)

	return router
}

func TestConfigGet(t *testing.T) {
	router := getDummyConfigRouter(t)

	response := mock.Request(t, http.StatusOK, router, "GET", "/", nil)

	mock.Validate(t, &[]vars.Variable{}, response.Data)

	values := map[string]string{}
	for _, v := range response.Data.([]interface{}) {
		variable := v.(map[string]interface{})
		values[variable["name"].(string)] = variable["value"].(string)
	}

	require.Equal(t, "***", values["credentials.ssh.password"])
	require.Equal(t, "true", values["scanner.binary"])
}
