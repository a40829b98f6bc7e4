package api

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/ob1/scannerd/http/api"
	"github.com/ob1/scannerd/http/mock"
	"github.com/ob1/scannerd/inventory"
	"github.com/ob1/scannerd/session"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func getDummyInventoryRouter(t *testing.T) (*echo.Echo, inventory.Inventory) {
	router := mock.DummyEcho()

	inv, err := inventory.New(inventory.Config{
		Path: filepath.Join(t.TempDir(), "inventory.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() { inv.Close() })

	handler := NewInventory(inv)

	router.GET("/inventory", handler.Last)
	router.GET("/inventory/devices", handler.Devices)

	return router, inv
}

func TestInventoryEmpty(t *testing.T) {
	router, _ := getDummyInventoryRouter(t)

	mock.Request(t, http.StatusNotFound, router, "GET", "/inventory", nil)

	response := mock.Request(t, http.StatusOK, router, "GET", "/inventory/devices", nil)
	require.Equal(t, 0, len(response.Data.([]interface{})))
}

func TestInventory(t *testing.T) {
	router, inv := getDummyInventoryRouter(t)

	err := inv.Store("scan", session.ScanResult{
		Success: true,
		Time:    time.Now(),
		Devices: []session.Device{
			{Address: "10.0.0.5", Model: "SC1", FirmwareVersion: "v1.0.0", Generation: 1},
			{Address: "10.0.1.6", Model: "SC1 Slim", FirmwareVersion: "v2.0.0", Generation: 2},
		},
	})
	require.NoError(t, err)

	response := mock.Request(t, http.StatusOK, router, "GET", "/inventory", nil)
	mock.Validate(t, &api.Snapshot{}, response.Data)

	snapshot := response.Data.(map[string]interface{})
	require.Equal(t, "scan", snapshot["kind"])

	response = mock.Request(t, http.StatusOK, router, "GET", "/inventory/devices", nil)
	mock.Validate(t, &[]api.InventoryDevice{}, response.Data)
	require.Equal(t, 2, len(response.Data.([]interface{})))

	response = mock.Request(t, http.StatusOK, router, "GET", "/inventory/devices?address=10.0.1.*", nil)
	devices := response.Data.([]interface{})
	require.Equal(t, 1, len(devices))
	require.Equal(t, "10.0.1.6", devices[0].(map[string]interface{})["address"])
}
