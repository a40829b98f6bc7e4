package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ob1/scannerd/coordinator"
	"github.com/ob1/scannerd/http/api"
	"github.com/ob1/scannerd/http/mock"
	"github.com/ob1/scannerd/log"
	"github.com/ob1/scannerd/session"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func getDummyScannerRouter(t *testing.T) (*echo.Echo, coordinator.Coordinator) {
	router := mock.DummyEcho()

	c, err := mock.DummyCoordinator("../../..")
	require.NoError(t, err)

	t.Cleanup(c.Close)

	slots := NewSlots(c)
	scanner := NewScanner(c)
	events := NewEvents(log.NewChannelWriter(), c)
	events.ping = 100 * time.Millisecond

	router.GET("/slots", slots.GetAll)
	router.GET("/slots/:kind", slots.Get)
	router.GET("/processes", slots.Processes)
	router.POST("/scan", scanner.Scan)
	router.POST("/discovery", scanner.Discovery)
	router.POST("/upgrade", scanner.Upgrade)
	router.POST("/upgrade/all", scanner.UpgradeAll)
	router.POST("/identify", scanner.Identify)
	router.POST("/stop", scanner.Stop)
	router.GET("/events", events.SlotEvents)

	return router, c
}

func waitFinished(t *testing.T, c coordinator.Coordinator, kind session.Kind) session.Slot {
	var slot session.Slot

	require.Eventually(t, func() bool {
		var err error
		slot, err = c.Slot(kind)
		require.NoError(t, err)

		return slot.State == session.StateFinished
	}, 5*time.Second, 50*time.Millisecond)

	return slot
}

func TestSlots(t *testing.T) {
	router, _ := getDummyScannerRouter(t)

	response := mock.Request(t, http.StatusOK, router, "GET", "/slots", nil)

	mock.Validate(t, &[]api.Slot{}, response.Data)

	slots := response.Data.([]interface{})
	require.Equal(t, 4, len(slots))

	for i, kind := range []string{"scan", "mdnsDiscovery", "firmwareUpgrade", "identify"} {
		slot := slots[i].(map[string]interface{})
		require.Equal(t, kind, slot["kind"])
		require.Equal(t, "idle", slot["state"])
	}

	mock.Request(t, http.StatusNotFound, router, "GET", "/slots/foobar", nil)

	response = mock.Request(t, http.StatusOK, router, "GET", "/slots/identify", nil)
	mock.Validate(t, &api.Slot{}, response.Data)
}

func TestScan(t *testing.T) {
	router, c := getDummyScannerRouter(t)

	response := mock.Request(t, http.StatusAccepted, router, "POST", "/scan", nil)

	mock.Validate(t, &api.Slot{}, response.Data)
	require.Equal(t, "running", response.Data.(map[string]interface{})["state"])

	slot := waitFinished(t, c, session.KindScan)
	require.NotNil(t, slot.Result)
	require.Equal(t, 2, len(slot.Result.Devices))

	response = mock.Request(t, http.StatusOK, router, "GET", "/slots/scan?address=10.0.0.5", nil)
	mock.Validate(t, &api.Slot{}, response.Data)

	result := response.Data.(map[string]interface{})["result"].(map[string]interface{})
	require.Equal(t, 1, len(result["devices"].([]interface{})))

	response = mock.Request(t, http.StatusOK, router, "GET", "/slots/scan?address=10.0.0.*", nil)
	result = response.Data.(map[string]interface{})["result"].(map[string]interface{})
	require.Equal(t, 2, len(result["devices"].([]interface{})))

	response = mock.Request(t, http.StatusOK, router, "GET", "/slots/scan?address=10.0.0.6/32", nil)
	result = response.Data.(map[string]interface{})["result"].(map[string]interface{})
	require.Equal(t, 1, len(result["devices"].([]interface{})))

	mock.Request(t, http.StatusBadRequest, router, "GET", "/slots/scan?address=10.0.0.%5B", nil)
	mock.Request(t, http.StatusBadRequest, router, "GET", "/slots/scan?address=10.0.0.0/40", nil)
}

func TestScanInvalid(t *testing.T) {
	router, _ := getDummyScannerRouter(t)

	mock.Request(t, http.StatusBadRequest, router, "POST", "/scan", strings.NewReader(`{"subnet":"foobar","bitmask":24}`))
	mock.Request(t, http.StatusBadRequest, router, "POST", "/scan", strings.NewReader(`{"subnet":"10.0.0.0","bitmask":33}`))
	mock.Request(t, http.StatusBadRequest, router, "POST", "/scan", strings.NewReader(`{"subnet":`))
}

func TestScanSubnet(t *testing.T) {
	router, c := getDummyScannerRouter(t)

	mock.Request(t, http.StatusAccepted, router, "POST", "/scan", strings.NewReader(`{"subnet":"10.0.1.0","bitmask":24}`))

	slot := waitFinished(t, c, session.KindScan)
	require.NotNil(t, slot.Result)
	require.False(t, slot.Result.Success)
	require.Equal(t, 0, len(slot.Result.Devices))
}

func TestUpgrade(t *testing.T) {
	router, c := getDummyScannerRouter(t)

	mock.Request(t, http.StatusBadRequest, router, "POST", "/upgrade", nil)
	mock.Request(t, http.StatusBadRequest, router, "POST", "/upgrade", strings.NewReader(`{"model":"SC1"}`))

	mock.Request(t, http.StatusAccepted, router, "POST", "/scan", nil)
	waitFinished(t, c, session.KindScan)

	response := mock.Request(t, http.StatusAccepted, router, "POST", "/upgrade", strings.NewReader(`{"address":"10.0.0.6","model":"SC1 Slim"}`))
	require.Equal(t, "running", response.Data.(map[string]interface{})["state"])

	require.True(t, c.UpgradeInProgress("10.0.0.6"))

	mock.Request(t, http.StatusConflict, router, "POST", "/upgrade", strings.NewReader(`{"address":"10.0.0.6","model":"SC1 Slim"}`))

	slot := waitFinished(t, c, session.KindUpgrade)
	require.NotEmpty(t, slot.Logs)
}

func TestUpgradeAll(t *testing.T) {
	router, c := getDummyScannerRouter(t)

	response := mock.Request(t, http.StatusAccepted, router, "POST", "/upgrade/all", nil)
	mock.Validate(t, &api.UpgradeAllResponse{}, response.Data)
	require.Equal(t, 0, len(response.Data.(map[string]interface{})["addresses"].([]interface{})))

	mock.Request(t, http.StatusAccepted, router, "POST", "/scan", nil)
	slot := waitFinished(t, c, session.KindScan)

	upgradable := 0
	for _, d := range slot.Result.Devices {
		if d.Upgradable {
			upgradable++
		}
	}

	response = mock.Request(t, http.StatusAccepted, router, "POST", "/upgrade/all", strings.NewReader(`{"sshUser":"root"}`))
	mock.Validate(t, &api.UpgradeAllResponse{}, response.Data)
	require.Equal(t, upgradable, len(response.Data.(map[string]interface{})["addresses"].([]interface{})))

	// Devices being upgraded are skipped
	response = mock.Request(t, http.StatusAccepted, router, "POST", "/upgrade/all", nil)
	require.Equal(t, 0, len(response.Data.(map[string]interface{})["addresses"].([]interface{})))
}

func TestIdentifyAndStop(t *testing.T) {
	router, c := getDummyScannerRouter(t)

	mock.Request(t, http.StatusBadRequest, router, "POST", "/identify", strings.NewReader(`{"address":"miner"}`))

	response := mock.Request(t, http.StatusAccepted, router, "POST", "/identify", strings.NewReader(`{"address":"10.0.0.5"}`))
	require.Equal(t, "identify", response.Data.(map[string]interface{})["kind"])

	response = mock.Request(t, http.StatusOK, router, "GET", "/processes", nil)
	mock.Validate(t, &[]api.Process{}, response.Data)

	processes := response.Data.([]interface{})
	require.Equal(t, 1, len(processes))
	require.Equal(t, "identify", processes[0].(map[string]interface{})["kind"])
	require.Equal(t, "10.0.0.5", processes[0].(map[string]interface{})["target"])

	mock.Request(t, http.StatusOK, router, "POST", "/stop", nil)

	waitFinished(t, c, session.KindIdentify)

	require.Eventually(t, func() bool {
		return len(c.Processes()) == 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestClosed(t *testing.T) {
	router, c := getDummyScannerRouter(t)

	c.Close()

	mock.Request(t, http.StatusServiceUnavailable, router, "POST", "/scan", nil)
	mock.Request(t, http.StatusServiceUnavailable, router, "POST", "/discovery", nil)
	mock.Request(t, http.StatusServiceUnavailable, router, "POST", "/identify", bytes.NewReader([]byte(`{"address":"10.0.0.5"}`)))
	mock.Request(t, http.StatusServiceUnavailable, router, "GET", "/events", nil)
}

func TestSlotEvents(t *testing.T) {
	router, _ := getDummyScannerRouter(t)

	server := httptest.NewServer(router)
	defer server.Close()

	mock.Request(t, http.StatusBadRequest, router, "GET", "/events?kind=foobar", nil)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/events?kind=scan"

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	req, err := http.NewRequest("POST", server.URL+"/scan", nil)
	require.NoError(t, err)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusAccepted, res.StatusCode)

	types := []string{}

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	for {
		e := api.SlotEvent{}
		err := ws.ReadJSON(&e)
		require.NoError(t, err)

		require.Equal(t, "scan", e.Kind)
		require.NotEmpty(t, e.RunID)

		types = append(types, e.Type)

		if e.Type == "result" {
			require.Equal(t, 2, e.Devices)
			break
		}
	}

	require.Equal(t, "start", types[0])
	require.Contains(t, types, "log")
}
