package api

import (
	"net/http"

	"github.com/ob1/scannerd/glob"
	"github.com/ob1/scannerd/http/api"
	"github.com/ob1/scannerd/http/handler/util"
	"github.com/ob1/scannerd/inventory"

	"github.com/labstack/echo/v4"
)

// The InventoryHandler type provides handler functions for reading the
// persisted device snapshots.
type InventoryHandler struct {
	inventory inventory.Inventory
}

// NewInventory returns a new Inventory type. You have to provide an inventory.
func NewInventory(inventory inventory.Inventory) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventory,
	}
}

// Last returns the most recently persisted snapshot
// @Summary Last snapshot
// @Description Get the most recently persisted scan or discovery result
// @ID inventory-last
// @Produce json
// @Success 200 {object} api.Snapshot
// @Failure 404 {object} api.Error
// @Security BasicAuth
// @Router /api/v1/inventory [get]
func (h *InventoryHandler) Last(c echo.Context) error {
	snapshot, err := h.inventory.Last()
	if err != nil {
		return apiError(err)
	}

	s := api.Snapshot{}
	s.Unmarshal(snapshot)

	return c.JSON(http.StatusOK, s)
}

// Devices returns all miners that have ever been seen
// @Summary List known devices
// @Description List all miners that have been found by any scan or discovery
// @ID inventory-devices
// @Produce json
// @Param address query string false "Glob pattern or CIDR subnet for device addresses"
// @Success 200 {array} api.InventoryDevice
// @Failure 400 {object} api.Error
// @Security BasicAuth
// @Router /api/v1/inventory/devices [get]
func (h *InventoryHandler) Devices(c echo.Context) error {
	pattern := util.DefaultQuery(c, "address", "")

	var filter glob.Glob

	if len(pattern) != 0 {
		var err error
		filter, err = glob.CompileAddress(pattern)
		if err != nil {
			return api.Err(http.StatusBadRequest, "", "invalid pattern: %s", err.Error())
		}
	}

	devices, err := h.inventory.Devices()
	if err != nil {
		return apiError(err)
	}

	list := []api.InventoryDevice{}

	for _, d := range devices {
		if filter != nil && !filter.Match(d.Address) {
			continue
		}

		device := api.InventoryDevice{}
		device.Unmarshal(d)

		list = append(list, device)
	}

	return c.JSON(http.StatusOK, list)
}
