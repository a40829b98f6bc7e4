package api

import (
	"net/http"

	"github.com/ob1/scannerd/coordinator"
	"github.com/ob1/scannerd/glob"
	"github.com/ob1/scannerd/http/api"
	"github.com/ob1/scannerd/http/handler/util"
	"github.com/ob1/scannerd/session"

	"github.com/labstack/echo/v4"
)

// The SlotsHandler type provides handler functions for reading the state
// of the operation slots and of the live scanner processes.
type SlotsHandler struct {
	coordinator coordinator.Coordinator
}

// NewSlots returns a new Slots type. You have to provide a coordinator.
func NewSlots(coordinator coordinator.Coordinator) *SlotsHandler {
	return &SlotsHandler{
		coordinator: coordinator,
	}
}

// GetAll returns the state of all slots
// @Summary List all slots
// @Description List the state of the scan, discovery, upgrade and identify slots
// @ID slots-list
// @Produce json
// @Success 200 {array} api.Slot
// @Security BasicAuth
// @Router /api/v1/slots [get]
func (h *SlotsHandler) GetAll(c echo.Context) error {
	slots := h.coordinator.Slots()

	list := make([]api.Slot, len(slots))
	for i, s := range slots {
		list[i].Unmarshal(s)
	}

	return c.JSON(http.StatusOK, list)
}

// Get returns the state of one slot
// @Summary Get a slot
// @Description Get the state of a slot. The devices of the result can be filtered by a glob pattern or a CIDR subnet for their addresses.
// @ID slots-get
// @Produce json
// @Param kind path string true "Kind of the slot"
// @Param address query string false "Glob pattern or CIDR subnet for device addresses"
// @Success 200 {object} api.Slot
// @Failure 400 {object} api.Error
// @Failure 404 {object} api.Error
// @Security BasicAuth
// @Router /api/v1/slots/{kind} [get]
func (h *SlotsHandler) Get(c echo.Context) error {
	kind, err := session.ParseKind(util.PathParam(c, "kind"))
	if err != nil {
		return api.Err(http.StatusNotFound, "", "%s", err.Error())
	}

	pattern := util.DefaultQuery(c, "address", "")

	var filter glob.Glob

	if len(pattern) != 0 {
		filter, err = glob.CompileAddress(pattern)
		if err != nil {
			return api.Err(http.StatusBadRequest, "", "invalid pattern: %s", err.Error())
		}
	}

	slot, err := h.coordinator.Slot(kind)
	if err != nil {
		return apiError(err)
	}

	if filter != nil && slot.Result != nil {
		devices := []session.Device{}
		for _, d := range slot.Result.Devices {
			if filter.Match(d.Address) {
				devices = append(devices, d)
			}
		}

		slot.Result.Devices = devices
	}

	s := api.Slot{}
	s.Unmarshal(slot)

	return c.JSON(http.StatusOK, s)
}

// Processes returns the live scanner processes
// @Summary List scanner processes
// @Description List the live ob1-scanner processes with their resource usage
// @ID processes-list
// @Produce json
// @Success 200 {array} api.Process
// @Security BasicAuth
// @Router /api/v1/processes [get]
func (h *SlotsHandler) Processes(c echo.Context) error {
	processes := h.coordinator.Processes()

	list := make([]api.Process, len(processes))
	for i, p := range processes {
		list[i].Unmarshal(p)
	}

	return c.JSON(http.StatusOK, list)
}
