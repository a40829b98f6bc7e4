package api

import (
	"errors"
	"net/http"

	"github.com/ob1/scannerd/coordinator"
	"github.com/ob1/scannerd/http/api"
	"github.com/ob1/scannerd/http/handler/util"
	"github.com/ob1/scannerd/session"

	"github.com/labstack/echo/v4"
)

// The ScannerHandler type provides handler functions for starting and
// stopping scanner operations.
type ScannerHandler struct {
	coordinator coordinator.Coordinator
}

// NewScanner returns a new Scanner type. You have to provide a coordinator.
func NewScanner(coordinator coordinator.Coordinator) *ScannerHandler {
	return &ScannerHandler{
		coordinator: coordinator,
	}
}

// Scan starts a network scan
// @Summary Start a scan
// @Description Start a scan of a subnet. Without a subnet the local networks are scanned. A running scan or discovery is interrupted.
// @ID scan
// @Accept json
// @Produce json
// @Param filter body api.ScanRequest false "Subnet to scan"
// @Success 202 {object} api.Slot
// @Failure 400 {object} api.Error
// @Security BasicAuth
// @Router /api/v1/scan [post]
func (h *ScannerHandler) Scan(c echo.Context) error {
	req := api.ScanRequest{}

	if err := util.ShouldBindOptionalJSON(c, &req); err != nil {
		return api.Err(http.StatusBadRequest, "", "invalid request: %s", err.Error())
	}

	if err := h.coordinator.StartScan(req.Marshal()); err != nil {
		return apiError(err)
	}

	return h.slot(c, session.KindScan)
}

// Discovery starts a mDNS discovery
// @Summary Start a discovery
// @Description Start a mDNS discovery. A running scan or discovery is interrupted.
// @ID discovery
// @Produce json
// @Success 202 {object} api.Slot
// @Security BasicAuth
// @Router /api/v1/discovery [post]
func (h *ScannerHandler) Discovery(c echo.Context) error {
	if err := h.coordinator.StartDiscovery(); err != nil {
		return apiError(err)
	}

	return h.slot(c, session.KindDiscovery)
}

// Upgrade starts a firmware upgrade of a miner
// @Summary Upgrade a miner
// @Description Start a firmware upgrade of a miner. Fails if the miner is already being upgraded.
// @ID upgrade
// @Accept json
// @Produce json
// @Param target body api.TargetRequest true "Miner to upgrade"
// @Success 202 {object} api.Slot
// @Failure 400 {object} api.Error
// @Failure 409 {object} api.Error
// @Security BasicAuth
// @Router /api/v1/upgrade [post]
func (h *ScannerHandler) Upgrade(c echo.Context) error {
	req := api.TargetRequest{}

	if err := util.ShouldBindJSON(c, &req); err != nil {
		return api.Err(http.StatusBadRequest, "", "invalid request: %s", err.Error())
	}

	if err := h.coordinator.UpgradeIfIdle(req.Marshal()); err != nil {
		return apiError(err)
	}

	return h.slot(c, session.KindUpgrade)
}

// UpgradeAll starts a firmware upgrade of all upgradable miners
// @Summary Upgrade all miners
// @Description Start a firmware upgrade for every upgradable miner of the most recent scan or discovery that is not already being upgraded.
// @ID upgrade-all
// @Accept json
// @Produce json
// @Param credentials body api.Credentials false "Credentials for the miners"
// @Success 202 {object} api.UpgradeAllResponse
// @Failure 400 {object} api.Error
// @Security BasicAuth
// @Router /api/v1/upgrade/all [post]
func (h *ScannerHandler) UpgradeAll(c echo.Context) error {
	req := api.Credentials{}

	if err := util.ShouldBindOptionalJSON(c, &req); err != nil {
		return api.Err(http.StatusBadRequest, "", "invalid request: %s", err.Error())
	}

	addresses, err := h.coordinator.UpgradeAll(req.Marshal())
	if errors.Is(err, coordinator.ErrClosed) {
		return apiError(err)
	}

	res := api.UpgradeAllResponse{
		Addresses: addresses,
		Errors:    []string{},
	}

	if res.Addresses == nil {
		res.Addresses = []string{}
	}

	if err != nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				res.Errors = append(res.Errors, e.Error())
			}
		} else {
			res.Errors = append(res.Errors, err.Error())
		}
	}

	return c.JSON(http.StatusAccepted, res)
}

// Identify lets a miner flash its LEDs
// @Summary Identify a miner
// @Description Let a miner flash its LEDs. A running identification is interrupted.
// @ID identify
// @Accept json
// @Produce json
// @Param target body api.TargetRequest true "Miner to identify"
// @Success 202 {object} api.Slot
// @Failure 400 {object} api.Error
// @Security BasicAuth
// @Router /api/v1/identify [post]
func (h *ScannerHandler) Identify(c echo.Context) error {
	req := api.TargetRequest{}

	if err := util.ShouldBindJSON(c, &req); err != nil {
		return api.Err(http.StatusBadRequest, "", "invalid request: %s", err.Error())
	}

	if err := h.coordinator.StartIdentify(req.Marshal()); err != nil {
		return apiError(err)
	}

	return h.slot(c, session.KindIdentify)
}

// Stop interrupts all scanner processes
// @Summary Stop all operations
// @Description Interrupt all live scanner processes
// @ID stop
// @Produce json
// @Success 200 {array} api.Slot
// @Security BasicAuth
// @Router /api/v1/stop [post]
func (h *ScannerHandler) Stop(c echo.Context) error {
	h.coordinator.StopAll()

	slots := h.coordinator.Slots()

	list := make([]api.Slot, len(slots))
	for i, s := range slots {
		list[i].Unmarshal(s)
	}

	return c.JSON(http.StatusOK, list)
}

func (h *ScannerHandler) slot(c echo.Context, kind session.Kind) error {
	s, err := h.coordinator.Slot(kind)
	if err != nil {
		return apiError(err)
	}

	slot := api.Slot{}
	slot.Unmarshal(s)

	return c.JSON(http.StatusAccepted, slot)
}
