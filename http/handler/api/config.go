package api

import (
	"net/http"

	cfgstore "github.com/ob1/scannerd/config/store"

	"github.com/labstack/echo/v4"
)

// The ConfigHandler type provides handler functions for reading the current config.
type ConfigHandler struct {
	store cfgstore.Store
}

// NewConfig return a new Config type. You have to provide a valid config store.
func NewConfig(store cfgstore.Store) *ConfigHandler {
	return &ConfigHandler{
		store: store,
	}
}

// Get returns the currently active configuration
// @Summary Retrieve the currently active configuration
// @Description Retrieve all variables of the currently active configuration with their environment variables. Secrets are disguised.
// @ID config-get
// @Produce json
// @Success 200 {array} vars.Variable
// @Security BasicAuth
// @Router /api/v1/config [get]
func (p *ConfigHandler) Get(c echo.Context) error {
	cfg := p.store.GetActive()
	if cfg == nil {
		cfg = p.store.Get()
	}

	return c.JSON(http.StatusOK, cfg.Describe())
}
