// Package api implements the handlers for the /api/v1 routes
package api

import (
	"errors"
	"net/http"

	"github.com/ob1/scannerd/coordinator"
	"github.com/ob1/scannerd/http/api"
	"github.com/ob1/scannerd/inventory"
	"github.com/ob1/scannerd/session"
)

// apiError maps errors of the coordinator and the inventory to API errors
func apiError(err error) error {
	switch {
	case errors.Is(err, coordinator.ErrClosed):
		return api.ErrFrom(http.StatusServiceUnavailable, err)
	case errors.Is(err, coordinator.ErrUpgradeInProgress):
		return api.ErrFrom(http.StatusConflict, err)
	case errors.Is(err, session.ErrUnknownKind):
		return api.ErrFrom(http.StatusNotFound, err)
	case errors.Is(err, inventory.ErrNotFound):
		return api.ErrFrom(http.StatusNotFound, err)
	}

	return api.ErrFrom(http.StatusInternalServerError, err)
}
