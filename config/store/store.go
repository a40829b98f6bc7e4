// Package store persists the daemon configuration.
package store

import "github.com/ob1/scannerd/config"

// Store holds two configurations: the persisted one, which takes effect
// with the next reload, and the active one the running daemon has been
// started with.
type Store interface {
	Get() *config.Config

	// Set validates and persists the configuration.
	Set(data *config.Config) error

	GetActive() *config.Config

	// SetActive keeps the configuration in memory as the active one. It
	// is not persisted.
	SetActive(data *config.Config) error
}

// DataVersion is used to detect the layout of a stored configuration
// before it is decoded.
type DataVersion struct {
	Version int64 `json:"version"`
}
