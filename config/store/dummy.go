package store

import (
	"fmt"

	"github.com/ob1/scannerd/config"
)

type dummyStore struct {
	current *config.Config
	active  *config.Config
}

// NewDummy returns a store that keeps a default config in memory
func NewDummy() Store {
	s := &dummyStore{}

	cfg := config.New()

	cfg.DB.Dir = "."
	cfg.Scanner.Binary = "true"

	s.current = cfg
	s.active = cfg.Clone()

	return s
}

func (c *dummyStore) Get() *config.Config {
	return c.current.Clone()
}

func (c *dummyStore) Set(d *config.Config) error {
	d.Validate(true)

	if d.HasErrors() {
		return fmt.Errorf("configuration data has errors after validation")
	}

	c.current = d.Clone()

	return nil
}

func (c *dummyStore) GetActive() *config.Config {
	return c.active.Clone()
}

func (c *dummyStore) SetActive(d *config.Config) error {
	d.Validate(true)

	if d.HasErrors() {
		return fmt.Errorf("configuration data has errors after validation")
	}

	c.active = d.Clone()

	return nil
}
