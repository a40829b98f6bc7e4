package store

import (
	gojson "encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ob1/scannerd/config"
	"github.com/ob1/scannerd/encoding/json"
	"github.com/ob1/scannerd/io/file"
)

type jsonStore struct {
	path string

	data map[string]*config.Config
}

// NewJSON will read the JSON config file from the given path. After successfully reading it in, it will be written
// back to the path. The returned error will be nil if everything went fine. If the path doesn't exist, a default JSON
// config file will be written to that path. The returned Store can be used to retrieve or write the config.
func NewJSON(path string) (Store, error) {
	c := &jsonStore{
		data: make(map[string]*config.Config),
	}

	if len(path) == 0 {
		return nil, fmt.Errorf("no path provided")
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to determine absolute path of '%s': %w", path, err)
	}

	c.path = path

	c.data["base"] = config.New()

	if err := c.load(c.data["base"]); err != nil {
		return nil, fmt.Errorf("failed to read JSON from '%s': %w", path, err)
	}

	if err := c.store(c.data["base"]); err != nil {
		return nil, fmt.Errorf("failed to write JSON to '%s': %w", path, err)
	}

	return c, nil
}

func (c *jsonStore) Get() *config.Config {
	return c.data["base"].Clone()
}

func (c *jsonStore) Set(d *config.Config) error {
	if d.HasErrors() {
		return fmt.Errorf("configuration data has errors after validation")
	}

	data := d.Clone()

	if err := c.store(data); err != nil {
		return fmt.Errorf("failed to write JSON to '%s': %w", c.path, err)
	}

	data.UpdatedAt = time.Now()

	c.data["base"] = data

	return nil
}

func (c *jsonStore) GetActive() *config.Config {
	if x, ok := c.data["merged"]; ok {
		return x.Clone()
	}

	if x, ok := c.data["base"]; ok {
		return x.Clone()
	}

	return nil
}

func (c *jsonStore) SetActive(d *config.Config) error {
	d.Validate(true)

	if d.HasErrors() {
		return fmt.Errorf("configuration data has errors after validation")
	}

	c.data["merged"] = d.Clone()

	return nil
}

func (c *jsonStore) load(cfg *config.Config) error {
	jsondata, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	if len(jsondata) == 0 {
		return nil
	}

	version := DataVersion{}

	if err := gojson.Unmarshal(jsondata, &version); err != nil {
		return json.FormatError(jsondata, err)
	}

	if version.Version != 1 {
		return fmt.Errorf("unknown configuration layout version %d", version.Version)
	}

	if err := gojson.Unmarshal(jsondata, &cfg.Data); err != nil {
		return json.FormatError(jsondata, err)
	}

	cfg.LoadedAt = time.Now()
	cfg.UpdatedAt = cfg.CreatedAt

	return nil
}

func (c *jsonStore) store(data *config.Config) error {
	jsondata, err := gojson.MarshalIndent(data, "", "    ")
	if err != nil {
		return err
	}

	return file.WriteSafe(c.path, jsondata, 0600)
}
