package store

import (
	"os"
	"path/filepath"
)

// Location returns the path to the config file. If no path is provided,
// different standard location will be probed:
// - os.UserConfigDir() + /ob1-scannerd/config.json
// - os.UserHomeDir() + /.config/ob1-scannerd/config.json
// - ./config/config.json
// If the config doesn't exist in none of these locations, it will be assumed
// at ./config/config.json
func Location(path string) string {
	configfile := path
	if len(configfile) != 0 {
		return configfile
	}

	locations := []string{}

	if dir, err := os.UserConfigDir(); err == nil {
		locations = append(locations, filepath.Join(dir, "ob1-scannerd", "config.json"))
	}

	if dir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(dir, ".config", "ob1-scannerd", "config.json"))
	}

	locations = append(locations, filepath.Join(".", "config", "config.json"))

	for _, path := range locations {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if info.IsDir() {
			continue
		}

		configfile = path
		break
	}

	if len(configfile) == 0 {
		configfile = filepath.Join(".", "config", "config.json")
	}

	return configfile
}
