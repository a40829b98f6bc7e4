package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	cfgstore "github.com/ob1/scannerd/config/store"
	cfgvars "github.com/ob1/scannerd/config/vars"
	"github.com/ob1/scannerd/encoding/json"
	"github.com/ob1/scannerd/inventory"
	"github.com/ob1/scannerd/log"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	format := flag.String("format", "json", "Output format: json, csv")
	flag.Parse()

	logger := log.New("Export").WithOutput(log.NewConsoleWriter(os.Stderr, log.Linfo, true))

	configfile := cfgstore.Location(os.Getenv("SCANNERD_CONFIGFILE"))

	configstore, err := cfgstore.NewJSON(configfile)
	if err != nil {
		logger.Error().WithError(err).Log("Loading configuration failed")
		os.Exit(1)
	}

	if err := doExport(logger, configstore, *format, os.Stdout); err != nil {
		os.Exit(1)
	}
}

// doExport writes all known devices of the inventory in db.dir to w. The
// inventory can't be opened while the daemon is running.
func doExport(logger log.Logger, configstore cfgstore.Store, format string, w io.Writer) error {
	if logger == nil {
		logger = log.New("")
	}

	cfg := configstore.Get()

	// Merging the persisted config with the environment variables
	cfg.Merge()

	cfg.Validate(false)
	if cfg.HasErrors() {
		logger.Error().Log("The configuration contains errors")
		messages := []string{}
		cfg.Messages(func(level string, v cfgvars.Variable, message string) {
			if level == "error" {
				logger.Error().WithFields(log.Fields{
					"variable":    v.Name,
					"value":       v.Value,
					"env":         v.EnvName,
					"description": v.Description,
				}).Log(message)

				messages = append(messages, v.Name+": "+message)
			}
		})

		return fmt.Errorf("the configuration contains errors: %v", messages)
	}

	path := filepath.Join(cfg.DB.Dir, "inventory.db")

	logger = logger.WithField("database", path)

	if _, err := os.Stat(path); err != nil {
		logger.Error().WithError(err).Log("Inventory doesn't exist")
		return err
	}

	inv, err := inventory.New(inventory.Config{
		Path:   path,
		Logger: logger,
	})
	if err != nil {
		logger.Error().WithError(err).Log("Opening inventory failed")
		return err
	}
	defer inv.Close()

	devices, err := inv.Devices()
	if err != nil {
		logger.Error().WithError(err).Log("Reading devices failed")
		return err
	}

	switch format {
	case "csv":
		err = writeCSV(w, devices)
	case "json":
		var data []byte
		data, err = json.Marshal(devices)
		if err == nil {
			_, err = fmt.Fprintln(w, string(data))
		}
	default:
		err = fmt.Errorf("unknown format %q", format)
	}

	if err != nil {
		logger.Error().WithError(err).Log("Export failed")
		return err
	}

	logger.Info().WithField("devices", len(devices)).Log("Exported")

	return nil
}

func writeCSV(w io.Writer, devices []inventory.Device) error {
	cw := csv.NewWriter(w)

	cw.Write([]string{"address", "model", "mac", "firmware", "update", "generation", "first_seen", "last_seen"})

	for _, d := range devices {
		cw.Write([]string{
			d.Address,
			d.Model,
			d.MacAddress,
			d.FirmwareVersion,
			d.FirmwareUpdateAvailable,
			strconv.Itoa(d.Generation),
			d.FirstSeen.Format(time.RFC3339),
			d.LastSeen.Format(time.RFC3339),
		})
	}

	cw.Flush()

	return cw.Error()
}
