// Package config implements types for handling the configuation for the app.
package config

import (
	"slices"
	"time"

	"github.com/ob1/scannerd/config/value"
	"github.com/ob1/scannerd/config/vars"
	"github.com/ob1/scannerd/http/cors"
	"github.com/ob1/scannerd/scanner"

	haikunator "github.com/atrox/haikunatorgo/v2"
	"github.com/google/uuid"
)

const version int64 = 1

// Config is a wrapper for Data
type Config struct {
	vars vars.Variables

	Data
}

// New returns a Config which is initialized with its default values
func New() *Config {
	cfg := &Config{}

	cfg.init()

	return cfg
}

func (d *Config) Get(name string) (string, error) {
	return d.vars.Get(name)
}

func (d *Config) Set(name, val string) error {
	return d.vars.Set(name, val)
}

// Clone returns a deep copy of the Config
func (d *Config) Clone() *Config {
	data := New()

	data.CreatedAt = d.CreatedAt
	data.LoadedAt = d.LoadedAt
	data.UpdatedAt = d.UpdatedAt

	data.Version = d.Version
	data.ID = d.ID
	data.Name = d.Name
	data.Address = d.Address

	data.Log = d.Log
	data.DB = d.DB
	data.Scanner = d.Scanner
	data.Scan = d.Scan
	data.Credentials = d.Credentials
	data.API = d.API
	data.Metrics = d.Metrics
	data.Debug = d.Debug

	data.Log.Topics = slices.Clone(d.Log.Topics)
	data.API.Cors.Origins = slices.Clone(d.API.Cors.Origins)

	data.vars.Transfer(&d.vars)

	return data
}

func (d *Config) init() {
	d.vars.Register(value.NewInt64(&d.Version, version), "version", "", nil, "Configuration file layout version", true, false)
	d.vars.Register(value.NewTime(&d.CreatedAt, time.Now()), "created_at", "", nil, "Configuration file creation time", false, false)
	d.vars.Register(value.NewString(&d.ID, uuid.New().String()), "id", "SCANNERD_ID", nil, "ID for this instance", true, false)
	d.vars.Register(value.NewString(&d.Name, haikunator.New().Haikunate()), "name", "SCANNERD_NAME", nil, "A human readable name for this instance", false, false)
	d.vars.Register(value.NewAddress(&d.Address, ":8080"), "address", "SCANNERD_ADDRESS", nil, "HTTP listening address", false, false)

	// Log
	d.vars.Register(value.NewString(&d.Log.Level, "info"), "log.level", "SCANNERD_LOG_LEVEL", nil, "Loglevel: silent, error, warn, info, debug", false, false)
	d.vars.Register(value.NewString(&d.Log.Format, "console"), "log.format", "SCANNERD_LOG_FORMAT", nil, "Log format on stderr: console, json", false, false)
	d.vars.Register(value.NewStringList(&d.Log.Topics, []string{}, ","), "log.topics", "SCANNERD_LOG_TOPICS", nil, "Show only selected log topics", false, false)
	d.vars.Register(value.NewInt(&d.Log.MaxLines, 1000), "log.max_lines", "SCANNERD_LOG_MAXLINES", nil, "Number of latest log lines to keep in memory", false, false)

	// DB
	d.vars.Register(value.NewMustDir(&d.DB.Dir, "./data"), "db.dir", "SCANNERD_DB_DIR", nil, "Directory for holding the inventory database", false, false)

	// Scanner
	d.vars.Register(value.NewExec(&d.Scanner.Binary, "ob1-scanner"), "scanner.binary", "SCANNERD_SCANNER_BINARY", []string{"OB1_SCANNER"}, "Path to the ob1-scanner binary", true, false)
	d.vars.Register(value.NewDir(&d.Scanner.FirmwareDir, ""), "scanner.firmware_dir", "SCANNERD_SCANNER_FIRMWARE_DIR", nil, "Directory holding the firmware images for upgrades", false, false)
	d.vars.Register(value.NewInt64(&d.Scanner.Timeout, 0), "scanner.timeout_sec", "SCANNERD_SCANNER_TIMEOUT_SEC", nil, "Seconds a scan, upgrade, or identify may run, 0 for unlimited", false, false)
	d.vars.Register(value.NewInt64(&d.Scanner.KillTimeout, 5), "scanner.kill_timeout_sec", "SCANNERD_SCANNER_KILL_TIMEOUT_SEC", nil, "Seconds to wait after an interrupt before killing the scanner", false, false)
	d.vars.Register(value.NewInt(&d.Scanner.MaxLogs, 1000), "scanner.max_logs", "SCANNERD_SCANNER_MAXLOGS", nil, "Number of latest log records to keep for each slot, 0 for unlimited", false, false)

	// Scan
	d.vars.Register(value.NewSchedule(&d.Scan.Schedule, ""), "scan.schedule", "SCANNERD_SCAN_SCHEDULE", nil, "Interval, cron expression or RFC3339 time for repeated scans", false, false)
	d.vars.Register(value.NewIPv4(&d.Scan.Subnet, ""), "scan.subnet", "SCANNERD_SCAN_SUBNET", nil, "Subnet for scheduled scans, empty for all local networks", false, false)
	d.vars.Register(value.NewBitmask(&d.Scan.Bitmask, 24), "scan.bitmask", "SCANNERD_SCAN_BITMASK", nil, "Bitmask of the subnet for scheduled scans", false, false)

	// Credentials
	d.vars.Register(value.NewString(&d.Credentials.SSH.User, scanner.DefaultSSHUser), "credentials.ssh.user", "SCANNERD_CREDENTIALS_SSH_USER", nil, "Default SSH user of the miners", false, false)
	d.vars.Register(value.NewString(&d.Credentials.SSH.Password, scanner.DefaultSSHPassword), "credentials.ssh.password", "SCANNERD_CREDENTIALS_SSH_PASSWORD", nil, "Default SSH password of the miners", false, true)
	d.vars.Register(value.NewString(&d.Credentials.UI.User, scanner.DefaultUIUser), "credentials.ui.user", "SCANNERD_CREDENTIALS_UI_USER", nil, "Default web UI user of the miners", false, false)
	d.vars.Register(value.NewString(&d.Credentials.UI.Password, scanner.DefaultUIPassword), "credentials.ui.password", "SCANNERD_CREDENTIALS_UI_PASSWORD", nil, "Default web UI password of the miners", false, true)

	// API
	d.vars.Register(value.NewBool(&d.API.Auth.Enable, false), "api.auth.enable", "SCANNERD_API_AUTH_ENABLE", nil, "Enable basic auth for the API", false, false)
	d.vars.Register(value.NewString(&d.API.Auth.Username, ""), "api.auth.username", "SCANNERD_API_AUTH_USERNAME", nil, "Username", false, false)
	d.vars.Register(value.NewString(&d.API.Auth.Password, ""), "api.auth.password", "SCANNERD_API_AUTH_PASSWORD", nil, "Password", false, true)
	d.vars.Register(value.NewStringList(&d.API.Cors.Origins, []string{"*"}, ","), "api.cors.origins", "SCANNERD_API_CORS_ORIGINS", nil, "Allowed CORS origins for /api", false, false)

	// Metrics
	d.vars.Register(value.NewBool(&d.Metrics.EnablePrometheus, false), "metrics.enable_prometheus", "SCANNERD_METRICS_ENABLE_PROMETHEUS", nil, "Enable prometheus endpoint /metrics", false, false)

	// Debug
	d.vars.Register(value.NewBool(&d.Debug.Gops, false), "debug.gops", "SCANNERD_DEBUG_GOPS", nil, "Start the gops diagnostics agent", false, false)
	d.vars.Register(value.NewBool(&d.Debug.Profiling, false), "debug.profiling", "SCANNERD_DEBUG_PROFILING", nil, "Enable the pprof endpoints under /profiling", false, false)
}

// Validate validates the current state of the Config for completeness and sanity. Errors are
// written to the log. Use resetLogs to indicate to reset the logs prior validation.
func (d *Config) Validate(resetLogs bool) {
	if resetLogs {
		d.vars.ResetLogs()
	}

	if d.Version != version {
		d.vars.Log("error", "version", "unknown configuration layout version (found version %d, expecting version %d)", d.Version, version)

		return
	}

	d.vars.Validate()

	// Individual sanity checks

	// If HTTP Auth is enabled, check that the username and password are set
	if d.API.Auth.Enable {
		if len(d.API.Auth.Username) == 0 || len(d.API.Auth.Password) == 0 {
			d.vars.Log("error", "api.auth.enable", "api.auth.username and api.auth.password must be set")
		}
	}

	if d.Log.Format != "console" && d.Log.Format != "json" {
		d.vars.Log("error", "log.format", "must be console or json")
	}

	if err := cors.Validate(d.API.Cors.Origins); err != nil {
		d.vars.Log("error", "api.cors.origins", "%s", err.Error())
	}

	if d.Scanner.Timeout < 0 {
		d.vars.Log("error", "scanner.timeout_sec", "must be equal or greater than 0")
	}

	if d.Scanner.KillTimeout < 0 {
		d.vars.Log("error", "scanner.kill_timeout_sec", "must be equal or greater than 0")
	}

	if d.Scanner.MaxLogs < 0 {
		d.vars.Log("error", "scanner.max_logs", "must be equal or greater than 0")
	}

	// A subnet without a bitmask would scan a single address at best
	if len(d.Scan.Subnet) != 0 && d.Scan.Bitmask == 0 {
		d.vars.Log("error", "scan.bitmask", "must be set if scan.subnet is set")
	}
}

func (d *Config) Merge() {
	d.vars.Merge()
}

func (d *Config) Messages(logger func(level string, v vars.Variable, message string)) {
	d.vars.Messages(logger)
}

func (d *Config) HasErrors() bool {
	return d.vars.HasErrors()
}

func (d *Config) Overrides() []string {
	return d.vars.Overrides()
}

// ScanFilter returns the subnet filter for scheduled scans, or nil if
// all local networks should be scanned.
func (d *Config) ScanFilter() *scanner.Filter {
	if len(d.Scan.Subnet) == 0 {
		return nil
	}

	return &scanner.Filter{
		Subnet:  d.Scan.Subnet,
		Bitmask: d.Scan.Bitmask,
	}
}

// DefaultCredentials returns the default credentials for the miners.
func (d *Config) DefaultCredentials() scanner.Credentials {
	return scanner.Credentials{
		SSHAuthChecked: true,
		SSHUser:        d.Credentials.SSH.User,
		SSHPassword:    d.Credentials.SSH.Password,
		UIUser:         d.Credentials.UI.User,
		UIPassword:     d.Credentials.UI.Password,
	}
}

// Describe returns all configuration variables with their current values.
func (d *Config) Describe() []vars.Variable {
	return d.vars.Describe()
}
