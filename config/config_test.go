package config

import (
	"testing"

	"github.com/ob1/scannerd/config/vars"

	"github.com/stretchr/testify/require"
)

func TestConfigCopy(t *testing.T) {
	config1 := New()

	config1.Version = 42
	config1.DB.Dir = "foo"

	val1, _ := config1.Get("version")
	val2, _ := config1.Get("db.dir")
	val3, _ := config1.Get("log.topics")

	require.Equal(t, "42", val1)
	require.Equal(t, "foo", val2)
	require.Equal(t, "(empty)", val3)

	config1.Set("log.topics", "Coordinator,HTTP")

	require.Equal(t, []string{"Coordinator", "HTTP"}, config1.Log.Topics)

	config2 := config1.Clone()

	require.Equal(t, int64(42), config2.Version)
	require.Equal(t, "foo", config2.DB.Dir)
	require.Equal(t, []string{"Coordinator", "HTTP"}, config2.Log.Topics)

	config1.Set("version", "77")

	require.Equal(t, int64(77), config1.Version)
	require.Equal(t, int64(42), config2.Version)

	config1.Set("db.dir", "bar")

	require.Equal(t, "bar", config1.DB.Dir)
	require.Equal(t, "foo", config2.DB.Dir)

	config1.Log.Topics[0] = "Session"

	require.Equal(t, []string{"Session", "HTTP"}, config1.Log.Topics)
	require.Equal(t, []string{"Coordinator", "HTTP"}, config2.Log.Topics)
}

func newValidConfig(t *testing.T) *Config {
	cfg := New()

	cfg.DB.Dir = t.TempDir()
	cfg.Scanner.Binary = "sh"

	return cfg
}

func TestValidateDefaults(t *testing.T) {
	cfg := newValidConfig(t)

	cfg.Validate(true)

	require.False(t, cfg.HasErrors())
}

func TestValidateVersion(t *testing.T) {
	cfg := newValidConfig(t)
	cfg.Version = 2

	cfg.Validate(true)

	require.True(t, cfg.HasErrors())
}

func TestValidateAuth(t *testing.T) {
	cfg := newValidConfig(t)
	cfg.API.Auth.Enable = true

	cfg.Validate(true)
	require.True(t, cfg.HasErrors())

	cfg.API.Auth.Username = "admin"
	cfg.API.Auth.Password = "secret"

	cfg.Validate(true)
	require.False(t, cfg.HasErrors())
}

func TestValidateCors(t *testing.T) {
	cfg := newValidConfig(t)

	cfg.API.Cors.Origins = []string{"http://localhost:3000"}
	cfg.Validate(true)
	require.False(t, cfg.HasErrors())

	cfg.API.Cors.Origins = []string{"localhost:3000"}
	cfg.Validate(true)
	require.True(t, cfg.HasErrors())
}

func TestValidateScan(t *testing.T) {
	cfg := newValidConfig(t)

	cfg.Scan.Subnet = "10.0.0.0"
	cfg.Scan.Bitmask = 0

	cfg.Validate(true)
	require.True(t, cfg.HasErrors())

	cfg.Scan.Bitmask = 16
	cfg.Scan.Schedule = "not a schedule"

	cfg.Validate(true)
	require.True(t, cfg.HasErrors())

	cfg.Scan.Schedule = "0 * * * *"

	cfg.Validate(true)
	require.False(t, cfg.HasErrors())

	filter := cfg.ScanFilter()
	require.NotNil(t, filter)
	require.Equal(t, "10.0.0.0/16", filter.CIDR())
}

func TestValidateScanner(t *testing.T) {
	cfg := newValidConfig(t)
	cfg.Scanner.Binary = "ob1-scanner-does-not-exist"

	cfg.Validate(true)
	require.True(t, cfg.HasErrors())

	cfg = newValidConfig(t)
	cfg.Scanner.Timeout = -1

	cfg.Validate(true)
	require.True(t, cfg.HasErrors())
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("SCANNERD_SCAN_SUBNET", "192.168.1.0")
	t.Setenv("OB1_SCANNER", "/usr/local/bin/ob1-scanner")

	cfg := New()
	cfg.Merge()

	require.Equal(t, "192.168.1.0", cfg.Scan.Subnet)
	require.Equal(t, "/usr/local/bin/ob1-scanner", cfg.Scanner.Binary)
	require.ElementsMatch(t, []string{"scan.subnet", "scanner.binary"}, cfg.Overrides())

	warnings := 0
	cfg.Messages(func(level string, v vars.Variable, message string) {
		if level == "warn" {
			warnings++
			require.Equal(t, "scanner.binary", v.Name)
		}
	})
	require.Equal(t, 1, warnings)
}

func TestDefaultCredentials(t *testing.T) {
	cfg := New()

	creds := cfg.DefaultCredentials()

	require.True(t, creds.SSHAuthChecked)
	require.Equal(t, "root", creds.SSHUser)
	require.Equal(t, "obelisk", creds.SSHPassword)
	require.Equal(t, "admin", creds.UIUser)
	require.Equal(t, "admin", creds.UIPassword)

	require.Nil(t, cfg.ScanFilter())
}
