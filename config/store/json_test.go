package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewJSONWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.json")

	s, err := NewJSON(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	cfg := s.Get()
	require.Equal(t, int64(1), cfg.Version)
	require.NotEmpty(t, cfg.ID)

	// The same ID is read back
	s2, err := NewJSON(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ID, s2.Get().ID)
}

func TestNewJSONNoPath(t *testing.T) {
	_, err := NewJSON("")
	require.Error(t, err)
}

func TestNewJSONInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,`), 0600))

	_, err := NewJSON(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"version":3}`), 0600))

	_, err = NewJSON(path)
	require.Error(t, err)
}

func TestSetAndActive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	s, err := NewJSON(path)
	require.NoError(t, err)

	cfg := s.Get()
	cfg.DB.Dir = dir
	cfg.Scanner.Binary = "sh"
	cfg.Scan.Subnet = "10.0.1.0"
	cfg.Scan.Bitmask = 24

	require.NoError(t, s.Set(cfg))

	s2, err := NewJSON(path)
	require.NoError(t, err)
	require.Equal(t, "10.0.1.0", s2.Get().Scan.Subnet)

	active := s.GetActive()
	require.Equal(t, "10.0.1.0", active.Scan.Subnet)

	active.API.Auth.Enable = true
	require.Error(t, s.SetActive(active))

	active.API.Auth.Username = "admin"
	active.API.Auth.Password = "secret"
	require.NoError(t, s.SetActive(active))

	require.True(t, s.GetActive().API.Auth.Enable)
	require.False(t, s.Get().API.Auth.Enable)
}

func TestLocation(t *testing.T) {
	require.Equal(t, "/etc/ob1/config.json", Location("/etc/ob1/config.json"))
	require.NotEmpty(t, Location(""))
}

func TestDummy(t *testing.T) {
	s := NewDummy()

	cfg := s.Get()
	require.Equal(t, "true", cfg.Scanner.Binary)

	cfg.Scanner.Timeout = -1
	require.Error(t, s.Set(cfg))
}
