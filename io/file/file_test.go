package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRename(t *testing.T) {
	dir := t.TempDir()

	src := filepath.Join(dir, "src.json")
	dst := filepath.Join(dir, "dst.json")

	require.NoError(t, os.WriteFile(src, []byte("{}"), 0600))
	require.NoError(t, Rename(src, dst))

	_, err := os.Stat(src)
	require.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))
}

func TestRenameMissing(t *testing.T) {
	dir := t.TempDir()

	err := Rename(filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
	require.Error(t, err)
}

func TestWriteSafe(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "config", "config.json")

	require.NoError(t, WriteSafe(path, []byte(`{"version":1}`), 0600))
	require.NoError(t, WriteSafe(path, []byte(`{"version":2}`), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{"version":2}`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Equal(t, 1, len(entries))
}
