package value

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMustDirValue(t *testing.T) {
	var x string

	dir := t.TempDir()

	val := NewMustDir(&x, dir)

	require.Equal(t, dir, val.String())
	require.Equal(t, nil, val.Validate())
	require.Equal(t, false, val.IsEmpty())

	val.Set("")
	require.Error(t, val.Validate())

	val.Set(filepath.Join(dir, "foobar"))
	require.Error(t, val.Validate())
}

func TestDirValue(t *testing.T) {
	var x string

	dir := t.TempDir()

	val := NewDir(&x, "")

	require.Equal(t, nil, val.Validate())
	require.Equal(t, true, val.IsEmpty())

	val.Set(dir)
	require.Equal(t, nil, val.Validate())

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	val.Set(file)
	require.Error(t, val.Validate())
}

func TestExecValue(t *testing.T) {
	var x string

	val := NewExec(&x, "sh")

	require.Equal(t, nil, val.Validate())
	require.Equal(t, false, val.IsEmpty())

	val.Set("ob1-scanner-does-not-exist")
	require.Error(t, val.Validate())
}
