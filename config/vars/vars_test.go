package vars

import (
	"testing"

	"github.com/ob1/scannerd/config/value"

	"github.com/stretchr/testify/require"
)

func TestVars(t *testing.T) {
	v1 := Variables{}

	s := ""

	v1.Register(value.NewString(&s, "ob1-scanner"), "string", "", nil, "a string", false, false)

	require.Equal(t, "ob1-scanner", s)
	x, _ := v1.Get("string")
	require.Equal(t, "ob1-scanner", x)

	v := v1.findVariable("string")
	v.value.Set("detect")

	require.Equal(t, "detect", s)
	x, _ = v1.Get("string")
	require.Equal(t, "detect", x)

	v1.Set("string", "identify")

	require.Equal(t, "identify", s)
	x, _ = v1.Get("string")
	require.Equal(t, "identify", x)

	v1.SetDefault("string")

	require.Equal(t, "ob1-scanner", s)
	x, _ = v1.Get("string")
	require.Equal(t, "ob1-scanner", x)

	_, err := v1.Get("unknown")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, v1.Set("unknown", "x"), ErrNotFound)
}

func TestDescribe(t *testing.T) {
	vs := Variables{}

	user, password := "", ""

	vs.Register(value.NewString(&user, "root"), "credentials.ssh.user", "SCANNERD_CREDENTIALS_SSH_USER", nil, "SSH user", true, false)
	vs.Register(value.NewString(&password, "obelisk"), "credentials.ssh.password", "SCANNERD_CREDENTIALS_SSH_PASSWORD", nil, "SSH password", false, true)

	list := vs.Describe()

	require.Equal(t, []Variable{
		{Value: "root", Name: "credentials.ssh.user", EnvName: "SCANNERD_CREDENTIALS_SSH_USER", Description: "SSH user", Required: true},
		{Value: "***", Name: "credentials.ssh.password", EnvName: "SCANNERD_CREDENTIALS_SSH_PASSWORD", Description: "SSH password"},
	}, list)
}

func TestMergeAndValidate(t *testing.T) {
	t.Setenv("SCANNERD_TEST_COUNT", "foo")
	t.Setenv("TEST_OLD_NAME", "bar")

	vs := Variables{}

	count := 0
	name := ""

	vs.Register(value.NewInt(&count, 1), "count", "SCANNERD_TEST_COUNT", nil, "a number", false, false)
	vs.Register(value.NewString(&name, ""), "name", "SCANNERD_TEST_NAME", []string{"TEST_OLD_NAME"}, "a name", true, false)

	vs.Merge()

	require.Equal(t, "bar", name)
	require.True(t, vs.IsMerged("name"))
	require.True(t, vs.IsMerged("count"))
	require.True(t, vs.HasErrors())
	require.Equal(t, []string{"count", "name"}, vs.Overrides())

	levels := []string{}
	vs.Messages(func(level string, v Variable, message string) {
		levels = append(levels, level+":"+v.Name)
	})

	require.Equal(t, []string{"error:count", "warn:name"}, levels)

	vs.ResetLogs()
	require.False(t, vs.HasErrors())

	name = ""
	vs.Validate()
	require.True(t, vs.HasErrors())
}

func TestMergeWith(t *testing.T) {
	vs := Variables{}

	binary := ""

	vs.Register(value.NewString(&binary, "ob1-scanner"), "scanner.binary", "SCANNERD_SCANNER_BINARY", []string{"OB1_SCANNER"}, "binary", true, false)

	env := map[string]string{
		"OB1_SCANNER":             "/usr/bin/old",
		"SCANNERD_SCANNER_BINARY": "/usr/bin/ob1-scanner",
	}

	vs.MergeWith(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	require.Equal(t, "/usr/bin/ob1-scanner", binary)
	require.False(t, vs.HasErrors())

	warnings := 0
	vs.Messages(func(level string, v Variable, message string) {
		if level == LevelWarn {
			warnings++
		}
	})
	require.Equal(t, 0, warnings)

	delete(env, "SCANNERD_SCANNER_BINARY")
	vs.MergeWith(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	require.Equal(t, "/usr/bin/old", binary)
	require.Equal(t, []string{"scanner.binary"}, vs.Overrides())
}
