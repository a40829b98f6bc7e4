package glob

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPatterns(t *testing.T) {
	ok, err := Match("10.0.*.5", "10.0.1.5", '.')

	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Match("10.0.*.5", "10.0.1.2.5", '.')

	require.NoError(t, err)
	require.False(t, ok)

	ok, err = Match("10.**", "10.0.1.5", '.')

	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Match("{10.0.0.5,10.0.0.6}", "10.0.0.6", '.')

	require.NoError(t, err)
	require.True(t, ok)

	_, err = Match("10.0.[", "10.0.0.6", '.')
	require.Error(t, err)
}

func TestCompileAddress(t *testing.T) {
	g, err := CompileAddress("192.168.1.*")
	require.NoError(t, err)

	require.True(t, g.Match("192.168.1.20"))
	require.False(t, g.Match("192.168.2.20"))
}

func TestCompileAddressSubnet(t *testing.T) {
	g, err := CompileAddress("10.0.1.77/24")
	require.NoError(t, err)

	require.True(t, g.Match("10.0.1.5"))
	require.True(t, g.Match("10.0.1.255"))
	require.False(t, g.Match("10.0.2.5"))
	require.False(t, g.Match("not an address"))

	_, err = CompileAddress("10.0.1.0/33")
	require.Error(t, err)
}
