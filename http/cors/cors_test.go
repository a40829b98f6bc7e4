package cors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllowAll(t *testing.T) {
	err := Validate([]string{"*"})
	require.NoError(t, err)
}

func TestAllowURL(t *testing.T) {
	err := Validate([]string{"http://localhost:3000", "https://fleet.example.com"})
	require.NoError(t, err)
}

func TestInvalid(t *testing.T) {
	err := Validate([]string{"https://fleet.example.com", "file://app"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "file://app")
}
