package json

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatSyntaxError(t *testing.T) {
	input := []byte("{\"level\":\"info\",\n\"msg\": scanning}")

	var v map[string]interface{}
	err := Unmarshal(input, &v)
	require.Error(t, err)

	err = FormatError(input, err)
	require.ErrorContains(t, err, "syntax error at line 2")
}

func TestFormatTypeError(t *testing.T) {
	input := []byte(`{"status":"yes"}`)

	v := struct {
		Status bool `json:"status"`
	}{}

	err := Unmarshal(input, &v)
	require.Error(t, err)

	err = FormatError(input, err)
	require.ErrorContains(t, err, "expect type 'bool' for 'status'")
}

func TestLineAndCharacterOutOfRange(t *testing.T) {
	_, _, err := lineAndCharacter([]byte("{}"), 10)
	require.Error(t, err)
}
