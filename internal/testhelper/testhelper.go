// Package testhelper builds the helper programs that stand in for external
// binaries in tests.
package testhelper

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

// BuildBinary compiles the program in the directory pathprefix/name and
// returns the absolute path of the executable, which is placed next to
// its source.
func BuildBinary(name, pathprefix string) (string, error) {
	src, err := filepath.Abs(filepath.Join(pathprefix, name))
	if err != nil {
		return "", err
	}

	binary := filepath.Join(src, name)

	out, err := exec.Command("go", "build", "-o", binary, src).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("building %s: %w: %s", name, err, out)
	}

	return binary, nil
}
