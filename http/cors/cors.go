// Package cors implements a validator for CORS origins
package cors

import (
	"fmt"
	"strings"
)

// DefaultSchemas is a list of default allowed schemas for CORS origins
var DefaultSchemas = []string{
	"http://",
	"https://",
}

// Validate checks whether every origin is either a wildcard pattern or
// starts with one of the DefaultSchemas.
func Validate(origins []string) error {
	for _, origin := range origins {
		if strings.Contains(origin, "*") {
			continue
		}

		valid := false
		for _, schema := range DefaultSchemas {
			if strings.HasPrefix(origin, schema) {
				valid = true
				break
			}
		}

		if !valid {
			return fmt.Errorf("bad origin %q: origins must contain '*' or start with %s", origin, strings.Join(DefaultSchemas, " or "))
		}
	}

	return nil
}
