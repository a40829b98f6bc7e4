package api

import (
	"fmt"
	"net/http"
	"strings"
)

// Error is the body of every non-2xx response
type Error struct {
	Code    int      `json:"code" jsonschema:"required" format:"int"`
	Message string   `json:"message" jsonschema:""`
	Details []string `json:"details" jsonschema:""`
}

func (e Error) Error() string {
	return fmt.Sprintf("code=%d, message=%s, details=%s", e.Code, e.Message, strings.Join(e.Details, " "))
}

// Err returns an Error with the status code. An empty message is replaced by
// the status text of the code. If args are given, the first one is a format
// string for the others and the formatted result is split into the details
// line by line.
func Err(code int, message string, args ...interface{}) Error {
	e := newError(code, message)

	if len(args) != 0 {
		if format, ok := args[0].(string); ok {
			e.Details = strings.Split(fmt.Sprintf(format, args[1:]...), "\n")
		}
	}

	return e
}

// ErrFrom returns an Error with the status code and one detail for every
// error joined in err.
func ErrFrom(code int, err error) Error {
	e := newError(code, "")

	if err == nil {
		return e
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, err := range joined.Unwrap() {
			e.Details = append(e.Details, err.Error())
		}

		return e
	}

	e.Details = strings.Split(err.Error(), "\n")

	return e
}

func newError(code int, message string) Error {
	if len(message) == 0 {
		message = http.StatusText(code)
	}

	return Error{
		Code:    code,
		Message: message,
		Details: []string{},
	}
}
