package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type jsonValidator struct {
	validator *validator.Validate
}

// New returns a new Validator for the echo webserver framework. Failed
// fields are reported with their JSON names.
func New() echo.Validator {
	v := &jsonValidator{
		validator: validator.New(),
	}

	v.validator.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

func (cv *jsonValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		if len(e.Param()) == 0 {
			msgs = append(msgs, fmt.Sprintf("%s: failed on '%s'", e.Namespace(), e.Tag()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed on '%s=%s'", e.Namespace(), e.Tag(), e.Param()))
		}
	}

	return errors.New(strings.Join(msgs, "\n"))
}
