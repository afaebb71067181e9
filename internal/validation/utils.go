package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/listings-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// validate caches struct metadata across requests; it is safe for
// concurrent use.
var validate = validator.New()

// Validatable is implemented by request payload types that know how to
// validate themselves.
type Validatable interface {
	Validate() error
}

// Binder is implemented by request types that populate themselves from the
// echo context instead of relying on echo's default binder.
type Binder interface {
	Bind(c echo.Context) error
}

// Struct runs the struct-tag rules on v.
func Struct(v any) error {
	return validate.Struct(v)
}

// BindAndValidate binds request data into payload and validates it.
//
// Binding failures and rule violations are both returned as 400s.
func BindAndValidate(c echo.Context, payload Validatable) error {
	var err error
	if b, ok := payload.(Binder); ok {
		err = b.Bind(c)
	} else {
		err = c.Bind(payload)
	}
	if err != nil {
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return errs.NewBadRequestError("Invalid request", err)
	}

	if err := payload.Validate(); err != nil {
		return errs.NewBadRequestError("Validation failed", errors.New(describe(err)))
	}

	return nil
}

// describe flattens validator errors into "field: problem; ..." form.
func describe(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		parts = append(parts, strings.ToLower(fe.Field())+": "+message(fe))
	}
	return strings.Join(parts, "; ")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s:%s", fe.Tag(), fe.Param())
		}
		return fe.Tag()
	}
}
