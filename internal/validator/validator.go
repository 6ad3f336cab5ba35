package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// GetValidator returns the shared validator. Field names in errors use the
// json tag so details line up with the request body.
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateRequest checks struct tags on req and returns a validation error
// whose details are keyed by the json path of each failing field.
func ValidateRequest(req any) error {
	err := GetValidator().Struct(req)
	if err == nil {
		return nil
	}

	details := make(map[string]any)
	var validateErrs validator.ValidationErrors
	if errors.As(err, &validateErrs) {
		for _, fe := range validateErrs {
			details[fieldPath(fe)] = describe(fe)
		}
	}
	return apperr.Validation("Request validation failed", details)
}

// fieldPath drops the struct name from the namespace: "CreateListRequest.fields[0].fieldLabel"
// becomes "fields[0].fieldLabel".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "uuid", "uuid4":
		return "must be a valid id"
	}
	return "failed " + fe.Tag() + " validation"
}
