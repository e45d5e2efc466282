package spec

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their document keys rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks that every record carries the values generation relies on.
// All violations are reported together in one ValidationError.
func Validate(doc *Document) error {
	if doc == nil {
		return &SpecError{Code: InputError, Message: "spec: nil document"}
	}
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return &SpecError{Code: ValidationError, Message: err.Error(), Cause: err}
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, fieldPath(ve)+": "+formatValidationError(ve))
	}
	return &SpecError{
		Code:        ValidationError,
		Message:     "invalid records: " + strings.Join(messages, "; "),
		JSONPointer: pointerFor(valErrs[0]),
		Cause:       err,
	}
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(ve validator.FieldError) string {
	ns := ve.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// pointerFor turns "methods[2].verb" into "#/methods/2/verb".
func pointerFor(ve validator.FieldError) string {
	p := fieldPath(ve)
	p = strings.NewReplacer("[", ".", "]", "").Replace(p)
	return "#/" + strings.ReplaceAll(p, ".", "/")
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s (got %q)", ve.Param(), fmt.Sprint(ve.Value()))
	case "startswith":
		return fmt.Sprintf("must start with %q", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
