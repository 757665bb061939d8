package schema

import (
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorValidationFailed = "SPAPI_VALIDATION_FAILED"
	ErrorSchemaMismatch   = "SPAPI_SCHEMA_MISMATCH"
)

// SchemaError reports a wire value whose type does not match the declared
// field type. Path is the dotted/indexed internal field path.
type SchemaError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *SchemaError) Error() string {
	if e == nil {
		return "schema: type mismatch"
	}
	return fmt.Sprintf("schema: field %q expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// IsValidationError reports whether err carries a validation envelope.
func IsValidationError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == goerrors.CategoryValidation
}

// InvalidFields returns the field names reported by a validation error, in
// the order they were detected.
func InvalidFields(err error) []string {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return nil
	}
	fieldErrors := rich.AllValidationErrors()
	out := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		out = append(out, fieldErr.Field)
	}
	return out
}

func validationError(fieldErrors []goerrors.FieldError) error {
	if len(fieldErrors) == 0 {
		return nil
	}
	message := fmt.Sprintf("schema: %s %s", fieldErrors[0].Field, fieldErrors[0].Message)
	if len(fieldErrors) > 1 {
		message = fmt.Sprintf("%s (and %d more)", message, len(fieldErrors)-1)
	}
	return goerrors.NewValidation(message, fieldErrors...).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorValidationFailed).
		WithSeverity(goerrors.SeverityError)
}

func mismatchError(path string, expected string, actual any) error {
	source := &SchemaError{
		Path:     path,
		Expected: expected,
		Actual:   describeValue(actual),
	}
	return goerrors.Wrap(source, goerrors.CategoryBadInput, source.Error()).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorSchemaMismatch).
		WithMetadata(map[string]any{"field": path})
}

func describeValue(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", value)
	}
}
