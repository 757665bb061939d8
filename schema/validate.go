package schema

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ValidateRequiredFields checks that every name in fieldNames is present and
// non-null on object, which may be a schema struct, a pointer to one, or a
// map[string]any. All missing fields are reported, in fieldNames order.
//
// Nil pointers, slices, maps and interfaces are absent, as are empty strings.
// Non-pointer numbers and booleans are always present.
func ValidateRequiredFields(object any, fieldNames ...string) error {
	if raw, ok := object.(map[string]any); ok {
		return ValidateArrayParameters(raw, fieldNames...)
	}
	rv := reflect.ValueOf(object)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			break
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return validationError(missingFields(fieldNames))
	}
	s, err := shapeFor(rv.Type())
	if err != nil {
		return err
	}
	fieldErrors := []goerrors.FieldError{}
	for _, name := range fieldNames {
		field, ok := s.lookup(name)
		if !ok || isAbsent(rv.FieldByIndex(field.index)) {
			fieldErrors = append(fieldErrors, requiredFieldError(name))
		}
	}
	return validationError(fieldErrors)
}

// ValidateEnumMembership fails when value is not one of allowed.
func ValidateEnumMembership(field string, value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return validationError([]goerrors.FieldError{enumFieldError(field, value, allowed)})
}

// ValidateArrayOfType checks that every element of values is a T and, when
// allowed is not empty, one of allowed.
func ValidateArrayOfType[T comparable](field string, values []any, allowed ...T) error {
	var zero T
	fieldErrors := []goerrors.FieldError{}
	for i, item := range values {
		typed, ok := item.(T)
		if !ok {
			fieldErrors = append(fieldErrors, goerrors.FieldError{
				Field:   indexPath(field, i),
				Message: fmt.Sprintf("must be of type %T, got %s", zero, describeValue(item)),
			})
			continue
		}
		if len(allowed) > 0 && !slices.Contains(allowed, typed) {
			fieldErrors = append(fieldErrors, goerrors.FieldError{
				Field:   indexPath(field, i),
				Message: fmt.Sprintf("value %v is not allowed", typed),
			})
		}
	}
	return validationError(fieldErrors)
}

// ValidateStrings is ValidateArrayOfType for values that are already typed.
func ValidateStrings(field string, values []string, allowed ...string) error {
	items := make([]any, len(values))
	for i, value := range values {
		items[i] = value
	}
	return ValidateArrayOfType(field, items, allowed...)
}

// ValidateArrayParameters checks a raw payload, such as redirect callback
// parameters, for required keys holding non-empty values.
func ValidateArrayParameters(input map[string]any, requiredKeys ...string) error {
	fieldErrors := []goerrors.FieldError{}
	for _, key := range requiredKeys {
		value, ok := input[key]
		if !ok || isAbsentRaw(value) {
			fieldErrors = append(fieldErrors, requiredFieldError(key))
		}
	}
	return validationError(fieldErrors)
}

// Validate applies the constraint table of value's type, recursing into
// nested objects, slices and maps. Violations are reported depth-first in
// field declaration order.
func Validate(value any) error {
	rv := reflect.ValueOf(value)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || structType(rv.Type()) == nil {
		return nil
	}
	fieldErrors := []goerrors.FieldError{}
	if err := validateObject(rv, "", &fieldErrors); err != nil {
		return err
	}
	return validationError(fieldErrors)
}

func validateObject(rv reflect.Value, path string, fieldErrors *[]goerrors.FieldError) error {
	s, err := shapeFor(rv.Type())
	if err != nil {
		return err
	}
	for _, field := range s.fields {
		fieldPath := joinPath(path, field.Name)
		fv := rv.FieldByIndex(field.index)
		if isAbsent(fv) {
			if field.Required {
				*fieldErrors = append(*fieldErrors, requiredFieldError(fieldPath))
			}
			continue
		}
		fv = indirect(fv)
		if len(field.Enum) > 0 && fv.Kind() == reflect.String {
			if value := fv.String(); !slices.Contains(field.Enum, value) {
				*fieldErrors = append(*fieldErrors, enumFieldError(fieldPath, value, field.Enum))
			}
		}
		if len(field.Allowed) > 0 && (fv.Kind() == reflect.Slice || fv.Kind() == reflect.Array) {
			for i := 0; i < fv.Len(); i++ {
				item := indirect(fv.Index(i))
				if item.Kind() != reflect.String {
					continue
				}
				if value := item.String(); !slices.Contains(field.Allowed, value) {
					*fieldErrors = append(*fieldErrors, enumFieldError(indexPath(fieldPath, i), value, field.Allowed))
				}
			}
		}
		if err := validateNested(fv, fieldPath, fieldErrors); err != nil {
			return err
		}
	}
	return nil
}

func validateNested(rv reflect.Value, path string, fieldErrors *[]goerrors.FieldError) error {
	rv = indirect(rv)
	if !rv.IsValid() {
		return nil
	}
	switch rv.Kind() {
	case reflect.Struct:
		if rv.Type() == timeType {
			return nil
		}
		return validateObject(rv, path, fieldErrors)
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := validateNested(rv.Index(i), indexPath(path, i), fieldErrors); err != nil {
				return err
			}
		}
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, key := range keys {
			if err := validateNested(rv.MapIndex(key), joinPath(path, key.String()), fieldErrors); err != nil {
				return err
			}
		}
	}
	return nil
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func isAbsent(rv reflect.Value) bool {
	if isNilValue(rv) {
		return true
	}
	return rv.Kind() == reflect.String && rv.Len() == 0
}

func isAbsentRaw(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	default:
		return isNilValue(reflect.ValueOf(value))
	}
}

func missingFields(fieldNames []string) []goerrors.FieldError {
	out := make([]goerrors.FieldError, 0, len(fieldNames))
	for _, name := range fieldNames {
		out = append(out, requiredFieldError(name))
	}
	return out
}

func requiredFieldError(field string) goerrors.FieldError {
	return goerrors.FieldError{
		Field:   field,
		Message: "is required",
	}
}

func enumFieldError(field string, value string, allowed []string) goerrors.FieldError {
	return goerrors.FieldError{
		Field:   field,
		Message: fmt.Sprintf("value %q is not one of [%s]", value, strings.Join(allowed, ", ")),
	}
}
