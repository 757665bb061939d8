package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ToWire walks value in field declaration order and returns its wire map.
// Nil optional fields are omitted, nested objects recurse, slices keep their
// order and map keys are copied verbatim.
func ToWire[T any](value T) (map[string]any, error) {
	rv := reflect.ValueOf(value)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || structType(rv.Type()) == nil {
		return nil, mismatchError("", "object", value)
	}
	s, err := shapeFor(rv.Type())
	if err != nil {
		return nil, err
	}
	return encodeObject(rv, s, "")
}

func encodeObject(rv reflect.Value, s *shape, path string) (map[string]any, error) {
	out := make(map[string]any, len(s.fields))
	for _, field := range s.fields {
		fv := rv.FieldByIndex(field.index)
		if isNilValue(fv) {
			continue
		}
		encoded, err := encodeValue(fv, joinPath(path, field.Name))
		if err != nil {
			return nil, err
		}
		out[field.WireName] = encoded
	}
	return out, nil
}

func encodeValue(rv reflect.Value, path string) (any, error) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Kind() == reflect.Interface {
			return rv.Interface(), nil
		}
		rv = rv.Elem()
	}
	if rv.Type() == timeType {
		return rv.Interface().(time.Time).Format(time.RFC3339Nano), nil
	}
	switch rv.Kind() {
	case reflect.Struct:
		s, err := shapeFor(rv.Type())
		if err != nil {
			return nil, err
		}
		return encodeObject(rv, s, path)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		items := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			encoded, err := encodeValue(rv.Index(i), indexPath(path, i))
			if err != nil {
				return nil, err
			}
			items = append(items, encoded)
		}
		return items, nil
	case reflect.Map:
		if rv.IsNil() {
			return nil, nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			encoded, err := encodeValue(iter.Value(), joinPath(path, key))
			if err != nil {
				return nil, err
			}
			out[key] = encoded
		}
		return out, nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	default:
		return nil, mismatchError(path, "encodable value", rv.Interface())
	}
}

// FromWire maps a wire map into T. Keys are matched by wire name or by their
// snake_case form; unknown keys are ignored and missing fields stay zero.
func FromWire[T any](raw map[string]any) (T, error) {
	var out T
	target := reflect.ValueOf(&out).Elem()
	for target.Kind() == reflect.Pointer {
		target.Set(reflect.New(target.Type().Elem()))
		target = target.Elem()
	}
	if structType(target.Type()) == nil {
		return out, mismatchError("", "struct target", out)
	}
	s, err := shapeFor(target.Type())
	if err != nil {
		return out, err
	}
	if err := decodeObject(raw, target, s, ""); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Parse is FromWire followed by Validate.
func Parse[T any](raw map[string]any) (T, error) {
	out, err := FromWire[T](raw)
	if err != nil {
		return out, err
	}
	if err := Validate(out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Decode parses a JSON object into T and validates it. Numbers are kept as
// json.Number until assigned to a typed field.
func Decode[T any](data []byte) (T, error) {
	var zero T
	raw, err := decodeJSONObject(data)
	if err != nil {
		return zero, err
	}
	return Parse[T](raw)
}

func decodeJSONObject(data []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "schema: decode json payload").
			WithCode(http.StatusBadRequest).
			WithTextCode(ErrorSchemaMismatch)
	}
	if raw == nil {
		return map[string]any{}, nil
	}
	return raw, nil
}

func decodeObject(raw map[string]any, target reflect.Value, s *shape, path string) error {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make(map[string]any, len(raw))
	for _, key := range keys {
		field, ok := s.lookup(key)
		if !ok {
			continue
		}
		if _, seen := values[field.Name]; seen && key != field.WireName {
			continue
		}
		values[field.Name] = raw[key]
	}

	for _, field := range s.fields {
		value, ok := values[field.Name]
		if !ok || value == nil {
			continue
		}
		if err := decodeValue(value, target.FieldByIndex(field.index), joinPath(path, field.Name)); err != nil {
			return err
		}
	}
	return nil
}

func decodeValue(raw any, target reflect.Value, path string) error {
	if target.Kind() == reflect.Pointer {
		if raw == nil {
			target.Set(reflect.Zero(target.Type()))
			return nil
		}
		elem := reflect.New(target.Type().Elem())
		if err := decodeValue(raw, elem.Elem(), path); err != nil {
			return err
		}
		target.Set(elem)
		return nil
	}
	if raw == nil {
		return nil
	}
	if target.Type() == timeType {
		return decodeTime(raw, target, path)
	}

	switch target.Kind() {
	case reflect.Interface:
		value := reflect.ValueOf(raw)
		if !value.Type().AssignableTo(target.Type()) {
			return mismatchError(path, target.Type().String(), raw)
		}
		target.Set(value)
		return nil
	case reflect.Struct:
		object, ok := raw.(map[string]any)
		if !ok {
			return mismatchError(path, KindObject.String(), raw)
		}
		s, err := shapeFor(target.Type())
		if err != nil {
			return err
		}
		return decodeObject(object, target, s, path)
	case reflect.Slice, reflect.Array:
		return decodeSequence(raw, target, path)
	case reflect.Map:
		return decodeMap(raw, target, path)
	case reflect.String:
		value, ok := raw.(string)
		if !ok {
			return mismatchError(path, KindString.String(), raw)
		}
		target.SetString(value)
		return nil
	case reflect.Bool:
		value, ok := raw.(bool)
		if !ok {
			return mismatchError(path, KindBool.String(), raw)
		}
		target.SetBool(value)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		value, ok := wireInt(raw)
		if !ok || target.OverflowInt(value) {
			return mismatchError(path, KindInt.String(), raw)
		}
		target.SetInt(value)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		value, ok := wireInt(raw)
		if !ok || value < 0 || target.OverflowUint(uint64(value)) {
			return mismatchError(path, KindUint.String(), raw)
		}
		target.SetUint(uint64(value))
		return nil
	case reflect.Float32, reflect.Float64:
		value, ok := wireFloat(raw)
		if !ok || target.OverflowFloat(value) {
			return mismatchError(path, KindFloat.String(), raw)
		}
		target.SetFloat(value)
		return nil
	default:
		return mismatchError(path, "supported type", raw)
	}
}

func decodeSequence(raw any, target reflect.Value, path string) error {
	source := reflect.ValueOf(raw)
	if source.Kind() != reflect.Slice && source.Kind() != reflect.Array {
		return mismatchError(path, KindArray.String(), raw)
	}
	length := source.Len()
	if target.Kind() == reflect.Array {
		if length > target.Len() {
			return mismatchError(path, fmt.Sprintf("array of at most %d items", target.Len()), raw)
		}
		for i := 0; i < length; i++ {
			if err := decodeValue(source.Index(i).Interface(), target.Index(i), indexPath(path, i)); err != nil {
				return err
			}
		}
		return nil
	}
	items := reflect.MakeSlice(target.Type(), length, length)
	for i := 0; i < length; i++ {
		if err := decodeValue(source.Index(i).Interface(), items.Index(i), indexPath(path, i)); err != nil {
			return err
		}
	}
	target.Set(items)
	return nil
}

func decodeMap(raw any, target reflect.Value, path string) error {
	source := reflect.ValueOf(raw)
	if source.Kind() != reflect.Map || source.Type().Key().Kind() != reflect.String {
		return mismatchError(path, KindMap.String(), raw)
	}
	out := reflect.MakeMapWithSize(target.Type(), source.Len())
	keyType := target.Type().Key()
	elemType := target.Type().Elem()
	iter := source.MapRange()
	for iter.Next() {
		key := iter.Key().String()
		elem := reflect.New(elemType).Elem()
		if err := decodeValue(iter.Value().Interface(), elem, joinPath(path, key)); err != nil {
			return err
		}
		out.SetMapIndex(reflect.ValueOf(key).Convert(keyType), elem)
	}
	target.Set(out)
	return nil
}

func decodeTime(raw any, target reflect.Value, path string) error {
	switch typed := raw.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, typed)
		if err != nil {
			return mismatchError(path, KindTime.String(), raw)
		}
		target.Set(reflect.ValueOf(parsed))
		return nil
	case time.Time:
		target.Set(reflect.ValueOf(typed))
		return nil
	default:
		return mismatchError(path, KindTime.String(), raw)
	}
}

func wireInt(raw any) (int64, bool) {
	switch typed := raw.(type) {
	case json.Number:
		if parsed, err := typed.Int64(); err == nil {
			return parsed, true
		}
		parsed, err := typed.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(parsed)
	case float64:
		return floatToInt64(typed)
	case float32:
		return floatToInt64(float64(typed))
	case int:
		return int64(typed), true
	case int8:
		return int64(typed), true
	case int16:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case int64:
		return typed, true
	case uint:
		if uint64(typed) > math.MaxInt64 {
			return 0, false
		}
		return int64(typed), true
	case uint8:
		return int64(typed), true
	case uint16:
		return int64(typed), true
	case uint32:
		return int64(typed), true
	case uint64:
		if typed > math.MaxInt64 {
			return 0, false
		}
		return int64(typed), true
	default:
		return 0, false
	}
}

// floatToInt64 accepts whole numbers in [-2^63, 2^63). float64(math.MaxInt64)
// rounds up to 2^63, so the upper bound is exclusive.
func floatToInt64(value float64) (int64, bool) {
	if value != math.Trunc(value) || value < math.MinInt64 || value >= math.MaxInt64 {
		return 0, false
	}
	return int64(value), true
}

func wireFloat(raw any) (float64, bool) {
	switch typed := raw.(type) {
	case json.Number:
		parsed, err := typed.Float64()
		return parsed, err == nil
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	default:
		value, ok := wireInt(raw)
		return float64(value), ok
	}
}

// KeysToInternal renames every string key of an untyped structure to
// snake_case, recursing through nested maps and []any. All-digit keys keep
// their position and spelling.
func KeysToInternal(raw map[string]any) map[string]any {
	return renameKeys(raw, ToInternalKey)
}

// KeysToWire is the camelCase counterpart of KeysToInternal.
func KeysToWire(raw map[string]any) map[string]any {
	return renameKeys(raw, ToWireKey)
}

func renameKeys(raw map[string]any, rename func(string) string) map[string]any {
	if raw == nil {
		return nil
	}
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		out[rename(key)] = renameValue(value, rename)
	}
	return out
}

func renameValue(value any, rename func(string) string) any {
	switch typed := value.(type) {
	case map[string]any:
		return renameKeys(typed, rename)
	case []any:
		items := make([]any, len(typed))
		for i, item := range typed {
			items[i] = renameValue(item, rename)
		}
		return items
	default:
		return value
	}
}

func isNilValue(rv reflect.Value) bool {
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

func joinPath(path string, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func indexPath(path string, index int) string {
	return path + "[" + strconv.Itoa(index) + "]"
}
