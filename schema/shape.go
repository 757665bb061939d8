package schema

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"
)

const tagName = "schema"

type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindBool
	KindInt
	KindUint
	KindFloat
	KindTime
	KindObject
	KindArray
	KindMap
	KindAny
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindUint:
		return "unsigned integer"
	case KindFloat:
		return "number"
	case KindTime:
		return "timestamp"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindAny:
		return "any"
	default:
		return "invalid"
	}
}

// Field describes one declared field of a schema type.
type Field struct {
	Name     string
	WireName string
	Kind     Kind
	Required bool
	Enum     []string
	Allowed  []string

	index []int
	typ   reflect.Type
}

// Optional reports whether the field is declared with a nilable Go type.
func (f Field) Optional() bool {
	if f.typ == nil {
		return true
	}
	switch f.typ.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	default:
		return false
	}
}

// Constraint is one row of a schema type's constraint table.
type Constraint struct {
	fields []string
	apply  func(*Field)
}

// Required marks fields that must be present and non-null.
func Required(fields ...string) Constraint {
	return Constraint{
		fields: fields,
		apply: func(f *Field) {
			f.Required = true
		},
	}
}

// Enum restricts a string field to a closed set of values.
func Enum(field string, values ...string) Constraint {
	allowed := append([]string(nil), values...)
	return Constraint{
		fields: []string{field},
		apply: func(f *Field) {
			f.Enum = allowed
		},
	}
}

// ArrayOf restricts every element of a string array field to allowed.
func ArrayOf(field string, allowed ...string) Constraint {
	values := append([]string(nil), allowed...)
	return Constraint{
		fields: []string{field},
		apply: func(f *Field) {
			f.Allowed = values
		},
	}
}

// WireName overrides the derived camelCase wire name of a field, for wire
// keys that do not survive a round trip through ToInternalKey (SellerSKU).
func WireName(field string, wire string) Constraint {
	wire = strings.TrimSpace(wire)
	return Constraint{
		fields: []string{field},
		apply: func(f *Field) {
			if wire != "" {
				f.WireName = wire
			}
		},
	}
}

type shape struct {
	name   string
	typ    reflect.Type
	fields []Field
	byName map[string]int
	byWire map[string]int
}

func (s *shape) lookup(key string) (Field, bool) {
	if idx, ok := s.byWire[key]; ok {
		return s.fields[idx], true
	}
	if idx, ok := s.byName[ToInternalKey(key)]; ok {
		return s.fields[idx], true
	}
	return Field{}, false
}

// Shape is the declared field list and constraint table of schema type T.
type Shape[T any] struct {
	s *shape
}

func (s *Shape[T]) Name() string {
	if s == nil || s.s == nil {
		return ""
	}
	return s.s.name
}

// Fields returns the fields in declaration order.
func (s *Shape[T]) Fields() []Field {
	if s == nil || s.s == nil {
		return []Field{}
	}
	out := make([]Field, 0, len(s.s.fields))
	for _, field := range s.s.fields {
		field.Enum = append([]string(nil), field.Enum...)
		field.Allowed = append([]string(nil), field.Allowed...)
		out = append(out, field)
	}
	return out
}

func (s *Shape[T]) Field(name string) (Field, bool) {
	if s == nil || s.s == nil {
		return Field{}, false
	}
	return s.s.lookup(name)
}

func (s *Shape[T]) Validate(value T) error {
	return Validate(value)
}

func (s *Shape[T]) ToWire(value T) (map[string]any, error) {
	return ToWire(value)
}

func (s *Shape[T]) FromWire(raw map[string]any) (T, error) {
	return FromWire[T](raw)
}

// Parse maps raw into T and applies the constraint table.
func (s *Shape[T]) Parse(raw map[string]any) (T, error) {
	return Parse[T](raw)
}

var registry sync.Map

// NewShape builds the field list of struct type T, applies constraints and
// registers the result so nested occurrences of T use the same table.
func NewShape[T any](name string, constraints ...Constraint) (*Shape[T], error) {
	typ := structType(reflect.TypeFor[T]())
	if typ == nil {
		return nil, fmt.Errorf("schema: %s must be a struct type, got %s", name, reflect.TypeFor[T]())
	}
	built, err := buildShape(typ, name)
	if err != nil {
		return nil, err
	}
	for _, constraint := range constraints {
		if constraint.apply == nil {
			continue
		}
		for _, fieldName := range constraint.fields {
			idx, ok := built.byName[ToInternalKey(fieldName)]
			if !ok {
				return nil, fmt.Errorf("schema: %s has no field %q", built.name, fieldName)
			}
			constraint.apply(&built.fields[idx])
		}
	}
	built.byWire = wireIndex(built.fields)
	registry.Store(typ, built)
	return &Shape[T]{s: built}, nil
}

// Define is NewShape for package-level declarations; it panics on a
// constraint naming an undeclared field.
func Define[T any](name string, constraints ...Constraint) *Shape[T] {
	defined, err := NewShape[T](name, constraints...)
	if err != nil {
		panic(err)
	}
	return defined
}

// Lookup returns the registered shape of T, deriving an unconstrained one if
// T was never defined.
func Lookup[T any]() (*Shape[T], error) {
	typ := structType(reflect.TypeFor[T]())
	if typ == nil {
		return nil, fmt.Errorf("schema: %s is not a struct type", reflect.TypeFor[T]())
	}
	resolved, err := shapeFor(typ)
	if err != nil {
		return nil, err
	}
	return &Shape[T]{s: resolved}, nil
}

func shapeFor(typ reflect.Type) (*shape, error) {
	if cached, ok := registry.Load(typ); ok {
		return cached.(*shape), nil
	}
	built, err := buildShape(typ, typ.Name())
	if err != nil {
		return nil, err
	}
	built.byWire = wireIndex(built.fields)
	actual, _ := registry.LoadOrStore(typ, built)
	return actual.(*shape), nil
}

func buildShape(typ reflect.Type, name string) (*shape, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = typ.Name()
	}
	out := &shape{
		name:   name,
		typ:    typ,
		fields: make([]Field, 0, typ.NumField()),
		byName: map[string]int{},
	}
	for i := 0; i < typ.NumField(); i++ {
		structField := typ.Field(i)
		if !structField.IsExported() {
			continue
		}
		tag := strings.TrimSpace(structField.Tag.Get(tagName))
		if tag == "-" {
			continue
		}
		fieldName, _, _ := strings.Cut(tag, ",")
		if fieldName == "" {
			fieldName = ToInternalKey(structField.Name)
		}
		kind := kindOf(structField.Type)
		if kind == KindInvalid {
			return nil, fmt.Errorf("schema: %s.%s has unsupported type %s", name, structField.Name, structField.Type)
		}
		if _, exists := out.byName[fieldName]; exists {
			return nil, fmt.Errorf("schema: %s declares field %q twice", name, fieldName)
		}
		out.byName[fieldName] = len(out.fields)
		out.fields = append(out.fields, Field{
			Name:     fieldName,
			WireName: ToWireKey(fieldName),
			Kind:     kind,
			index:    slices.Clone(structField.Index),
			typ:      structField.Type,
		})
	}
	return out, nil
}

func wireIndex(fields []Field) map[string]int {
	index := make(map[string]int, len(fields))
	for i, field := range fields {
		index[field.WireName] = i
	}
	return index
}

var timeType = reflect.TypeFor[time.Time]()

func kindOf(typ reflect.Type) Kind {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == timeType {
		return KindTime
	}
	switch typ.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindUint
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.Struct:
		return KindObject
	case reflect.Slice, reflect.Array:
		if kindOf(typ.Elem()) == KindInvalid {
			return KindInvalid
		}
		return KindArray
	case reflect.Map:
		if typ.Key().Kind() != reflect.String || kindOf(typ.Elem()) == KindInvalid {
			return KindInvalid
		}
		return KindMap
	case reflect.Interface:
		return KindAny
	default:
		return KindInvalid
	}
}

func structType(typ reflect.Type) reflect.Type {
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct || typ == timeType {
		return nil
	}
	return typ
}
