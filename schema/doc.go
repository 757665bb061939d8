// Package schema coerces external JSON into typed, constraint-checked Go values
// and back.
//
// Every schema type is a plain struct whose fields are bound to internal
// snake_case names through `schema` tags. Constraints (required, enum, array
// allow-lists, wire name overrides) live in an explicit table declared with
// Define, never in the struct definition itself:
//
//	var InvalidASINShape = schema.Define[InvalidASIN]("InvalidASIN",
//		schema.Required("error_reason"),
//		schema.Enum("error_reason", "DoesNotExist", "InvalidASIN"),
//	)
//
// ToWire and FromWire translate between a typed value and its wire map,
// renaming keys between snake_case and camelCase recursively. Validate applies
// the constraint table of a value's type, recursing through nested objects,
// slices and maps.
package schema
