// Package model holds the resolved, emission-ready representation of an API:
// the type registry built by the resolver and the method models built by the
// binding compiler. Emitters read it; nothing writes to it after resolution.
package model

import "strings"

// RefKind tags a TypeRef.
type RefKind int

const (
	// Simple is a primitive or an enum name.
	Simple RefKind = iota
	// RegistryKind names a struct looked up in the Registry at use time.
	RegistryKind
	// WithLifetime is a primitive that borrows string data.
	WithLifetime
)

func (k RefKind) String() string {
	switch k {
	case RegistryKind:
		return "registry"
	case WithLifetime:
		return "lifetime"
	default:
		return "simple"
	}
}

// Primitive names carried by Simple and WithLifetime refs.
const (
	Unit     = "unit"
	Bytes    = "bytes"
	String   = "string"
	Byte     = "byte"
	Int32    = "int32"
	Int64    = "int64"
	Float32  = "float32"
	Float64  = "float64"
	Bool     = "bool"
	Map      = "map"
	MultiMap = "multimap"
	JSON     = "json"
)

var primitives = map[string]struct{}{
	Unit: {}, Bytes: {}, String: {}, Byte: {}, Int32: {}, Int64: {},
	Float32: {}, Float64: {}, Bool: {}, Map: {}, MultiMap: {}, JSON: {},
}

// TypeRef is a resolved type reference. Name is a primitive name for builtin
// types, an enum name for Simple refs to enums, or a struct name for
// RegistryKind refs.
type TypeRef struct {
	Kind RefKind
	Name string
}

// SimpleRef builds a Simple ref.
func SimpleRef(name string) TypeRef { return TypeRef{Kind: Simple, Name: name} }

// RegistryRef builds a RegistryKind ref.
func RegistryRef(name string) TypeRef { return TypeRef{Kind: RegistryKind, Name: name} }

// LifetimeRef builds a WithLifetime ref.
func LifetimeRef(name string) TypeRef { return TypeRef{Kind: WithLifetime, Name: name} }

// IsPrimitive reports whether the ref names a builtin type.
func (t TypeRef) IsPrimitive() bool {
	if t.Kind == RegistryKind {
		return false
	}
	_, ok := primitives[t.Name]
	return ok
}

// IsEnum reports whether the ref names a synthesized enum.
func (t TypeRef) IsEnum() bool { return t.Kind == Simple && !t.IsPrimitive() }

// Is reports whether the ref is the given primitive.
func (t TypeRef) Is(primitive string) bool { return t.IsPrimitive() && t.Name == primitive }

func (t TypeRef) String() string { return t.Kind.String() + "(" + t.Name + ")" }

// FieldCase records why a serialization rename is or is not emitted.
type FieldCase int

const (
	CaseUnknown FieldCase = iota
	CaseSnake
	CaseCamel
	CaseCustom
)

func (c FieldCase) String() string {
	switch c {
	case CaseSnake:
		return "SnakeCase"
	case CaseCamel:
		return "CamelCase"
	case CaseCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// Field is one resolved struct field.
type Field struct {
	WireName string
	Name     string
	Optional bool
	Array    bool
	Case     FieldCase
	Type     TypeRef
}

// NeedsRename reports whether the field needs its own wire-name directive,
// given the struct-level camelCase flag.
func (f *Field) NeedsRename(structCamel bool) bool {
	switch f.Case {
	case CaseCustom:
		return true
	case CaseCamel:
		return !structCamel
	case CaseSnake:
		return structCamel
	default:
		return false
	}
}

// StructType is one resource definition. Fields keep document order.
type StructType struct {
	Name      string
	Fields    []*Field
	CamelCase bool
}

// EnumType is an enum synthesized from an inline "enum (A, B)" type string.
// Values holds the documented tokens, parallel to Variants.
type EnumType struct {
	Name      string
	UpperCase bool
	Variants  []string
	Values    []string
}

// WireValue returns the serialized value of the i-th variant: the documented
// token when known, otherwise the variant name under the enum's casing rule.
func (e *EnumType) WireValue(i int) string {
	if i < len(e.Values) {
		return e.Values[i]
	}
	if e.UpperCase {
		return strings.ToUpper(e.Variants[i])
	}
	return e.Variants[i]
}
