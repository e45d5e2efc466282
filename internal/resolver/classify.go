package resolver

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mark3labs/restgen/internal/generr"
	"github.com/mark3labs/restgen/internal/model"
)

const (
	arrayPrefix = "< "
	arraySuffix = " > array"
	enumPrefix  = "enum ("
	enumSuffix  = ")"
)

// builtins maps documented primitive type strings to resolved refs.
var builtins = map[string]model.TypeRef{
	"No Content":            model.SimpleRef(model.Unit),
	"Response":              model.SimpleRef(model.Unit),
	"file":                  model.SimpleRef(model.Bytes),
	"string":                model.LifetimeRef(model.String),
	"< string > array(csv)": model.LifetimeRef(model.String),
	"string(byte)":          model.SimpleRef(model.Byte),
	"integer(int32)":        model.SimpleRef(model.Int32),
	"integer(int64)":        model.SimpleRef(model.Int64),
	"number(float)":         model.SimpleRef(model.Float32),
	"number(double)":        model.SimpleRef(model.Float64),
	"boolean":               model.SimpleRef(model.Bool),
	"Map":                   model.LifetimeRef(model.Map),
	"MultivaluedHashMap":    model.SimpleRef(model.MultiMap),
	"Object":                model.SimpleRef(model.JSON),
}

// Shape is a classified raw type string.
type Shape struct {
	Ref   model.TypeRef
	Array bool
	// Enum holds the source tokens of an inline enum; Ref is unset then.
	Enum []string
}

// IsEnum reports whether the raw type was an inline enum.
func (s Shape) IsEnum() bool { return len(s.Enum) > 0 }

// Classify maps a documented raw type string to a type reference. Dashes are
// dropped first. Capitalized tokens outside the builtin table are registry
// references; anything else is an UnknownTypeError.
func Classify(raw string) (Shape, error) {
	t := strings.TrimSpace(strings.ReplaceAll(raw, "-", ""))
	if ref, ok := builtins[t]; ok {
		return Shape{Ref: ref}, nil
	}
	if elem, ok := ArrayElement(t); ok {
		if srcElem, ok := ArrayElement(strings.TrimSpace(raw)); ok {
			elem = srcElem
		}
		inner, err := Classify(elem)
		if err != nil {
			return Shape{}, err
		}
		if inner.Array {
			return Shape{}, &generr.UnknownTypeError{Raw: raw, Reason: "nested arrays are not supported"}
		}
		inner.Array = true
		return inner, nil
	}
	if strings.HasPrefix(t, enumPrefix) && strings.HasSuffix(t, enumSuffix) {
		// Enum tokens are wire values and keep their dashes.
		src := strings.TrimSpace(raw)
		body := src[len(enumPrefix) : len(src)-len(enumSuffix)]
		var tokens []string
		for _, tok := range strings.Split(body, ", ") {
			if tok = strings.TrimSpace(tok); tok != "" {
				tokens = append(tokens, tok)
			}
		}
		if len(tokens) == 0 {
			return Shape{}, &generr.UnknownTypeError{Raw: raw, Reason: "enum without variants"}
		}
		return Shape{Enum: tokens}, nil
	}
	if r, _ := utf8.DecodeRuneInString(t); unicode.IsUpper(r) && !strings.ContainsAny(t, " <>()") {
		return Shape{Ref: model.RegistryRef(t)}, nil
	}
	return Shape{}, &generr.UnknownTypeError{Raw: raw}
}

// ArrayElement returns T for a raw "< T > array" string.
func ArrayElement(raw string) (string, bool) {
	if len(raw) <= len(arrayPrefix)+len(arraySuffix) || !strings.HasPrefix(raw, arrayPrefix) || !strings.HasSuffix(raw, arraySuffix) {
		return "", false
	}
	return raw[len(arrayPrefix) : len(raw)-len(arraySuffix)], true
}
