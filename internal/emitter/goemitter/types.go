package goemitter

import (
	"go/token"
	"strconv"
	"strings"

	"github.com/mark3labs/restgen/internal/emitter"
	"github.com/mark3labs/restgen/internal/model"
	"github.com/mark3labs/restgen/internal/naming"
)

var goScalars = map[string]string{
	model.Bytes:    "[]byte",
	model.String:   "string",
	model.Byte:     "byte",
	model.Int32:    "int32",
	model.Int64:    "int64",
	model.Float32:  "float32",
	model.Float64:  "float64",
	model.Bool:     "bool",
	model.Map:      "map[string]string",
	model.MultiMap: "map[string][]any",
	model.JSON:     "any",
}

func goType(t model.TypeRef) string {
	if t.Kind == model.RegistryKind {
		return t.Name
	}
	if s, ok := goScalars[t.Name]; ok {
		return s
	}
	return t.Name
}

// nillable reports whether the zero value of a Go type already means absent.
func nillable(goType string) bool {
	return goType == "any" || strings.HasPrefix(goType, "[]") || strings.HasPrefix(goType, "map[")
}

// exported turns a generated snake_case name into an exported Go name.
func exported(name string) string {
	out := naming.ToUpperCamelCase(name)
	if out == "" {
		return "X"
	}
	return out
}

// unexported turns a generated name into a local identifier that clashes
// with neither a keyword nor a local of the generated method bodies.
func unexported(name string) string {
	out := naming.ToLowerCamelCase(name)
	if token.IsKeyword(out) || methodLocals[out] {
		out += "Param"
	}
	return out
}

func (r *renderer) types() []byte {
	var w emitter.Writer
	r.header(&w)

	for _, e := range r.api.Registry.Enums() {
		w.Blank()
		w.Line("// ", e.Name, " is a closed set of string values.")
		w.Line("type ", e.Name, " string")
		w.Blank()
		w.Line("const (")
		for i, v := range e.Variants {
			w.Line("\t", e.Name, v, " ", e.Name, " = ", strconv.Quote(e.WireValue(i)))
		}
		w.Line(")")
	}

	for _, s := range r.api.Registry.Structs() {
		w.Blank()
		w.Line("type ", s.Name, " struct {")
		for _, f := range s.Fields {
			w.Line("\t", exported(f.Name), " ", fieldType(f), " `json:", strconv.Quote(jsonTag(f)), "`")
		}
		w.Line("}")
	}
	return w.Bytes()
}

// fieldType renders a struct field type. Struct references are pointers so
// that mutually recursive resources stay representable.
func fieldType(f *model.Field) string {
	t := goType(f.Type)
	switch {
	case f.Array:
		return "[]" + t
	case f.Type.Kind == model.RegistryKind:
		return "*" + t
	case f.Optional && !nillable(t):
		return "*" + t
	}
	return t
}

func jsonTag(f *model.Field) string {
	if f.Optional {
		return f.WireName + ",omitempty"
	}
	return f.WireName
}
