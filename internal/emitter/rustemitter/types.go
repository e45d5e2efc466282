package rustemitter

import (
	"github.com/mark3labs/restgen/internal/emitter"
	"github.com/mark3labs/restgen/internal/model"
)

// position selects how borrowed data renders.
type position int

const (
	// inField renders borrowed strings as Cow<'a, str> inside a struct that
	// carries the 'a lifetime.
	inField position = iota
	// inParam renders owned values; borrowing structs get an elided lifetime.
	inParam
	// inResponse renders owned values; borrowing structs are 'static.
	inResponse
)

var scalars = map[string]string{
	model.Unit:     "()",
	model.Bytes:    "Vec<u8>",
	model.Byte:     "u8",
	model.Int32:    "i32",
	model.Int64:    "i64",
	model.Float32:  "f32",
	model.Float64:  "f64",
	model.Bool:     "bool",
	model.MultiMap: "HashMap<String, Vec<Value>>",
	model.JSON:     "Value",
}

func (r *renderer) rustType(t model.TypeRef, pos position) string {
	switch t.Kind {
	case model.RegistryKind:
		if !r.needsLifetime(t.Name) {
			return t.Name
		}
		switch pos {
		case inField:
			return t.Name + "<'a>"
		case inResponse:
			return t.Name + "<'static>"
		default:
			return t.Name + "<'_>"
		}
	case model.WithLifetime:
		str := "String"
		if pos == inField {
			str = "Cow<'a, str>"
		}
		if t.Name == model.Map {
			return "HashMap<" + str + ", " + str + ">"
		}
		return str
	}
	if s, ok := scalars[t.Name]; ok {
		return s
	}
	return t.Name
}

func (r *renderer) types() []byte {
	var w emitter.Writer
	w.Line("use std::borrow::Cow;")
	w.Line("use std::collections::HashMap;")
	w.Blank()
	w.Line(`#[cfg(feature = "schemars")]`)
	w.Line("use schemars::JsonSchema;")
	w.Line("use serde::{Deserialize, Serialize};")
	w.Line("use serde_json::Value;")
	w.Line("use serde_with::skip_serializing_none;")
	w.Blank()

	for _, e := range r.api.Registry.Enums() {
		w.Line("#[derive(Clone, Debug, Deserialize, Eq, PartialEq, Serialize)]")
		w.Line(`#[cfg_attr(feature = "schemars", derive(JsonSchema))]`)
		if e.UpperCase {
			w.Line(`#[serde(rename_all = "UPPERCASE")]`)
		}
		w.Line("pub enum ", e.Name, " {")
		for _, v := range e.Variants {
			w.Line("    ", v, ",")
		}
		w.Line("}")
		w.Blank()
	}

	for _, s := range r.api.Registry.Structs() {
		w.Line("#[skip_serializing_none]")
		w.Line("#[derive(Clone, Debug, Default, Deserialize, PartialEq, Serialize)]")
		w.Line(`#[cfg_attr(feature = "schemars", derive(JsonSchema))]`)
		if s.CamelCase {
			w.Line(`#[serde(rename_all = "camelCase")]`)
		}
		lifetime := ""
		if r.needsLifetime(s.Name) {
			lifetime = "<'a>"
		}
		w.Line("pub struct ", s.Name, lifetime, " {")
		for _, f := range s.Fields {
			if f.NeedsRename(s.CamelCase) {
				w.Line(`    #[serde(rename = "`, f.WireName, `")]`)
			}
			w.Line("    pub ", f.Name, ": ", r.fieldType(f), ",")
		}
		w.Line("}")
		w.Blank()
	}
	return w.Bytes()
}

func (r *renderer) fieldType(f *model.Field) string {
	t := r.rustType(f.Type, inField)
	if f.Array {
		t = "Vec<" + t + ">"
	}
	if f.Optional {
		t = "Option<" + t + ">"
	}
	return t
}
