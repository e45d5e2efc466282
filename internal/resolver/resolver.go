// Package resolver turns resource records into the type registry: structs with
// classified fields and naming-convention flags, plus enums synthesized from
// inline enum types.
package resolver

import (
	"errors"
	"strings"

	"github.com/mark3labs/restgen/internal/generr"
	"github.com/mark3labs/restgen/internal/model"
	"github.com/mark3labs/restgen/internal/naming"
	"github.com/mark3labs/restgen/internal/spec"
)

// reserved field identifiers that get a trailing underscore.
var reserved = map[string]struct{}{
	"type": {},
	"self": {},
	"use":  {},
}

// variantRenames corrects automatic casing of enum variants.
var variantRenames = map[string]string{
	"Userinfo": "UserInfo",
}

// Resolver accumulates resolved structs and enums into one registry.
type Resolver struct {
	reg *model.Registry
}

// New returns a Resolver with an empty registry.
func New() *Resolver {
	return &Resolver{reg: model.NewRegistry()}
}

// Registry returns the registry built so far.
func (r *Resolver) Registry() *model.Registry { return r.reg }

// Build resolves every resource in order and returns the finished registry.
func Build(resources []spec.ResourceRecord) (*model.Registry, error) {
	r := New()
	for _, rec := range resources {
		if _, err := r.Resolve(rec); err != nil {
			return nil, err
		}
	}
	return r.reg, nil
}

// Resolve classifies one resource definition and adds it, with any enums it
// synthesizes, to the registry.
func (r *Resolver) Resolve(rec spec.ResourceRecord) (*model.StructType, error) {
	st := &model.StructType{Name: TypeName(rec.Name)}
	for _, fr := range rec.Fields {
		f, err := r.resolveField(st, fr)
		if err != nil {
			return nil, err
		}
		st.Fields = append(st.Fields, f)
	}
	if err := r.reg.AddStruct(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (r *Resolver) resolveField(st *model.StructType, fr spec.FieldRecord) (*model.Field, error) {
	f := &model.Field{
		WireName: fr.Name,
		Optional: fr.Optional(),
	}
	f.Name, f.Case = fieldName(fr.Name)
	// Every field is checked on its own even once the struct is camelCase.
	if f.Case == model.CaseCamel {
		st.CamelCase = true
	}

	shape, err := Classify(fr.Type)
	if err != nil {
		var typeErr *generr.UnknownTypeError
		if errors.As(err, &typeErr) {
			typeErr.Context = st.Name + "." + fr.Name
		}
		return nil, err
	}
	f.Array = shape.Array
	f.Type = shape.Ref
	if shape.IsEnum() {
		e, err := r.reg.AddEnum(synthesizeEnum(st.Name+naming.ToUpperCamelCase(f.Name), shape.Enum))
		if err != nil {
			return nil, err
		}
		f.Type = model.SimpleRef(e.Name)
	}
	return f, nil
}

// fieldName returns the generated identifier of a wire name and the naming
// convention the wire name follows.
func fieldName(original string) (string, model.FieldCase) {
	snake := naming.ToSnakeCase(original)
	if _, ok := reserved[snake]; ok {
		return snake + "_", model.CaseCustom
	}
	lowerCamel := naming.ToLowerCamelCase(original)
	switch {
	case snake == lowerCamel:
		return snake, model.CaseUnknown
	case original == snake:
		return snake, model.CaseSnake
	case original == lowerCamel:
		return snake, model.CaseCamel
	default:
		return snake, model.CaseCustom
	}
}

func synthesizeEnum(name string, tokens []string) *model.EnumType {
	e := &model.EnumType{Name: name, UpperCase: true}
	for _, tok := range tokens {
		if !naming.IsUpperCase(tok) {
			e.UpperCase = false
		}
		variant := naming.ToUpperCamelCase(strings.ReplaceAll(tok, "-", ""))
		if renamed, ok := variantRenames[variant]; ok {
			variant = renamed
		}
		e.Variants = append(e.Variants, variant)
		e.Values = append(e.Values, tok)
	}
	return e
}

// TypeName normalizes a documented resource name into a type name.
func TypeName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "-", "")
}
