package model

import (
	"slices"

	"github.com/mark3labs/restgen/internal/generr"
)

// Registry is the name-keyed table of resolved structs and enums. It keeps
// first-seen order so emission is deterministic.
type Registry struct {
	structs     map[string]*StructType
	structOrder []string
	enums       map[string]*EnumType
	enumOrder   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		structs: make(map[string]*StructType),
		enums:   make(map[string]*EnumType),
	}
}

// AddStruct inserts a struct. Names are unique across the registry.
func (r *Registry) AddStruct(s *StructType) error {
	if _, ok := r.structs[s.Name]; ok {
		return &generr.DuplicateTypeError{Name: s.Name}
	}
	if _, ok := r.enums[s.Name]; ok {
		return &generr.DuplicateTypeError{Name: s.Name}
	}
	r.structs[s.Name] = s
	r.structOrder = append(r.structOrder, s.Name)
	return nil
}

// AddEnum inserts an enum and returns the registered one. An enum with the
// same name and values is shared; any other name clash is an error.
func (r *Registry) AddEnum(e *EnumType) (*EnumType, error) {
	if _, ok := r.structs[e.Name]; ok {
		return nil, &generr.DuplicateTypeError{Name: e.Name}
	}
	if existing, ok := r.enums[e.Name]; ok {
		if !slices.Equal(existing.Variants, e.Variants) || !slices.Equal(existing.Values, e.Values) {
			return nil, &generr.DuplicateTypeError{Name: e.Name}
		}
		return existing, nil
	}
	r.enums[e.Name] = e
	r.enumOrder = append(r.enumOrder, e.Name)
	return e, nil
}

// Struct looks up a struct by name.
func (r *Registry) Struct(name string) (*StructType, bool) {
	s, ok := r.structs[name]
	return s, ok
}

// Enum looks up an enum by name.
func (r *Registry) Enum(name string) (*EnumType, bool) {
	e, ok := r.enums[name]
	return e, ok
}

// Structs returns all structs in insertion order.
func (r *Registry) Structs() []*StructType {
	out := make([]*StructType, 0, len(r.structOrder))
	for _, name := range r.structOrder {
		out = append(out, r.structs[name])
	}
	return out
}

// Enums returns all enums in first-seen order.
func (r *Registry) Enums() []*EnumType {
	out := make([]*EnumType, 0, len(r.enumOrder))
	for _, name := range r.enumOrder {
		out = append(out, r.enums[name])
	}
	return out
}

// Resolves reports whether ref can be rendered against this registry.
func (r *Registry) Resolves(ref TypeRef) bool {
	switch {
	case ref.Kind == RegistryKind:
		_, ok := r.structs[ref.Name]
		return ok
	case ref.IsEnum():
		_, ok := r.enums[ref.Name]
		return ok
	default:
		return true
	}
}

// Lifetimes answers whether a struct must borrow string data.
type Lifetimes interface {
	NeedsLifetime(name string) bool
}

// API is everything an emitter needs.
type API struct {
	Title     string
	Version   string
	Registry  *Registry
	Lifetimes Lifetimes
	Methods   []*Method
}

// Resources returns the distinct resource tags of the methods in first-seen order.
func (a *API) Resources() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range a.Methods {
		if _, ok := seen[m.Resource]; ok {
			continue
		}
		seen[m.Resource] = struct{}{}
		out = append(out, m.Resource)
	}
	return out
}

// MethodsFor returns the methods tagged with resource, in model order.
func (a *API) MethodsFor(resource string) []*Method {
	var out []*Method
	for _, m := range a.Methods {
		if m.Resource == resource {
			out = append(out, m)
		}
	}
	return out
}
