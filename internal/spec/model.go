package spec

import "strings"

// Record model handed over by a documentation extractor. Records are
// materialized in full before generation starts and are never mutated by it.

type ParameterKind string

const (
	KindPath     ParameterKind = "Path"
	KindQuery    ParameterKind = "Query"
	KindBody     ParameterKind = "Body"
	KindFormData ParameterKind = "FormData"
)

// Verbs accepted in method records, in emission order for OpenAPI sources.
var Verbs = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}

// Document is the full extractor output for one API description.
type Document struct {
	Title     string           `yaml:"title,omitempty" json:"title,omitempty"`
	Version   string           `yaml:"version,omitempty" json:"version,omitempty"`
	Resources []ResourceRecord `yaml:"resources" json:"resources" validate:"dive"`
	Methods   []MethodRecord   `yaml:"methods" json:"methods" validate:"dive"`
}

// ResourceRecord is one resource definition: a named, ordered field list.
type ResourceRecord struct {
	Name   string        `yaml:"name" json:"name" validate:"required"`
	Fields []FieldRecord `yaml:"fields" json:"fields" validate:"dive"`
}

// FieldRecord is one row of a resource definition table.
type FieldRecord struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Type        string `yaml:"type" json:"type" validate:"required"`
	Optionality string `yaml:"optionality,omitempty" json:"optionality,omitempty"`
}

// Optional reports whether the field was documented as optional.
func (f FieldRecord) Optional() bool { return isOptional(f.Optionality) }

// MethodRecord is one documented endpoint.
type MethodRecord struct {
	Anchor      string            `yaml:"anchor,omitempty" json:"anchor,omitempty"`
	Name        string            `yaml:"name,omitempty" json:"name,omitempty"`
	Resource    string            `yaml:"resource" json:"resource" validate:"required"`
	Path        string            `yaml:"path" json:"path" validate:"required,startswith=/"`
	Verb        string            `yaml:"verb" json:"verb" validate:"required,oneof=GET POST PUT DELETE PATCH HEAD OPTIONS"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Parameters  []ParameterRecord `yaml:"parameters,omitempty" json:"parameters,omitempty" validate:"dive"`
	Response    ResponseRecord    `yaml:"response,omitempty" json:"response,omitempty"`
}

// DisplayName returns the documented heading, falling back to "VERB path".
func (m MethodRecord) DisplayName() string {
	if strings.TrimSpace(m.Name) != "" {
		return m.Name
	}
	return m.Verb + " " + m.Path
}

// ParameterRecord is one row of a method's parameter table.
type ParameterRecord struct {
	Name        string        `yaml:"name" json:"name" validate:"required"`
	Kind        ParameterKind `yaml:"kind" json:"kind" validate:"required,oneof=Path Query Body FormData"`
	Optionality string        `yaml:"optionality,omitempty" json:"optionality,omitempty"`
	Comment     string        `yaml:"comment,omitempty" json:"comment,omitempty"`
	Type        string        `yaml:"type" json:"type" validate:"required"`
}

// Optional reports whether the parameter was documented as optional.
func (p ParameterRecord) Optional() bool { return isOptional(p.Optionality) }

// ResponseRecord holds the raw type of the success response.
// An empty type means the endpoint documents no content.
type ResponseRecord struct {
	Type string `yaml:"type,omitempty" json:"type,omitempty"`
}

// RawType returns the response type, defaulting to "No Content".
func (r ResponseRecord) RawType() string {
	if strings.TrimSpace(r.Type) == "" {
		return "No Content"
	}
	return r.Type
}

func isOptional(text string) bool {
	return strings.TrimSpace(text) == "optional"
}
