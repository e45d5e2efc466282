package spec

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Overrides is the stream override table. A key holding a bare path template
// maps that path to the item type of its streamed response. A key of the form
// "<path>:<param>:<raw type>" replaces the raw type of that parameter on that
// path before classification.
type Overrides map[string]string

// StreamItem returns the item type name for a streamed response on path.
func (o Overrides) StreamItem(path string) (string, bool) {
	item, ok := o[path]
	if !ok || strings.TrimSpace(item) == "" {
		return "", false
	}
	return strings.TrimSpace(item), true
}

// ParameterType returns the overridden raw type for a parameter, or raw itself.
func (o Overrides) ParameterType(path, param, raw string) string {
	if t, ok := o[path+":"+param+":"+raw]; ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return raw
}

// LoadOverrides reads an override table from a YAML or JSON file or URL.
// An empty input yields an empty table.
func LoadOverrides(ctx context.Context, input string, opts ...Option) (Overrides, error) {
	if strings.TrimSpace(input) == "" {
		return Overrides{}, nil
	}
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	raw, location, err := readInput(ctx, input, settings)
	if err != nil {
		return nil, err
	}
	return ParseOverrides(raw, location)
}

// ParseOverrides decodes an override table. Values must be scalar type names.
func ParseOverrides(data []byte, location string) (Overrides, error) {
	var table map[string]any
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse overrides: %v", err), Location: location, Cause: err}
	}
	out := make(Overrides, len(table))
	for key, value := range table {
		name, ok := value.(string)
		if !ok {
			return nil, &SpecError{
				Code:     ValidationError,
				Message:  fmt.Sprintf("override %q: expected a type name, got %T", key, value),
				Location: location,
			}
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(name)
	}
	return out, nil
}
