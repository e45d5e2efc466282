package spec

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	schemaRefPrefix  = "#/components/schemas/"
	originalBodyName = "x-originalParamName"
	defaultResource  = "Default"
)

// FromOpenAPI converts an OpenAPI v3 document into the record Document an HTML
// extractor would produce: component schemas become resources and operations
// become method records, with schemas rendered as raw type strings.
func FromOpenAPI(doc *openapi3.T) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	out := &Document{}
	if doc.Info != nil {
		out.Title = safeStr(doc.Info.Title)
		out.Version = safeStr(doc.Info.Version)
	}

	// Schemas
	if doc.Components != nil {
		for _, name := range sortedKeys(doc.Components.Schemas) {
			ref := doc.Components.Schemas[name]
			if ref == nil || ref.Value == nil || ref.Ref != "" {
				continue
			}
			if !isObjectSchema(ref.Value) {
				continue
			}
			out.Resources = append(out.Resources, toResourceRecord(name, ref.Value))
		}
	}

	// Paths and operations, sorted for determinism
	pathKeys := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, p := range pathKeys {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		// Supported HTTP methods in a stable order
		ops := []struct {
			verb string
			op   *openapi3.Operation
		}{
			{"GET", item.Get},
			{"POST", item.Post},
			{"PUT", item.Put},
			{"DELETE", item.Delete},
			{"PATCH", item.Patch},
			{"HEAD", item.Head},
			{"OPTIONS", item.Options},
		}
		for _, pair := range ops {
			if pair.op == nil {
				continue
			}
			out.Methods = append(out.Methods, toMethodRecord(p, pair.verb, item.Parameters, pair.op))
		}
	}
	return out, nil
}

func isObjectSchema(s *openapi3.Schema) bool {
	if len(s.Enum) > 0 {
		return false
	}
	return s.Type == "object" || (s.Type == "" && len(s.Properties) > 0)
}

func toResourceRecord(name string, s *openapi3.Schema) ResourceRecord {
	required := make(map[string]struct{}, len(s.Required))
	for _, r := range s.Required {
		required[r] = struct{}{}
	}
	rec := ResourceRecord{Name: name}
	for _, prop := range sortedKeys(s.Properties) {
		optionality := "optional"
		if _, ok := required[prop]; ok {
			optionality = "required"
		}
		rec.Fields = append(rec.Fields, FieldRecord{
			Name:        prop,
			Type:        rawType(s.Properties[prop]),
			Optionality: optionality,
		})
	}
	return rec
}

func toMethodRecord(path, verb string, shared openapi3.Parameters, op *openapi3.Operation) MethodRecord {
	rec := MethodRecord{
		Anchor:      anchorFor(path, verb),
		Name:        safeStr(op.Summary),
		Resource:    defaultResource,
		Path:        path,
		Verb:        verb,
		Description: safeStr(op.Description),
	}
	for _, t := range op.Tags {
		if t = strings.TrimSpace(t); t != "" {
			rec.Resource = t
			break
		}
	}

	// Merge parameters: path-level first, overridden by op-level.
	var order []string
	merged := make(map[string]*openapi3.Parameter)
	for _, list := range []openapi3.Parameters{shared, op.Parameters} {
		for _, pref := range list {
			if pref == nil || pref.Value == nil {
				continue
			}
			key := paramKey(pref.Value.In, pref.Value.Name)
			if _, seen := merged[key]; !seen {
				order = append(order, key)
			}
			merged[key] = pref.Value
		}
	}
	for _, key := range order {
		if pr, ok := toParameterRecord(merged[key]); ok {
			rec.Parameters = append(rec.Parameters, pr)
		}
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		rec.Parameters = append(rec.Parameters, bodyParameters(op.RequestBody.Value)...)
	}
	rec.Response = toResponseRecord(op.Responses)
	return rec
}

// anchorFor mirrors the documentation site's anchors: "_<verb>_<path>" with
// separators removed, dashes turned into underscores and lowercased.
func anchorFor(path, verb string) string {
	suffix := strings.ReplaceAll(path, "-", "_")
	suffix = strings.Map(func(r rune) rune {
		if strings.ContainsRune("{}/", r) {
			return -1
		}
		return r
	}, suffix)
	return "_" + strings.ToLower(verb) + "_" + strings.ToLower(suffix)
}

func toParameterRecord(p *openapi3.Parameter) (ParameterRecord, bool) {
	var kind ParameterKind
	switch strings.ToLower(p.In) {
	case "path":
		kind = KindPath
	case "query":
		kind = KindQuery
	default:
		// Header and cookie parameters belong to the runtime client.
		return ParameterRecord{}, false
	}
	optionality := "optional"
	if p.Required || kind == KindPath {
		optionality = "required"
	}
	return ParameterRecord{
		Name:        safeStr(p.Name),
		Kind:        kind,
		Optionality: optionality,
		Comment:     safeStr(p.Description),
		Type:        rawType(p.Schema),
	}, true
}

func bodyParameters(body *openapi3.RequestBody) []ParameterRecord {
	optionality := "optional"
	if body.Required {
		optionality = "required"
	}
	for _, mime := range []string{"application/x-www-form-urlencoded", "multipart/form-data"} {
		mt := body.Content.Get(mime)
		if mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
			continue
		}
		s := mt.Schema.Value
		required := make(map[string]struct{}, len(s.Required))
		for _, r := range s.Required {
			required[r] = struct{}{}
		}
		params := make([]ParameterRecord, 0, len(s.Properties))
		for _, prop := range sortedKeys(s.Properties) {
			opt := "optional"
			if _, ok := required[prop]; ok {
				opt = "required"
			}
			params = append(params, ParameterRecord{
				Name:        prop,
				Kind:        KindFormData,
				Optionality: opt,
				Type:        rawType(s.Properties[prop]),
			})
		}
		return params
	}

	mt := pickMedia(body.Content)
	if mt == nil {
		return nil
	}
	name := extensionString(body.Extensions, originalBodyName)
	if name == "" {
		name = "body"
	}
	return []ParameterRecord{{
		Name:        name,
		Kind:        KindBody,
		Optionality: optionality,
		Comment:     safeStr(body.Description),
		Type:        rawType(mt.Schema),
	}}
}

func toResponseRecord(responses openapi3.Responses) ResponseRecord {
	if len(responses) == 0 {
		return ResponseRecord{}
	}
	codes := make([]string, 0, len(responses))
	for code := range responses {
		if strings.HasPrefix(code, "2") {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	for _, code := range codes {
		ref := responses[code]
		if ref == nil || ref.Value == nil {
			continue
		}
		if ref.Value.Content.Get("application/octet-stream") != nil {
			return ResponseRecord{Type: "file"}
		}
		mt := pickMedia(ref.Value.Content)
		if mt == nil || mt.Schema == nil {
			return ResponseRecord{}
		}
		return ResponseRecord{Type: rawType(mt.Schema)}
	}
	return ResponseRecord{}
}

// pickMedia prefers JSON and otherwise takes the first media type by name.
func pickMedia(content openapi3.Content) *openapi3.MediaType {
	if len(content) == 0 {
		return nil
	}
	if mt := content.Get("application/json"); mt != nil {
		return mt
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return content[keys[0]]
}

// rawType renders a schema as the documentation's type string.
func rawType(ref *openapi3.SchemaRef) string {
	if ref == nil {
		return "Object"
	}
	if ref.Ref != "" {
		return refName(ref.Ref)
	}
	s := ref.Value
	if s == nil {
		return "Object"
	}
	if len(s.Enum) > 0 {
		values := make([]string, 0, len(s.Enum))
		for _, v := range s.Enum {
			values = append(values, fmt.Sprint(v))
		}
		return "enum (" + strings.Join(values, ", ") + ")"
	}
	switch s.Type {
	case "string":
		switch s.Format {
		case "byte":
			return "string(byte)"
		case "binary":
			return "file"
		}
		return "string"
	case "integer":
		if s.Format == "int64" {
			return "integer(int64)"
		}
		return "integer(int32)"
	case "number":
		if s.Format == "float" {
			return "number(float)"
		}
		return "number(double)"
	case "boolean":
		return "boolean"
	case "array":
		return "< " + rawType(s.Items) + " > array"
	}
	if extra := s.AdditionalProperties.Schema; extra != nil && extra.Value != nil && len(s.Properties) == 0 {
		switch extra.Value.Type {
		case "string":
			return "Map"
		case "array":
			return "MultivaluedHashMap"
		}
	}
	return "Object"
}

func refName(ref string) string {
	if strings.HasPrefix(ref, schemaRefPrefix) {
		return strings.TrimPrefix(ref, schemaRefPrefix)
	}
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func extensionString(ext map[string]any, key string) string {
	switch v := ext[key].(type) {
	case string:
		return v
	case json.RawMessage:
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func paramKey(in, name string) string { return in + ":" + name }

func safeStr(s string) string { return strings.TrimSpace(s) }
