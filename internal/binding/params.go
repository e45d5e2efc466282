package binding

import (
	"fmt"

	"github.com/mark3labs/restgen/internal/model"
	"github.com/mark3labs/restgen/internal/naming"
	"github.com/mark3labs/restgen/internal/resolver"
	"github.com/mark3labs/restgen/internal/spec"
)

// reservedParams are parameter identifiers that get a trailing underscore.
var reservedParams = map[string]struct{}{
	"ref":  {},
	"type": {},
}

var locations = map[spec.ParameterKind]model.ParamLocation{
	spec.KindPath:     model.InPath,
	spec.KindQuery:    model.InQuery,
	spec.KindBody:     model.InBody,
	spec.KindFormData: model.InForm,
}

// ParamName returns the generated identifier of a documented parameter name.
func ParamName(original string) string {
	name := naming.ToSnakeCase(original)
	if _, ok := reservedParams[name]; ok {
		name += "_"
	}
	return name
}

// compileParams resolves every parameter in documented order.
func (c *Compiler) compileParams(rec spec.MethodRecord) ([]*model.Param, error) {
	out := make([]*model.Param, 0, len(rec.Parameters))
	for _, pr := range rec.Parameters {
		in, ok := locations[pr.Kind]
		if !ok {
			return nil, fmt.Errorf("%s %s: parameter %s: unknown kind %q", rec.Verb, rec.Path, pr.Name, pr.Kind)
		}
		shape, err := classifyIn(c.parameterType(rec.Path, pr), fmt.Sprintf("parameter %s of %s %s", pr.Name, rec.Verb, rec.Path))
		if err != nil {
			return nil, err
		}
		out = append(out, &model.Param{
			WireName: pr.Name,
			Name:     ParamName(pr.Name),
			In:       in,
			Optional: pr.Optional(),
			Array:    shape.Array,
			Comment:  pr.Comment,
			Type:     shape.Ref,
		})
	}
	return out, nil
}

// parameterType applies the "<path>:<param>:<type>" override. For arrays the
// element type is looked up and replaced.
func (c *Compiler) parameterType(path string, pr spec.ParameterRecord) string {
	if elem, ok := resolver.ArrayElement(pr.Type); ok {
		return "< " + c.cfg.Overrides.ParameterType(path, pr.Name, elem) + " > array"
	}
	return c.cfg.Overrides.ParameterType(path, pr.Name, pr.Type)
}

// orderParams puts path parameters first, in the order their placeholders
// appear in the template, followed by the rest in documented order.
func orderParams(path string, params []*model.Param) []*model.Param {
	out := make([]*model.Param, 0, len(params))
	taken := make(map[*model.Param]struct{})
	for _, placeholder := range placeholders(path) {
		for _, p := range params {
			if _, ok := taken[p]; ok || p.In != model.InPath || p.WireName != placeholder {
				continue
			}
			taken[p] = struct{}{}
			out = append(out, p)
			break
		}
	}
	for _, p := range params {
		if _, ok := taken[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// bodyOf collapses body and form parameters into one encoding strategy: JSON
// for a single body parameter, a form otherwise.
func bodyOf(params []*model.Param) model.Body {
	var (
		group   []*model.Param
		anyForm bool
	)
	for _, p := range params {
		switch p.In {
		case model.InForm:
			anyForm = true
			group = append(group, p)
		case model.InBody:
			group = append(group, p)
		}
	}
	switch {
	case len(group) == 0:
		return model.Body{Kind: model.BodyNone}
	case anyForm || len(group) > 1:
		return model.Body{Kind: model.BodyForm, Params: group}
	default:
		return model.Body{Kind: model.BodyJSON, Params: group}
	}
}
