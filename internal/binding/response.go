package binding

import (
	"errors"
	"fmt"

	"github.com/mark3labs/restgen/internal/generr"
	"github.com/mark3labs/restgen/internal/model"
	"github.com/mark3labs/restgen/internal/resolver"
	"github.com/mark3labs/restgen/internal/spec"
)

// streamSentinel is the documented type of responses whose item type lives in
// the override table.
const streamSentinel = "Stream"

func (c *Compiler) compileResponse(rec spec.MethodRecord) (model.Response, error) {
	context := fmt.Sprintf("response of %s %s", rec.Verb, rec.Path)
	shape, err := classifyIn(rec.Response.RawType(), context)
	if err != nil {
		return model.Response{}, err
	}

	resp := model.Response{Array: shape.Array, Type: shape.Ref}
	if shape.Ref.Kind == model.RegistryKind && shape.Ref.Name == streamSentinel {
		item, ok := c.cfg.Overrides.StreamItem(rec.Path)
		if !ok {
			return model.Response{}, &generr.StreamOverrideError{Path: rec.Path, Verb: rec.Verb}
		}
		itemShape, err := classifyIn(item, "stream override of "+rec.Path)
		if err != nil {
			return model.Response{}, err
		}
		resp = model.Response{Array: true, Type: itemShape.Ref, Stream: true}
	}

	switch {
	case resp.Type.Is(model.Unit):
		resp.Kind = model.ResponseUnit
		resp.Array = false
	case resp.Type.Is(model.Bytes) && !resp.Array, resp.Type.Is(model.Byte) && resp.Array:
		resp.Kind = model.ResponseBytes
		resp.Type = model.SimpleRef(model.Bytes)
		resp.Array = false
	default:
		resp.Kind = model.ResponseJSON
	}
	return resp, nil
}

func classifyIn(raw, context string) (resolver.Shape, error) {
	shape, err := resolver.Classify(raw)
	if err != nil {
		var typeErr *generr.UnknownTypeError
		if errors.As(err, &typeErr) {
			typeErr.Context = context
		}
		return resolver.Shape{}, err
	}
	if shape.IsEnum() {
		return resolver.Shape{}, &generr.UnknownTypeError{Raw: raw, Context: context, Reason: "inline enums are only supported on resource fields"}
	}
	return shape, nil
}
