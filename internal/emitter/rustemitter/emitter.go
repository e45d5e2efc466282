// Package rustemitter renders the resolved API model as Rust source: serde
// data types and async reqwest method bindings on the admin client.
package rustemitter

import (
	"context"
	"fmt"
	"path"

	"github.com/mark3labs/restgen/internal/emitter"
	"github.com/mark3labs/restgen/internal/model"
)

// Language is the --lang value selecting this emitter.
const Language = "rust"

// Emit renders api into opts.OutDir. Output is a pure function of api and
// opts; a dry run only plans.
func Emit(ctx context.Context, api *model.API, opts emitter.Options) (*emitter.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if api == nil {
		return nil, fmt.Errorf("rustemitter: nil API")
	}
	files, err := Render(api, opts)
	if err != nil {
		return nil, err
	}
	return emitter.Finish(Language, "", files, opts)
}

// Render returns the generated files keyed by slash-separated relative path.
func Render(api *model.API, opts emitter.Options) (map[string][]byte, error) {
	files := map[string][]byte{}
	r := &renderer{api: api}

	if opts.Only.Types() {
		files["types.rs"] = r.types()
	}
	if !opts.Only.Rest() {
		return files, nil
	}
	if !opts.SplitByResource {
		files["rest.rs"] = r.rest(api.Methods)
		return files, nil
	}

	var mod emitter.Writer
	mod.Line("use super::*;")
	for _, tag := range api.Resources() {
		slug := emitter.FileSlug(tag, "_")
		if slug == "" {
			return nil, fmt.Errorf("rustemitter: resource tag %q yields an empty module name", tag)
		}
		rel := path.Join("rest", slug+".rs")
		if _, dup := files[rel]; dup {
			return nil, fmt.Errorf("rustemitter: resource tags collide on module %q", slug)
		}
		files[rel] = r.rest(api.MethodsFor(tag))

		mod.Blank()
		mod.Line(`#[cfg(feature = "tag-`, emitter.FileSlug(tag, "-"), `")]`)
		mod.Line("mod ", slug, ";")
	}
	files["rest/mod.rs"] = mod.Bytes()
	return files, nil
}

type renderer struct {
	api *model.API
}

func (r *renderer) needsLifetime(name string) bool {
	return r.api.Lifetimes != nil && r.api.Lifetimes.NeedsLifetime(name)
}
