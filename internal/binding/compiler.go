// Package binding compiles method records into emission-ready method models:
// classified and ordered parameters, a synthesized identifier, the rewritten
// path template, the resolved response and the documentation block.
package binding

import (
	"fmt"
	"strings"

	"github.com/mark3labs/restgen/internal/generr"
	"github.com/mark3labs/restgen/internal/model"
	"github.com/mark3labs/restgen/internal/spec"
)

const (
	DefaultDocBaseURL = "https://www.keycloak.org/docs-api"
	DefaultBasePath   = "/admin/realms"
	DefaultAPIVersion = "latest"
)

// Config is the per-run input of the compiler.
type Config struct {
	// APIVersion is the documentation version used in documentation links.
	APIVersion string
	// DocBaseURL prefixes documentation links.
	DocBaseURL string
	// BasePath is trimmed from paths before identifier synthesis. Empty
	// disables trimming.
	BasePath string
	// Overrides is the stream override table.
	Overrides spec.Overrides
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.APIVersion) == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if strings.TrimSpace(c.DocBaseURL) == "" {
		c.DocBaseURL = DefaultDocBaseURL
	}
	c.DocBaseURL = strings.TrimRight(c.DocBaseURL, "/")
	if c.Overrides == nil {
		c.Overrides = spec.Overrides{}
	}
	return c
}

// Compiler builds method models against a complete, read-only registry.
type Compiler struct {
	cfg Config
	reg *model.Registry
}

// NewCompiler returns a compiler for cfg over reg.
func NewCompiler(cfg Config, reg *model.Registry) *Compiler {
	return &Compiler{cfg: cfg.withDefaults(), reg: reg}
}

// Compile turns one method record into a method model or a fatal error.
func (c *Compiler) Compile(rec spec.MethodRecord) (*model.Method, error) {
	params, err := c.compileParams(rec)
	if err != nil {
		return nil, err
	}
	response, err := c.compileResponse(rec)
	if err != nil {
		return nil, err
	}

	m := &model.Method{
		Ident:         Identifier(rec, c.cfg.BasePath),
		Verb:          rec.Verb,
		Resource:      rec.Resource,
		Anchor:        rec.Anchor,
		Path:          rec.Path,
		RewrittenPath: RewritePath(rec.Path, params),
		Params:        orderParams(rec.Path, params),
		Body:          bodyOf(params),
		Response:      response,
	}
	m.Doc = c.docs(rec, m, params)

	if err := c.checkRefs(m); err != nil {
		return nil, err
	}
	return m, nil
}

// checkRefs verifies that every type the method mentions is in the registry.
func (c *Compiler) checkRefs(m *model.Method) error {
	if c.reg == nil {
		return nil
	}
	for _, p := range m.Params {
		if !c.reg.Resolves(p.Type) {
			return &generr.UnresolvedReferenceError{Name: p.Type.Name, Context: fmt.Sprintf("parameter %s of %s %s", p.WireName, m.Verb, m.Path)}
		}
	}
	if !c.reg.Resolves(m.Response.Type) {
		return &generr.UnresolvedReferenceError{Name: m.Response.Type.Name, Context: fmt.Sprintf("response of %s %s", m.Verb, m.Path)}
	}
	return nil
}
