// Package generator runs the resolution pipeline: resource records into the
// type registry, method records into method models, then a reference check
// over the whole model. It is single-threaded and deterministic; any fatal
// error stops it before an emitter sees the model.
package generator

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/restgen/internal/binding"
	"github.com/mark3labs/restgen/internal/generr"
	"github.com/mark3labs/restgen/internal/model"
	"github.com/mark3labs/restgen/internal/resolver"
	"github.com/mark3labs/restgen/internal/spec"
)

// Option configures Build.
type Option func(*settings)

type settings struct {
	logger *slog.Logger
}

// WithLogger sets the logger for phase summaries and identifier collision
// warnings. Logging is discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Build resolves doc into an emission-ready API model.
func Build(doc *spec.Document, cfg binding.Config, opts ...Option) (*model.API, error) {
	if doc == nil {
		return nil, fmt.Errorf("generator: nil document")
	}
	s := &settings{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(s)
	}
	log := s.logger

	// 1) Types
	reg, err := resolver.Build(doc.Resources)
	if err != nil {
		return nil, fmt.Errorf("resolve types: %w", err)
	}
	if err := checkFieldRefs(reg); err != nil {
		return nil, fmt.Errorf("resolve types: %w", err)
	}
	log.Debug("types resolved",
		slog.Int("structs", len(reg.Structs())),
		slog.Int("enums", len(reg.Enums())))

	// 2) Methods
	compiler := binding.NewCompiler(cfg, reg)
	methods := make([]*model.Method, 0, len(doc.Methods))
	for _, rec := range doc.Methods {
		m, err := compiler.Compile(rec)
		if err != nil {
			return nil, fmt.Errorf("compile methods: %w", err)
		}
		methods = append(methods, m)
	}
	warnCollisions(log, methods)
	log.Debug("methods compiled", slog.Int("methods", len(methods)))

	return &model.API{
		Title:     doc.Title,
		Version:   doc.Version,
		Registry:  reg,
		Lifetimes: resolver.NewLifetimes(reg),
		Methods:   methods,
	}, nil
}

// checkFieldRefs verifies that every field type resolves in the registry.
func checkFieldRefs(reg *model.Registry) error {
	for _, st := range reg.Structs() {
		for _, f := range st.Fields {
			if !reg.Resolves(f.Type) {
				return &generr.UnresolvedReferenceError{Name: f.Type.Name, Context: st.Name + "." + f.WireName}
			}
		}
	}
	return nil
}

// warnCollisions reports methods that synthesize the same identifier. Both
// are kept.
func warnCollisions(log *slog.Logger, methods []*model.Method) {
	seen := make(map[string]*model.Method, len(methods))
	for _, m := range methods {
		first, ok := seen[m.Ident]
		if !ok {
			seen[m.Ident] = m
			continue
		}
		log.Warn("identifier collision",
			slog.String("identifier", m.Ident),
			slog.String("first", first.Verb+" "+first.Path),
			slog.String("second", m.Verb+" "+m.Path))
	}
}
