package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/restgen/internal/binding"
	"github.com/mark3labs/restgen/internal/emitter"
	"github.com/mark3labs/restgen/internal/emitter/goemitter"
	"github.com/mark3labs/restgen/internal/emitter/rustemitter"
	"github.com/mark3labs/restgen/internal/generator"
	"github.com/mark3labs/restgen/internal/model"
	"github.com/mark3labs/restgen/internal/spec"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// apiVersionEnv names the environment variable carrying the documented API
// version used in documentation links.
const apiVersionEnv = "KEYCLOAK_VERSION"

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, the environment and CLI overrides.
type GenerateConfig struct {
	Input           string
	Overrides       string
	Lang            string
	Out             string
	APIVersion      string
	DocBaseURL      string
	BasePath        string
	PackageName     string
	SplitByResource bool
	Only            string
	IncludeTags     []string
	ExcludeTags     []string
	ConfigPath      string
	SkipValidation  bool
	DryRun          bool
	Force           bool
	Verbose         bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Lang:       rustemitter.Language,
		Out:        "generated",
		APIVersion: binding.DefaultAPIVersion,
		DocBaseURL: binding.DefaultDocBaseURL,
		BasePath:   binding.DefaultBasePath,
	}
}

type emitFunc func(context.Context, *model.API, emitter.Options) (*emitter.Result, error)

var emitters = map[string]emitFunc{
	rustemitter.Language: rustemitter.Emit,
	goemitter.Language:   goemitter.Emit,
}

var generateRunner = runGenerate

var lookupEnv = os.LookupEnv

var (
	logOutput  io.Writer = os.Stderr
	planOutput io.Writer = os.Stdout
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a typed client from API documentation records or an OpenAPI document",
		Long: "Generate data types and method bindings from extracted documentation records " +
			"or an OpenAPI/Swagger document. Options can be provided via flags, a config file, " +
			"the " + apiVersionEnv + " environment variable, or defaults.",
		Example: strings.TrimSpace(`  restgen generate --input records.yaml --overrides overrides.yaml --out ./src
  restgen generate --input openapi.json --lang go --package-name admin --out ./admin
  restgen --config restgen.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the record document or OpenAPI/Swagger document")
	flags.String("overrides", "", "Path or URL to the stream/parameter override table")
	flags.String("lang", "", "Target language to emit (rust|go); defaults to rust")
	flags.String("out", "", "Output directory; defaults to ./generated")
	flags.String("api-version", "", "API version used in documentation links (env "+apiVersionEnv+")")
	flags.String("doc-base-url", "", "Base URL of the published API documentation")
	flags.String("base-path", "", "Path prefix dropped from generated method names")
	flags.String("package-name", "", "Go package name of the generated client")
	flags.Bool("split-by-resource", false, "Write one bindings file per resource tag")
	flags.String("only", "", "Emit only one output family (types|rest)")
	flags.StringSlice("include-tags", nil, "Only include methods with these resource tags")
	flags.StringSlice("exclude-tags", nil, "Exclude methods with these resource tags")
	flags.Bool("skip-validation", false, "Skip record validation before generation")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if v, ok := lookupEnv(apiVersionEnv); ok && strings.TrimSpace(v) != "" {
		cfg.APIVersion = strings.TrimSpace(v)
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"input", &cfg.Input},
		{"overrides", &cfg.Overrides},
		{"lang", &cfg.Lang},
		{"out", &cfg.Out},
		{"api-version", &cfg.APIVersion},
		{"doc-base-url", &cfg.DocBaseURL},
		{"base-path", &cfg.BasePath},
		{"package-name", &cfg.PackageName},
		{"only", &cfg.Only},
	}
	for _, s := range strs {
		if !flags.Changed(s.name) {
			continue
		}
		value, err := flags.GetString(s.name)
		if err != nil {
			return err
		}
		*s.dst = strings.TrimSpace(value)
	}

	lists := []struct {
		name string
		dst  *[]string
	}{
		{"include-tags", &cfg.IncludeTags},
		{"exclude-tags", &cfg.ExcludeTags},
	}
	for _, l := range lists {
		if !flags.Changed(l.name) {
			continue
		}
		value, err := flags.GetStringSlice(l.name)
		if err != nil {
			return err
		}
		*l.dst = sanitizeTags(value)
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"split-by-resource", &cfg.SplitByResource},
		{"skip-validation", &cfg.SkipValidation},
		{"dry-run", &cfg.DryRun},
		{"force", &cfg.Force},
		{"verbose", &cfg.Verbose},
	}
	for _, b := range bools {
		if !flags.Changed(b.name) {
			continue
		}
		value, err := flags.GetBool(b.name)
		if err != nil {
			return err
		}
		*b.dst = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Overrides = strings.TrimSpace(c.Overrides)
	c.Lang = strings.ToLower(strings.TrimSpace(c.Lang))
	c.Out = strings.TrimSpace(c.Out)
	c.APIVersion = strings.TrimSpace(c.APIVersion)
	c.DocBaseURL = strings.TrimSpace(c.DocBaseURL)
	c.BasePath = strings.TrimSpace(c.BasePath)
	c.PackageName = strings.TrimSpace(c.PackageName)
	c.Only = strings.ToLower(strings.TrimSpace(c.Only))
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}

	if c.Lang == "" {
		c.Lang = rustemitter.Language
	}
	if _, ok := emitters[c.Lang]; !ok {
		return usageErrorf("generate: unsupported --lang %q (allowed: rust, go)", c.Lang)
	}

	if _, err := emitter.ParseOnly(c.Only); err != nil {
		return newUsageError("generate: " + err.Error())
	}

	if c.Out == "" {
		return newUsageError("generate: --out must not be empty")
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return usageErrorf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", "))
	}

	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: level}))
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	log := newLogger(cfg.Verbose)

	// 1) Load the records (file or http/https URL), converting OpenAPI input
	doc, format, err := spec.Load(ctx, cfg.Input, spec.WithSkipValidation(cfg.SkipValidation))
	if err != nil {
		return specUsageError(err)
	}
	log.Debug("input loaded",
		slog.String("input", cfg.Input),
		slog.String("format", string(format)),
		slog.Int("resources", len(doc.Resources)),
		slog.Int("methods", len(doc.Methods)))

	overrides, err := spec.LoadOverrides(ctx, cfg.Overrides)
	if err != nil {
		return specUsageError(err)
	}

	// 2) Apply resource tag filters
	if dropped := filterMethods(doc, cfg.IncludeTags, cfg.ExcludeTags); dropped > 0 {
		log.Debug("methods filtered", slog.Int("dropped", dropped), slog.Int("kept", len(doc.Methods)))
	}

	// 3) Resolve types and compile methods; nothing is written on failure
	api, err := generator.Build(doc, binding.Config{
		APIVersion: cfg.APIVersion,
		DocBaseURL: cfg.DocBaseURL,
		BasePath:   cfg.BasePath,
		Overrides:  overrides,
	}, generator.WithLogger(log))
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	// 4) Emit for the chosen language
	only, _ := emitter.ParseOnly(cfg.Only)
	res, err := emitters[cfg.Lang](ctx, api, emitter.Options{
		OutDir:          cfg.Out,
		PackageName:     cfg.PackageName,
		SplitByResource: cfg.SplitByResource,
		Only:            only,
		Force:           cfg.Force,
		DryRun:          cfg.DryRun,
		Verbose:         cfg.Verbose,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}

	paths := make([]string, 0, len(res.Planned))
	for _, p := range res.Planned {
		paths = append(paths, p.RelPath)
	}
	if cfg.DryRun {
		printPlan(absOut, paths)
		return nil
	}
	log.Info("generated",
		slog.String("lang", res.Language),
		slog.String("out", absOut),
		slog.Int("files", len(paths)),
		slog.Int("types", len(api.Registry.Structs())+len(api.Registry.Enums())),
		slog.Int("methods", len(api.Methods)))
	return nil
}

// specUsageError maps structured loader errors into friendly messages.
func specUsageError(err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("spec: %s", se.Message)
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return newUsageError(msg)
}

// filterMethods drops methods whose resource tag is not included or is
// excluded, and returns how many were dropped. Types are kept whole.
func filterMethods(doc *spec.Document, include, exclude []string) int {
	if len(include) == 0 && len(exclude) == 0 {
		return 0
	}
	inc := toSet(include)
	exc := toSet(exclude)
	kept := make([]spec.MethodRecord, 0, len(doc.Methods))
	for _, m := range doc.Methods {
		if len(inc) > 0 {
			if _, ok := inc[m.Resource]; !ok {
				continue
			}
		}
		if _, ok := exc[m.Resource]; ok {
			continue
		}
		kept = append(kept, m)
	}
	dropped := len(doc.Methods) - len(kept)
	doc.Methods = kept
	return dropped
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func printPlan(outDir string, relPaths []string) {
	fmt.Fprintf(planOutput, "Planned writes to %s (%d files):\n", outDir, len(relPaths))
	for _, p := range relPaths {
		fmt.Fprintf(planOutput, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return usageErrorf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg)
	}
	return err
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := toSet(a)
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return usageErrorf("read config file %q: %v", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return usageErrorf("parse config file %q: %v", path, err)
	}

	strs := map[string]*string{
		"input":       &cfg.Input,
		"overrides":   &cfg.Overrides,
		"lang":        &cfg.Lang,
		"out":         &cfg.Out,
		"apiversion":  &cfg.APIVersion,
		"docbaseurl":  &cfg.DocBaseURL,
		"basepath":    &cfg.BasePath,
		"packagename": &cfg.PackageName,
		"only":        &cfg.Only,
	}
	lists := map[string]*[]string{
		"includetags": &cfg.IncludeTags,
		"excludetags": &cfg.ExcludeTags,
	}
	bools := map[string]*bool{
		"splitbyresource": &cfg.SplitByResource,
		"skipvalidation":  &cfg.SkipValidation,
		"dryrun":          &cfg.DryRun,
		"force":           &cfg.Force,
		"verbose":         &cfg.Verbose,
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		if dst, ok := strs[normalized]; ok {
			str, err := valueAsString(value)
			if err != nil {
				return usageErrorf("config field %q: %v", key, err)
			}
			*dst = str
			continue
		}
		if dst, ok := lists[normalized]; ok {
			list, err := valueAsStringSlice(value)
			if err != nil {
				return usageErrorf("config field %q: %v", key, err)
			}
			*dst = sanitizeTags(list)
			continue
		}
		if dst, ok := bools[normalized]; ok {
			val, err := valueAsBool(value)
			if err != nil {
				return usageErrorf("config field %q: %v", key, err)
			}
			*dst = val
			continue
		}
		return usageErrorf("config file %q: unknown field %q", path, key)
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	case int, float64:
		// Bare YAML numbers such as apiVersion: 26
		return fmt.Sprint(val), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
