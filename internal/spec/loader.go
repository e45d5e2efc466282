package spec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
	ConversionError ErrorCode = "ConversionError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// AllowFileRefs controls whether file:// refs are allowed for external
	// references of OpenAPI inputs. Always allowed when the root input is a
	// local file.
	AllowFileRefs bool
	// SkipValidation disables record validation after decoding.
	SkipValidation bool
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout:   10 * time.Second,
		MaxRetries:    3,
		BackoffBase:   200 * time.Millisecond,
		AllowFileRefs: false,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithAllowFileRefs(allow bool) Option    { return func(s *Settings) { s.AllowFileRefs = allow } }
func WithSkipValidation(skip bool) Option    { return func(s *Settings) { s.SkipValidation = skip } }

// SourceFormat identifies which kind of document an input held.
type SourceFormat string

const (
	FormatRecords SourceFormat = "records"
	FormatOpenAPI SourceFormat = "openapi3"
	FormatSwagger SourceFormat = "swagger2"
)

// Load reads an API description and returns its record Document.
//
// input may be a filesystem path or an http/https URL holding either a record
// document (YAML or JSON with resources/methods) or an OpenAPI v3 / Swagger
// v2.0 document, which is converted into records. The returned format tells
// which one was found.
func Load(ctx context.Context, input string, opts ...Option) (*Document, SourceFormat, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	raw, location, err := readInput(ctx, input, settings)
	if err != nil {
		return nil, "", err
	}

	version, err := detectSpecVersion(raw)
	if err != nil {
		return nil, "", &SpecError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	}

	var (
		doc    *Document
		format SourceFormat
	)
	switch version {
	case 3:
		format = FormatOpenAPI
		oas, err := loadOpenAPI3(ctx, raw, location, settings)
		if err != nil {
			return nil, "", err
		}
		doc, err = FromOpenAPI(oas)
		if err != nil {
			return nil, "", &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert openapi: %v", err), Location: location, Cause: err}
		}
	case 2:
		format = FormatSwagger
		// Preprocess incompatible v2 constructs to improve conversion success.
		if fixed, changed, _ := preprocessV2ForCompatibility(raw); changed {
			raw = fixed
		}
		v3doc, err := convertV2ToV3(raw)
		if err != nil {
			return nil, "", &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: location, Cause: err}
		}
		if err := v3doc.Validate(ctx); err != nil && !canProceedDespiteValidation(err) {
			return nil, "", mapValidateOrParseErr(err, location)
		}
		doc, err = FromOpenAPI(v3doc)
		if err != nil {
			return nil, "", &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert openapi: %v", err), Location: location, Cause: err}
		}
	default:
		format = FormatRecords
		doc, err = ParseDocument(raw, location)
		if err != nil {
			return nil, "", err
		}
	}

	if !settings.SkipValidation {
		if err := Validate(doc); err != nil {
			var se *SpecError
			if errors.As(err, &se) && se.Location == "" {
				se.Location = location
			}
			return nil, "", err
		}
	}
	return doc, format, nil
}

// ParseDocument decodes a record document and normalizes its free-form
// values (verb case, whitespace).
func ParseDocument(data []byte, location string) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse records: %v", err), Location: location, Cause: err}
	}
	doc.normalize()
	return &doc, nil
}

func (d *Document) normalize() {
	for i := range d.Resources {
		r := &d.Resources[i]
		r.Name = strings.TrimSpace(r.Name)
		for j := range r.Fields {
			f := &r.Fields[j]
			f.Name = strings.TrimSpace(f.Name)
			f.Type = strings.TrimSpace(f.Type)
			f.Optionality = strings.TrimSpace(f.Optionality)
		}
	}
	for i := range d.Methods {
		m := &d.Methods[i]
		m.Verb = strings.ToUpper(strings.TrimSpace(m.Verb))
		m.Path = strings.TrimSpace(m.Path)
		m.Resource = strings.TrimSpace(m.Resource)
		m.Name = strings.TrimSpace(m.Name)
		m.Anchor = strings.TrimSpace(m.Anchor)
		for j := range m.Parameters {
			p := &m.Parameters[j]
			p.Name = strings.TrimSpace(p.Name)
			p.Type = strings.TrimSpace(p.Type)
			p.Optionality = strings.TrimSpace(p.Optionality)
		}
	}
}

// readInput returns the raw bytes of a local file or an http/https URL along
// with a display location.
func readInput(ctx context.Context, input string, settings Settings) ([]byte, string, error) {
	if strings.TrimSpace(input) == "" {
		return nil, "", &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	// Classify input as URL or file path.
	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, input, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked by default", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, input, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, input, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		return raw, input, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, input, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, abs, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return raw, abs, nil
}

func loadOpenAPI3(ctx context.Context, raw []byte, location string, settings Settings) (*openapi3.T, error) {
	isFile := !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://")
	loader := newLoader(settings, isFile)

	var (
		doc *openapi3.T
		err error
	)
	if isFile {
		doc, err = loader.LoadFromFile(location)
	} else {
		u, perr := url.Parse(location)
		if perr != nil {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("parse location: %v", perr), Location: location, Cause: perr}
		}
		doc, err = loader.LoadFromDataWithPath(raw, u)
	}
	if err != nil {
		return nil, mapValidateOrParseErr(err, location)
	}
	if err := doc.Validate(ctx); err != nil {
		if !canProceedDespiteValidation(err) {
			return nil, mapValidateOrParseErr(err, location)
		}
		// proceed in permissive mode
	}
	return doc, nil
}

func newLoader(settings Settings, rootIsFile bool) *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	client := &http.Client{Timeout: settings.HTTPTimeout}
	// Allow file refs only when configured or when loading from a local file root.
	allowFile := settings.AllowFileRefs || rootIsFile
	loader.ReadFromURIFunc = func(l *openapi3.Loader, uri *url.URL) ([]byte, error) {
		switch strings.ToLower(uri.Scheme) {
		case "", "file":
			if !allowFile {
				return nil, fmt.Errorf("blocked file ref: %s", uri.String())
			}
			path := uri.Path
			if path == "" {
				path = uri.Opaque
			}
			return os.ReadFile(path)
		case "http", "https":
			req, err := http.NewRequest(http.MethodGet, uri.String(), nil)
			if err != nil {
				return nil, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, uri.String())
			}
			return io.ReadAll(resp.Body)
		default:
			return nil, fmt.Errorf("unsupported ref scheme: %s", uri.Scheme)
		}
	}
	return loader
}

// detectSpecVersion returns 3 for OpenAPI v3, 2 for Swagger v2 and 0 for
// anything else, which is treated as a record document.
func detectSpecVersion(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parse input: %w", err)
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return 3, nil
		}
		return 0, fmt.Errorf("spec: unsupported openapi version %v (expected 3.x)", v)
	}
	if v, ok := root["swagger"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
			return 2, nil
		}
		return 0, fmt.Errorf("spec: unsupported swagger version %v (expected 2.0)", v)
	}
	return 0, nil
}

func convertV2ToV3(data []byte) (*openapi3.T, error) {
	// For kin-openapi v0.116.0, convert by unmarshalling to v2 then calling ToV3.
	var v2 openapi2.T
	if err := yaml.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		// Backoff before next attempt
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// fetchOnce performs a single GET and reports whether a failure is transient.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func mapValidateOrParseErr(err error, location string) error {
	pointer := extractJSONPointer(err)
	code := ValidationError
	// Heuristics: some loader errors are parse errors.
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") {
		code = ParseError
	}
	return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	// Unwrap MultiError and take the first for brevity.
	if me, ok := err.(openapi3.MultiError); ok {
		if len(me) > 0 {
			return extractJSONPointer(me[0])
		}
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}

// canProceedDespiteValidation returns true for validation errors where a
// best-effort conversion can still proceed (e.g., unresolved $ref entries).
func canProceedDespiteValidation(err error) bool {
	if err == nil {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref") || strings.Contains(s, "found unresolved ref")
}
