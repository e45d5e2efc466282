package goemitter

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/mark3labs/restgen/internal/binding"
	"github.com/mark3labs/restgen/internal/emitter"
	"github.com/mark3labs/restgen/internal/generator"
	"github.com/mark3labs/restgen/internal/model"
	"github.com/mark3labs/restgen/internal/spec"
)

func fixtureAPI(t *testing.T) *model.API {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "testdata", "admin.yaml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	doc, err := spec.ParseDocument(raw, "admin.yaml")
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	api, err := generator.Build(doc, binding.Config{
		BasePath:  binding.DefaultBasePath,
		Overrides: spec.Overrides{"/admin/realms/{realm}/events": "EventRepresentation"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return api
}

func renderAll(t *testing.T, opts emitter.Options) map[string]string {
	t.Helper()
	files, err := Render(fixtureAPI(t), "admin", opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := make(map[string]string, len(files))
	for rel, b := range files {
		out[rel] = string(b)
	}
	return out
}

func mustMatch(t *testing.T, text, pattern string) {
	t.Helper()
	if !regexp.MustCompile(pattern).MatchString(text) {
		t.Fatalf("no match for %q in:\n%s", pattern, text)
	}
}

func TestEmit_DryRun_Plan(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), fixtureAPI(t), emitter.Options{OutDir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.PackageName != DefaultPackageName || res.Language != Language {
		t.Fatalf("names mismatch: %+v", res)
	}
	var rels []string
	for _, pf := range res.Planned {
		rels = append(rels, pf.RelPath)
	}
	if got, want := strings.Join(rels, ","), "client.go,rest.go,types.go"; got != want {
		t.Fatalf("plan = %s, want %s", got, want)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("dry run wrote %d entries", len(entries))
	}
}

func TestEmit_WriteAndContents(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	if _, err := Emit(context.Background(), fixtureAPI(t), emitter.Options{OutDir: dir, PackageName: "admin"}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	fset := token.NewFileSet()
	for _, name := range []string{"types.go", "client.go", "rest.go"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		f, err := parser.ParseFile(fset, name, b, parser.ParseComments)
		if err != nil {
			t.Fatalf("%s does not parse: %v", name, err)
		}
		if f.Name.Name != "admin" {
			t.Fatalf("%s: package %s", name, f.Name.Name)
		}
		if !strings.HasPrefix(string(b), "// Code generated by restgen. DO NOT EDIT.") {
			t.Fatalf("%s: missing generated header", name)
		}
	}
}

func TestEmit_NoForce_NonEmptyDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Emit(context.Background(), fixtureAPI(t), emitter.Options{OutDir: dir})
	if err == nil {
		t.Fatalf("expected error when writing to non-empty dir without --force")
	}
	if _, err := Emit(context.Background(), fixtureAPI(t), emitter.Options{OutDir: dir, Force: true}); err != nil {
		t.Fatalf("force emit: %v", err)
	}
}

func TestEmit_InvalidPackageName(t *testing.T) {
	t.Parallel()
	_, err := Emit(context.Background(), fixtureAPI(t), emitter.Options{OutDir: t.TempDir(), PackageName: "not-valid"})
	if err == nil || !strings.Contains(err.Error(), "invalid package name") {
		t.Fatalf("expected invalid package name error, got %v", err)
	}
}

func TestRender_Types(t *testing.T) {
	t.Parallel()
	types := renderAll(t, emitter.Options{Only: emitter.OnlyTypes})["types.go"]

	mustMatch(t, types, `type ClientRepresentationPolicy string`)
	mustMatch(t, types, `ClientRepresentationPolicySkip\s+ClientRepresentationPolicy = "SKIP"`)
	mustMatch(t, types, "ClientId\\s+\\*string\\s+`json:\"clientId,omitempty\"`")
	mustMatch(t, types, "Type\\s+\\*string\\s+`json:\"type,omitempty\"`")
	mustMatch(t, types, "ProtocolMappers\\s+\\[\\]ProtocolMapperRepresentation\\s+`json:\"protocolMappers,omitempty\"`")
	mustMatch(t, types, "Policy\\s+\\*ClientRepresentationPolicy\\s+`json:\"policy,omitempty\"`")
	mustMatch(t, types, "Config\\s+map\\[string\\]string\\s+`json:\"config,omitempty\"`")
	mustMatch(t, types, "Time\\s+int64\\s+`json:\"time\"`")
}

func TestRender_EnumWireValues(t *testing.T) {
	t.Parallel()
	doc, err := spec.ParseDocument([]byte(`title: Enums
resources:
  - name: Grant
    fields:
      - name: scope
        type: "enum (openid, client-credentials)"
`), "enums.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	api, err := generator.Build(doc, binding.Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	files, err := Render(api, "admin", emitter.Options{Only: emitter.OnlyTypes})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	types := string(files["types.go"])

	// Constants carry the documented tokens, not the variant names.
	mustMatch(t, types, `GrantScopeOpenid\s+GrantScope = "openid"`)
	mustMatch(t, types, `GrantScopeClientcredentials\s+GrantScope = "client-credentials"`)
}

func TestRender_Methods(t *testing.T) {
	t.Parallel()
	rest := renderAll(t, emitter.Options{Only: emitter.OnlyRest})["rest.go"]

	mustMatch(t, rest, `func \(c \*Client\) ClientsGet\(ctx context\.Context, realm string, clientId \*string, first \*int32\) \(\[\]ClientRepresentation, error\)`)
	mustMatch(t, rest, `q\.Add\("clientId", fmt\.Sprint\(\*clientId\)\)`)
	mustMatch(t, rest, `path:\s+"/admin/realms/" \+ pathValue\(realm\) \+ "/clients",`)

	mustMatch(t, rest, `func \(c \*Client\) ClientsWithClientUuidPut\(ctx context\.Context, realm string, clientUuid string, body ClientRepresentation\) error`)
	mustMatch(t, rest, `payload, err := json\.Marshal\(body\)`)

	mustMatch(t, rest, `func \(c \*Client\) DefaultGroupsWithGroupIdPut\(ctx context\.Context, realm string, groupId string\) error`)
	mustMatch(t, rest, `emptyBody:\s+true,`)

	mustMatch(t, rest, `mw\.WriteField\("providerId", fmt\.Sprint\(providerId\)\)`)
	mustMatch(t, rest, `contentType:\s+mw\.FormDataContentType\(\),`)
	mustMatch(t, rest, `IdentityProviderImportConfigPost\([^)]*\) \(map\[string\]string, error\)`)

	mustMatch(t, rest, `method:\s+http\.MethodOptions,`)
	mustMatch(t, rest, `\) \(\[\]byte, error\) \{`)
	mustMatch(t, rest, `return readBody\(resp\)`)

	// "type" is a keyword and is renamed; the wire key is unchanged.
	mustMatch(t, rest, `EventsGet\(ctx context\.Context, realm string, typeParam \[\]string\) \(\[\]EventRepresentation, error\)`)
	mustMatch(t, rest, `for _, v := range typeParam \{\s+q\.Add\("type", fmt\.Sprint\(v\)\)`)

	if strings.Count(rest, "emptyBody") != 1 {
		t.Fatalf("only the bodiless PUT sends an empty body")
	}
}

func TestRender_SplitByResource(t *testing.T) {
	t.Parallel()
	files := renderAll(t, emitter.Options{SplitByResource: true})

	for _, rel := range []string{"types.go", "client.go", "rest_clients.go", "rest_realms_admin.go", "rest_identity_providers.go"} {
		if _, ok := files[rel]; !ok {
			t.Fatalf("missing %s", rel)
		}
	}
	if _, ok := files["rest.go"]; ok {
		t.Fatalf("rest.go is not written when splitting")
	}
	if strings.Contains(files["rest_clients.go"], "EventsGet") {
		t.Fatalf("EventsGet belongs to Realms Admin")
	}
	// Unused runtime imports are pruned per file.
	if strings.Contains(files["rest_realms_admin.go"], `"mime/multipart"`) {
		t.Fatalf("rest_realms_admin.go imports mime/multipart without using it")
	}
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()
	first := renderAll(t, emitter.Options{SplitByResource: true})
	second := renderAll(t, emitter.Options{SplitByResource: true})
	if len(first) != len(second) {
		t.Fatalf("file sets differ")
	}
	for rel, text := range first {
		if second[rel] != text {
			t.Fatalf("%s differs between runs", rel)
		}
	}
}
