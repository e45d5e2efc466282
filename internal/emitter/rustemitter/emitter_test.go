package rustemitter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/restgen/internal/binding"
	"github.com/mark3labs/restgen/internal/emitter"
	"github.com/mark3labs/restgen/internal/generator"
	"github.com/mark3labs/restgen/internal/model"
	"github.com/mark3labs/restgen/internal/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureAPI(t *testing.T) *model.API {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "testdata", "admin.yaml"))
	require.NoError(t, err)
	doc, err := spec.ParseDocument(raw, "admin.yaml")
	require.NoError(t, err)
	rawOverrides, err := os.ReadFile(filepath.Join("..", "testdata", "overrides.yaml"))
	require.NoError(t, err)
	overrides, err := spec.ParseOverrides(rawOverrides, "overrides.yaml")
	require.NoError(t, err)

	api, err := generator.Build(doc, binding.Config{
		APIVersion: "26.0.0",
		BasePath:   binding.DefaultBasePath,
		Overrides:  overrides,
	})
	require.NoError(t, err)
	return api
}

func render(t *testing.T, opts emitter.Options) map[string]string {
	t.Helper()
	files, err := Render(fixtureAPI(t), opts)
	require.NoError(t, err)
	out := make(map[string]string, len(files))
	for k, v := range files {
		out[k] = string(v)
	}
	return out
}

// method returns the rendered text of one bindings function, docs included.
func method(t *testing.T, rest, ident string) string {
	t.Helper()
	start := strings.Index(rest, "    pub async fn "+ident+"(")
	require.GreaterOrEqual(t, start, 0, "method %s not rendered", ident)
	for start > 0 {
		prev := strings.LastIndex(rest[:start-1], "\n") + 1
		line := rest[prev : start-1]
		if !strings.HasPrefix(line, "    ///") && !strings.HasPrefix(line, "    #[") {
			break
		}
		start = prev
	}
	end := strings.Index(rest[start:], "\n    }\n")
	require.GreaterOrEqual(t, end, 0)
	return rest[start : start+end+len("\n    }\n")]
}

func TestRender_Types(t *testing.T) {
	types := render(t, emitter.Options{Only: emitter.OnlyTypes})["types.rs"]

	assert.True(t, strings.HasPrefix(types, "use std::borrow::Cow;\nuse std::collections::HashMap;\n\n#[cfg(feature = \"schemars\")]\n"))

	assert.Contains(t, types, `#[derive(Clone, Debug, Deserialize, Eq, PartialEq, Serialize)]
#[cfg_attr(feature = "schemars", derive(JsonSchema))]
#[serde(rename_all = "UPPERCASE")]
pub enum ClientRepresentationPolicy {
    Skip,
    Overwrite,
}
`)

	assert.Contains(t, types, `#[skip_serializing_none]
#[derive(Clone, Debug, Default, Deserialize, PartialEq, Serialize)]
#[cfg_attr(feature = "schemars", derive(JsonSchema))]
#[serde(rename_all = "camelCase")]
pub struct ClientRepresentation<'a> {
    pub client_id: Option<Cow<'a, str>>,
    pub redirect_uris: Option<Vec<Cow<'a, str>>>,
    pub protocol_mappers: Option<Vec<ProtocolMapperRepresentation<'a>>>,
    #[serde(rename = "type")]
    pub type_: Option<Cow<'a, str>>,
    pub policy: Option<ClientRepresentationPolicy>,
}
`)

	assert.Contains(t, types, "    pub config: Option<HashMap<Cow<'a, str>, Cow<'a, str>>>,\n")
	assert.Contains(t, types, `pub struct EventRepresentation {
    pub time: i64,
    pub realm_id: Option<i32>,
}
`)

	// Enums precede structs.
	assert.Less(t, strings.Index(types, "pub enum "), strings.Index(types, "pub struct "))
}

func TestRender_QueryAndArrayResponse(t *testing.T) {
	rest := render(t, emitter.Options{Only: emitter.OnlyRest})["rest.rs"]

	assert.Equal(t, `    /// Get clients belonging to the realm
    ///
    /// Parameters:
    ///
    /// - `+"`realm`"+`: realm name (not id!)
    /// - `+"`client_id`"+`: filter by clientId
    /// - `+"`first`"+`
    ///
    /// Resource: `+"`Clients`"+`
    ///
    /// `+"`GET /admin/realms/{realm}/clients`"+`
    ///
    /// Documentation: <https://www.keycloak.org/docs-api/26.0.0/rest-api/index.html#_get_adminrealmsrealmclients>
    pub async fn clients_get(
        &self,
        realm: &str,
        client_id: Option<String>,
        first: Option<i32>,
    ) -> Result<Vec<ClientRepresentation<'static>>, KeycloakError> {
        let mut builder = self
            .client
            .get(&format!("{}/admin/realms/{}/clients", self.url, realm))
            .bearer_auth(self.token_supplier.get(&self.url).await?);
        if let Some(v) = client_id {
            builder = builder.query(&[("clientId", v)]);
        }
        if let Some(v) = first {
            builder = builder.query(&[("first", v)]);
        }
        let response = builder.send().await?;
        Ok(error_check(response).await?.json().await?)
    }
`, method(t, rest, "clients_get"))
}

func TestRender_PutBodyOrHeader(t *testing.T) {
	rest := render(t, emitter.Options{})["rest.rs"]

	withBody := method(t, rest, "clients_with_client_uuid_put")
	assert.Contains(t, withBody, "        body: ClientRepresentation<'_>,\n")
	assert.Contains(t, withBody, "            .json(&body)\n")
	assert.NotContains(t, withBody, "CONTENT_LENGTH")
	assert.Contains(t, withBody, "        let builder = self\n")
	assert.Contains(t, withBody, "        error_check(response).await?;\n        Ok(())\n")

	bodiless := method(t, rest, "default_groups_with_group_id_put")
	assert.Contains(t, bodiless, `            .header(CONTENT_LENGTH, "0")`+"\n")
	assert.NotContains(t, bodiless, ".json(")
}

func TestRender_FormBody(t *testing.T) {
	rest := render(t, emitter.Options{})["rest.rs"]
	assert.Contains(t, rest, "use serde_json::{json, Value};\n")

	form := method(t, rest, "identity_provider_import_config_post")
	assert.Contains(t, form, `            .form(&json!({
                "providerId": provider_id,
                "fromUrl": from_url,
            }))
`)
	assert.Contains(t, form, ") -> Result<HashMap<String, String>, KeycloakError> {")
}

func TestRender_OptionsBytesAndStream(t *testing.T) {
	rest := render(t, emitter.Options{})["rest.rs"]

	options := method(t, rest, "clients_options")
	assert.Contains(t, options, `            .request(reqwest::Method::OPTIONS, &format!("{}/admin/realms/{}/clients", self.url, realm))`)

	bytes := method(t, rest, "clients_with_client_uuid_installation_providers_with_provider_id_get")
	assert.Contains(t, bytes, ") -> Result<Vec<u8>, KeycloakError> {")
	assert.Contains(t, bytes, "        Ok(error_check(response).await?.bytes().await?.to_vec())\n")
	assert.Contains(t, bytes, `"{}/admin/realms/{}/clients/{}/installation/providers/{}", self.url, realm, client_uuid, provider_id`)

	stream := method(t, rest, "events_get")
	assert.Contains(t, stream, ") -> Result<Vec<EventRepresentation>, KeycloakError> {")
	assert.Contains(t, stream, `        if let Some(v) = type_ {
            for item in v {
                builder = builder.query(&[("type", item)]);
            }
        }
`)
}

func TestRender_TooManyArguments(t *testing.T) {
	params := make([]*model.Param, 0, 8)
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		params = append(params, &model.Param{WireName: n, Name: n, In: model.InQuery, Optional: true, Type: model.SimpleRef(model.Bool)})
	}
	api := &model.API{
		Registry: model.NewRegistry(),
		Methods: []*model.Method{{
			Ident: "flags_get", Verb: "GET", Resource: "Flags",
			Path: "/flags", RewrittenPath: "/flags", Params: params,
			Response: model.Response{Kind: model.ResponseUnit, Type: model.SimpleRef(model.Unit)},
		}},
	}
	files, err := Render(api, emitter.Options{Only: emitter.OnlyRest})
	require.NoError(t, err)
	assert.Contains(t, string(files["rest.rs"]), "    #[allow(clippy::too_many_arguments)]\n    pub async fn flags_get(\n")
}

func TestRender_UnmappedPlaceholderIsEscaped(t *testing.T) {
	api := &model.API{
		Registry: model.NewRegistry(),
		Methods: []*model.Method{{
			Ident: "x_get", Verb: "GET", Resource: "X",
			Path: "/x/{id}/{other}", RewrittenPath: "/x/{id}/{other}",
			Params:   []*model.Param{{WireName: "id", Name: "id", In: model.InPath, Type: model.LifetimeRef(model.String)}},
			Response: model.Response{Kind: model.ResponseUnit, Type: model.SimpleRef(model.Unit)},
		}},
	}
	files, err := Render(api, emitter.Options{Only: emitter.OnlyRest})
	require.NoError(t, err)
	assert.Contains(t, string(files["rest.rs"]), `.get(&format!("{}/x/{}/{{other}}", self.url, id))`)
}

func TestRender_SplitByResource(t *testing.T) {
	files := render(t, emitter.Options{SplitByResource: true})

	assert.Contains(t, files, "types.rs")
	assert.NotContains(t, files, "rest.rs")
	assert.Equal(t, `use super::*;

#[cfg(feature = "tag-clients")]
mod clients;

#[cfg(feature = "tag-realms-admin")]
mod realms_admin;

#[cfg(feature = "tag-identity-providers")]
mod identity_providers;
`, files["rest/mod.rs"])

	assert.Contains(t, files["rest/clients.rs"], "pub async fn clients_get(")
	assert.NotContains(t, files["rest/clients.rs"], "events_get")
	assert.NotContains(t, files["rest/clients.rs"], "json, Value")
	assert.Contains(t, files["rest/identity_providers.rs"], "use serde_json::{json, Value};")
}

func TestRender_Deterministic(t *testing.T) {
	first := render(t, emitter.Options{SplitByResource: true})
	second := render(t, emitter.Options{SplitByResource: true})
	assert.Equal(t, first, second)
}

func TestEmit_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	res, err := Emit(context.Background(), fixtureAPI(t), emitter.Options{OutDir: dir})
	require.NoError(t, err)
	assert.Equal(t, Language, res.Language)

	var rels []string
	for _, pf := range res.Planned {
		rels = append(rels, pf.RelPath)
	}
	assert.Equal(t, []string{"rest.rs", "types.rs"}, rels)

	types, err := os.ReadFile(filepath.Join(dir, "types.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(types), "pub struct ClientRepresentation<'a> {")
}

func TestEmit_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	res, err := Emit(context.Background(), fixtureAPI(t), emitter.Options{OutDir: dir, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, res.Planned, 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEmit_NilAPI(t *testing.T) {
	_, err := Emit(context.Background(), nil, emitter.Options{OutDir: t.TempDir()})
	assert.Error(t, err)
}
