package rustemitter

import (
	"strings"

	"github.com/mark3labs/restgen/internal/emitter"
	"github.com/mark3labs/restgen/internal/model"
)

// maxArguments is clippy's too_many_arguments threshold.
const maxArguments = 7

func (r *renderer) rest(methods []*model.Method) []byte {
	var w emitter.Writer
	w.Line("use std::collections::HashMap;")
	w.Blank()
	w.Line("use reqwest::header::CONTENT_LENGTH;")
	if usesForm(methods) {
		w.Line("use serde_json::{json, Value};")
	} else {
		w.Line("use serde_json::Value;")
	}
	w.Blank()
	w.Line("use super::*;")
	w.Blank()
	w.Line("impl<TS: KeycloakTokenSupplier> KeycloakAdmin<TS> {")
	for i, m := range methods {
		if i > 0 {
			w.Blank()
		}
		r.method(&w, m)
	}
	w.Line("}")
	return w.Bytes()
}

func usesForm(methods []*model.Method) bool {
	for _, m := range methods {
		if m.Body.Kind == model.BodyForm {
			return true
		}
	}
	return false
}

func (r *renderer) method(w *emitter.Writer, m *model.Method) {
	w.Doc("    ", "/// ", m.Doc)
	if len(m.Params) > maxArguments {
		w.Line("    #[allow(clippy::too_many_arguments)]")
	}
	w.Line("    pub async fn ", m.Ident, "(")
	w.Line("        &self,")
	for _, p := range m.Params {
		w.Line("        ", p.Name, ": ", r.paramType(p), ",")
	}
	w.Line("    ) -> Result<", r.responseType(m.Response), ", KeycloakError> {")

	if m.HasQuery() {
		w.Line("        let mut builder = self")
	} else {
		w.Line("        let builder = self")
	}
	w.Line("            .client")
	call := strings.ToLower(m.Verb) + "("
	if m.UsesRawRequest() {
		call = "request(reqwest::Method::OPTIONS, "
	}
	w.Line("            .", call, urlFormat(m), ")")

	switch {
	case m.Body.Kind == model.BodyForm:
		w.Line("            .form(&json!({")
		for _, p := range m.Body.Params {
			w.Line(`                "`, p.WireName, `": `, p.Name, ",")
		}
		w.Line("            }))")
	case m.Body.Kind == model.BodyJSON:
		w.Line("            .json(&", m.Body.Params[0].Name, ")")
	case m.NeedsEmptyContentLength():
		w.Line(`            .header(CONTENT_LENGTH, "0")`)
	}
	w.Line("            .bearer_auth(self.token_supplier.get(&self.url).await?);")

	for _, p := range m.QueryParams() {
		queryPair(w, p)
	}

	w.Line("        let response = builder.send().await?;")
	switch m.Response.Kind {
	case model.ResponseUnit:
		w.Line("        error_check(response).await?;")
		w.Line("        Ok(())")
	case model.ResponseBytes:
		w.Line("        Ok(error_check(response).await?.bytes().await?.to_vec())")
	default:
		w.Line("        Ok(error_check(response).await?.json().await?)")
	}
	w.Line("    }")
}

func queryPair(w *emitter.Writer, p *model.Param) {
	value, indent := p.Name, "        "
	if p.Optional {
		w.Line(indent, "if let Some(v) = ", p.Name, " {")
		value, indent = "v", indent+"    "
	}
	if p.Array {
		w.Line(indent, "for item in ", value, " {")
		w.Line(indent, `    builder = builder.query(&[("`, p.WireName, `", item)]);`)
		w.Line(indent, "}")
	} else {
		w.Line(indent, `builder = builder.query(&[("`, p.WireName, `", `, value, `)]);`)
	}
	if p.Optional {
		w.Line("        }")
	}
}

func (r *renderer) paramType(p *model.Param) string {
	t := r.rustType(p.Type, inParam)
	if p.Array {
		t = "Vec<" + t + ">"
	}
	if p.Optional {
		return "Option<" + t + ">"
	}
	if !p.Array && t == "String" {
		return "&str"
	}
	return t
}

func (r *renderer) responseType(resp model.Response) string {
	switch resp.Kind {
	case model.ResponseUnit:
		return "()"
	case model.ResponseBytes:
		return "Vec<u8>"
	}
	t := r.rustType(resp.Type, inResponse)
	if resp.Array {
		t = "Vec<" + t + ">"
	}
	return t
}

// urlFormat renders the format! call building the request URL. Literal
// braces left by unmapped placeholders are escaped.
func urlFormat(m *model.Method) string {
	var (
		tmpl strings.Builder
		args = []string{"self.url"}
	)
	tmpl.WriteString("{}")
	for _, part := range m.PathParts() {
		if part.Param != nil {
			tmpl.WriteString("{}")
			args = append(args, part.Param.Name)
			continue
		}
		lit := strings.ReplaceAll(part.Literal, "{", "{{")
		tmpl.WriteString(strings.ReplaceAll(lit, "}", "}}"))
	}
	return `&format!("` + tmpl.String() + `", ` + strings.Join(args, ", ") + ")"
}
