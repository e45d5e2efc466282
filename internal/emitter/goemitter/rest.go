package goemitter

import (
	"strconv"
	"strings"

	"github.com/mark3labs/restgen/internal/emitter"
	"github.com/mark3labs/restgen/internal/model"
)

// methodLocals are identifiers a parameter must not shadow: locals of the
// generated method bodies, imported packages and runtime helpers.
var methodLocals = map[string]bool{
	"c": true, "ctx": true, "q": true, "out": true, "err": true,
	"resp": true, "payload": true, "mw": true, "v": true,
	"bytes": true, "context": true, "json": true, "fmt": true,
	"multipart": true, "http": true, "url": true,
	"request": true, "pathValue": true, "drain": true, "readBody": true, "decodeJSON": true,
}

var httpMethods = map[string]string{
	"GET":     "http.MethodGet",
	"POST":    "http.MethodPost",
	"PUT":     "http.MethodPut",
	"DELETE":  "http.MethodDelete",
	"PATCH":   "http.MethodPatch",
	"HEAD":    "http.MethodHead",
	"OPTIONS": "http.MethodOptions",
}

func (r *renderer) rest(methods []*model.Method) []byte {
	var w emitter.Writer
	r.header(&w, "bytes", "context", "encoding/json", "fmt", "mime/multipart", "net/http", "net/url")
	for _, m := range methods {
		w.Blank()
		r.method(&w, m)
	}
	return w.Bytes()
}

func (r *renderer) method(w *emitter.Writer, m *model.Method) {
	name := exported(m.Ident)
	w.Line("// ", name, " calls `", m.Verb, " ", m.RewrittenPath, "`.")
	if len(m.Doc) > 0 {
		w.Line("//")
		w.Doc("", "// ", m.Doc)
	}

	args := []string{"ctx context.Context"}
	for _, p := range m.Params {
		args = append(args, unexported(p.Name)+" "+paramType(p))
	}
	result, fail := "error", "return err"
	if m.Response.Kind != model.ResponseUnit {
		result, fail = "("+responseType(m.Response)+", error)", "return out, err"
	}
	w.Line("func (c *Client) ", name, "(", strings.Join(args, ", "), ") ", result, " {")
	if m.Response.Kind != model.ResponseUnit {
		w.Line("\tvar out ", responseType(m.Response))
	}

	if m.HasQuery() {
		w.Line("\tq := url.Values{}")
		for _, p := range m.QueryParams() {
			eachValue(w, p, func(indent, value string) {
				w.Line(indent, "q.Add(", strconv.Quote(p.WireName), ", fmt.Sprint(", value, "))")
			})
		}
	}

	var body []string
	switch {
	case m.Body.Kind == model.BodyJSON:
		w.Line("\tpayload, err := json.Marshal(", unexported(m.Body.Params[0].Name), ")")
		w.Line("\tif err != nil {")
		if m.Response.Kind == model.ResponseUnit {
			w.Line("\t\treturn fmt.Errorf(\"encode body: %w\", err)")
		} else {
			w.Line("\t\treturn out, fmt.Errorf(\"encode body: %w\", err)")
		}
		w.Line("\t}")
		body = []string{"body: bytes.NewReader(payload)", `contentType: "application/json"`}
	case m.Body.Kind == model.BodyForm:
		w.Line("\tvar payload bytes.Buffer")
		w.Line("\tmw := multipart.NewWriter(&payload)")
		for _, p := range m.Body.Params {
			eachValue(w, p, func(indent, value string) {
				w.Line(indent, "if err := mw.WriteField(", strconv.Quote(p.WireName), ", fmt.Sprint(", value, ")); err != nil {")
				w.Line(indent, "\t", fail)
				w.Line(indent, "}")
			})
		}
		w.Line("\tif err := mw.Close(); err != nil {")
		w.Line("\t\t", fail)
		w.Line("\t}")
		body = []string{"body: &payload", "contentType: mw.FormDataContentType()"}
	case m.NeedsEmptyContentLength():
		body = []string{"emptyBody: true"}
	}

	w.Line("\tresp, err := c.do(ctx, request{")
	w.Line("\t\tmethod: ", httpMethods[m.Verb], ",")
	w.Line("\t\tpath: ", pathExpr(m), ",")
	if m.HasQuery() {
		w.Line("\t\tquery: q,")
	}
	for _, b := range body {
		w.Line("\t\t", b, ",")
	}
	w.Line("\t})")
	w.Line("\tif err != nil {")
	w.Line("\t\t", fail)
	w.Line("\t}")

	switch m.Response.Kind {
	case model.ResponseUnit:
		w.Line("\treturn drain(resp)")
	case model.ResponseBytes:
		w.Line("\treturn readBody(resp)")
	default:
		w.Line("\tif err := decodeJSON(resp, &out); err != nil {")
		w.Line("\t\treturn out, err")
		w.Line("\t}")
		w.Line("\treturn out, nil")
	}
	w.Line("}")
}

// eachValue calls emit once per value a parameter contributes: every
// element of an array, an optional value only when present.
func eachValue(w *emitter.Writer, p *model.Param, emit func(indent, value string)) {
	name := unexported(p.Name)
	t := paramType(p)
	switch {
	case p.Array:
		w.Line("\tfor _, v := range ", name, " {")
		emit("\t\t", "v")
		w.Line("\t}")
	case p.Optional && strings.HasPrefix(t, "*"):
		w.Line("\tif ", name, " != nil {")
		emit("\t\t", "*"+name)
		w.Line("\t}")
	case p.Optional:
		w.Line("\tif ", name, " != nil {")
		emit("\t\t", name)
		w.Line("\t}")
	default:
		emit("\t", name)
	}
}

func paramType(p *model.Param) string {
	t := goType(p.Type)
	if p.Array {
		return "[]" + t
	}
	if p.Optional && p.In != model.InPath && !nillable(t) {
		return "*" + t
	}
	return t
}

func responseType(resp model.Response) string {
	if resp.Kind == model.ResponseBytes {
		return "[]byte"
	}
	t := goType(resp.Type)
	if resp.Array {
		return "[]" + t
	}
	return t
}

// pathExpr renders the request path as a string concatenation with escaped
// path values.
func pathExpr(m *model.Method) string {
	var parts []string
	for _, part := range m.PathParts() {
		if part.Param != nil {
			parts = append(parts, "pathValue("+unexported(part.Param.Name)+")")
			continue
		}
		parts = append(parts, strconv.Quote(part.Literal))
	}
	if len(parts) == 0 {
		return `""`
	}
	return strings.Join(parts, " + ")
}
