package model

import "regexp"

// ParamLocation is where a parameter travels in the request.
type ParamLocation int

const (
	InPath ParamLocation = iota
	InQuery
	InBody
	InForm
)

// Param is one resolved method parameter.
type Param struct {
	// WireName is the documented name; it is the query key or form field key.
	WireName string
	// Name is the sanitized snake_case identifier used in generated code.
	Name     string
	In       ParamLocation
	Optional bool
	Array    bool
	Comment  string
	Type     TypeRef
}

// BodyKind is the single body-encoding strategy of a method.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyJSON
	BodyForm
)

// Body groups every body and form parameter of a method.
type Body struct {
	Kind   BodyKind
	Params []*Param
}

// ResponseKind selects how the response body is consumed.
type ResponseKind int

const (
	// ResponseUnit checks for success and discards the body.
	ResponseUnit ResponseKind = iota
	// ResponseBytes reads the body as raw bytes.
	ResponseBytes
	// ResponseJSON decodes the body as JSON.
	ResponseJSON
)

// Response is the resolved success response.
type Response struct {
	Kind  ResponseKind
	Array bool
	Type  TypeRef
	// Stream is set when the documented type was the Stream sentinel and
	// Type came from the override table.
	Stream bool
}

// Method is the emission-ready binding of one endpoint.
type Method struct {
	Ident    string
	Verb     string
	Resource string
	Anchor   string
	// Path is the documented path template.
	Path string
	// RewrittenPath has placeholders replaced by generated identifiers.
	RewrittenPath string
	// Params lists path parameters in template order, then the rest in
	// documented order.
	Params   []*Param
	Body     Body
	Response Response
	// Doc holds documentation blocks; emitters separate them by blank lines.
	Doc [][]string
}

// PathParams returns the path parameters in template order.
func (m *Method) PathParams() []*Param { return m.paramsIn(InPath) }

// QueryParams returns the query parameters in documented order.
func (m *Method) QueryParams() []*Param { return m.paramsIn(InQuery) }

func (m *Method) paramsIn(loc ParamLocation) []*Param {
	var out []*Param
	for _, p := range m.Params {
		if p.In == loc {
			out = append(out, p)
		}
	}
	return out
}

// HasQuery reports whether any query parameter exists; the request builder
// is then bound mutably.
func (m *Method) HasQuery() bool { return len(m.QueryParams()) > 0 }

// NeedsEmptyContentLength reports whether the request must carry an explicit
// zero Content-Length header: a PUT without a body.
func (m *Method) NeedsEmptyContentLength() bool {
	return m.Verb == "PUT" && m.Body.Kind == BodyNone
}

// UsesRawRequest reports whether the verb has no dedicated builder method.
func (m *Method) UsesRawRequest() bool { return m.Verb == "OPTIONS" }

var placeholderRe = regexp.MustCompile(`\{([^}]+)\}`)

// PathPart is a literal run or a parameter placeholder of the rewritten path.
type PathPart struct {
	Literal string
	Param   *Param
}

// PathParts splits RewrittenPath into literal runs and placeholders. A
// placeholder that names no parameter stays in the literal text.
func (m *Method) PathParts() []PathPart {
	byName := make(map[string]*Param, len(m.Params))
	for _, p := range m.Params {
		if _, ok := byName[p.Name]; !ok {
			byName[p.Name] = p
		}
	}
	var (
		parts []PathPart
		last  int
	)
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(m.RewrittenPath, -1) {
		p, ok := byName[m.RewrittenPath[loc[2]:loc[3]]]
		if !ok {
			continue
		}
		if literal := m.RewrittenPath[last:loc[0]]; literal != "" {
			parts = append(parts, PathPart{Literal: literal})
		}
		parts = append(parts, PathPart{Param: p})
		last = loc[1]
	}
	if rest := m.RewrittenPath[last:]; rest != "" {
		parts = append(parts, PathPart{Literal: rest})
	}
	return parts
}
