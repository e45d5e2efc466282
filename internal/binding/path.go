package binding

import (
	"regexp"
	"strings"

	"github.com/mark3labs/restgen/internal/model"
	"github.com/mark3labs/restgen/internal/naming"
	"github.com/mark3labs/restgen/internal/spec"
)

// ambientParam is implicit in every client call and adds no identifier token.
const ambientParam = "realm"

var placeholderRe = regexp.MustCompile(`\{([^}]+)\}`)

// placeholders returns the names inside {...} in template order.
func placeholders(path string) []string {
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(path, -1) {
		out = append(out, m[1])
	}
	return out
}

// RewritePath replaces each placeholder with the generated identifier of its
// parameter. Placeholders without a parameter are left untouched; a method
// without parameters loses all of them.
func RewritePath(path string, params []*model.Param) string {
	if len(params) == 0 {
		return placeholderRe.ReplaceAllString(path, "")
	}
	names := make(map[string]string, len(params))
	for _, p := range params {
		if _, ok := names[p.WireName]; !ok {
			names[p.WireName] = p.Name
		}
	}
	return placeholderRe.ReplaceAllStringFunc(path, func(ph string) string {
		if name, ok := names[ph[1:len(ph)-1]]; ok {
			return "{" + name + "}"
		}
		return ph
	})
}

// Identifier synthesizes the function name of a method: path placeholders of
// path parameters become "with_<name>" (nothing for the realm), the verb is
// appended and the result is snake_cased.
func Identifier(rec spec.MethodRecord, basePath string) string {
	path := rec.Path
	if rest, ok := strings.CutPrefix(path, basePath); ok && onSegmentBoundary(basePath, rest) {
		path = rest
	}
	for _, pr := range rec.Parameters {
		if pr.Kind != spec.KindPath {
			continue
		}
		token := ""
		if pr.Name != ambientParam {
			token = "with_" + naming.ToSnakeCase(pr.Name)
		}
		path = strings.ReplaceAll(path, "{"+pr.Name+"}", token)
	}
	return naming.ToSnakeCase(path + rec.Verb)
}

// onSegmentBoundary reports whether a non-empty prefix ended on a whole path
// segment, so "/admin/realms" trims "/admin/realms/x" but not "/admin/realmsx".
func onSegmentBoundary(prefix, rest string) bool {
	if prefix == "" {
		return false
	}
	return rest == "" || strings.HasPrefix(rest, "/") || strings.HasSuffix(prefix, "/")
}
