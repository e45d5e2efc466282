package binding

import (
	"strings"

	"github.com/mark3labs/restgen/internal/model"
	"github.com/mark3labs/restgen/internal/naming"
	"github.com/mark3labs/restgen/internal/spec"
)

// docs assembles the documentation blocks of a method in fixed order. params
// are in documented order.
func (c *Compiler) docs(rec spec.MethodRecord, m *model.Method, params []*model.Param) [][]string {
	restLine := m.Verb + " " + m.RewrittenPath

	var blocks [][]string
	if name := strings.TrimSpace(rec.Name); name != "" && name != restLine {
		blocks = append(blocks, []string{name})
	}
	if desc := strings.TrimSpace(rec.Description); desc != "" {
		blocks = append(blocks, []string{strings.ReplaceAll(desc, "\n", " ")})
	}
	if len(params) > 0 {
		lines := make([]string, 0, len(params))
		for _, p := range params {
			name := naming.ToSnakeCase(p.WireName)
			if p.In == model.InQuery {
				name = p.Name
			}
			line := "- `" + name + "`"
			if comment := strings.ReplaceAll(strings.TrimSpace(p.Comment), "\n", ""); comment != "" {
				line += ": " + comment
			}
			lines = append(lines, line)
		}
		blocks = append(blocks, []string{"Parameters:"}, lines)
	}
	blocks = append(blocks, []string{"Resource: `" + m.Resource + "`"})
	blocks = append(blocks, []string{"`" + restLine + "`"})
	if m.Anchor != "" {
		blocks = append(blocks, []string{"Documentation: <" + c.docURL(m.Anchor) + ">"})
	}
	if m.RewrittenPath != m.Path {
		blocks = append(blocks, []string{"REST method: `" + m.Verb + " " + m.Path + "`"})
	}
	return blocks
}

func (c *Compiler) docURL(anchor string) string {
	return c.cfg.DocBaseURL + "/" + c.cfg.APIVersion + "/rest-api/index.html#" + anchor
}
