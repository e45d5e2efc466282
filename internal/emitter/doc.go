package emitter

import "strings"

// Writer accumulates generated source text line by line.
type Writer struct {
	b strings.Builder
}

// Line writes one line; parts are concatenated.
func (w *Writer) Line(parts ...string) {
	for _, p := range parts {
		w.b.WriteString(p)
	}
	w.b.WriteByte('\n')
}

// Blank writes an empty line.
func (w *Writer) Blank() { w.b.WriteByte('\n') }

// Doc writes documentation blocks with the given line prefix ("/// ", "// ").
// Blocks are separated by a prefix-only line.
func (w *Writer) Doc(indent, prefix string, blocks [][]string) {
	for i, block := range blocks {
		if i > 0 {
			w.Line(indent, strings.TrimRight(prefix, " "))
		}
		for _, line := range block {
			w.Line(indent, prefix, line)
		}
	}
}

// String returns the accumulated text.
func (w *Writer) String() string { return w.b.String() }

// Bytes returns the accumulated text.
func (w *Writer) Bytes() []byte { return []byte(w.b.String()) }

// FileSlug turns a resource tag into a file name stem: lowercase words
// joined by sep.
func FileSlug(tag, sep string) string {
	fields := strings.FieldsFunc(strings.ToLower(tag), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, sep)
}
