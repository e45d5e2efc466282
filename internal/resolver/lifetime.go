package resolver

import "github.com/mark3labs/restgen/internal/model"

// Lifetimes answers, per struct name, whether the struct must carry a borrow
// lifetime: it holds a WithLifetime field itself or reaches, through registry
// references, a struct that does. Answers are memoized; the registry is
// never modified.
type Lifetimes struct {
	reg  *model.Registry
	memo map[string]bool
}

// NewLifetimes prepares lifetime queries over a complete registry.
func NewLifetimes(reg *model.Registry) *Lifetimes {
	return &Lifetimes{reg: reg, memo: make(map[string]bool)}
}

// NeedsLifetime reports whether the named struct needs a lifetime. Unknown
// names need none.
func (l *Lifetimes) NeedsLifetime(name string) bool {
	if v, ok := l.memo[name]; ok {
		return v
	}
	visited := make(map[string]struct{})
	found := l.search(name, visited)
	if found {
		l.memo[name] = true
		return true
	}
	// Nothing reachable from name borrows, so the same holds for every
	// struct visited on the way.
	for n := range visited {
		l.memo[n] = false
	}
	return false
}

func (l *Lifetimes) search(name string, visited map[string]struct{}) bool {
	if v, ok := l.memo[name]; ok {
		return v
	}
	if _, ok := visited[name]; ok {
		return false
	}
	visited[name] = struct{}{}
	st, ok := l.reg.Struct(name)
	if !ok {
		return false
	}
	for _, f := range st.Fields {
		if f.Type.Kind == model.WithLifetime {
			return true
		}
	}
	for _, f := range st.Fields {
		if f.Type.Kind == model.RegistryKind && l.search(f.Type.Name, visited) {
			return true
		}
	}
	return false
}
