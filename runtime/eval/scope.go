package eval

import (
	"sort"

	"github.com/aledsdavies/patternscript/core/ast"
)

// Scope is a persistent, layered name→expression environment. Each layer
// points at its parent; adding a layer never copies or mutates the outer
// ones, so a scope captured by a spawn stays valid forever. The nil *Scope
// is the empty scope.
type Scope struct {
	parent *Scope
	label  string
	vars   map[string]ast.Expr
}

// With returns a new scope with vars layered over s. The map is owned by the
// new layer and must not be modified afterwards.
func (s *Scope) With(label string, vars map[string]ast.Expr) *Scope {
	if len(vars) == 0 {
		return s
	}
	return &Scope{parent: s, label: label, vars: vars}
}

// WithFields layers an ordered definition list over s. Later definitions of
// the same name win.
func (s *Scope) WithFields(label string, fields ast.Fields) *Scope {
	if len(fields) == 0 {
		return s
	}
	vars := make(map[string]ast.Expr, len(fields))
	for _, f := range fields {
		vars[f.Name] = f.Value
	}
	return &Scope{parent: s, label: label, vars: vars}
}

// Bind layers a single name over s.
func (s *Scope) Bind(name string, expr ast.Expr) *Scope {
	return &Scope{parent: s, label: name, vars: map[string]ast.Expr{name: expr}}
}

// Lookup finds the innermost binding of name.
func (s *Scope) Lookup(name string) (ast.Expr, bool) {
	for l := s; l != nil; l = l.parent {
		if e, ok := l.vars[name]; ok {
			return e, true
		}
	}
	return nil, false
}

// Has reports whether name is bound.
func (s *Scope) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Names returns every bound name, sorted, without duplicates.
func (s *Scope) Names() []string {
	seen := make(map[string]struct{})
	for l := s; l != nil; l = l.parent {
		for n := range l.vars {
			seen[n] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Flatten collapses the layers into one map holding the visible binding of
// every name.
func (s *Scope) Flatten() map[string]ast.Expr {
	out := make(map[string]ast.Expr)
	var layers []*Scope
	for l := s; l != nil; l = l.parent {
		layers = append(layers, l)
	}
	for i := len(layers) - 1; i >= 0; i-- {
		for n, e := range layers[i].vars {
			out[n] = e
		}
	}
	return out
}

// Depth returns the number of layers.
func (s *Scope) Depth() int {
	n := 0
	for l := s; l != nil; l = l.parent {
		n++
	}
	return n
}

// Labels returns layer labels from innermost to outermost, for debug output.
func (s *Scope) Labels() []string {
	var out []string
	for l := s; l != nil; l = l.parent {
		out = append(out, l.label)
	}
	return out
}

// Merge layers every layer of inner, outermost first, over outer. Layers of
// inner are shared, not copied.
func Merge(outer, inner *Scope) *Scope {
	if inner == nil {
		return outer
	}
	if outer == nil {
		return inner
	}
	var layers []*Scope
	for l := inner; l != nil; l = l.parent {
		layers = append(layers, l)
	}
	s := outer
	for i := len(layers) - 1; i >= 0; i-- {
		s = &Scope{parent: s, label: layers[i].label, vars: layers[i].vars}
	}
	return s
}

// Literal converts a value back into an expression that evaluates to it.
func Literal(v Value) ast.Expr {
	switch v := v.(type) {
	case Int:
		return ast.Int(int64(v))
	case Float:
		return ast.Float(float64(v))
	case Str:
		return ast.Str(string(v))
	case Bool:
		return ast.Bool(bool(v))
	case IntVec:
		elems := make([]ast.Expr, len(v))
		for i, x := range v {
			elems[i] = ast.Int(x)
		}
		return ast.Vec(elems...)
	case FloatVec:
		elems := make([]ast.Expr, len(v))
		for i, x := range v {
			elems[i] = ast.Float(x)
		}
		return ast.Vec(elems...)
	case StrVec:
		elems := make([]ast.Expr, len(v))
		for i, x := range v {
			elems[i] = ast.Str(x)
		}
		return ast.Vec(elems...)
	default:
		return nil
	}
}
