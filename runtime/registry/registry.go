// Package registry holds the read-only tables of paths, patterns and bullet
// prefabs declared in a file, plus its global constants. A Registry is built
// once from an *ast.Head and shared by pointer afterwards.
package registry

import (
	"fmt"
	"sort"

	"github.com/aledsdavies/patternscript/core/ast"
	"github.com/aledsdavies/patternscript/internal/suggest"
	"github.com/aledsdavies/patternscript/runtime/eval"
)

// Kind names a registry table.
type Kind string

const (
	KindPath    Kind = "path"
	KindPattern Kind = "pattern"
	KindBullet  Kind = "bullet"
)

// NotFoundError reports a lookup of an undeclared name.
type NotFoundError struct {
	Kind       Kind
	Name       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
	if e.Suggestion != "" {
		msg += "\n" + e.Suggestion
	}
	return msg
}

// PathError reports a malformed path declaration.
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q: %s", e.Path, e.Message)
}

// Registry is immutable after New returns.
type Registry struct {
	paths    map[string]*ast.Path
	patterns map[string]*ast.Pattern
	bullets  map[string]*ast.Bullet
	globals  *eval.Scope
}

// New validates head and builds a registry from it. Every path must define x
// and y and may not repeat a parameter name.
func New(head *ast.Head) (*Registry, error) {
	if head == nil {
		head = ast.NewHead()
	}

	r := &Registry{
		paths:    make(map[string]*ast.Path, len(head.Paths)),
		patterns: make(map[string]*ast.Pattern, len(head.Patterns)),
		bullets:  make(map[string]*ast.Bullet, len(head.Bullets)),
		globals:  (*eval.Scope)(nil).WithFields("globals", head.Constants),
	}

	for _, name := range sortedKeys(head.Paths) {
		p := head.Paths[name]
		if err := validatePath(name, p); err != nil {
			return nil, err
		}
		r.paths[name] = p
	}
	for name, p := range head.Patterns {
		r.patterns[name] = p
	}
	for name, b := range head.Bullets {
		r.bullets[name] = b
	}
	return r, nil
}

func validatePath(name string, p *ast.Path) error {
	if p == nil {
		return &PathError{Path: name, Message: "declaration is empty"}
	}
	for _, axis := range []string{"x", "y"} {
		if _, ok := p.Fields.Get(axis); !ok {
			return &PathError{Path: name, Message: "missing required field " + axis}
		}
	}
	seen := make(map[string]bool, len(p.Params))
	for _, param := range p.Params {
		if seen[param] {
			return &PathError{Path: name, Message: "duplicate parameter " + param}
		}
		seen[param] = true
	}
	return nil
}

// Globals returns the scope of global constants.
func (r *Registry) Globals() *eval.Scope { return r.globals }

// Path returns the named path, if declared.
func (r *Registry) Path(name string) (*ast.Path, bool) {
	p, ok := r.paths[name]
	return p, ok
}

// Pattern returns the named pattern, if declared.
func (r *Registry) Pattern(name string) (*ast.Pattern, bool) {
	p, ok := r.patterns[name]
	return p, ok
}

// Bullet returns the named prefab, if declared.
func (r *Registry) Bullet(name string) (*ast.Bullet, bool) {
	b, ok := r.bullets[name]
	return b, ok
}

// LookupPath is Path with a *NotFoundError on a miss.
func (r *Registry) LookupPath(name string) (*ast.Path, error) {
	if p, ok := r.paths[name]; ok {
		return p, nil
	}
	return nil, r.notFound(KindPath, name, sortedKeys(r.paths))
}

// LookupPattern is Pattern with a *NotFoundError on a miss.
func (r *Registry) LookupPattern(name string) (*ast.Pattern, error) {
	if p, ok := r.patterns[name]; ok {
		return p, nil
	}
	return nil, r.notFound(KindPattern, name, sortedKeys(r.patterns))
}

// LookupBullet is Bullet with a *NotFoundError on a miss.
func (r *Registry) LookupBullet(name string) (*ast.Bullet, error) {
	if b, ok := r.bullets[name]; ok {
		return b, nil
	}
	return nil, r.notFound(KindBullet, name, sortedKeys(r.bullets))
}

func (r *Registry) notFound(kind Kind, name string, known []string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name, Suggestion: suggest.Hint(name, known)}
}

// Names lists declared names of one kind, sorted.
func (r *Registry) Names(kind Kind) []string {
	switch kind {
	case KindPath:
		return sortedKeys(r.paths)
	case KindPattern:
		return sortedKeys(r.patterns)
	case KindBullet:
		return sortedKeys(r.bullets)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
