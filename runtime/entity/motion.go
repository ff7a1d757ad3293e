package entity

import (
	"errors"
	"fmt"

	"github.com/aledsdavies/patternscript/core/ast"
	"github.com/aledsdavies/patternscript/runtime/eval"
)

// Motion binds a path to the arguments of one call. Eval re-evaluates the
// path's x and y with t bound to the entity's elapsed frame count.
type Motion struct {
	Name  string
	Path  *ast.Path
	Scope *eval.Scope // spawn scope ▸ bound parameters ▸ path fields
}

// Eval computes the path at frame elapsed. A component that fails to
// evaluate keeps its value from fallback; the failures are joined into err.
func (m *Motion) Eval(elapsed int, fallback Vec2) (Vec2, error) {
	scope := m.Scope.Bind("t", ast.Int(int64(elapsed)))
	out := fallback

	var errs []error
	if x, err := m.component("x", scope); err != nil {
		errs = append(errs, err)
	} else {
		out.X = x
	}
	if y, err := m.component("y", scope); err != nil {
		errs = append(errs, err)
	} else {
		out.Y = y
	}
	return out, errors.Join(errs...)
}

func (m *Motion) component(axis string, scope *eval.Scope) (float64, error) {
	expr, ok := m.Path.Fields.Get(axis)
	if !ok {
		return 0, fmt.Errorf("path %s: missing %s", m.Name, axis)
	}
	v, err := eval.Evaluate(expr, scope)
	if err != nil {
		return 0, fmt.Errorf("path %s: %s: %w", m.Name, axis, err)
	}
	f, ok := eval.AsFloat(v)
	if !ok {
		return 0, fmt.Errorf("path %s: %s is %s, want a number", m.Name, axis, eval.Describe(v))
	}
	return f, nil
}
