package eval

import (
	"fmt"

	"github.com/aledsdavies/patternscript/core/ast"
	"github.com/aledsdavies/patternscript/internal/suggest"
)

// MaxDepth bounds nested evaluation. Variables are bound to expressions, so a
// definition that refers to itself would otherwise never terminate.
const MaxDepth = 128

// Evaluate computes the value of expr in scope.
//
// A variable evaluates its bound expression against the full scope it was
// looked up in. Both operands of a binary operator are always evaluated.
func Evaluate(expr ast.Expr, scope *Scope) (Value, error) {
	return evaluate(expr, scope, 0)
}

func evaluate(expr ast.Expr, scope *Scope, depth int) (Value, error) {
	if depth > MaxDepth {
		return nil, &EvalError{Code: CodeRecursionLimit, Message: fmt.Sprintf("nesting deeper than %d", MaxDepth)}
	}

	switch e := expr.(type) {
	case *ast.IntLit:
		return Int(e.Value), nil
	case *ast.FloatLit:
		return Float(e.Value), nil
	case *ast.StringLit:
		return Str(e.Value), nil
	case *ast.BoolLit:
		return Bool(e.Value), nil

	case *ast.Var:
		bound, ok := scope.Lookup(e.Name)
		if !ok {
			return nil, &EvalError{
				Code:       CodeUndefinedVariable,
				Name:       e.Name,
				Suggestion: suggest.Hint(e.Name, scope.Names()),
			}
		}
		v, err := evaluate(bound, scope, depth+1)
		if err != nil {
			if ee, ok := err.(*EvalError); ok && ee.Code == CodeRecursionLimit && ee.Name == "" {
				ee.Name = e.Name
			}
			return nil, err
		}
		return v, nil

	case *ast.Unary:
		return evalUnary(e, scope, depth)

	case *ast.Binary:
		l, lerr := evaluate(e.Left, scope, depth+1)
		r, rerr := evaluate(e.Right, scope, depth+1)
		if lerr != nil {
			return nil, lerr
		}
		if rerr != nil {
			return nil, rerr
		}
		return Binary(e.Op, l, r)

	case *ast.VectorLit:
		return evalVector(e, scope, depth)

	case *ast.BlockExpr, *ast.Duration, *ast.Range:
		return nil, &EvalError{Code: CodeNotComputable, Message: expr.String()}

	case nil:
		return nil, &EvalError{Code: CodeNotComputable, Message: "missing expression"}
	}
	return nil, &EvalError{Code: CodeNotComputable, Message: fmt.Sprintf("%T", expr)}
}

func evalUnary(e *ast.Unary, scope *Scope, depth int) (Value, error) {
	var arg Value
	if args, ok := e.Operand.(*ast.VectorLit); ok && e.Kind == ast.UnaryCall {
		v, err := evalArgs(args, scope, depth+1)
		if err != nil {
			return nil, err
		}
		arg = v
	} else if e.Operand != nil {
		v, err := evaluate(e.Operand, scope, depth+1)
		if err != nil {
			return nil, err
		}
		arg = v
	}

	if e.Kind == ast.UnaryCall {
		return Call(e.Func, arg)
	}

	switch n := arg.(type) {
	case Int:
		return -n, nil
	case Float:
		return -n, nil
	}
	return nil, &EvalError{Code: CodeNegateTypeError, Op: "-", Left: arg}
}

// evalVector builds a homogeneous vector. The first element fixes the
// variant; later elements of a different variant are dropped.
func evalVector(e *ast.VectorLit, scope *Scope, depth int) (Value, error) {
	if len(e.Elems) == 0 {
		return nil, &EvalError{Code: CodeVectorTypeOrLength, Message: "empty vector"}
	}

	vals, err := evalElems(e, scope, depth)
	if err != nil {
		return nil, err
	}
	return pack(vals)
}

// evalArgs evaluates the packed arguments of a call. Numeric arguments that
// mix Int and Float widen to a FloatVec instead of dropping elements.
func evalArgs(e *ast.VectorLit, scope *Scope, depth int) (Value, error) {
	if len(e.Elems) == 0 {
		return nil, &EvalError{Code: CodeVectorTypeOrLength, Message: "empty vector"}
	}
	vals, err := evalElems(e, scope, depth)
	if err != nil {
		return nil, err
	}

	out := make(FloatVec, 0, len(vals))
	anyFloat := false
	for _, v := range vals {
		f, ok := AsFloat(v)
		if !ok {
			return pack(vals)
		}
		if _, isFloat := v.(Float); isFloat {
			anyFloat = true
		}
		out = append(out, f)
	}
	if !anyFloat {
		return pack(vals)
	}
	return out, nil
}

func evalElems(e *ast.VectorLit, scope *Scope, depth int) ([]Value, error) {
	vals := make([]Value, len(e.Elems))
	for i, el := range e.Elems {
		v, err := evaluate(el, scope, depth+1)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// pack builds a vector from evaluated elements using the first element's variant.
func pack(vals []Value) (Value, error) {
	switch first := vals[0].(type) {
	case Int:
		out := make(IntVec, 0, len(vals))
		for _, v := range vals {
			if x, ok := v.(Int); ok {
				out = append(out, int64(x))
			}
		}
		return out, nil
	case Float:
		out := make(FloatVec, 0, len(vals))
		for _, v := range vals {
			if x, ok := v.(Float); ok {
				out = append(out, float64(x))
			}
		}
		return out, nil
	case Str:
		out := make(StrVec, 0, len(vals))
		for _, v := range vals {
			if x, ok := v.(Str); ok {
				out = append(out, string(x))
			}
		}
		return out, nil
	default:
		return nil, &EvalError{Code: CodeVectorTypeOrLength, Left: first,
			Message: "vector elements must be Int, Float or String"}
	}
}

// EvalCondition evaluates an optional guard. An absent guard passes.
func EvalCondition(cond ast.Condition, scope *Scope) (bool, error) {
	if cond.Kind == ast.CondNone || cond.Expr == nil {
		return true, nil
	}
	v, err := Evaluate(cond.Expr, scope)
	if err != nil {
		return false, err
	}
	b, ok := v.(Bool)
	if !ok {
		return false, &EvalError{Code: CodeCondNotBoolean, Left: v}
	}
	if cond.Kind == ast.CondUnless {
		return !bool(b), nil
	}
	return bool(b), nil
}
