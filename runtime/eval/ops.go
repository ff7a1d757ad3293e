package eval

import (
	"math"

	"github.com/aledsdavies/patternscript/core/ast"
)

// Binary applies op to two evaluated operands.
func Binary(op ast.Op, l, r Value) (Value, error) {
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		if l.Kind().IsVector() || r.Kind().IsVector() {
			return vectorArith(op, l, r)
		}
		if op == ast.OpAdd {
			if ls, ok := l.(Str); ok {
				if rs, ok := r.(Str); ok {
					return ls + rs, nil
				}
			}
		}
		return scalarArith(op, l, r)

	case ast.OpPow:
		if l.Kind().IsVector() || r.Kind().IsVector() {
			return nil, &EvalError{Code: CodeVectorTypeOrLength, Op: op.String(), Left: l, Right: r,
				Message: "exponent is not defined on vectors"}
		}
		return scalarArith(op, l, r)

	case ast.OpGt, ast.OpGe, ast.OpLt, ast.OpLe:
		a, aok := AsFloat(l)
		b, bok := AsFloat(r)
		if !aok || !bok {
			return nil, mismatch(op, l, r)
		}
		return Bool(compare(op, a, b)), nil

	case ast.OpAnd, ast.OpOr, ast.OpEq:
		a, aok := l.(Bool)
		b, bok := r.(Bool)
		if !aok || !bok {
			return nil, mismatch(op, l, r)
		}
		switch op {
		case ast.OpAnd:
			return a && b, nil
		case ast.OpOr:
			return a || b, nil
		default:
			return Bool(a == b), nil
		}
	}
	return nil, mismatch(op, l, r)
}

func mismatch(op ast.Op, l, r Value) *EvalError {
	return &EvalError{Code: CodeOperatorTypeMismatch, Op: op.String(), Left: l, Right: r}
}

func compare(op ast.Op, a, b float64) bool {
	switch op {
	case ast.OpGt:
		return a > b
	case ast.OpGe:
		return a >= b
	case ast.OpLt:
		return a < b
	default:
		return a <= b
	}
}

func scalarArith(op ast.Op, l, r Value) (Value, error) {
	li, lInt := l.(Int)
	ri, rInt := r.(Int)
	if lInt && rInt {
		return intArith(op, li, ri)
	}
	a, aok := AsFloat(l)
	b, bok := AsFloat(r)
	if !aok || !bok {
		return nil, mismatch(op, l, r)
	}
	return Float(floatArith(op, a, b)), nil
}

func intArith(op ast.Op, a, b Int) (Value, error) {
	switch op {
	case ast.OpAdd:
		return a + b, nil
	case ast.OpSub:
		return a - b, nil
	case ast.OpMul:
		return a * b, nil
	case ast.OpDiv:
		if b == 0 {
			return nil, &EvalError{Code: CodeDivideByZero, Op: op.String(), Left: a, Right: b}
		}
		return a / b, nil
	default:
		if b < 0 {
			if a == 0 {
				return nil, &EvalError{Code: CodeDivideByZero, Op: op.String(), Left: a, Right: b}
			}
			return Int(math.Trunc(math.Pow(float64(a), float64(b)))), nil
		}
		return ipow(a, b), nil
	}
}

// ipow raises base to a non-negative exponent by squaring. Overflow wraps.
func ipow(base, exp Int) Int {
	result := Int(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func floatArith(op ast.Op, a, b float64) float64 {
	switch op {
	case ast.OpAdd:
		return a + b
	case ast.OpSub:
		return a - b
	case ast.OpMul:
		return a * b
	case ast.OpDiv:
		return a / b
	default:
		return math.Pow(a, b)
	}
}
