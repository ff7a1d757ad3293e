package eval

import (
	"github.com/aledsdavies/patternscript/core/ast"
)

// vectorArith applies + - * / element-wise. At least one operand is a vector.
//
//	IntVec ∘ IntVec   → IntVec for + -, FloatVec for * /
//	any Int/Float mix → FloatVec
//
// Lengths zip to the shorter operand. A numeric scalar is broadcast to the
// other operand's length.
func vectorArith(op ast.Op, l, r Value) (Value, error) {
	if l.Kind() == KindStrVec || r.Kind() == KindStrVec {
		return nil, &EvalError{Code: CodeVectorTypeOrLength, Op: op.String(), Left: l, Right: r,
			Message: "string vectors do not support arithmetic"}
	}

	lv, ok := broadcast(l, r)
	if !ok {
		return nil, mismatch(op, l, r)
	}
	rv, ok := broadcast(r, l)
	if !ok {
		return nil, mismatch(op, l, r)
	}

	li, lInt := lv.(IntVec)
	ri, rInt := rv.(IntVec)
	if lInt && rInt && (op == ast.OpAdd || op == ast.OpSub) {
		n := min(len(li), len(ri))
		out := make(IntVec, n)
		for i := 0; i < n; i++ {
			if op == ast.OpAdd {
				out[i] = li[i] + ri[i]
			} else {
				out[i] = li[i] - ri[i]
			}
		}
		return out, nil
	}

	a, _ := AsFloats(lv)
	b, _ := AsFloats(rv)
	n := min(len(a), len(b))
	out := make(FloatVec, n)
	for i := 0; i < n; i++ {
		out[i] = floatArith(op, a[i], b[i])
	}
	return out, nil
}

// broadcast returns v as a numeric vector. A numeric scalar is repeated to
// the length of other; a numeric vector is returned unchanged.
func broadcast(v, other Value) (Value, bool) {
	switch x := v.(type) {
	case IntVec, FloatVec:
		return x, true
	case Int:
		out := make(IntVec, vecLen(other))
		for i := range out {
			out[i] = int64(x)
		}
		return out, true
	case Float:
		out := make(FloatVec, vecLen(other))
		for i := range out {
			out[i] = float64(x)
		}
		return out, true
	default:
		return nil, false
	}
}

func vecLen(v Value) int {
	switch x := v.(type) {
	case IntVec:
		return len(x)
	case FloatVec:
		return len(x)
	case StrVec:
		return len(x)
	default:
		return 0
	}
}
