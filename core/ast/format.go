package ast

import (
	"strconv"
	"strings"
)

// String renders expressions in source form. The output is canonical: the
// same tree always renders the same way, which timeline digests rely on.

func (e *IntLit) String() string { return strconv.FormatInt(e.Value, 10) }

func (e *FloatLit) String() string {
	s := strconv.FormatFloat(e.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func (e *StringLit) String() string { return strconv.Quote(e.Value) }
func (e *BoolLit) String() string   { return strconv.FormatBool(e.Value) }
func (e *Var) String() string       { return e.Name }

func (e *Unary) String() string {
	if e.Kind == UnaryNegate {
		return "-" + group(e.Operand)
	}
	if e.Operand == nil {
		return e.Func + "()"
	}
	if v, ok := e.Operand.(*VectorLit); ok {
		return e.Func + v.String()
	}
	return e.Func + "(" + e.Operand.String() + ")"
}

func (e *Binary) String() string {
	return group(e.Left) + " " + e.Op.String() + " " + group(e.Right)
}

func (e *VectorLit) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = el.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (e *BlockExpr) String() string {
	if e.Block == nil {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{")
	for _, f := range e.Block.Definitions {
		b.WriteString(" ")
		b.WriteString(f.Name)
		b.WriteString(" = ")
		b.WriteString(f.Value.String())
		b.WriteString(";")
	}
	if n := len(e.Block.Statements); n > 0 {
		b.WriteString(" <")
		b.WriteString(strconv.Itoa(n))
		b.WriteString(" statements>")
	}
	b.WriteString(" }")
	return b.String()
}

func (e *Duration) String() string {
	return e.Amount.String() + " " + e.Unit.String()
}

func (e *Range) String() string {
	return strconv.FormatInt(e.Start, 10) + "..." + strconv.FormatInt(e.End, 10)
}

// group parenthesises compound operands so the rendering is unambiguous.
func group(e Expr) string {
	if e == nil {
		return "()"
	}
	if _, ok := e.(*Binary); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}
