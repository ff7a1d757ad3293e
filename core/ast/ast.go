// Package ast defines the immutable syntax tree consumed by the patternscript
// engine.
//
// The tree is produced by an external parser and is assumed to be valid:
// ranges are integer pairs, frame durations are integers and every top-level
// definition is a path, pattern or bullet. The engine shares nodes by pointer
// and never mutates them.
package ast

import "fmt"

// Expr is any expression node.
type Expr interface {
	fmt.Stringer
	exprNode()
}

// Op is a binary operator.
type Op int

const (
	OpAdd Op = iota // +
	OpSub           // -
	OpMul           // *
	OpDiv           // /
	OpPow           // ^
	OpAnd           // and
	OpOr            // or
	OpEq            // == (boolean test)
	OpGt            // >
	OpGe            // >=
	OpLt            // <
	OpLe            // <=
)

var opSymbols = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpPow: "^",
	OpAnd: "and",
	OpOr:  "or",
	OpEq:  "==",
	OpGt:  ">",
	OpGe:  ">=",
	OpLt:  "<",
	OpLe:  "<=",
}

func (o Op) String() string {
	if o >= 0 && int(o) < len(opSymbols) {
		return opSymbols[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// UnaryKind distinguishes negation from a named function call.
type UnaryKind int

const (
	UnaryNegate UnaryKind = iota
	UnaryCall
)

// DurationUnit is the unit of a Duration node.
type DurationUnit int

const (
	Frames DurationUnit = iota
	Seconds
)

func (u DurationUnit) String() string {
	if u == Seconds {
		return "seconds"
	}
	return "frames"
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
}

// FloatLit is a float literal.
type FloatLit struct {
	Value float64
}

// StringLit is a string literal.
type StringLit struct {
	Value string
}

// BoolLit is a boolean literal. The surface language has no boolean keyword;
// the engine uses it to bind evaluated values back into a scope.
type BoolLit struct {
	Value bool
}

// Var references a name in scope.
type Var struct {
	Name string
}

// Unary is either a negation or a call to a builtin function.
// For calls Func holds the name and Operand the argument (nil when called
// with no arguments, a VectorLit when called with several).
type Unary struct {
	Kind    UnaryKind
	Func    string
	Operand Expr
}

// Binary applies Op to Left and Right.
type Binary struct {
	Op    Op
	Left  Expr
	Right Expr
}

// VectorLit is a parenthesised, comma separated list.
type VectorLit struct {
	Elems []Expr
}

// BlockExpr embeds a block as a value, e.g. a pattern's actions block.
type BlockExpr struct {
	Block *Block
}

// Duration is "<amount> frames" or "<amount> seconds".
type Duration struct {
	Unit   DurationUnit
	Amount Expr
}

// Range is the half-open integer range Start...End.
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of integers in the range, zero when empty.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return int(r.End - r.Start)
}

func (*IntLit) exprNode()    {}
func (*FloatLit) exprNode()  {}
func (*StringLit) exprNode() {}
func (*BoolLit) exprNode()   {}
func (*Var) exprNode()       {}
func (*Unary) exprNode()     {}
func (*Binary) exprNode()    {}
func (*VectorLit) exprNode() {}
func (*BlockExpr) exprNode() {}
func (*Duration) exprNode()  {}
func (*Range) exprNode()     {}

// Field is one "name = expr" definition. Field order is significant: when a
// name repeats, the later definition wins.
type Field struct {
	Name  string
	Value Expr
}

// Fields is an ordered definition list.
type Fields []Field

// Get returns the last definition of name.
func (fs Fields) Get(name string) (Expr, bool) {
	for i := len(fs) - 1; i >= 0; i-- {
		if fs[i].Name == name {
			return fs[i].Value, true
		}
	}
	return nil, false
}

// Without returns a copy of fs with every definition of the given names removed.
func (fs Fields) Without(names ...string) Fields {
	out := make(Fields, 0, len(fs))
next:
	for _, f := range fs {
		for _, n := range names {
			if f.Name == n {
				continue next
			}
		}
		out = append(out, f)
	}
	return out
}
