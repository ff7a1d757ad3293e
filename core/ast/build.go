package ast

// Constructors for building trees by hand. Hosts that embed the engine
// without the parser, and tests, use these instead of struct literals.

func Int(v int64) *IntLit       { return &IntLit{Value: v} }
func Float(v float64) *FloatLit { return &FloatLit{Value: v} }
func Str(v string) *StringLit   { return &StringLit{Value: v} }
func Bool(v bool) *BoolLit      { return &BoolLit{Value: v} }
func Ref(name string) *Var      { return &Var{Name: name} }

// Vec builds a vector literal.
func Vec(elems ...Expr) *VectorLit { return &VectorLit{Elems: elems} }

// Bin builds a binary expression.
func Bin(op Op, l, r Expr) *Binary { return &Binary{Op: op, Left: l, Right: r} }

// Neg negates x.
func Neg(x Expr) *Unary { return &Unary{Kind: UnaryNegate, Operand: x} }

// Call builds a function call. Several arguments are packed into a vector
// literal, matching what the parser produces for f(a, b).
func Call(name string, args ...Expr) *Unary {
	u := &Unary{Kind: UnaryCall, Func: name}
	switch len(args) {
	case 0:
	case 1:
		u.Operand = args[0]
	default:
		u.Operand = Vec(args...)
	}
	return u
}

// FramesOf builds "n frames".
func FramesOf(amount Expr) *Duration { return &Duration{Unit: Frames, Amount: amount} }

// SecondsOf builds "n seconds".
func SecondsOf(amount Expr) *Duration { return &Duration{Unit: Seconds, Amount: amount} }

// Def builds a field definition.
func Def(name string, value Expr) Field { return Field{Name: name, Value: value} }

// WaitFrames builds "wait n frames;".
func WaitFrames(n int64) *Wait { return &Wait{Duration: *FramesOf(Int(n))} }

// WaitSeconds builds "wait s seconds;".
func WaitSeconds(amount Expr) *Wait { return &Wait{Duration: *SecondsOf(amount)} }

// SpawnOf builds a spawn statement.
func SpawnOf(fields ...Field) *Spawn { return &Spawn{Fields: fields} }

// NewBlock builds a block from definitions and statements.
func NewBlock(defs Fields, stmts ...Stmt) *Block {
	return &Block{Definitions: defs, Statements: stmts}
}

// Loop builds a for statement without a guard.
func Loop(bindings []Binding, body *Block) *For {
	return &For{Bindings: bindings, Body: body}
}

// Over binds name to start...end.
func Over(name string, start, end int64) Binding {
	return Binding{Name: name, Range: Range{Start: start, End: end}}
}

// When wraps e as a when guard.
func When(e Expr) Condition { return Condition{Kind: CondWhen, Expr: e} }

// Unless wraps e as an unless guard.
func Unless(e Expr) Condition { return Condition{Kind: CondUnless, Expr: e} }
