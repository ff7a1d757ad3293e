package ast

// Stmt is a statement inside a block.
type Stmt interface {
	stmtNode()
}

// Block holds local definitions and an ordered statement list.
type Block struct {
	Definitions Fields
	Statements  []Stmt
}

// Wait advances the compile-time clock.
type Wait struct {
	Duration Duration
}

// CondKind selects how a guard is applied.
type CondKind int

const (
	CondNone CondKind = iota
	CondWhen
	CondUnless
)

// Condition is an optional when/unless guard.
type Condition struct {
	Kind CondKind
	Expr Expr
}

// Binding binds one loop variable to a range.
type Binding struct {
	Name  string
	Range Range
}

// For iterates the Cartesian product of its bindings. The last binding varies
// fastest.
type For struct {
	Bindings []Binding
	Guard    Condition
	Body     *Block
}

// Spawn creates one entity from its fields when it fires.
type Spawn struct {
	Fields Fields
}

// Invoke compiles a registered pattern inline with extra bindings.
type Invoke struct {
	Name string
	Args Fields
}

// Set mutates a field of the running entity when it fires.
type Set struct {
	Field string
	Value Expr
}

// Despawn removes the running entity when it fires.
type Despawn struct{}

func (*Wait) stmtNode()    {}
func (*For) stmtNode()     {}
func (*Spawn) stmtNode()   {}
func (*Invoke) stmtNode()  {}
func (*Set) stmtNode()     {}
func (*Despawn) stmtNode() {}
func (*Pattern) stmtNode() {}

// Pattern is a named behavior script. It doubles as a statement for inline
// sub-patterns, in which case Name may be empty.
type Pattern struct {
	Name string
	Body *Block
}

// Path is a parametric motion curve. Fields must define x and y.
type Path struct {
	Name   string
	Params []string
	Fields Fields
}

// Bullet is a prefab of default spawn fields.
type Bullet struct {
	Name   string
	Fields Fields
}

// Head is the root of a parsed file.
type Head struct {
	Paths     map[string]*Path
	Patterns  map[string]*Pattern
	Bullets   map[string]*Bullet
	Constants Fields
}

// NewHead returns an empty head with initialised maps.
func NewHead() *Head {
	return &Head{
		Paths:    make(map[string]*Path),
		Patterns: make(map[string]*Pattern),
		Bullets:  make(map[string]*Bullet),
	}
}

// AddPath registers p under its name and returns the head for chaining.
func (h *Head) AddPath(p *Path) *Head {
	h.Paths[p.Name] = p
	return h
}

// AddPattern registers p under its name.
func (h *Head) AddPattern(p *Pattern) *Head {
	h.Patterns[p.Name] = p
	return h
}

// AddBullet registers b under its name.
func (h *Head) AddBullet(b *Bullet) *Head {
	h.Bullets[b.Name] = b
	return h
}
