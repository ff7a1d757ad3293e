package entity

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aledsdavies/patternscript/core/ast"
	"github.com/aledsdavies/patternscript/runtime/eval"
	"github.com/aledsdavies/patternscript/runtime/registry"
)

// Diagnostic records a field that could not be applied. The field kept its
// default.
type Diagnostic struct {
	Field string
	Err   error
}

func (d Diagnostic) Error() string { return d.Field + ": " + d.Err.Error() }

func (d Diagnostic) Unwrap() error { return d.Err }

// Diagnostics collects field problems found while building an entity. They
// are advisory: the entity is still usable.
type Diagnostics []Diagnostic

// Err joins the diagnostics into one error, nil when there are none.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}
	return errors.Join(errs...)
}

func (ds *Diagnostics) add(field string, err error) {
	*ds = append(*ds, Diagnostic{Field: field, Err: err})
}

// FromValues builds an entity from spawn fields.
//
// When the fields name a prefab with type, the prefab's fields come first and
// the spawn fields are re-applied on top. Each recognised field is evaluated
// against globals ▸ instance ▸ the merged fields; a field of the wrong shape
// keeps its default and is reported in the returned Diagnostics.
func FromValues(fields ast.Fields, reg *registry.Registry, globals, instance *eval.Scope, fps int) (*Entity, Diagnostics) {
	var diags Diagnostics
	base := eval.Merge(globals, instance)

	merged := fields
	if expr, ok := fields.Get("type"); ok {
		if name, err := nameOf(expr, base.WithFields("spawn", fields)); err != nil {
			diags.add("type", err)
		} else if reg == nil {
			diags.add("type", fmt.Errorf("no registry for prefab %q", name))
		} else if prefab, err := reg.LookupBullet(name); err != nil {
			diags.add("type", err)
		} else {
			merged = make(ast.Fields, 0, len(prefab.Fields)+len(fields))
			merged = append(merged, prefab.Fields...)
			merged = append(merged, fields...)
		}
	}

	scope := base.WithFields("spawn", merged)
	e := New()
	e.Instance = scope

	b := builder{e: e, scope: scope, fields: merged, reg: reg, fps: fps, diags: &diags}
	b.vec("position", func(v Vec2) { e.Position = v })
	b.vec("velocity", func(v Vec2) { e.Velocity = v })
	b.number("rotation", func(f float64) { e.Rotation = f })
	b.number("speed", func(f float64) { e.Speed = &f })
	b.lifetime()
	b.color()
	b.hitbox()
	b.vec("hitbox_offset", func(v Vec2) { e.Hitbox.Offset = v })
	b.hitboxShape()
	b.behavior("behavior")
	b.behavior("pattern")
	e.PositionFn = b.motion("position_fn")
	e.VelocityFn = b.motion("velocity_fn")

	return e, diags
}

type builder struct {
	e      *Entity
	scope  *eval.Scope
	fields ast.Fields
	reg    *registry.Registry
	fps    int
	diags  *Diagnostics
}

func (b *builder) eval(field string) (eval.Value, bool) {
	expr, ok := b.fields.Get(field)
	if !ok {
		return nil, false
	}
	v, err := eval.Evaluate(expr, b.scope)
	if err != nil {
		b.diags.add(field, err)
		return nil, false
	}
	return v, true
}

func (b *builder) vec(field string, set func(Vec2)) {
	v, ok := b.eval(field)
	if !ok {
		return
	}
	vec, ok := AsVec2(v)
	if !ok {
		b.diags.add(field, fmt.Errorf("want a 2-vector, got %s", eval.Describe(v)))
		return
	}
	set(vec)
}

func (b *builder) number(field string, set func(float64)) {
	v, ok := b.eval(field)
	if !ok {
		return
	}
	f, ok := eval.AsFloat(v)
	if !ok {
		b.diags.add(field, fmt.Errorf("want a number, got %s", eval.Describe(v)))
		return
	}
	set(f)
}

func (b *builder) lifetime() {
	expr, ok := b.fields.Get("lifetime")
	if !ok {
		return
	}
	n, err := eval.Frames(expr, b.scope, b.fps)
	if err != nil {
		b.diags.add("lifetime", err)
		return
	}
	b.e.Lifetime = n
}

func (b *builder) color() {
	v, ok := b.eval("color")
	if !ok {
		return
	}
	c, ok := AsColor(v)
	if !ok {
		b.diags.add("color", fmt.Errorf("want a 3-vector, got %s", eval.Describe(v)))
		return
	}
	b.e.Color = c
}

func (b *builder) hitbox() {
	v, ok := b.eval("hitbox")
	if !ok {
		return
	}
	if f, isNum := eval.AsFloat(v); isNum {
		b.e.Hitbox.Size = Vec2{X: f, Y: f}
		return
	}
	size, ok := AsVec2(v)
	if !ok {
		b.diags.add("hitbox", fmt.Errorf("want a size vector, got %s", eval.Describe(v)))
		return
	}
	b.e.Hitbox.Size = size
}

func (b *builder) hitboxShape() {
	expr, ok := b.fields.Get("hitbox_type")
	if !ok {
		return
	}
	name, err := nameOf(expr, b.scope)
	if err != nil {
		b.diags.add("hitbox_type", err)
		return
	}
	shape, ok := ParseHitboxShape(name)
	if !ok {
		b.diags.add("hitbox_type", fmt.Errorf("unknown shape %q, want rectangle or ellipse", name))
		return
	}
	b.e.Hitbox.Shape = shape
}

func (b *builder) behavior(field string) {
	expr, ok := b.fields.Get(field)
	if !ok {
		return
	}
	name, err := nameOf(expr, b.scope)
	if err != nil {
		b.diags.add(field, err)
		return
	}
	if b.reg == nil {
		b.diags.add(field, fmt.Errorf("no registry for pattern %q", name))
		return
	}
	if _, err := b.reg.LookupPattern(name); err != nil {
		b.diags.add(field, err)
		return
	}
	b.e.Behavior = name
}

// motion binds a path call: name(args), a bare name, or a string naming
// the path. Arguments are evaluated now; one that cannot be is bound as its
// expression and evaluated with the path.
func (b *builder) motion(field string) *Motion {
	expr, ok := b.fields.Get(field)
	if !ok {
		return nil
	}

	var name string
	var args []ast.Expr
	if call, isCall := expr.(*ast.Unary); isCall && call.Kind == ast.UnaryCall {
		name = call.Func
		switch op := call.Operand.(type) {
		case nil:
		case *ast.VectorLit:
			args = op.Elems
		default:
			args = []ast.Expr{op}
		}
	} else {
		n, err := nameOf(expr, b.scope)
		if err != nil {
			b.diags.add(field, err)
			return nil
		}
		name = n
	}

	if b.reg == nil {
		b.diags.add(field, fmt.Errorf("no registry for path %q", name))
		return nil
	}
	path, err := b.reg.LookupPath(name)
	if err != nil {
		b.diags.add(field, err)
		return nil
	}

	if len(args) != len(path.Params) {
		b.diags.add(field, fmt.Errorf("path %s takes %d arguments, got %d", name, len(path.Params), len(args)))
	}
	params := make(map[string]ast.Expr, len(path.Params))
	for i, param := range path.Params {
		if i >= len(args) {
			break
		}
		if v, err := eval.Evaluate(args[i], b.scope); err == nil {
			params[param] = eval.Literal(v)
		} else {
			params[param] = args[i]
		}
	}

	// Arguments kept as expressions still see the spawn's bindings.
	scope := b.scope.With("args:"+name, params).WithFields("path:"+name, path.Fields.Without("x", "y"))
	return &Motion{Name: name, Path: path, Scope: scope}
}

// nameOf resolves a name field. A bare identifier that is not bound in scope
// is taken literally; anything else must evaluate to a string.
func nameOf(expr ast.Expr, scope *eval.Scope) (string, error) {
	if v, ok := expr.(*ast.Var); ok && !scope.Has(v.Name) {
		return v.Name, nil
	}
	val, err := eval.Evaluate(expr, scope)
	if err != nil {
		return "", err
	}
	name, ok := eval.AsName(val)
	if !ok {
		return "", fmt.Errorf("want a name, got %s", eval.Describe(val))
	}
	return strings.TrimSpace(name), nil
}

// AsVec2 reads the first two elements of a numeric vector.
func AsVec2(v eval.Value) (Vec2, bool) {
	fs, ok := eval.AsFloats(v)
	if !ok || len(fs) < 2 {
		return Vec2{}, false
	}
	return Vec2{X: fs[0], Y: fs[1]}, true
}

// AsColor reads a numeric 3-vector, clamping each channel to 0–255.
func AsColor(v eval.Value) (Color, bool) {
	fs, ok := eval.AsFloats(v)
	if !ok || len(fs) < 3 {
		return Color{}, false
	}
	return Color{R: channel(fs[0]), G: channel(fs[1]), B: channel(fs[2])}, true
}

func channel(f float64) uint8 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= 255 {
		return 255
	}
	return uint8(f)
}
