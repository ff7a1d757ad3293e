package compiler

import (
	"fmt"

	"github.com/aledsdavies/patternscript/core/ast"
	"github.com/aledsdavies/patternscript/runtime/entity"
	"github.com/aledsdavies/patternscript/runtime/eval"
)

// firingScope layers the firing entity's position as origin and its
// rotation as heading over the captured scope.
func firingScope(captured *eval.Scope, env *entity.Env) *eval.Scope {
	if env == nil || env.Entity == nil {
		return captured
	}
	e := env.Entity
	return captured.With("firing", map[string]ast.Expr{
		"origin":  ast.Vec(ast.Float(e.Position.X), ast.Float(e.Position.Y)),
		"heading": ast.Float(e.Rotation),
	})
}

// SpawnAction builds one entity from Fields evaluated in the scope captured
// at compile time.
type SpawnAction struct {
	Fields ast.Fields
	Scope  *eval.Scope
}

func (a *SpawnAction) Kind() ActionKind { return ActionSpawn }

func (a *SpawnAction) Fire(ctx *FireContext) Outcome {
	scope := firingScope(a.Scope, ctx.Env)
	globals := (*eval.Scope)(nil)
	if ctx.Registry != nil {
		globals = ctx.Registry.Globals()
	}
	child, diags := entity.FromValues(a.Fields, ctx.Registry, globals, scope, ctx.FPS)
	return Outcome{Kind: AddEntities, Entities: []*entity.Entity{child}, Diagnostics: diags}
}

// SetAction assigns Value to one field of the firing entity. A value that
// fails to evaluate or does not fit the field leaves the entity unchanged.
type SetAction struct {
	Field string
	Value ast.Expr
	Scope *eval.Scope
}

func (a *SetAction) Kind() ActionKind { return ActionSet }

func (a *SetAction) Fire(ctx *FireContext) Outcome {
	if ctx.Env == nil {
		return Outcome{Kind: Mutate}
	}
	v, err := eval.Evaluate(a.Value, firingScope(a.Scope, ctx.Env))
	if err != nil {
		return Outcome{Kind: Mutate, Diagnostics: entity.Diagnostics{{Field: a.Field, Err: err}}}
	}
	if !ctx.Env.Apply(a.Field, v) {
		err := fmt.Errorf("cannot set %s to %s", a.Field, eval.Describe(v))
		return Outcome{Kind: Mutate, Diagnostics: entity.Diagnostics{{Field: a.Field, Err: err}}}
	}
	return Outcome{Kind: Mutate}
}

// DespawnAction removes the firing entity.
type DespawnAction struct{}

func (DespawnAction) Kind() ActionKind { return ActionDespawn }

func (DespawnAction) Fire(*FireContext) Outcome { return Outcome{Kind: Delete} }
