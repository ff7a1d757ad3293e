package entity

import (
	"math"

	"github.com/aledsdavies/patternscript/runtime/eval"
)

// Env is the execution environment of one live entity: the entity, the
// number of frames it has lived and its lifetime at admission.
type Env struct {
	Entity   *Entity
	Elapsed  int
	Duration int
}

// NewEnv wraps e for admission to a world.
func NewEnv(e *Entity) *Env {
	return &Env{Entity: e, Duration: e.Lifetime}
}

// Expired reports whether the entity has outlived its duration.
func (env *Env) Expired() bool { return env.Elapsed >= env.Duration }

// Remaining returns the frames left before expiry, never negative.
func (env *Env) Remaining() int { return max(env.Duration-env.Elapsed, 0) }

// Move advances the entity's kinematics by one frame at fps.
//
// A bound position path sets the position outright. Otherwise a fixed speed
// points the velocity along the rotation, a bound velocity path overrides
// it, and the position integrates velocity/fps. Path components that fail to
// evaluate keep the entity's current value; the failures are returned.
func (env *Env) Move(fps int) error {
	e := env.Entity
	if e.PositionFn != nil {
		pos, err := e.PositionFn.Eval(env.Elapsed, e.Position)
		e.Position = pos
		return err
	}

	if e.Speed != nil {
		rad := e.Rotation * math.Pi / 180
		e.Velocity = Vec2{X: *e.Speed * math.Cos(rad), Y: *e.Speed * math.Sin(rad)}
	}
	var err error
	if e.VelocityFn != nil {
		e.Velocity, err = e.VelocityFn.Eval(env.Elapsed, e.Velocity)
	}
	e.Position = e.Position.Add(e.Velocity.Scale(1 / float64(fps)))
	return err
}

// Apply sets one field of the environment's entity, keeping the cached
// duration in step with lifetime changes.
func (env *Env) Apply(field string, v eval.Value) bool {
	if !Apply(env.Entity, field, v) {
		return false
	}
	if field == "lifetime" {
		env.Duration = env.Entity.Lifetime
	}
	return true
}

// Apply mutates one field of e from an evaluated value. It reports false,
// leaving e unchanged, when the field is unknown or v has the wrong shape.
//
// Setting position or velocity detaches the matching path binding, and
// setting velocity clears a fixed speed.
func Apply(e *Entity, field string, v eval.Value) bool {
	switch field {
	case "rotation":
		f, ok := eval.AsFloat(v)
		if ok {
			e.Rotation = f
		}
		return ok
	case "speed":
		f, ok := eval.AsFloat(v)
		if ok {
			e.Speed = &f
		}
		return ok
	case "position":
		p, ok := AsVec2(v)
		if ok {
			e.Position = p
			e.PositionFn = nil
		}
		return ok
	case "velocity":
		p, ok := AsVec2(v)
		if ok {
			e.Velocity = p
			e.VelocityFn = nil
			e.Speed = nil
		}
		return ok
	case "color":
		c, ok := AsColor(v)
		if ok {
			e.Color = c
		}
		return ok
	case "lifetime":
		n, ok := v.(eval.Int)
		if ok && n >= 0 {
			e.Lifetime = int(n)
			return true
		}
		return false
	case "hitbox":
		s, ok := AsVec2(v)
		if ok {
			e.Hitbox.Size = s
		}
		return ok
	}
	return false
}
