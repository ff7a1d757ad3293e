// Package entity models the live objects of a simulation: bullets, emitters
// and anything else a pattern spawns.
package entity

import (
	"strings"

	"github.com/google/uuid"

	"github.com/aledsdavies/patternscript/runtime/eval"
)

// DefaultLifetime is the lifetime in frames of an entity that does not set one.
const DefaultLifetime = 600

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X float64
	Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Scale returns v * k.
func (v Vec2) Scale(k float64) Vec2 { return Vec2{X: v.X * k, Y: v.Y * k} }

// Color is an 8-bit RGB color.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// HitboxShape selects the collision outline.
type HitboxShape uint8

const (
	Rectangle HitboxShape = iota
	Ellipse
)

func (s HitboxShape) String() string {
	if s == Ellipse {
		return "ellipse"
	}
	return "rectangle"
}

// ParseHitboxShape accepts "rectangle" or "ellipse", case-insensitively.
func ParseHitboxShape(s string) (HitboxShape, bool) {
	switch strings.ToLower(s) {
	case "rectangle", "rect":
		return Rectangle, true
	case "ellipse":
		return Ellipse, true
	}
	return Rectangle, false
}

// Hitbox is the collision area relative to the entity's position.
type Hitbox struct {
	Size   Vec2
	Offset Vec2
	Shape  HitboxShape
}

// Entity is a spawned object. Position, velocity and the other kinematic
// fields change every tick; the rest is fixed at construction unless a set
// action mutates it.
type Entity struct {
	ID       uuid.UUID
	Position Vec2
	Velocity Vec2
	Rotation float64  // degrees
	Speed    *float64 // when set, velocity follows rotation
	Lifetime int      // frames
	Color    Color
	Hitbox   Hitbox

	// Behavior names the pattern this entity runs, "" for none.
	Behavior string

	PositionFn *Motion
	VelocityFn *Motion

	// Instance is the scope the entity was built in: globals, the spawner's
	// bindings and the entity's own fields. Its behavior compiles against it.
	Instance *eval.Scope
}

// New returns an entity with every field at its default.
func New() *Entity {
	return &Entity{
		Lifetime: DefaultLifetime,
		Color:    Color{R: 255, G: 255, B: 255},
		Hitbox:   Hitbox{Size: Vec2{X: 8, Y: 8}},
	}
}
