// Package compiler flattens a pattern's control flow into a timeline: a list
// of actions, each due at a frame of the owning entity's life.
//
// Compilation threads one clock through the pattern. Waits advance it;
// spawn, set and despawn statements capture it as their due frame. Loops are
// unrolled and replays repeated at compile time, so the simulation only ever
// scans a flat list.
package compiler

import (
	"github.com/aledsdavies/patternscript/runtime/entity"
	"github.com/aledsdavies/patternscript/runtime/registry"
)

// Entry is one scheduled action. It fires at most once, on the first tick
// whose elapsed count reaches Frame.
type Entry struct {
	Frame  int
	Action Action
}

// Timeline is an entity's schedule in emission order. Frames are not sorted.
type Timeline []Entry

// TakeDue removes and returns every entry with Frame ≤ elapsed. Both the
// returned entries and the ones left behind keep their relative order.
func (tl *Timeline) TakeDue(elapsed int) []Entry {
	var due []Entry
	keep := (*tl)[:0]
	for _, e := range *tl {
		if e.Frame <= elapsed {
			due = append(due, e)
		} else {
			keep = append(keep, e)
		}
	}
	clear((*tl)[len(keep):])
	*tl = keep
	return due
}

// Pending returns the number of entries that have not fired.
func (tl Timeline) Pending() int { return len(tl) }

// ActionKind identifies an action variant.
type ActionKind uint8

const (
	ActionSpawn ActionKind = iota
	ActionSet
	ActionDespawn
)

func (k ActionKind) String() string {
	switch k {
	case ActionSpawn:
		return "spawn"
	case ActionSet:
		return "set"
	case ActionDespawn:
		return "despawn"
	}
	return "unknown"
}

// Action is the work done when an entry fires. Implementations are the
// actions of this package.
type Action interface {
	Kind() ActionKind
	Fire(ctx *FireContext) Outcome
	canonical() CanonicalEntry
}

// FireContext is what an action sees when it fires: the firing entity's
// environment and the shared read-only registry.
type FireContext struct {
	Env      *entity.Env
	Registry *registry.Registry
	FPS      int
}

// OutcomeKind tells the stepper what to do after an action fired.
type OutcomeKind uint8

const (
	Mutate      OutcomeKind = iota // the action changed the firing entity, or nothing
	AddEntities                   // Entities are queued for admission
	Delete                        // the firing entity is removed
)

func (k OutcomeKind) String() string {
	switch k {
	case Mutate:
		return "mutate"
	case AddEntities:
		return "add"
	case Delete:
		return "delete"
	}
	return "unknown"
}

// Outcome is what firing one action produced.
type Outcome struct {
	Kind        OutcomeKind
	Entities    []*entity.Entity
	Diagnostics entity.Diagnostics
}
