package sim

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/aledsdavies/patternscript/runtime/entity"
)

// EntityState is the host-visible state of one live entity.
type EntityState struct {
	ID        uuid.UUID
	Position  entity.Vec2
	Velocity  entity.Vec2
	Rotation  float64
	Color     entity.Color
	Hitbox    entity.Hitbox
	Behavior  string
	Remaining int // frames of lifetime left
	Pending   int // timeline entries not yet fired
}

// Entities returns the state of every live entity in pool order. Pool order
// changes when entities are removed; use ID to follow an entity.
func (w *World) Entities() []EntityState {
	out := make([]EntityState, len(w.envs))
	for i, env := range w.envs {
		e := env.Entity
		out[i] = EntityState{
			ID:        e.ID,
			Position:  e.Position,
			Velocity:  e.Velocity,
			Rotation:  e.Rotation,
			Color:     e.Color,
			Hitbox:    e.Hitbox,
			Behavior:  e.Behavior,
			Remaining: env.Remaining(),
			Pending:   w.timelines[i].Pending(),
		}
	}
	return out
}

// Find returns the state of the entity with the given ID.
func (w *World) Find(id uuid.UUID) (EntityState, bool) {
	for _, s := range w.Entities() {
		if s.ID == id {
			return s, true
		}
	}
	return EntityState{}, false
}

// Snapshot is the world's state after a tick.
type Snapshot struct {
	Tick     uint64
	Entities []EntityState
}

// Snapshot captures the current state.
func (w *World) Snapshot() *Snapshot {
	return &Snapshot{Tick: w.tick, Entities: w.Entities()}
}

// MarshalBinary produces deterministic CBOR encoding of the snapshot.
func (s *Snapshot) MarshalBinary() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	// Alias type so CBOR does not call MarshalBinary recursively.
	type snapshotAlias Snapshot
	data, err := encMode.Marshal((*snapshotAlias)(s))
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}

// Digest computes the BLAKE2b-256 hash of the encoded snapshot.
// Returns hex-encoded hash: "blake2b:a3f8b2c1d4e5f6a7..."
func (s *Snapshot) Digest() (string, error) {
	data, err := s.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot for digest: %w", err)
	}
	return fmt.Sprintf("blake2b:%x", blake2b.Sum256(data)), nil
}
