package compiler

import (
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/aledsdavies/patternscript/core/ast"
	"github.com/aledsdavies/patternscript/runtime/eval"
)

// CanonicalTimeline is the intermediate form for deterministic hashing.
// Actions are rendered to source text so that two compiles of the same
// pattern against the same bindings produce identical bytes.
type CanonicalTimeline struct {
	Version uint8
	Entries []CanonicalEntry
}

// CanonicalEntry represents one entry in canonical form.
type CanonicalEntry struct {
	Frame  int
	Kind   string
	Field  string           // set only
	Value  string           // set only
	Fields []CanonicalField // spawn only, declaration order
	Scope  []CanonicalField // captured bindings, sorted by name
}

// CanonicalField is a name with its rendered expression.
type CanonicalField struct {
	Name string
	Expr string
}

// Canonical converts the timeline into canonical form.
func (tl Timeline) Canonical() *CanonicalTimeline {
	ct := &CanonicalTimeline{
		Version: 1,
		Entries: make([]CanonicalEntry, len(tl)),
	}
	for i, e := range tl {
		ce := e.Action.canonical()
		ce.Frame = e.Frame
		ct.Entries[i] = ce
	}
	return ct
}

// MarshalBinary produces deterministic CBOR encoding of the canonical timeline.
func (ct *CanonicalTimeline) MarshalBinary() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	// Alias type so CBOR does not call MarshalBinary recursively.
	type canonicalTimelineAlias CanonicalTimeline
	data, err := encMode.Marshal((*canonicalTimelineAlias)(ct))
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}

// Digest computes the BLAKE2b-256 hash of the canonical timeline.
// Returns hex-encoded hash: "blake2b:a3f8b2c1d4e5f6a7..."
func (tl Timeline) Digest() (string, error) {
	data, err := tl.Canonical().MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize timeline for digest: %w", err)
	}
	return fmt.Sprintf("blake2b:%x", blake2b.Sum256(data)), nil
}

func canonicalFields(fs ast.Fields) []CanonicalField {
	out := make([]CanonicalField, len(fs))
	for i, f := range fs {
		out[i] = CanonicalField{Name: f.Name, Expr: render(f.Value)}
	}
	return out
}

func canonicalScope(s *eval.Scope) []CanonicalField {
	flat := s.Flatten()
	out := make([]CanonicalField, 0, len(flat))
	for name, expr := range flat {
		out = append(out, CanonicalField{Name: name, Expr: render(expr)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func render(e ast.Expr) string {
	if e == nil {
		return ""
	}
	return e.String()
}

func (a *SpawnAction) canonical() CanonicalEntry {
	return CanonicalEntry{
		Kind:   ActionSpawn.String(),
		Fields: canonicalFields(a.Fields),
		Scope:  canonicalScope(a.Scope),
	}
}

func (a *SetAction) canonical() CanonicalEntry {
	return CanonicalEntry{
		Kind:  ActionSet.String(),
		Field: a.Field,
		Value: render(a.Value),
		Scope: canonicalScope(a.Scope),
	}
}

func (DespawnAction) canonical() CanonicalEntry {
	return CanonicalEntry{Kind: ActionDespawn.String()}
}
