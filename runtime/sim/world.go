// Package sim runs the per-frame simulation of spawned entities.
//
// A World owns two index-aligned pools: live entity environments and their
// timelines. Step advances every entity by one logical frame in two phases.
// The compute phase moves entities and fires due actions while buffering
// spawns and removals; the commit phase applies the removals by swap-remove
// and admits the buffered spawns. Entities never observe each other, and a
// World is not safe for concurrent use.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/aledsdavies/patternscript/core/ast"
	"github.com/aledsdavies/patternscript/core/invariant"
	"github.com/aledsdavies/patternscript/runtime/compiler"
	"github.com/aledsdavies/patternscript/runtime/entity"
	"github.com/aledsdavies/patternscript/runtime/registry"
)

// ErrWorldFull is returned by the spawn methods when MaxEntities is reached.
var ErrWorldFull = errors.New("world is full")

// Stats counts what happened over a world's life.
type Stats struct {
	Ticks           uint64
	Admitted        int // entities added to the pools
	Dropped         int // spawns refused because the world was full
	Expired         int // removed at the end of their lifetime
	Despawned       int // removed by a despawn action
	Fired           int // actions executed
	MotionFaults    int // path components that failed to evaluate
	FieldFaults     int // spawn or set fields that fell back to defaults
	CompileFailures int // spawned children whose behavior did not compile

	StepTime time.Duration // total time in Step, TelemetryTiming only
}

// World is a simulation over a fixed registry.
type World struct {
	config Config
	reg    *registry.Registry
	logger *slog.Logger

	tick      uint64
	envs      []*entity.Env
	timelines []compiler.Timeline

	namespace uuid.UUID
	seq       uint64

	stats Stats
}

// New builds a world for the declarations in head.
func New(head *ast.Head, config Config) (*World, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	reg, err := registry.New(head)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = newLogger(config.Debug)
	}

	return &World{
		config:    config,
		reg:       reg,
		logger:    logger,
		namespace: uuid.NewSHA1(uuid.NameSpaceOID, []byte("patternscript/"+config.Seed)),
	}, nil
}

// Registry returns the world's registry.
func (w *World) Registry() *registry.Registry { return w.reg }

// Tick returns the number of completed steps.
func (w *World) Tick() uint64 { return w.tick }

// Len returns the number of live entities.
func (w *World) Len() int { return len(w.envs) }

// Stats returns a copy of the world's counters.
func (w *World) Stats() Stats { return w.stats }

// SpawnDirect compiles e's behavior and admits it immediately. If the
// behavior does not compile, e is not admitted and the error is returned.
func (w *World) SpawnDirect(e *entity.Entity) error {
	invariant.NotNil(e, "entity")
	if w.full() {
		w.stats.Dropped++
		return ErrWorldFull
	}
	tl, err := w.compileBehavior(e)
	if err != nil {
		w.stats.CompileFailures++
		return err
	}
	w.admit(e, tl)
	return nil
}

// Spawn builds an entity from fields evaluated against the world's globals
// and admits it. Fields that fall back to defaults are logged, not returned.
func (w *World) Spawn(fields ast.Fields) error {
	e, diags := entity.FromValues(fields, w.reg, w.reg.Globals(), nil, w.config.FPS)
	w.report(diags)
	return w.SpawnDirect(e)
}

// SpawnNamed spawns the named prefab with overrides applied on top.
func (w *World) SpawnNamed(prefab string, overrides ...ast.Field) error {
	if _, err := w.reg.LookupBullet(prefab); err != nil {
		return err
	}
	fields := make(ast.Fields, 0, len(overrides)+1)
	fields = append(fields, ast.Def("type", ast.Str(prefab)))
	fields = append(fields, overrides...)
	return w.Spawn(fields)
}

func (w *World) full() bool {
	return w.config.MaxEntities > 0 && len(w.envs) >= w.config.MaxEntities
}

// compileBehavior compiles the pattern named by e.Behavior against e's
// instance scope. An entity without a behavior gets an empty timeline.
func (w *World) compileBehavior(e *entity.Entity) (compiler.Timeline, error) {
	if e.Behavior == "" {
		return nil, nil
	}
	p, err := w.reg.LookupPattern(e.Behavior)
	if err != nil {
		return nil, err
	}
	res, err := compiler.CompileWithObservability(p, e.Instance, w.reg, compiler.Config{
		FPS:        w.config.FPS,
		MaxEntries: w.config.MaxTimelineEntries,
	})
	if err != nil {
		return nil, err
	}
	w.logger.Debug("compiled behavior",
		"pattern", e.Behavior,
		"entries", len(res.Timeline),
		"clock", res.Clock)
	return res.Timeline, nil
}

// admit appends e and its timeline to both pools and assigns its ID.
func (w *World) admit(e *entity.Entity, tl compiler.Timeline) {
	e.ID = uuid.NewSHA1(w.namespace, []byte(strconv.FormatUint(w.seq, 10)))
	w.seq++
	w.envs = append(w.envs, entity.NewEnv(e))
	w.timelines = append(w.timelines, tl)
	w.stats.Admitted++
	invariant.Aligned(len(w.envs), len(w.timelines), "entity/timeline pools")
}

func (w *World) report(diags entity.Diagnostics) {
	if len(diags) == 0 {
		return
	}
	w.stats.FieldFaults += len(diags)
	for _, d := range diags {
		w.logger.Debug("field fell back to default", "field", d.Field, "error", d.Err)
	}
}
