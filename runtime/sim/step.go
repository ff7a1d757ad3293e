package sim

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aledsdavies/patternscript/core/invariant"
	"github.com/aledsdavies/patternscript/runtime/compiler"
	"github.com/aledsdavies/patternscript/runtime/entity"
)

// pending is a spawned child waiting for admission.
type pending struct {
	entity   *entity.Entity
	timeline compiler.Timeline
}

// Step advances the world by one logical frame.
//
//  1. Motion: every entity moves, in pool order.
//  2. Dispatch: expired entities are marked for removal. Every other entity
//     fires each due entry once, in timeline order. Spawns are buffered and
//     despawns marked.
//  3. Every entity's elapsed count increases by one.
//  4. Sweep: marked entities are swap-removed from both pools.
//  5. Admission: buffered spawns join both pools.
//
// Step never stops partway. Children whose behavior fails to compile are
// dropped, and their errors are joined and returned once the tick is done.
func (w *World) Step() error {
	invariant.Aligned(len(w.envs), len(w.timelines), "entity/timeline pools")

	var start time.Time
	if w.config.Telemetry >= TelemetryTiming {
		start = time.Now()
	}

	w.move()
	marked, spawned, errs := w.dispatch()

	for _, env := range w.envs {
		env.Elapsed++
	}

	w.sweep(marked)
	w.admitAll(spawned)
	w.tick++
	w.stats.Ticks++

	if w.config.Telemetry >= TelemetryTiming {
		w.stats.StepTime += time.Since(start)
	}
	return errors.Join(errs...)
}

func (w *World) move() {
	for i, env := range w.envs {
		if err := env.Move(w.config.FPS); err != nil {
			w.stats.MotionFaults++
			w.logger.Debug("motion fault", "tick", w.tick, "index", i, "id", env.Entity.ID, "error", err)
		}
	}
}

func (w *World) dispatch() (marked []int, spawned []pending, errs []error) {
	for i, env := range w.envs {
		if env.Expired() {
			marked = append(marked, i)
			w.stats.Expired++
			continue
		}

		due := w.timelines[i].TakeDue(env.Elapsed)
		if len(due) == 0 {
			continue
		}
		ctx := &compiler.FireContext{Env: env, Registry: w.reg, FPS: w.config.FPS}
		deleted := false
		for _, entry := range due {
			res := entry.Action.Fire(ctx)
			w.stats.Fired++
			w.report(res.Diagnostics)

			switch res.Kind {
			case compiler.AddEntities:
				for _, child := range res.Entities {
					tl, err := w.compileBehavior(child)
					if err != nil {
						w.stats.CompileFailures++
						errs = append(errs, fmt.Errorf("tick %d: spawn %s: %w", w.tick, child.Behavior, err))
						continue
					}
					spawned = append(spawned, pending{entity: child, timeline: tl})
				}
			case compiler.Delete:
				if !deleted {
					marked = append(marked, i)
					w.stats.Despawned++
					deleted = true
				}
			}
		}
	}
	return marked, spawned, errs
}

// sweep swap-removes the marked indices from both pools, highest first.
func (w *World) sweep(marked []int) {
	if len(marked) == 0 {
		return
	}
	slices.Sort(marked)
	marked = slices.Compact(marked)
	for j := len(marked) - 1; j >= 0; j-- {
		i := marked[j]
		last := len(w.envs) - 1
		w.envs[i] = w.envs[last]
		w.timelines[i] = w.timelines[last]
		w.envs[last] = nil
		w.timelines[last] = nil
		w.envs = w.envs[:last]
		w.timelines = w.timelines[:last]
		invariant.Aligned(len(w.envs), len(w.timelines), "entity/timeline pools")
	}
}

func (w *World) admitAll(spawned []pending) {
	for _, p := range spawned {
		if w.full() {
			w.stats.Dropped++
			continue
		}
		w.admit(p.entity, p.timeline)
	}
	if n := len(spawned); n > 0 {
		w.logger.Debug("admitted spawns", "tick", w.tick, "count", n, "live", len(w.envs))
	}
}
