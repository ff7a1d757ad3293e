package sim_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/patternscript/core/ast"
	"github.com/aledsdavies/patternscript/runtime/compiler"
	"github.com/aledsdavies/patternscript/runtime/entity"
	"github.com/aledsdavies/patternscript/runtime/registry"
	"github.com/aledsdavies/patternscript/runtime/sim"
)

const delta = 1e-9

func quietConfig(fps int) sim.Config {
	cfg := sim.DefaultConfig()
	cfg.FPS = fps
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

func newWorld(t *testing.T, head *ast.Head, cfg sim.Config) *sim.World {
	t.Helper()
	w, err := sim.New(head, cfg)
	require.NoError(t, err)
	return w
}

func steps(t *testing.T, w *sim.World, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, w.Step())
	}
}

func block(stmts ...ast.Stmt) *ast.Pattern {
	return &ast.Pattern{Body: ast.NewBlock(nil, stmts...)}
}

func named(name string, p *ast.Pattern) *ast.Pattern {
	p.Name = name
	return p
}

// ========== Configuration ==========

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, sim.DefaultConfig().Validate())

	tests := []struct {
		name string
		edit func(*sim.Config)
	}{
		{"zero fps", func(c *sim.Config) { c.FPS = 0 }},
		{"absurd fps", func(c *sim.Config) { c.FPS = 100_000 }},
		{"negative max entities", func(c *sim.Config) { c.MaxEntities = -1 }},
		{"unknown telemetry level", func(c *sim.Config) { c.Telemetry = 7 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sim.DefaultConfig()
			tt.edit(&cfg)

			err := cfg.Validate()
			var ce *sim.ConfigError
			assert.True(t, errors.As(err, &ce), "expected *ConfigError, got %v", err)

			_, err = sim.New(nil, cfg)
			assert.Error(t, err)
		})
	}
}

func TestNew_RejectsMalformedPath(t *testing.T) {
	head := ast.NewHead().AddPath(&ast.Path{Name: "half", Fields: ast.Fields{ast.Def("x", ast.Int(0))}})
	_, err := sim.New(head, quietConfig(60))

	var pe *registry.PathError
	assert.True(t, errors.As(err, &pe), "expected *PathError, got %v", err)
}

// ========== Lifetime ==========

func TestStep_LifetimeExpiry(t *testing.T) {
	w := newWorld(t, nil, quietConfig(60))
	require.NoError(t, w.Spawn(ast.Fields{ast.Def("lifetime", ast.Int(5))}))

	steps(t, w, 5)
	assert.Equal(t, 1, w.Len(), "present after 5 steps")
	assert.Equal(t, 0, w.Entities()[0].Remaining)

	steps(t, w, 1)
	assert.Equal(t, 0, w.Len(), "removed by the 6th step")
	assert.Equal(t, 1, w.Stats().Expired)
	assert.Equal(t, uint64(6), w.Tick())
}

func TestStep_EmptyPattern(t *testing.T) {
	head := ast.NewHead().AddPattern(named("idle", block()))
	w := newWorld(t, head, quietConfig(60))
	require.NoError(t, w.Spawn(ast.Fields{ast.Def("behavior", ast.Ref("idle"))}))

	steps(t, w, 1)

	require.Equal(t, 1, w.Len(), "no new entity")
	state := w.Entities()[0]
	assert.Equal(t, entity.DefaultLifetime-1, state.Remaining, "elapsed is 1")
	assert.Zero(t, state.Pending)
}

// ========== Dispatch ==========

func TestStep_ForLoopSpawnsAtFrameZero(t *testing.T) {
	fan := named("fan", block(ast.Loop(
		[]ast.Binding{ast.Over("i", 0, 3)},
		ast.NewBlock(nil, ast.SpawnOf(ast.Def("position", ast.Vec(ast.Ref("i"), ast.Int(0))))),
	)))
	w := newWorld(t, ast.NewHead().AddPattern(fan), quietConfig(60))
	require.NoError(t, w.Spawn(ast.Fields{ast.Def("pattern", ast.Str("fan"))}))

	steps(t, w, 1)

	states := w.Entities()
	require.Len(t, states, 4)
	for i, want := range []float64{0, 1, 2} {
		assert.Equal(t, entity.Vec2{X: want, Y: 0}, states[i+1].Position)
	}
	assert.Equal(t, 3, w.Stats().Fired)
}

func TestStep_WaitDelaysSpawn(t *testing.T) {
	p := named("later", block(ast.WaitFrames(30), ast.SpawnOf()))
	w := newWorld(t, ast.NewHead().AddPattern(p), quietConfig(60))
	require.NoError(t, w.Spawn(ast.Fields{ast.Def("behavior", ast.Ref("later"))}))

	steps(t, w, 30)
	assert.Equal(t, 1, w.Len(), "not yet due after 30 steps")

	steps(t, w, 1)
	assert.Equal(t, 2, w.Len(), "fires on the step where elapsed reaches 30")
}

func TestStep_Despawn(t *testing.T) {
	p := named("blink", block(ast.WaitFrames(3), &ast.Despawn{}, &ast.Despawn{}))
	w := newWorld(t, ast.NewHead().AddPattern(p), quietConfig(60))
	require.NoError(t, w.Spawn(ast.Fields{ast.Def("behavior", ast.Ref("blink"))}))

	steps(t, w, 3)
	assert.Equal(t, 1, w.Len())

	steps(t, w, 1)
	assert.Equal(t, 0, w.Len())
	assert.Equal(t, 1, w.Stats().Despawned, "duplicate deletes count once")
}

func TestStep_SpawnAtOrigin(t *testing.T) {
	p := named("emit", block(ast.WaitFrames(10), ast.SpawnOf(ast.Def("position", ast.Ref("origin")))))
	w := newWorld(t, ast.NewHead().AddPattern(p), quietConfig(120))
	require.NoError(t, w.Spawn(ast.Fields{
		ast.Def("behavior", ast.Ref("emit")),
		ast.Def("velocity", ast.Vec(ast.Int(120), ast.Int(0))),
	}))

	steps(t, w, 11)

	states := w.Entities()
	require.Len(t, states, 2)
	assert.InDelta(t, 11, states[1].Position.X, 1e-6, "child starts where the parent was after moving this tick")
}

func TestStep_SwapRemovalKeepsAssociation(t *testing.T) {
	mark := named("mark", block(ast.WaitFrames(4), &ast.Set{Field: "rotation", Value: ast.Ref("tag")}))
	w := newWorld(t, ast.NewHead().AddPattern(mark), quietConfig(60))

	tags := []int64{1, 2, 3, 4}
	for i, tag := range tags {
		fields := ast.Fields{
			ast.Def("behavior", ast.Ref("mark")),
			ast.Def("tag", ast.Int(tag)),
		}
		if i == 0 {
			fields = append(fields, ast.Def("lifetime", ast.Int(2)))
		}
		require.NoError(t, w.Spawn(fields))
	}

	byID := make(map[uuid.UUID]float64)
	for i, s := range w.Entities() {
		byID[s.ID] = float64(tags[i])
	}

	steps(t, w, 5)

	states := w.Entities()
	require.Len(t, states, 3)
	for _, s := range states {
		assert.Equal(t, byID[s.ID], s.Rotation, "entity %s ran another entity's timeline", s.ID)
	}
	assert.Equal(t, 4.0, states[0].Rotation, "last entity was swapped into the freed slot")
}

// ========== Motion ==========

func TestStep_Motion(t *testing.T) {
	head := ast.NewHead().
		AddPath(&ast.Path{
			Name:   "line",
			Params: []string{"v"},
			Fields: ast.Fields{
				ast.Def("x", ast.Bin(ast.OpMul, ast.Ref("v"), ast.Ref("t"))),
				ast.Def("y", ast.Int(0)),
			},
		}).
		AddPath(&ast.Path{
			Name: "broken",
			Fields: ast.Fields{
				ast.Def("x", ast.Ref("t")),
				ast.Def("y", ast.Ref("nowhere")),
			},
		})
	w := newWorld(t, head, quietConfig(120))

	require.NoError(t, w.Spawn(ast.Fields{ast.Def("velocity", ast.Vec(ast.Int(120), ast.Int(-240)))}))
	require.NoError(t, w.Spawn(ast.Fields{ast.Def("rotation", ast.Int(90)), ast.Def("speed", ast.Int(120))}))
	require.NoError(t, w.Spawn(ast.Fields{ast.Def("position_fn", ast.Call("line", ast.Int(2)))}))
	require.NoError(t, w.Spawn(ast.Fields{
		ast.Def("position", ast.Vec(ast.Int(5), ast.Int(5))),
		ast.Def("position_fn", ast.Ref("broken")),
	}))

	steps(t, w, 2)
	s := w.Entities()

	assert.InDelta(t, 2, s[0].Position.X, delta)
	assert.InDelta(t, -4, s[0].Position.Y, delta)

	assert.InDelta(t, 0, s[1].Position.X, delta)
	assert.InDelta(t, 2, s[1].Position.Y, delta)

	assert.InDelta(t, 2, s[2].Position.X, delta, "path evaluated with t = 1 on the second step")

	assert.InDelta(t, 1, s[3].Position.X, delta)
	assert.InDelta(t, 5, s[3].Position.Y, delta, "failing component keeps its value")
	assert.Equal(t, 2, w.Stats().MotionFaults)
}

// ========== Failures ==========

func TestStep_ChildCompileFailureIsReported(t *testing.T) {
	bad := named("bad", &ast.Pattern{Body: ast.NewBlock(ast.Fields{ast.Def("iteration_type", ast.Ref("forever"))})})
	parent := named("parent", block(ast.SpawnOf(ast.Def("behavior", ast.Ref("bad"))), ast.SpawnOf()))
	w := newWorld(t, ast.NewHead().AddPattern(bad).AddPattern(parent), quietConfig(60))
	require.NoError(t, w.Spawn(ast.Fields{ast.Def("behavior", ast.Ref("parent"))}))

	err := w.Step()
	assert.ErrorIs(t, err, compiler.ErrMalformedIteration)
	assert.Equal(t, 2, w.Len(), "the failing child is dropped, the other admitted")
	assert.Equal(t, 1, w.Stats().CompileFailures)
	assert.Equal(t, uint64(1), w.Tick(), "the tick completes")
}

func TestSpawnDirect_CompileFailure(t *testing.T) {
	bad := named("bad", block(ast.WaitFrames(-1)))
	w := newWorld(t, ast.NewHead().AddPattern(bad), quietConfig(60))

	e := entity.New()
	e.Behavior = "bad"
	err := w.SpawnDirect(e)

	assert.ErrorIs(t, err, compiler.ErrMalformedDuration)
	assert.Equal(t, 0, w.Len())
}

func TestSpawn_WorldFull(t *testing.T) {
	cfg := quietConfig(60)
	cfg.MaxEntities = 2
	w := newWorld(t, nil, cfg)

	require.NoError(t, w.Spawn(nil))
	require.NoError(t, w.Spawn(nil))
	assert.ErrorIs(t, w.Spawn(nil), sim.ErrWorldFull)
	assert.Equal(t, 1, w.Stats().Dropped)
}

func TestSpawnNamed(t *testing.T) {
	head := ast.NewHead().AddBullet(&ast.Bullet{Name: "orb", Fields: ast.Fields{
		ast.Def("color", ast.Vec(ast.Int(10), ast.Int(20), ast.Int(30))),
		ast.Def("hitbox_type", ast.Ref("ellipse")),
	}})
	w := newWorld(t, head, quietConfig(60))

	require.NoError(t, w.SpawnNamed("orb", ast.Def("color", ast.Vec(ast.Int(1), ast.Int(2), ast.Int(3)))))
	s := w.Entities()[0]
	assert.Equal(t, entity.Color{R: 1, G: 2, B: 3}, s.Color)
	assert.Equal(t, entity.Ellipse, s.Hitbox.Shape)

	var nf *registry.NotFoundError
	assert.True(t, errors.As(w.SpawnNamed("orbb"), &nf))
	assert.Equal(t, "did you mean orb?", nf.Suggestion)
}

func TestSpawn_FieldFaultsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	cfg := quietConfig(60)
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	w := newWorld(t, nil, cfg)

	require.NoError(t, w.Spawn(ast.Fields{ast.Def("speed", ast.Str("fast"))}))

	assert.Equal(t, 1, w.Len())
	assert.Equal(t, 1, w.Stats().FieldFaults)
	assert.Contains(t, buf.String(), "field fell back to default")
	assert.Contains(t, buf.String(), "field=speed")
}

// ========== Snapshots ==========

func TestSnapshot_DigestIsDeterministic(t *testing.T) {
	p := named("ring", &ast.Pattern{Body: ast.NewBlock(ast.Fields{
		ast.Def("iteration_type", ast.Ref("cycles")),
		ast.Def("length", ast.Int(3)),
		ast.Def("actions", &ast.BlockExpr{Block: ast.NewBlock(nil,
			ast.Loop([]ast.Binding{ast.Over("k", 0, 4)}, ast.NewBlock(nil, ast.SpawnOf(
				ast.Def("rotation", ast.Bin(ast.OpMul, ast.Ref("k"), ast.Int(90))),
				ast.Def("speed", ast.Int(60)),
				ast.Def("lifetime", ast.Int(20)),
			))),
			ast.WaitFrames(5),
		)}),
	})})

	run := func(seed string) string {
		cfg := quietConfig(60)
		cfg.Seed = seed
		w := newWorld(t, ast.NewHead().AddPattern(p), cfg)
		require.NoError(t, w.Spawn(ast.Fields{ast.Def("behavior", ast.Ref("ring"))}))
		steps(t, w, 25)
		d, err := w.Snapshot().Digest()
		require.NoError(t, err)
		return d
	}

	a, b := run("alpha"), run("alpha")
	assert.Equal(t, a, b, "identical runs give identical snapshots")
	assert.NotEqual(t, a, run("beta"), "the seed namespaces entity IDs")
}

func TestWorld_IDsAreStable(t *testing.T) {
	w := newWorld(t, nil, quietConfig(60))
	require.NoError(t, w.Spawn(ast.Fields{ast.Def("lifetime", ast.Int(1))}))
	require.NoError(t, w.Spawn(nil))
	survivor := w.Entities()[1].ID

	steps(t, w, 2)

	require.Equal(t, 1, w.Len())
	s, ok := w.Find(survivor)
	require.True(t, ok)
	assert.Equal(t, survivor, s.ID)
	assert.NotEqual(t, uuid.Nil, s.ID)
}
