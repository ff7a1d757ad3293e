package compiler

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aledsdavies/patternscript/core/ast"
	"github.com/aledsdavies/patternscript/core/invariant"
	"github.com/aledsdavies/patternscript/runtime/eval"
	"github.com/aledsdavies/patternscript/runtime/registry"
)

// Iteration modes read from a pattern's iteration_type definition.
const (
	ModeOnce   = ""
	ModeTime   = "time"
	ModeCycles = "cycles"
)

// Compile builds the timeline of p. scope supplies the bindings visible to
// the pattern, usually an entity's instance scope. Compile is pure: it does
// no I/O and leaves reg untouched. On error no timeline is returned.
func Compile(p *ast.Pattern, scope *eval.Scope, reg *registry.Registry, fps int) (Timeline, error) {
	result, err := CompileWithObservability(p, scope, reg, Config{FPS: fps})
	if err != nil {
		return nil, err
	}
	return result.Timeline, nil
}

// CompileWithObservability returns the timeline with telemetry and debug events.
func CompileWithObservability(p *ast.Pattern, scope *eval.Scope, reg *registry.Registry, config Config) (*Result, error) {
	invariant.NotNil(p, "pattern")
	config = config.withDefaults()

	startTime := time.Now()

	var telemetry *Telemetry
	if config.Telemetry >= TelemetryBasic {
		telemetry = &Telemetry{}
		if config.Telemetry >= TelemetryTiming {
			telemetry.PatternTimes = make(map[string]time.Duration)
		}
	}

	var debugEvents []DebugEvent
	if config.Debug >= DebugPaths {
		debugEvents = make([]DebugEvent, 0, 32)
	}

	c := &compiler{
		reg:         reg,
		config:      config,
		telemetry:   telemetry,
		debugEvents: debugEvents,
	}
	if err := c.pattern(p, scope); err != nil {
		return nil, err
	}

	if telemetry != nil {
		telemetry.Entries = len(c.entries)
	}
	return &Result{
		Timeline:    c.entries,
		Clock:       c.clock,
		CompileTime: time.Since(startTime),
		Telemetry:   telemetry,
		DebugEvents: c.debugEvents,
	}, nil
}

// compiler holds state during one compile.
type compiler struct {
	reg    *registry.Registry
	config Config

	clock   int      // frames since the start of the root pattern
	entries Timeline // emitted in traversal order
	stack   []string // names of the patterns being compiled, outermost first

	// Observability
	telemetry   *Telemetry
	debugEvents []DebugEvent
}

// recordDebugEvent records debug events when debug tracing is enabled
func (c *compiler) recordDebugEvent(event, context string) {
	if c.config.Debug == DebugOff || c.debugEvents == nil {
		return
	}
	c.debugEvents = append(c.debugEvents, DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		Clock:     c.clock,
		Context:   context,
	})
}

func (c *compiler) current() string {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if c.stack[i] != "" {
			return c.stack[i]
		}
	}
	return ""
}

// pattern compiles a top-level pattern, an inline sub-pattern or an invoked
// one. Only the pattern's own definitions decide how it iterates.
func (c *compiler) pattern(p *ast.Pattern, scope *eval.Scope) error {
	c.stack = append(c.stack, p.Name)
	defer func() { c.stack = c.stack[:len(c.stack)-1] }()

	if c.config.Debug >= DebugPaths {
		c.recordDebugEvent("enter_pattern", "name="+p.Name)
		defer c.recordDebugEvent("exit_pattern", "name="+p.Name)
	}
	if c.telemetry != nil && c.telemetry.PatternTimes != nil {
		start := time.Now()
		defer func() { c.telemetry.PatternTimes[p.Name] += time.Since(start) }()
	}

	body := p.Body
	if body == nil {
		body = &ast.Block{}
	}
	defs := body.Definitions
	scope = scope.WithFields("pattern "+p.Name, defs)

	actions, err := c.actionsBlock(body)
	if err != nil {
		return err
	}

	mode, err := c.iterationMode(defs, scope)
	if err != nil {
		return err
	}

	switch mode {
	case ModeOnce:
		return c.replay(actions, scope)

	case ModeTime:
		length := 0
		if expr, ok := defs.Get("length"); ok {
			n, err := eval.Frames(expr, scope, c.config.FPS)
			if err != nil {
				return c.wrapEval(err, "length")
			}
			length = n
		}
		start := c.clock
		for c.clock-start < length {
			before := c.clock
			if err := c.replay(actions, scope); err != nil {
				return err
			}
			if c.clock == before {
				return c.nonAdvancing(mode)
			}
		}
		return nil

	case ModeCycles:
		cycles := 1
		if expr, ok := defs.Get("length"); ok {
			v, err := eval.Evaluate(expr, scope)
			if err != nil {
				return c.wrapEval(err, "length")
			}
			n, ok := v.(eval.Int)
			if !ok || n < 0 {
				return &CompileError{
					Code:       CodeMalformedIteration,
					Pattern:    c.current(),
					Message:    "cycle count must be a non-negative Int, got " + eval.Describe(v),
					Suggestion: "length = 3;",
				}
			}
			cycles = int(n)
		}
		for i := 0; i < cycles; i++ {
			before := c.clock
			if err := c.replay(actions, scope); err != nil {
				return err
			}
			if cycles > 1 && c.clock == before {
				return c.nonAdvancing(mode + " cycle " + strconv.Itoa(i))
			}
		}
		return nil
	}

	return &CompileError{
		Code:       CodeMalformedIteration,
		Pattern:    c.current(),
		Message:    fmt.Sprintf("unknown iteration_type %q", mode),
		Suggestion: `iteration_type must be "time" or "cycles"`,
	}
}

// actionsBlock selects the replayed block: the actions definition when the
// pattern has one, otherwise its statements.
func (c *compiler) actionsBlock(body *ast.Block) (*ast.Block, error) {
	expr, ok := body.Definitions.Get("actions")
	if !ok {
		return &ast.Block{Statements: body.Statements}, nil
	}
	be, isBlock := expr.(*ast.BlockExpr)
	if !isBlock || be.Block == nil {
		return nil, &CompileError{
			Code:    CodeMalformedPattern,
			Pattern: c.current(),
			Message: "actions must be a block, got " + expr.String(),
		}
	}
	if len(body.Statements) > 0 {
		return nil, &CompileError{
			Code:       CodeMalformedPattern,
			Pattern:    c.current(),
			Message:    "pattern has both an actions block and statements",
			Suggestion: "move the statements into the actions block",
		}
	}
	return be.Block, nil
}

// iterationMode reads iteration_type. A bare identifier names the mode, even
// when a binding of the same name is in scope.
func (c *compiler) iterationMode(defs ast.Fields, scope *eval.Scope) (string, error) {
	expr, ok := defs.Get("iteration_type")
	if !ok {
		return ModeOnce, nil
	}
	if v, isVar := expr.(*ast.Var); isVar {
		if v.Name == ModeTime || v.Name == ModeCycles || !scope.Has(v.Name) {
			return v.Name, nil
		}
	}
	v, err := eval.Evaluate(expr, scope)
	if err != nil {
		return "", c.wrapEval(err, "iteration_type")
	}
	name, ok := eval.AsName(v)
	if !ok {
		return "", &CompileError{
			Code:    CodeMalformedIteration,
			Pattern: c.current(),
			Message: "iteration_type must name a mode, got " + eval.Describe(v),
		}
	}
	return name, nil
}

func (c *compiler) nonAdvancing(context string) error {
	return &CompileError{
		Code:       CodeNonAdvancingReplay,
		Pattern:    c.current(),
		Message:    context + " body never waits",
		Suggestion: "add a wait statement to the replayed block",
	}
}

func (c *compiler) replay(b *ast.Block, scope *eval.Scope) error {
	if c.telemetry != nil {
		c.telemetry.Replays++
	}
	return c.block(b, scope)
}

// block compiles statements in order with the block's definitions layered
// over scope.
func (c *compiler) block(b *ast.Block, scope *eval.Scope) error {
	if b == nil {
		return nil
	}
	scope = scope.WithFields("block", b.Definitions)
	for _, s := range b.Statements {
		if err := c.stmt(s, scope); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) stmt(s ast.Stmt, scope *eval.Scope) error {
	switch s := s.(type) {
	case *ast.Wait:
		frames, err := eval.DurationFrames(s.Duration, scope, c.config.FPS)
		if err != nil {
			return c.wrapEval(err, "wait "+s.Duration.String())
		}
		if frames > math.MaxInt-c.clock {
			return &CompileError{
				Code:    CodeMalformedDuration,
				Pattern: c.current(),
				Message: fmt.Sprintf("wait %s overflows the clock at frame %d", s.Duration.String(), c.clock),
			}
		}
		before := c.clock
		c.clock += frames
		invariant.Invariant(c.clock >= before, "compile clock moved backwards: %d -> %d", before, c.clock)
		if c.telemetry != nil {
			c.telemetry.Waits++
		}
		return nil

	case *ast.For:
		return c.forLoop(s, scope)

	case *ast.Spawn:
		if c.telemetry != nil {
			c.telemetry.Spawns++
		}
		return c.emit(&SpawnAction{Fields: s.Fields, Scope: scope})

	case *ast.Set:
		if c.telemetry != nil {
			c.telemetry.Sets++
		}
		return c.emit(&SetAction{Field: s.Field, Value: s.Value, Scope: scope})

	case *ast.Despawn:
		if c.telemetry != nil {
			c.telemetry.Despawns++
		}
		return c.emit(DespawnAction{})

	case *ast.Pattern:
		return c.pattern(s, scope)

	case *ast.Invoke:
		return c.invoke(s, scope)
	}

	invariant.Invariant(false, "unhandled statement %T", s)
	return nil
}

// forLoop unrolls the Cartesian product of the bindings. The first binding
// is outermost and the last varies fastest. A combination whose guard is
// false, not boolean or fails to evaluate is skipped.
func (c *compiler) forLoop(f *ast.For, scope *eval.Scope) error {
	for _, b := range f.Bindings {
		if b.Range.Len() == 0 {
			return nil
		}
	}

	idx := make([]int64, len(f.Bindings))
	for i, b := range f.Bindings {
		idx[i] = b.Range.Start
	}

	for {
		vars := make(map[string]ast.Expr, len(f.Bindings))
		for i, b := range f.Bindings {
			vars[b.Name] = ast.Int(idx[i])
		}
		iter := scope.With("for", vars)

		ok, err := eval.EvalCondition(f.Guard, iter)
		if err != nil || !ok {
			if c.telemetry != nil {
				c.telemetry.Skipped++
			}
			if c.config.Debug >= DebugDetailed {
				c.recordDebugEvent("skip_iteration", describeIteration(f.Bindings, idx))
			}
		} else {
			if c.telemetry != nil {
				c.telemetry.Iterations++
			}
			if err := c.block(f.Body, iter); err != nil {
				return err
			}
		}

		// Odometer increment, last binding fastest.
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < f.Bindings[i].Range.End {
				break
			}
			idx[i] = f.Bindings[i].Range.Start
		}
		if i < 0 {
			return nil
		}
	}
}

func describeIteration(bindings []ast.Binding, idx []int64) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = b.Name + "=" + strconv.FormatInt(idx[i], 10)
	}
	return strings.Join(parts, " ")
}

// invoke compiles a registered pattern inline at the current clock with its
// arguments evaluated into literal bindings.
func (c *compiler) invoke(inv *ast.Invoke, scope *eval.Scope) error {
	if c.reg == nil {
		return &CompileError{Code: CodeUnknownPattern, Pattern: c.current(), Message: inv.Name}
	}
	p, err := c.reg.LookupPattern(inv.Name)
	if err != nil {
		ce := &CompileError{Code: CodeUnknownPattern, Pattern: c.current(), Message: inv.Name}
		var nf *registry.NotFoundError
		if errors.As(err, &nf) {
			ce.Suggestion = nf.Suggestion
		}
		return ce
	}
	if slices.Contains(c.stack, inv.Name) {
		return &CompileError{
			Code:    CodeRecursivePattern,
			Pattern: c.current(),
			Message: strings.Join(append(slices.Clone(c.stack), inv.Name), " -> "),
		}
	}

	args := make(map[string]ast.Expr, len(inv.Args))
	for _, a := range inv.Args {
		v, err := eval.Evaluate(a.Value, scope)
		if err != nil {
			return c.wrapEval(err, "argument "+a.Name)
		}
		args[a.Name] = eval.Literal(v)
	}

	if c.telemetry != nil {
		c.telemetry.Invocations++
	}
	return c.pattern(p, scope.With("invoke "+inv.Name, args))
}

func (c *compiler) emit(a Action) error {
	if len(c.entries) >= c.config.MaxEntries {
		return &CompileError{
			Code:    CodeTimelineTooLarge,
			Pattern: c.current(),
			Message: fmt.Sprintf("more than %d entries", c.config.MaxEntries),
		}
	}
	c.entries = append(c.entries, Entry{Frame: c.clock, Action: a})
	if c.config.Debug >= DebugDetailed {
		c.recordDebugEvent("emit", a.Kind().String())
	}
	return nil
}
