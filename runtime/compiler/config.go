package compiler

import "time"

const (
	// DefaultFPS is used when Config.FPS is zero.
	DefaultFPS = 120
	// DefaultMaxEntries is used when Config.MaxEntries is zero.
	DefaultMaxEntries = 1_000_000
)

// Config configures a compile.
type Config struct {
	FPS        int            // frames per second for seconds durations
	MaxEntries int            // upper bound on timeline length
	Telemetry  TelemetryLevel // Telemetry level (production-safe)
	Debug      DebugLevel     // Debug level (development only)
}

func (c Config) withDefaults() Config {
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = DefaultMaxEntries
	}
	return c
}

// TelemetryLevel controls telemetry collection (production-safe)
type TelemetryLevel int

const (
	TelemetryOff    TelemetryLevel = iota // Zero overhead (default)
	TelemetryBasic                        // Counts only
	TelemetryTiming                       // Counts + compile time per pattern
)

// DebugLevel controls debug tracing (development only)
type DebugLevel int

const (
	DebugOff      DebugLevel = iota // No debug info (default)
	DebugPaths                      // Pattern enter/exit
	DebugDetailed                   // Every emitted entry and skipped iteration
)

// Result holds the timeline and observability data.
type Result struct {
	Timeline    Timeline
	Clock       int           // compile clock after the last statement
	CompileTime time.Duration // always collected
	Telemetry   *Telemetry    // nil if TelemetryOff
	DebugEvents []DebugEvent  // nil if DebugOff
}

// Telemetry holds compile counters.
type Telemetry struct {
	Entries     int
	Spawns      int
	Sets        int
	Despawns    int
	Waits       int
	Iterations  int // for-loop combinations compiled
	Skipped     int // for-loop combinations rejected by their guard
	Replays     int // pattern bodies compiled, counting each cycle
	Invocations int

	PatternTimes map[string]time.Duration // TelemetryTiming only
}

// DebugEvent holds debug tracing information (development only)
type DebugEvent struct {
	Timestamp time.Time
	Event     string // "enter_pattern", "exit_pattern", "emit", "skip_iteration", ...
	Clock     int
	Context   string
}
