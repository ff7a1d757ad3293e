package sim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DebugEnv enables debug logging when set to any non-empty value.
const DebugEnv = "PATTERNSCRIPT_DEBUG"

// TelemetryLevel controls telemetry collection (production-safe)
type TelemetryLevel int

const (
	TelemetryOff    TelemetryLevel = iota // Counters only (default)
	TelemetryTiming                       // Counters + step timing
)

// Config configures a World. The zero value is not valid; start from
// DefaultConfig.
type Config struct {
	FPS                int            `json:"fps"`                  // logical frames per second, fixed for the world's life
	MaxEntities        int            `json:"max_entities"`         // admission bound, 0 for none
	MaxTimelineEntries int            `json:"max_timeline_entries"` // per-entity compile bound, 0 for the compiler default
	Seed               string         `json:"seed"`                 // namespace for entity IDs
	Debug              bool           `json:"debug"`                // debug logging
	Telemetry          TelemetryLevel `json:"telemetry"`

	// Logger overrides the default stderr logger.
	Logger *slog.Logger `json:"-"`
}

// DefaultConfig returns the configuration used by most hosts.
func DefaultConfig() Config {
	return Config{
		FPS:         120,
		MaxEntities: 100_000,
	}
}

const configSchema = `{
	"type": "object",
	"properties": {
		"fps":                  {"type": "integer", "minimum": 1, "maximum": 1000},
		"max_entities":         {"type": "integer", "minimum": 0},
		"max_timeline_entries": {"type": "integer", "minimum": 0},
		"seed":                 {"type": "string", "maxLength": 256},
		"debug":                {"type": "boolean"},
		"telemetry":            {"type": "integer", "enum": [0, 1]}
	},
	"required": ["fps"]
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	url := "schema://config.json"
	if err := compiler.AddResource(url, strings.NewReader(configSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
})

// ConfigError reports a configuration that failed schema validation.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "invalid world config: " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// Validate checks c against the configuration schema.
func (c Config) Validate() error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("config schema compilation failed: %w", err)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("config marshal failed: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("config decode failed: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return &ConfigError{Err: err}
	}
	return nil
}

// newLogger builds the default logger: text on stderr without time or level,
// at debug level when debug is set or DebugEnv is present.
func newLogger(debug bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if debug || os.Getenv(DebugEnv) != "" {
		logLevel = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
