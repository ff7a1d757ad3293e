package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aledsdavies/patternscript/runtime/eval"
)

// ErrorCode classifies compile failures.
type ErrorCode int

const (
	CodeEval ErrorCode = iota + 1
	CodeMalformedDuration
	CodeNonAdvancingReplay
	CodeMalformedIteration
	CodeMalformedPattern
	CodeUnknownPattern
	CodeRecursivePattern
	CodeTimelineTooLarge
)

var codeNames = map[ErrorCode]string{
	CodeEval:               "evaluation failed",
	CodeMalformedDuration:  "malformed duration",
	CodeNonAdvancingReplay: "replay does not advance time",
	CodeMalformedIteration: "malformed iteration",
	CodeMalformedPattern:   "malformed pattern",
	CodeUnknownPattern:     "unknown pattern",
	CodeRecursivePattern:   "recursive pattern",
	CodeTimelineTooLarge:   "timeline too large",
}

func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "compile error"
}

// Sentinels for errors.Is. They match any *CompileError with the same code.
var (
	ErrEval               = &CompileError{Code: CodeEval}
	ErrMalformedDuration  = &CompileError{Code: CodeMalformedDuration}
	ErrNonAdvancingReplay = &CompileError{Code: CodeNonAdvancingReplay}
	ErrMalformedIteration = &CompileError{Code: CodeMalformedIteration}
	ErrMalformedPattern   = &CompileError{Code: CodeMalformedPattern}
	ErrUnknownPattern     = &CompileError{Code: CodeUnknownPattern}
	ErrRecursivePattern   = &CompileError{Code: CodeRecursivePattern}
	ErrTimelineTooLarge   = &CompileError{Code: CodeTimelineTooLarge}
)

// CompileError describes why a pattern could not be compiled.
type CompileError struct {
	Code       ErrorCode
	Pattern    string // pattern being compiled, "" for an anonymous one
	Message    string // what went wrong
	Suggestion string // how to fix it
	Err        error  // underlying cause
}

func (e *CompileError) Error() string {
	var b strings.Builder
	if e.Pattern != "" {
		fmt.Fprintf(&b, "pattern %s: ", e.Pattern)
	}
	b.WriteString(e.Code.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Suggestion != "" {
		b.WriteString("\n")
		b.WriteString(e.Suggestion)
	}
	return b.String()
}

func (e *CompileError) Unwrap() error { return e.Err }

// Is matches another *CompileError by code.
func (e *CompileError) Is(target error) bool {
	t, ok := target.(*CompileError)
	return ok && t.Code == e.Code
}

// wrapEval classifies an error raised while evaluating part of a pattern.
func (c *compiler) wrapEval(err error, what string) error {
	var ce *CompileError
	if errors.As(err, &ce) {
		return err
	}
	code := CodeEval
	var de *eval.DurationError
	if errors.As(err, &de) {
		code = CodeMalformedDuration
	}
	return &CompileError{Code: code, Pattern: c.current(), Message: what, Err: err}
}
