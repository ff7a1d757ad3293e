// Package invariant provides contract assertions for the patternscript engine.
//
// Violations are programming errors inside the engine (misaligned pools, a
// clock that moved backwards, a nil registry), never bad user input. Every
// function panics with a message naming the kind of violation and the caller's
// file and line.
package invariant

import (
	"fmt"
	"reflect"
	"runtime"
)

// Precondition checks an input contract at function entry.
func Precondition(condition bool, format string, args ...any) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition checks an output contract before return.
func Postcondition(condition bool, format string, args ...any) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant checks internal consistency mid-function.
//
//	before := c.clock
//	c.advance(frames)
//	invariant.Invariant(c.clock >= before, "clock must not move backwards")
func Invariant(condition bool, format string, args ...any) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil panics if value is nil or a typed nil pointer, map, slice or func.
func NotNil(value any, name string) {
	if value == nil {
		fail("PRECONDITION", "%s must not be nil", name)
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		if v.IsNil() {
			fail("PRECONDITION", "%s must not be nil", name)
		}
	}
}

// Aligned panics unless two parallel collections have the same length.
func Aligned(a, b int, what string) {
	if a != b {
		fail("INVARIANT", "%s out of alignment: %d != %d", what, a, b)
	}
}

// NonNegative panics if value < 0.
func NonNegative(value int, name string) {
	if value < 0 {
		fail("PRECONDITION", "%s must be non-negative, got %d", name, value)
	}
}

// Positive panics if value <= 0.
func Positive(value int, name string) {
	if value <= 0 {
		fail("PRECONDITION", "%s must be positive, got %d", name, value)
	}
}

// ExpectNoError panics if err is not nil. Use it only for operations whose
// failure would mean a bug, such as encoding a value the engine built itself.
func ExpectNoError(err error, msg string) {
	if err != nil {
		fail("POSTCONDITION", "%s must not fail: %v", msg, err)
	}
}

func fail(kind, format string, args ...any) {
	msg := kind + " VIOLATION: " + fmt.Sprintf(format, args...)

	pc := make([]uintptr, 8)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])
	if frame, ok := frames.Next(); ok {
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}

	panic(msg)
}
