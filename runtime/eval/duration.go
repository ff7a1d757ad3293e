package eval

import (
	"fmt"
	"math"

	"github.com/aledsdavies/patternscript/core/ast"
)

// DurationError reports a duration whose amount evaluated to an unusable
// value: a negative count, or a frame count that is not an Int.
type DurationError struct {
	Unit  ast.DurationUnit
	Value Value
}

func (e *DurationError) Error() string {
	want := "a non-negative Int"
	if e.Unit == ast.Seconds {
		want = "a non-negative number"
	}
	return fmt.Sprintf("duration in %s must be %s, got %s", e.Unit, want, Describe(e.Value))
}

// DurationFrames converts d to a frame count. Frames must evaluate to a
// non-negative Int. Seconds may be Int or Float and are converted as
// floor(seconds × fps).
func DurationFrames(d ast.Duration, scope *Scope, fps int) (int, error) {
	v, err := Evaluate(d.Amount, scope)
	if err != nil {
		return 0, err
	}

	if d.Unit == ast.Frames {
		n, ok := v.(Int)
		if !ok || n < 0 {
			return 0, &DurationError{Unit: d.Unit, Value: v}
		}
		return int(n), nil
	}

	secs, ok := AsFloat(v)
	if !ok || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, &DurationError{Unit: d.Unit, Value: v}
	}
	return int(math.Floor(secs * float64(fps))), nil
}

// Frames converts a length-like value to frames: a Duration node is
// converted with DurationFrames, anything else must evaluate to a
// non-negative Int frame count.
func Frames(expr ast.Expr, scope *Scope, fps int) (int, error) {
	if d, ok := expr.(*ast.Duration); ok {
		return DurationFrames(*d, scope, fps)
	}
	if v, ok := expr.(*ast.Var); ok {
		if bound, found := scope.Lookup(v.Name); found {
			if d, isDur := bound.(*ast.Duration); isDur {
				return DurationFrames(*d, scope, fps)
			}
		}
	}
	v, err := Evaluate(expr, scope)
	if err != nil {
		return 0, err
	}
	n, ok := v.(Int)
	if !ok || n < 0 {
		return 0, &DurationError{Unit: ast.Frames, Value: v}
	}
	return int(n), nil
}
