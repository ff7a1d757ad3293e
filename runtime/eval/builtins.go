package eval

import (
	"math"
	"sort"

	"github.com/aledsdavies/patternscript/internal/suggest"
)

// builtin receives the evaluated argument, or nil when called without one.
// Several arguments arrive as a single vector.
type builtin func(arg Value) (Value, error)

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"sin":   degreesIn("sin", math.Sin),
		"cos":   degreesIn("cos", math.Cos),
		"tan":   degreesIn("tan", math.Tan),
		"asin":  degreesOut("asin", math.Asin),
		"acos":  degreesOut("acos", math.Acos),
		"atan":  degreesOut("atan", math.Atan),
		"atan2": atan2,
		"sqrt":  floatFn("sqrt", math.Sqrt),
		"abs":   abs,
		"floor": rounding("floor", math.Floor),
		"ceil":  rounding("ceil", math.Ceil),
		"x":     component("x", 0),
		"y":     component("y", 1),
		"len":   length,
		"min":   extreme("min", func(a, b float64) bool { return a < b }),
		"max":   extreme("max", func(a, b float64) bool { return a > b }),
	}
}

// Builtins returns the sorted names of all builtin functions.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Call invokes the named builtin.
func Call(name string, arg Value) (Value, error) {
	fn, ok := builtins[name]
	if !ok {
		return nil, &EvalError{
			Code:       CodeUnknownFunction,
			Name:       name,
			Suggestion: suggest.Hint(name, Builtins()),
		}
	}
	return fn(arg)
}

func badArg(fn string, arg Value, msg string) *EvalError {
	return &EvalError{Code: CodeFunctionArgument, Op: fn, Left: arg, Message: msg}
}

func scalar(fn string, arg Value) (float64, error) {
	if arg == nil {
		return 0, badArg(fn, nil, "expected a number, got no argument")
	}
	f, ok := AsFloat(arg)
	if !ok {
		return 0, badArg(fn, arg, "expected a number")
	}
	return f, nil
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

func degreesIn(name string, f func(float64) float64) builtin {
	return func(arg Value) (Value, error) {
		x, err := scalar(name, arg)
		if err != nil {
			return nil, err
		}
		return Float(f(toRadians(x))), nil
	}
}

func degreesOut(name string, f func(float64) float64) builtin {
	return func(arg Value) (Value, error) {
		x, err := scalar(name, arg)
		if err != nil {
			return nil, err
		}
		return Float(toDegrees(f(x))), nil
	}
}

func floatFn(name string, f func(float64) float64) builtin {
	return func(arg Value) (Value, error) {
		x, err := scalar(name, arg)
		if err != nil {
			return nil, err
		}
		return Float(f(x)), nil
	}
}

func atan2(arg Value) (Value, error) {
	v, ok := AsFloats(arg)
	if !ok || len(v) < 2 {
		return nil, badArg("atan2", arg, "expected (y, x)")
	}
	return Float(toDegrees(math.Atan2(v[0], v[1]))), nil
}

func abs(arg Value) (Value, error) {
	switch n := arg.(type) {
	case Int:
		if n < 0 {
			return -n, nil
		}
		return n, nil
	case Float:
		return Float(math.Abs(float64(n))), nil
	default:
		return nil, badArg("abs", arg, "expected a number")
	}
}

func rounding(name string, f func(float64) float64) builtin {
	return func(arg Value) (Value, error) {
		if n, ok := arg.(Int); ok {
			return n, nil
		}
		x, err := scalar(name, arg)
		if err != nil {
			return nil, err
		}
		return Int(f(x)), nil
	}
}

func component(name string, i int) builtin {
	return func(arg Value) (Value, error) {
		switch v := arg.(type) {
		case IntVec:
			if i < len(v) {
				return Int(v[i]), nil
			}
		case FloatVec:
			if i < len(v) {
				return Float(v[i]), nil
			}
		case StrVec:
			if i < len(v) {
				return Str(v[i]), nil
			}
		default:
			return nil, badArg(name, arg, "expected a vector")
		}
		return nil, badArg(name, arg, "vector too short")
	}
}

func length(arg Value) (Value, error) {
	switch v := arg.(type) {
	case IntVec, FloatVec, StrVec:
		return Int(vecLen(v)), nil
	case Str:
		return Int(len(v)), nil
	default:
		return nil, badArg("len", arg, "expected a vector or string")
	}
}

func extreme(name string, better func(a, b float64) bool) builtin {
	return func(arg Value) (Value, error) {
		switch v := arg.(type) {
		case IntVec:
			if len(v) == 0 {
				break
			}
			best := v[0]
			for _, x := range v[1:] {
				if better(float64(x), float64(best)) {
					best = x
				}
			}
			return Int(best), nil
		case FloatVec:
			if len(v) == 0 {
				break
			}
			best := v[0]
			for _, x := range v[1:] {
				if better(x, best) {
					best = x
				}
			}
			return Float(best), nil
		case Int, Float:
			return v, nil
		}
		return nil, badArg(name, arg, "expected a non-empty numeric vector")
	}
}
