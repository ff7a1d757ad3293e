// Package eval evaluates patternscript expressions.
//
// Evaluation is a pure function of an expression and a Scope. Results are
// Values: a closed set of scalar and homogeneous vector variants. Every
// failure is an *EvalError carrying a Code and enough operand detail to tell
// the author what went wrong.
package eval

import (
	"strconv"
	"strings"
)

// Kind identifies a Value variant.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindStr
	KindBool
	KindIntVec
	KindFloatVec
	KindStrVec
)

var kindNames = [...]string{
	KindInt:      "Int",
	KindFloat:    "Float",
	KindStr:      "String",
	KindBool:     "Bool",
	KindIntVec:   "IntVector",
	KindFloatVec: "FloatVector",
	KindStrVec:   "StringVector",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsVector reports whether k is one of the vector kinds.
func (k Kind) IsVector() bool { return k >= KindIntVec }

// Value is a runtime value. The set of implementations is closed.
type Value interface {
	Kind() Kind
	String() string
	value()
}

type (
	Int      int64
	Float    float64
	Str      string
	Bool     bool
	IntVec   []int64
	FloatVec []float64
	StrVec   []string
)

func (Int) Kind() Kind      { return KindInt }
func (Float) Kind() Kind    { return KindFloat }
func (Str) Kind() Kind      { return KindStr }
func (Bool) Kind() Kind     { return KindBool }
func (IntVec) Kind() Kind   { return KindIntVec }
func (FloatVec) Kind() Kind { return KindFloatVec }
func (StrVec) Kind() Kind   { return KindStrVec }

func (Int) value()      {}
func (Float) value()    {}
func (Str) value()      {}
func (Bool) value()     {}
func (IntVec) value()   {}
func (FloatVec) value() {}
func (StrVec) value()   {}

func (v Int) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Str) String() string   { return strconv.Quote(string(v)) }
func (v Bool) String() string  { return strconv.FormatBool(bool(v)) }

func (v IntVec) String() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatInt(x, 10)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (v FloatVec) String() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (v StrVec) String() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Quote(x)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Describe renders a value with its kind, e.g. "Int 3", for error messages.
func Describe(v Value) string {
	if v == nil {
		return "<none>"
	}
	return v.Kind().String() + " " + v.String()
}

// AsFloat returns the numeric value of an Int or Float.
func AsFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), true
	case Float:
		return float64(n), true
	default:
		return 0, false
	}
}

// AsFloats returns the elements of an IntVec or FloatVec as float64.
func AsFloats(v Value) ([]float64, bool) {
	switch vec := v.(type) {
	case FloatVec:
		return []float64(vec), true
	case IntVec:
		out := make([]float64, len(vec))
		for i, x := range vec {
			out[i] = float64(x)
		}
		return out, true
	default:
		return nil, false
	}
}

// AsName returns the string held by a Str value.
func AsName(v Value) (string, bool) {
	s, ok := v.(Str)
	return string(s), ok
}
