package eval

import (
	"strings"
)

// ErrorCode classifies evaluation failures.
type ErrorCode int

const (
	CodeUndefinedVariable ErrorCode = iota + 1
	CodeOperatorTypeMismatch
	CodeUnknownFunction
	CodeNegateTypeError
	CodeVectorTypeOrLength
	CodeCondNotBoolean
	CodeNotComputable
	CodeFunctionArgument
	CodeDivideByZero
	CodeRecursionLimit
)

var codeNames = map[ErrorCode]string{
	CodeUndefinedVariable:    "undefined variable",
	CodeOperatorTypeMismatch: "operator type mismatch",
	CodeUnknownFunction:      "unknown function",
	CodeNegateTypeError:      "cannot negate",
	CodeVectorTypeOrLength:   "invalid vector",
	CodeCondNotBoolean:       "condition is not boolean",
	CodeNotComputable:        "not computable",
	CodeFunctionArgument:     "bad function argument",
	CodeDivideByZero:         "division by zero",
	CodeRecursionLimit:       "recursion limit exceeded",
}

func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "evaluation error"
}

// Sentinels for errors.Is. They match any *EvalError with the same code.
var (
	ErrUndefinedVariable    = &EvalError{Code: CodeUndefinedVariable}
	ErrOperatorTypeMismatch = &EvalError{Code: CodeOperatorTypeMismatch}
	ErrUnknownFunction      = &EvalError{Code: CodeUnknownFunction}
	ErrNegateTypeError      = &EvalError{Code: CodeNegateTypeError}
	ErrVectorTypeOrLength   = &EvalError{Code: CodeVectorTypeOrLength}
	ErrCondNotBoolean       = &EvalError{Code: CodeCondNotBoolean}
	ErrNotComputable        = &EvalError{Code: CodeNotComputable}
	ErrFunctionArgument     = &EvalError{Code: CodeFunctionArgument}
	ErrDivideByZero         = &EvalError{Code: CodeDivideByZero}
	ErrRecursionLimit       = &EvalError{Code: CodeRecursionLimit}
)

// EvalError describes a failed evaluation.
type EvalError struct {
	Code       ErrorCode
	Op         string // operator or function involved, if any
	Left       Value  // left (or only) operand
	Right      Value  // right operand
	Name       string // variable or function name
	Message    string // extra detail
	Suggestion string // "did you mean" hint
}

func (e *EvalError) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.String())
	if e.Name != "" {
		b.WriteString(": ")
		b.WriteString(e.Name)
	}
	if e.Op != "" {
		b.WriteString(" (")
		b.WriteString(e.Op)
		if e.Left != nil {
			b.WriteString(" on ")
			b.WriteString(Describe(e.Left))
			if e.Right != nil {
				b.WriteString(" and ")
				b.WriteString(Describe(e.Right))
			}
		}
		b.WriteString(")")
	} else if e.Left != nil {
		b.WriteString(": ")
		b.WriteString(Describe(e.Left))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Suggestion != "" {
		b.WriteString("\n")
		b.WriteString(e.Suggestion)
	}
	return b.String()
}

// Is matches another *EvalError by code.
func (e *EvalError) Is(target error) bool {
	t, ok := target.(*EvalError)
	return ok && t.Code == e.Code
}
