// errors.go: evaluation errors and user-facing error rendering
//
// What this file does
// -------------------
// Two things live here:
//
//  1. EvalError, the single error type the evaluator returns. Its Kind says
//     which rule was violated. Most kinds describe misuse the language
//     historically tolerated by producing null (type-mismatched operators,
//     calling a non-function, unbound names); those are routed through one
//     seam (evaluator.degrade) that either yields Null or returns the error,
//     depending on strict mode. DivisionByZero and StackLimit are always
//     returned.
//
//  2. WrapErrorWithSource, which turns *LexError, *ParseError and the
//     accumulated syntax-error list into numbered snippets with a caret
//     under the offending column:
//
//     PARSE ERROR at 1:7: expected token =, got token INT(5)
//
//     1 | let x 5;
//       |       ^
//
// Line is 1-based and Col 0-based on the lexer/parser errors; the rendered
// column is 1-based. Out-of-range coordinates are clamped.
package monkey

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

/* ===========================
   PUBLIC API
   =========================== */

// ErrorKind classifies evaluation errors.
type ErrorKind int

const (
	UnboundIdentifier ErrorKind = iota // name not bound in any frame
	TypeMismatch                       // operand types unsupported by the operator
	UnknownOperator                    // operator not defined for the operand kind
	NotCallable                        // call target is not a function
	DivisionByZero                     // integer division by zero (always fatal)
	StackLimit                         // evaluation nested deeper than MaxDepth (always fatal)
	Unsupported                        // node kind the evaluator does not know (internal)
)

func (k ErrorKind) String() string {
	switch k {
	case UnboundIdentifier:
		return "unbound identifier"
	case TypeMismatch:
		return "type mismatch"
	case UnknownOperator:
		return "unknown operator"
	case NotCallable:
		return "not callable"
	case DivisionByZero:
		return "division by zero"
	case StackLimit:
		return "stack limit exceeded"
	case Unsupported:
		return "unsupported node"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Fatal reports whether errors of this kind are returned even in lenient mode.
func (k ErrorKind) Fatal() bool {
	return k == DivisionByZero || k == StackLimit || k == Unsupported
}

// EvalError is returned by Interpreter evaluation methods.
type EvalError struct {
	Kind ErrorKind
	Msg  string
}

func (e *EvalError) Error() string { return "RUNTIME ERROR: " + e.detail() }

func (e *EvalError) detail() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

func evalErrorf(kind ErrorKind, format string, args ...interface{}) *EvalError {
	return &EvalError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapErrorWithSource returns an error augmented with a caret-annotated snippet
// of src. It recognizes *LexError, *ParseError and *multierror.Error lists of
// them. An *EvalError has no position and gets the header only; every other
// error is returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with a source name in the header.
func WrapErrorWithName(err error, srcName string, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "LEXICAL ERROR", srcName, e.Line, e.Col+1, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "PARSE ERROR", srcName, e.Line, e.Col+1, e.Msg))
	case *EvalError:
		if srcName == "" {
			return fmt.Errorf("%s", e.Error())
		}
		return fmt.Errorf("RUNTIME ERROR in %s: %s", srcName, e.detail())
	case *multierror.Error:
		parts := make([]string, 0, len(e.Errors))
		for _, inner := range e.Errors {
			parts = append(parts, WrapErrorWithName(inner, srcName, src).Error())
		}
		return fmt.Errorf("%s", strings.Join(parts, "\n"))
	default:
		return err
	}
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: rendering
   =========================== */

// prettyErrorStringLabeled builds a snippet with a header and a caret.
// It shows at most one previous and one next line when available.
func prettyErrorStringLabeled(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
