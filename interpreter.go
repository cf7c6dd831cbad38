// interpreter.go: PUBLIC API SURFACE of the evaluator.
//
// OVERVIEW
// ========
// An Interpreter is one evaluation session. It owns a root frame, Global,
// created by NewInterpreter and kept for the Interpreter's lifetime, so a
// `let` evaluated by one call is visible to every later call (the REPL
// contract). The tree walk itself lives in interpreter_eval.go.
//
// Entry points differ only in where and what they evaluate:
//   - Eval(prog) / EvalSource(src): a whole program, in Global.
//   - EvalIn(node, env): any Program, Block, Statement or Expression in a
//     caller-supplied frame, letting hosts control scoping explicitly.
//   - Run(src) / Interpret(src): the string-in/string-out host surface
//     (lex, parse, evaluate, FormatValue).
//
// ERRORS
// ======
// Lexical and syntax errors come back unchanged from the parser (*LexError or
// a *multierror.Error of *ParseError); pass them to WrapErrorWithSource for a
// caret snippet. Evaluation errors are *EvalError. By default the session is
// lenient: type-mismatched operators, unknown operators, calls on
// non-functions and unbound names evaluate to Null (logged at debug level).
// WithStrict(true) turns those into errors. Division by zero and exceeding
// the depth limit are errors in both modes.
//
// CONCURRENCY
// ===========
// Evaluation is synchronous. The environment is threaded explicitly through
// every evaluation step and per-call state is allocated per Eval, so the same
// *Program can be evaluated by independent Interpreters concurrently. A single
// Interpreter must not be used from several goroutines at once (Global is an
// unsynchronised map).
package monkey

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

////////////////////////////////////////////////////////////////////////////////
//                               PUBLIC INTERPRETER
////////////////////////////////////////////////////////////////////////////////

// DefaultMaxDepth bounds nested calls, blocks and operators during evaluation.
const DefaultMaxDepth = 10000

// Interpreter is the entry point for evaluating programs.
type Interpreter struct {
	// Global is the session's root frame (persistent across Eval calls).
	Global *Env

	strict   bool
	maxDepth int
	log      *zap.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithStrict makes semantic misuse an *EvalError instead of Null.
func WithStrict(strict bool) Option {
	return func(ip *Interpreter) { ip.strict = strict }
}

// WithMaxDepth sets the evaluation nesting limit. n <= 0 keeps
// DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(ip *Interpreter) {
		if n > 0 {
			ip.maxDepth = n
		}
	}
}

// WithLogger installs a logger. Statements, conditions, outputs and
// degraded-to-null diagnostics are traced at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(ip *Interpreter) {
		if l != nil {
			ip.log = l
		}
	}
}

// NewInterpreter constructs a session with an empty Global frame.
func NewInterpreter(opts ...Option) *Interpreter {
	ip := &Interpreter{
		Global:   NewEnv(nil),
		maxDepth: DefaultMaxDepth,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ip)
	}
	return ip
}

// Strict reports whether the session runs in strict mode.
func (ip *Interpreter) Strict() bool { return ip.strict }

// Eval evaluates a program's statements in Global and returns the value of
// the last one. A top-level `return` stops evaluation and yields its value.
func (ip *Interpreter) Eval(prog *Program) (Value, error) {
	if prog == nil {
		return Null, nil
	}
	return ip.newEvaluator().program(prog.Statements, ip.Global)
}

// EvalSource parses src and evaluates it in Global. Parse failures are
// returned unwrapped (see WrapErrorWithSource, IsIncomplete).
func (ip *Interpreter) EvalSource(src string) (Value, error) {
	prog, err := Parse(src)
	if err != nil {
		return Null, err
	}
	return ip.Eval(prog)
}

// EvalIn evaluates node in env (Global when env is nil). Return markers are
// unwrapped before the value is handed back.
func (ip *Interpreter) EvalIn(node Node, env *Env) (Value, error) {
	if env == nil {
		env = ip.Global
	}
	ev := ip.newEvaluator()
	var (
		v   Value
		err error
	)
	switch n := node.(type) {
	case *Program:
		return ev.program(n.Statements, env)
	case *Block:
		v, err = ev.block(n, env)
	case Statement:
		v, err = ev.statement(n, env)
	case Expression:
		v, err = ev.expr(n, env)
	default:
		return Null, evalErrorf(Unsupported, "cannot evaluate %T", node)
	}
	if err != nil {
		return Null, err
	}
	return unwrapReturn(v), nil
}

// Run is the string-in/string-out surface: it evaluates src in this session
// and renders the resulting value with FormatValue.
func (ip *Interpreter) Run(src string) (string, error) {
	prog, err := Parse(src)
	if err != nil {
		return "", errors.Wrap(err, "parse")
	}
	v, err := ip.Eval(prog)
	if err != nil {
		return "", errors.Wrap(err, "eval")
	}
	return FormatValue(v), nil
}

// Interpret runs src in a fresh default session.
func Interpret(src string) (string, error) {
	return NewInterpreter().Run(src)
}

//// END_OF_PUBLIC
