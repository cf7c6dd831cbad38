package monkey

import (
	"go.uber.org/zap"
)

// evaluator holds the per-Eval state. The current frame is never stored
// here: it is passed down explicitly, so nothing has to be restored when a
// call returns or fails.
type evaluator struct {
	ip    *Interpreter
	depth int
}

func (ip *Interpreter) newEvaluator() *evaluator { return &evaluator{ip: ip} }

// degrade is the single seam for semantic misuse. Lenient sessions log the
// diagnostic and continue with Null; strict sessions (and fatal kinds) fail.
func (ev *evaluator) degrade(kind ErrorKind, format string, args ...interface{}) (Value, error) {
	err := evalErrorf(kind, format, args...)
	if ev.ip.strict || kind.Fatal() {
		return Null, err
	}
	ev.ip.log.Debug("degraded to null", zap.Stringer("kind", kind), zap.String("detail", err.Msg))
	return Null, nil
}

func (ev *evaluator) enter() error {
	ev.depth++
	if ev.depth > ev.ip.maxDepth {
		return evalErrorf(StackLimit, "nesting exceeds %d", ev.ip.maxDepth)
	}
	return nil
}

func (ev *evaluator) leave() { ev.depth-- }

// ───────────────────────────────── statements ───────────────────────────────

// program evaluates a top-level statement sequence. A return marker stops
// evaluation and is unwrapped here.
func (ev *evaluator) program(stmts []Statement, env *Env) (Value, error) {
	result := Null
	for _, s := range stmts {
		ev.ip.log.Debug("statement", zap.Stringer("stmt", s))
		v, err := ev.statement(s, env)
		if err != nil {
			return Null, err
		}
		if v.Tag == VTReturn {
			return unwrapReturn(v), nil
		}
		ev.ip.log.Debug("output", zap.Stringer("value", v))
		result = v
	}
	return result, nil
}

func (ev *evaluator) statement(s Statement, env *Env) (Value, error) {
	switch s := s.(type) {
	case *LetStatement:
		v, err := ev.expr(s.Value, env)
		if err != nil || v.Tag == VTReturn {
			return v, err
		}
		env.Define(s.Name.Name, v)
		return v, nil
	case *ReturnStatement:
		v, err := ev.expr(s.Value, env)
		if err != nil || v.Tag == VTReturn {
			return v, err
		}
		return returnOf(v), nil
	case *ExpressionStatement:
		return ev.expr(s.Expression, env)
	default:
		return Null, evalErrorf(Unsupported, "statement %T", s)
	}
}

// block evaluates statements in order; a return marker short-circuits and is
// passed up still wrapped. A nil block evaluates to Null.
func (ev *evaluator) block(b *Block, env *Env) (Value, error) {
	if b == nil {
		return Null, nil
	}
	if err := ev.enter(); err != nil {
		return Null, err
	}
	defer ev.leave()

	result := Null
	for _, s := range b.Statements {
		v, err := ev.statement(s, env)
		if err != nil {
			return Null, err
		}
		if v.Tag == VTReturn {
			return v, nil
		}
		result = v
	}
	return result, nil
}

// ──────────────────────────────── expressions ───────────────────────────────

// expr evaluates an expression. A return marker coming out of a nested
// if-block is propagated unchanged by every caller.
func (ev *evaluator) expr(e Expression, env *Env) (Value, error) {
	switch e := e.(type) {
	case EmptyExpr, NullLiteral:
		return Null, nil
	case *IntegerLiteral:
		return Int(e.Value), nil
	case *BooleanLiteral:
		return Bool(e.Value), nil
	case *Identifier:
		if v, ok := env.Get(e.Name); ok {
			return v, nil
		}
		return ev.degrade(UnboundIdentifier, "%s", e.Name)
	case *PrefixExpr:
		if err := ev.enter(); err != nil {
			return Null, err
		}
		defer ev.leave()
		right, err := ev.expr(e.Right, env)
		if err != nil || right.Tag == VTReturn {
			return right, err
		}
		return ev.prefix(e.Operator, right)
	case *InfixExpr:
		if err := ev.enter(); err != nil {
			return Null, err
		}
		defer ev.leave()
		left, err := ev.expr(e.Left, env)
		if err != nil || left.Tag == VTReturn {
			return left, err
		}
		right, err := ev.expr(e.Right, env)
		if err != nil || right.Tag == VTReturn {
			return right, err
		}
		return ev.infix(e.Operator, left, right)
	case *IfExpr:
		return ev.ifExpr(e, env)
	case *FunctionLiteral:
		params := make([]string, len(e.Parameters))
		for i, p := range e.Parameters {
			params[i] = p.Name
		}
		return FunVal(&Fun{Params: params, Body: e.Body, Env: env}), nil
	case *CallExpr:
		return ev.call(e, env)
	case nil:
		return Null, evalErrorf(Unsupported, "nil expression")
	default:
		return Null, evalErrorf(Unsupported, "expression %T", e)
	}
}

func (ev *evaluator) prefix(op TokenType, right Value) (Value, error) {
	switch op {
	case BANG:
		if right.Tag != VTBool {
			return ev.degrade(TypeMismatch, "!%s", right.Tag)
		}
		return Bool(!right.Data.(bool)), nil
	case MINUS:
		if right.Tag != VTInt {
			return ev.degrade(TypeMismatch, "-%s", right.Tag)
		}
		return Int(-right.Data.(int32)), nil
	default:
		return ev.degrade(UnknownOperator, "%s%s", op, right.Tag)
	}
}

func (ev *evaluator) infix(op TokenType, left, right Value) (Value, error) {
	switch {
	case left.Tag == VTInt && right.Tag == VTInt:
		return ev.integerInfix(op, left.Data.(int32), right.Data.(int32))
	case left.Tag == VTBool && right.Tag == VTBool:
		a, b := left.Data.(bool), right.Data.(bool)
		switch op {
		case EQ:
			return Bool(a == b), nil
		case NOT_EQ:
			return Bool(a != b), nil
		}
		return ev.degrade(UnknownOperator, "bool %s bool", op)
	default:
		return ev.degrade(TypeMismatch, "%s %s %s", left.Tag, op, right.Tag)
	}
}

// integerInfix uses int32 two's-complement arithmetic; overflow wraps.
func (ev *evaluator) integerInfix(op TokenType, a, b int32) (Value, error) {
	switch op {
	case PLUS:
		return Int(a + b), nil
	case MINUS:
		return Int(a - b), nil
	case ASTERISK:
		return Int(a * b), nil
	case SLASH:
		if b == 0 {
			return Null, evalErrorf(DivisionByZero, "%d / 0", a)
		}
		return Int(a / b), nil
	case LT:
		return Bool(a < b), nil
	case GT:
		return Bool(a > b), nil
	case EQ:
		return Bool(a == b), nil
	case NOT_EQ:
		return Bool(a != b), nil
	default:
		return ev.degrade(UnknownOperator, "int %s int", op)
	}
}

func (ev *evaluator) ifExpr(e *IfExpr, env *Env) (Value, error) {
	cond, err := ev.expr(e.Condition, env)
	if err != nil || cond.Tag == VTReturn {
		return cond, err
	}
	ev.ip.log.Debug("condition", zap.Stringer("expr", e.Condition), zap.Stringer("value", cond))
	if isTruthy(cond) {
		return ev.block(e.Consequence, env)
	}
	return ev.block(e.Alternative, env)
}

// call evaluates the callee, then the arguments in the caller's frame, and
// runs the body in a fresh frame enclosed by the closure's captured frame.
// Parameters and arguments are paired up to the shorter of the two lists.
func (ev *evaluator) call(c *CallExpr, env *Env) (Value, error) {
	if err := ev.enter(); err != nil {
		return Null, err
	}
	defer ev.leave()

	callee, err := ev.expr(c.Function, env)
	if err != nil || callee.Tag == VTReturn {
		return callee, err
	}
	if callee.Tag != VTFun {
		return ev.degrade(NotCallable, "%s is not a function", c.Function)
	}
	fn := callee.Data.(*Fun)

	args := make([]Value, 0, len(c.Arguments))
	for _, a := range c.Arguments {
		v, err := ev.expr(a, env)
		if err != nil || v.Tag == VTReturn {
			return v, err
		}
		args = append(args, v)
	}

	frame := NewEnv(fn.Env)
	for i := 0; i < len(fn.Params) && i < len(args); i++ {
		frame.Define(fn.Params[i], args[i])
	}
	v, err := ev.block(fn.Body, frame)
	if err != nil {
		return Null, err
	}
	return unwrapReturn(v), nil
}
