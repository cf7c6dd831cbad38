// interpreter_test.go
package monkey

import (
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// --- helpers ---------------------------------------------------------------

func evalWith(t *testing.T, ip *Interpreter, src string) Value {
	t.Helper()
	v, err := ip.EvalSource(src)
	require.NoError(t, err, "source:\n%s", src)
	return v
}

func evalSrc(t *testing.T, src string) Value {
	t.Helper()
	return evalWith(t, NewInterpreter(), src)
}

func evalErr(t *testing.T, ip *Interpreter, src string) *EvalError {
	t.Helper()
	_, err := ip.EvalSource(src)
	require.Error(t, err, "source:\n%s", src)
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	return ee
}

func wantInt(t *testing.T, v Value, n int32) {
	t.Helper()
	require.Equal(t, VTInt, v.Tag, "want int, got %v", v)
	assert.Equal(t, n, v.Data.(int32))
}

func wantBool(t *testing.T, v Value, b bool) {
	t.Helper()
	require.Equal(t, VTBool, v.Tag, "want bool, got %v", v)
	assert.Equal(t, b, v.Data.(bool))
}

func wantNull(t *testing.T, v Value) {
	t.Helper()
	assert.Equal(t, VTNull, v.Tag, "want null, got %v", v)
}

// --- arithmetic & comparison -----------------------------------------------

func Test_Interpreter_Integer_Arithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want int32
	}{
		{"5", 5},
		{"-5", -5},
		{"--5", 5},
		{"5 + 5 + 5 + 5 - 10", 10},
		{"2 * 2 * 2 * 2 * 2", 32},
		{"-50 + 100 + -50", 0},
		{"5 * 2 + 10", 20},
		{"20 + 2 * -10", 0},
		{"50 / 2 * 2 + 10", 60},
		{"2 * (5 + 10)", 30},
		{"3 * 3 * 3 + 10", 37},
		{"(5 + 10 * 2 + 15 / 3) * 2 + -10", 50},
		{"7 / 2", 3},
		{"-7 / 2", -3},
	}
	for _, c := range cases {
		wantInt(t, evalSrc(t, c.src), c.want)
	}
}

func Test_Interpreter_Int32_Wraps(t *testing.T) {
	wantInt(t, evalSrc(t, "2147483647 + 1"), math.MinInt32)
	wantInt(t, evalSrc(t, "-2147483647 - 2"), math.MaxInt32)
	wantInt(t, evalSrc(t, "65536 * 65536"), 0)
	wantInt(t, evalSrc(t, "(-2147483647 - 1) / -1"), math.MinInt32)
}

func Test_Interpreter_Boolean_Expressions(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"true", true},
		{"false", false},
		{"1 < 2", true},
		{"1 > 2", false},
		{"1 < 1", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{"1 == 2", false},
		{"true == true", true},
		{"true == false", false},
		{"true != false", true},
		{"(1 < 2) == true", true},
		{"(1 > 2) == true", false},
		{"!true", false},
		{"!!true", true},
		{"!(1 == 2)", true},
	}
	for _, c := range cases {
		wantBool(t, evalSrc(t, c.src), c.want)
	}
}

// --- conditionals ----------------------------------------------------------

func Test_Interpreter_If_Else(t *testing.T) {
	wantInt(t, evalSrc(t, "if (true) { 10 }"), 10)
	wantNull(t, evalSrc(t, "if (false) { 10 }"))
	wantInt(t, evalSrc(t, "if (1) { 10 }"), 10)
	wantInt(t, evalSrc(t, "if (0) { 10 }"), 10)
	wantInt(t, evalSrc(t, "if (1 < 2) { 10 } else { 20 }"), 10)
	wantInt(t, evalSrc(t, "if (1 > 2) { 10 } else { 20 }"), 20)
	wantNull(t, evalSrc(t, "if (true) { }"))
	wantNull(t, evalSrc(t, "if (if (false) { 1 }) { 10 }"))
}

// --- return ----------------------------------------------------------------

func Test_Interpreter_Return_Short_Circuits(t *testing.T) {
	cases := []struct {
		src  string
		want int32
	}{
		{"return 10;", 10},
		{"return 10; 9;", 10},
		{"return 2 * 5; 9;", 10},
		{"9; return 2 * 5; 9;", 10},
		{"if (10 > 1) { if (10 > 1) { return 10; } return 1; }", 10},
		{"let f = fn(x) { return x; x + 10; }; f(10);", 10},
		{"let f = fn(x) { let result = x + 10; return result; return 10; }; f(10);", 20},
	}
	for _, c := range cases {
		wantInt(t, evalSrc(t, c.src), c.want)
	}
	wantNull(t, evalSrc(t, "return; 5"))
}

func Test_Interpreter_Return_Propagates_Through_Subexpressions(t *testing.T) {
	// The marker escapes a let initializer, an operand, an argument and a
	// condition, and stops at the enclosing call.
	wantInt(t, evalSrc(t, "let f = fn() { let x = if (true) { return 5; }; 99 }; f()"), 5)
	wantInt(t, evalSrc(t, "let g = fn() { 1 + if (true) { return 7 } }; g()"), 7)
	wantInt(t, evalSrc(t, "let id = fn(x) { x }; let h = fn() { id(if (true) { return 3 }) + 100 }; h()"), 3)
	wantInt(t, evalSrc(t, "let k = fn() { if (if (true) { return 4 }) { 1 } else { 2 } }; k()"), 4)
	wantInt(t, evalSrc(t, "let m = fn() { -if (true) { return 8 } }; m()"), 8)
}

func Test_Interpreter_Return_Does_Not_Escape_Call(t *testing.T) {
	wantInt(t, evalSrc(t, "let f = fn() { return 1; }; f() + 41"), 42)
}

// --- bindings & closures ---------------------------------------------------

func Test_Interpreter_Let_Yields_Bound_Value(t *testing.T) {
	wantInt(t, evalSrc(t, "let a = 5;"), 5)
	wantInt(t, evalSrc(t, "let a = 5 * 5; a;"), 25)
	wantInt(t, evalSrc(t, "let a = 5; let b = a; let c = a + b + 5; c;"), 15)
}

func Test_Interpreter_Let_Shadows_In_Same_Frame(t *testing.T) {
	wantInt(t, evalSrc(t, "let a = 1; let a = a + 1; a"), 2)
}

func Test_Interpreter_Function_Value(t *testing.T) {
	v := evalSrc(t, "fn(x) { x + 2; };")
	require.Equal(t, VTFun, v.Tag)
	fn := v.Data.(*Fun)
	assert.Equal(t, []string{"x"}, fn.Params)
	assert.Equal(t, "{ (x + 2) }", fn.Body.String())
}

func Test_Interpreter_Function_Application(t *testing.T) {
	cases := []struct {
		src  string
		want int32
	}{
		{"let identity = fn(x) { x; }; identity(5);", 5},
		{"let identity = fn(x) { return x; }; identity(5);", 5},
		{"let double = fn(x) { x * 2; }; double(5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5, 5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5 + 5, add(5, 5));", 20},
		{"fn(x) { x; }(5)", 5},
	}
	for _, c := range cases {
		wantInt(t, evalSrc(t, c.src), c.want)
	}
}

func Test_Interpreter_Closures(t *testing.T) {
	wantInt(t, evalSrc(t, `
let newAdder = fn(x) { fn(y) { x + y }; };
let addTwo = newAdder(2);
addTwo(2);`), 4)

	// Free names resolve in the defining frame, not the caller's.
	wantInt(t, evalSrc(t, "let x = 1; let f = fn() { x }; let g = fn(x) { f() }; g(99)"), 1)

	// Frames are shared: a later definition is visible to earlier closures.
	wantInt(t, evalSrc(t, "let f = fn() { late }; let late = 7; f()"), 7)
}

func Test_Interpreter_Recursion(t *testing.T) {
	wantInt(t, evalSrc(t, `
let fib = fn(n) { if (n < 2) { n } else { fib(n - 1) + fib(n - 2) } };
fib(15)`), 610)
}

func Test_Interpreter_Parameters_Shadow_Outer(t *testing.T) {
	wantInt(t, evalSrc(t, "let x = 10; let f = fn(x) { x }; f(3); x"), 10)
	wantInt(t, evalSrc(t, "let x = 10; let f = fn() { let x = 2; x }; f() + x"), 12)
}

func Test_Interpreter_Argument_Count_Mismatch(t *testing.T) {
	// Extra arguments are evaluated and ignored.
	wantInt(t, evalSrc(t, "fn(a) { a }(1, 2, 3)"), 1)

	// Missing parameters stay unbound.
	wantNull(t, evalSrc(t, "let f = fn(a, b) { b }; f(1)"))
	ee := evalErr(t, NewInterpreter(WithStrict(true)), "let f = fn(a, b) { b }; f(1)")
	assert.Equal(t, UnboundIdentifier, ee.Kind)
	assert.Equal(t, "b", ee.Msg)
}

// --- misuse: lenient vs strict ---------------------------------------------

func Test_Interpreter_Lenient_Misuse_Is_Null(t *testing.T) {
	for _, src := range []string{
		"5 + true",
		"true + false",
		"-true",
		"!5",
		"foobar",
		"5(1)",
		"let x = 1; x()",
		"let f = fn() { 1 }; f + 1",
		"true < false",
	} {
		wantNull(t, evalSrc(t, src))
	}
	// Evaluation continues after a degraded statement.
	wantInt(t, evalSrc(t, "5 + true; 5"), 5)
}

func Test_Interpreter_Strict_Misuse_Is_Error(t *testing.T) {
	ip := NewInterpreter(WithStrict(true))
	require.True(t, ip.Strict())

	cases := []struct {
		src  string
		kind ErrorKind
	}{
		{"5 + true", TypeMismatch},
		{"-true", TypeMismatch},
		{"!5", TypeMismatch},
		{"true + false", UnknownOperator},
		{"true < false", UnknownOperator},
		{"foobar", UnboundIdentifier},
		{"5(1)", NotCallable},
		{"let y = 1; y()", NotCallable},
	}
	for _, c := range cases {
		ee := evalErr(t, ip, c.src)
		assert.Equal(t, c.kind, ee.Kind, "source: %s (%v)", c.src, ee)
	}
	assert.Equal(t, "RUNTIME ERROR: type mismatch: int + bool", evalErr(t, ip, "1 + true").Error())
}

func Test_Interpreter_Division_By_Zero_Always_Fails(t *testing.T) {
	for _, ip := range []*Interpreter{NewInterpreter(), NewInterpreter(WithStrict(true))} {
		ee := evalErr(t, ip, "let z = 0; 10 / z")
		assert.Equal(t, DivisionByZero, ee.Kind)
		assert.True(t, ee.Kind.Fatal())
	}
}

func Test_Interpreter_Stack_Limit(t *testing.T) {
	ip := NewInterpreter(WithMaxDepth(50))
	ee := evalErr(t, ip, "let f = fn(n) { f(n + 1) }; f(0)")
	assert.Equal(t, StackLimit, ee.Kind)
	assert.Contains(t, ee.Error(), "nesting exceeds 50")

	// The session survives and depth starts over.
	wantInt(t, evalWith(t, ip, "let g = fn(n) { if (n > 0) { g(n - 1) } else { 0 } }; g(10)"), 0)

	ee = evalErr(t, NewInterpreter(), "let loop = fn() { loop() }; loop()")
	assert.Equal(t, StackLimit, ee.Kind)
}

func Test_Interpreter_Operator_Chains_Count_Toward_Depth(t *testing.T) {
	chain := "1" + strings.Repeat(" + 1", 500)
	ee := evalErr(t, NewInterpreter(WithMaxDepth(100)), chain)
	assert.Equal(t, StackLimit, ee.Kind)

	ee = evalErr(t, NewInterpreter(WithMaxDepth(100)), strings.Repeat("-", 200)+"1")
	assert.Equal(t, StackLimit, ee.Kind)

	wantInt(t, evalWith(t, NewInterpreter(), "1"+strings.Repeat(" + 1", 1999)), 2000)
}

func Test_Interpreter_WithMaxDepth_Ignores_NonPositive(t *testing.T) {
	ip := NewInterpreter(WithMaxDepth(0), WithMaxDepth(-3))
	wantInt(t, evalWith(t, ip, "let f = fn(n) { if (n > 0) { f(n - 1) } else { 1 } }; f(200)"), 1)
}

// --- sessions & host entry points ------------------------------------------

func Test_Interpreter_Session_Persists_Globals(t *testing.T) {
	ip := NewInterpreter()
	wantInt(t, evalWith(t, ip, "let a = 5;"), 5)
	assert.Equal(t, VTFun, evalWith(t, ip, "let dbl = fn(x) { x * 2 };").Tag)
	wantInt(t, evalWith(t, ip, "dbl(a)"), 10)
	assert.Equal(t, []string{"a", "dbl"}, ip.Global.Names())
}

func Test_Interpreter_Eval_Nil_And_Empty(t *testing.T) {
	ip := NewInterpreter()
	v, err := ip.Eval(nil)
	require.NoError(t, err)
	wantNull(t, v)
	wantNull(t, evalWith(t, ip, ""))
	wantNull(t, evalWith(t, ip, ";;"))
}

func Test_Interpreter_EvalSource_Returns_Parse_Errors(t *testing.T) {
	ip := NewInterpreter()
	_, err := ip.EvalSource("let x 5;")
	require.Error(t, err)
	require.Len(t, SyntaxErrors(err), 1)

	_, err = ip.EvalSource("let x = 99999999999;")
	var le *LexError
	assert.ErrorAs(t, err, &le)
}

type bogusNode struct{}

func (bogusNode) String() string { return "bogus" }

func Test_Interpreter_EvalIn(t *testing.T) {
	ip := NewInterpreter()
	evalWith(t, ip, "let base = 100;")

	// A child frame sees Global; its definitions stay local.
	child := NewEnv(ip.Global)
	stmt := &LetStatement{Name: &Identifier{Name: "local"}, Value: &InfixExpr{
		Operator: PLUS, Left: &Identifier{Name: "base"}, Right: &IntegerLiteral{Value: 1},
	}}
	v, err := ip.EvalIn(stmt, child)
	require.NoError(t, err)
	wantInt(t, v, 101)
	_, inChild := child.Get("local")
	_, inGlobal := ip.Global.Get("local")
	assert.True(t, inChild)
	assert.False(t, inGlobal)

	// nil env means Global; return markers are unwrapped.
	v, err = ip.EvalIn(&ReturnStatement{Value: &IntegerLiteral{Value: 3}}, nil)
	require.NoError(t, err)
	wantInt(t, v, 3)

	v, err = ip.EvalIn(mustParse(t, "base / 4"), nil)
	require.NoError(t, err)
	wantInt(t, v, 25)

	v, err = ip.EvalIn(&Block{Statements: []Statement{&ExpressionStatement{Expression: &BooleanLiteral{Value: true}}}}, nil)
	require.NoError(t, err)
	wantBool(t, v, true)

	_, err = ip.EvalIn(bogusNode{}, nil)
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, Unsupported, ee.Kind)

	_, err = ip.EvalIn(&ExpressionStatement{Expression: nil}, nil)
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, Unsupported, ee.Kind)
}

func Test_Interpreter_Run_And_Interpret(t *testing.T) {
	ip := NewInterpreter()
	out, err := ip.Run("let x = 3; x * x")
	require.NoError(t, err)
	assert.Equal(t, "9", out)

	out, err = ip.Run("x == 3")
	require.NoError(t, err)
	assert.Equal(t, "true", out)

	_, err = ip.Run("let = 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse: ")
	assert.NotEmpty(t, SyntaxErrors(errors.Cause(err)))

	_, err = ip.Run("1 / 0")
	require.Error(t, err)
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, DivisionByZero, ee.Kind)

	out, err = Interpret("fn(x) { x }")
	require.NoError(t, err)
	assert.Equal(t, "fn(x) { x }", out)

	out, err = Interpret("")
	require.NoError(t, err)
	assert.Equal(t, "null", out)

	// Interpret always starts a fresh session.
	out, err = Interpret("x")
	require.NoError(t, err)
	assert.Equal(t, "null", out)
}

func Test_Interpreter_Independent_Sessions_Share_Program(t *testing.T) {
	prog := mustParse(t, "let n = 20; let f = fn(k) { if (k < 1) { 0 } else { k + f(k - 1) } }; f(n)")
	done := make(chan Value, 4)
	for i := 0; i < 4; i++ {
		go func() {
			v, err := NewInterpreter().Eval(prog)
			if err != nil {
				done <- Null
				return
			}
			done <- v
		}()
	}
	for i := 0; i < 4; i++ {
		wantInt(t, <-done, 210)
	}
}

// --- tracing ---------------------------------------------------------------

func Test_Interpreter_Trace_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ip := NewInterpreter(WithLogger(zap.New(core)))

	evalWith(t, ip, "missing; if (true) { 1 }")

	assert.Equal(t, 2, logs.FilterMessage("statement").Len())
	assert.Equal(t, 1, logs.FilterMessage("condition").Len())
	degraded := logs.FilterMessage("degraded to null").All()
	require.Len(t, degraded, 1)
	assert.Equal(t, "unbound identifier", degraded[0].ContextMap()["kind"])
	assert.Equal(t, "missing", degraded[0].ContextMap()["detail"])

	// Strict sessions fail instead of logging a degradation.
	core, logs = observer.New(zapcore.DebugLevel)
	strict := NewInterpreter(WithStrict(true), WithLogger(zap.New(core)))
	_, err := strict.EvalSource("missing")
	require.Error(t, err)
	assert.Zero(t, logs.FilterMessage("degraded to null").Len())
}
