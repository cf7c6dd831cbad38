// ast.go: syntax tree produced by the parser.
//
// Nodes are plain value trees: no parent links, no sharing, never mutated after
// parsing. Expression and Statement are sealed (unexported marker methods), so
// the variant sets below are closed; the evaluator switches over them
// exhaustively and treats anything else as an internal error.
//
//	Expressions: EmptyExpr, Identifier, IntegerLiteral, PrefixExpr, InfixExpr,
//	             BooleanLiteral, NullLiteral, IfExpr, FunctionLiteral, CallExpr
//	Statements:  LetStatement, ReturnStatement, ExpressionStatement
//	Containers:  Block, Program
//
// String renders fully parenthesised source, e.g. "((1 + (2 + 3)) + 4)".
package monkey

import (
	"strconv"
	"strings"
)

// Precedence is the binding power of an operator. Only comparisons matter.
type Precedence int

const (
	LOWEST       Precedence = iota
	EQUALS                  // == !=
	LESS_GREATER            // < >
	SUM                     // + -
	PRODUCT                 // * /
	PREFIX                  // -x !x
	CALL                    // f(x)
)

var precedences = map[TokenType]Precedence{
	EQ:       EQUALS,
	NOT_EQ:   EQUALS,
	LT:       LESS_GREATER,
	GT:       LESS_GREATER,
	PLUS:     SUM,
	MINUS:    SUM,
	ASTERISK: PRODUCT,
	SLASH:    PRODUCT,
	LPAREN:   CALL,
}

// precedenceOf returns the infix binding power of t (LOWEST if t is not infix).
func precedenceOf(t TokenType) Precedence {
	if p, ok := precedences[t]; ok {
		return p
	}
	return LOWEST
}

// Node is any syntax tree node.
type Node interface {
	String() string
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	exprNode()
}

// Statement is a node of a Block or Program.
type Statement interface {
	Node
	stmtNode()
}

// ─────────────────────────────── expressions ───────────────────────────────

// EmptyExpr stands for "no value" (e.g. the operand of a bare `return;`).
type EmptyExpr struct{}

type Identifier struct {
	Name string
}

type IntegerLiteral struct {
	Value int32
}

type BooleanLiteral struct {
	Value bool
}

// NullLiteral is a literal null expression node. It is distinct from the
// runtime Null value.
type NullLiteral struct{}

type PrefixExpr struct {
	Operator TokenType // BANG or MINUS
	Right    Expression
}

type InfixExpr struct {
	Operator TokenType
	Left     Expression
	Right    Expression
}

// IfExpr has an optional Alternative; Consequence is nil only when the
// block could not be parsed.
type IfExpr struct {
	Condition   Expression
	Consequence *Block
	Alternative *Block
}

type FunctionLiteral struct {
	Parameters []*Identifier
	Body       *Block
}

type CallExpr struct {
	Function  Expression
	Arguments []Expression
}

func (EmptyExpr) exprNode()        {}
func (*Identifier) exprNode()      {}
func (*IntegerLiteral) exprNode()  {}
func (*BooleanLiteral) exprNode()  {}
func (NullLiteral) exprNode()      {}
func (*PrefixExpr) exprNode()      {}
func (*InfixExpr) exprNode()       {}
func (*IfExpr) exprNode()          {}
func (*FunctionLiteral) exprNode() {}
func (*CallExpr) exprNode()        {}

func (EmptyExpr) String() string         { return "" }
func (e *Identifier) String() string     { return e.Name }
func (e *IntegerLiteral) String() string { return strconv.FormatInt(int64(e.Value), 10) }
func (e *BooleanLiteral) String() string { return strconv.FormatBool(e.Value) }
func (NullLiteral) String() string       { return "null" }

func (e *PrefixExpr) String() string {
	return "(" + e.Operator.String() + e.Right.String() + ")"
}

func (e *InfixExpr) String() string {
	return "(" + e.Left.String() + " " + e.Operator.String() + " " + e.Right.String() + ")"
}

func (e *IfExpr) String() string {
	var b strings.Builder
	b.WriteString("if ")
	b.WriteString(e.Condition.String())
	b.WriteString(" ")
	b.WriteString(e.Consequence.String())
	if e.Alternative != nil {
		b.WriteString(" else ")
		b.WriteString(e.Alternative.String())
	}
	return b.String()
}

func (e *FunctionLiteral) String() string {
	names := make([]string, len(e.Parameters))
	for i, p := range e.Parameters {
		names[i] = p.Name
	}
	return "fn(" + strings.Join(names, ", ") + ") " + e.Body.String()
}

func (e *CallExpr) String() string {
	args := make([]string, len(e.Arguments))
	for i, a := range e.Arguments {
		args[i] = a.String()
	}
	return e.Function.String() + "(" + strings.Join(args, ", ") + ")"
}

// ─────────────────────────────── statements ────────────────────────────────

type LetStatement struct {
	Name  *Identifier
	Value Expression
}

type ReturnStatement struct {
	Value Expression
}

type ExpressionStatement struct {
	Expression Expression
}

func (*LetStatement) stmtNode()        {}
func (*ReturnStatement) stmtNode()     {}
func (*ExpressionStatement) stmtNode() {}

func (s *LetStatement) String() string {
	return "let " + s.Name.Name + " = " + s.Value.String() + ";"
}

func (s *ReturnStatement) String() string {
	if _, ok := s.Value.(EmptyExpr); ok {
		return "return;"
	}
	return "return " + s.Value.String() + ";"
}

func (s *ExpressionStatement) String() string { return s.Expression.String() }

// ─────────────────────────────── containers ────────────────────────────────

// Block is a brace-delimited statement sequence.
type Block struct {
	Statements []Statement
}

// String renders "{ s1 s2 }". A nil block renders as "{}".
func (b *Block) String() string {
	if b == nil || len(b.Statements) == 0 {
		return "{}"
	}
	return "{ " + joinStatements(b.Statements, " ") + " }"
}

// Program is the parse root.
type Program struct {
	Statements []Statement
}

func (p *Program) String() string { return joinStatements(p.Statements, "\n") }

func joinStatements(stmts []Statement, sep string) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, sep)
}
