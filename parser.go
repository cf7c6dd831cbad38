// parser.go: Pratt parser producing the syntax tree in ast.go.
//
// OVERVIEW
// --------
// The parser keeps exactly two tokens of lookahead (cur and peek) and pulls
// tokens lazily from the Lexer. Statements dispatch on the current token
// (let / return / expression). Expressions use precedence climbing: every
// token kind that can start an expression has a prefix rule, binary operators
// and "(" have an infix binding power (see precedences in ast.go), and the
// infix loop only continues while the next operator binds tighter than the
// caller's minimum. Recursing with the operator's own precedence makes equal
// precedence operators associate to the left.
//
// ERROR POLICY
// ------------
// Syntax errors never abort the parse. Each one is recorded as a *ParseError
// (message shape "expected token X, got token Y") and parsing resumes with the
// next statement, so one pass reports every malformed statement. A failed
// `let` skips ahead to its terminating ';' first. Statements that fail inside a
// block are dropped from that block. Exceeding the nesting limit abandons the
// whole top-level statement: one error, then parsing resumes after it. ParseProgram returns the errors as a
// *multierror.Error (order preserved) when at least one was recorded.
//
// Lexical errors are different: the first *LexError ends the parse and is
// returned as is.
//
// Dependencies
// ------------
//   - lexer.go, token.go: token stream.
//   - ast.go: node types and precedence table.
package monkey

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// DefaultMaxParseDepth bounds expression nesting during parsing.
const DefaultMaxParseDepth = 2048

// ParseError is a recoverable syntax error. Col is 0-based. AtEOF is set when
// the offending token was the end of input (the source may be incomplete).
type ParseError struct {
	Line  int
	Col   int
	Msg   string
	AtEOF bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// Parser turns a token stream into a *Program.
type Parser struct {
	l    *Lexer
	cur  Token
	peek Token

	errs   *multierror.Error
	lexErr error

	depth int
	// MaxDepth bounds expression nesting; zero means DefaultMaxParseDepth.
	MaxDepth int

	// abandon is set when the current top-level statement must be given up
	// (nesting limit); blocks is the number of open blocks at that point.
	abandon       bool
	blocks        int
	abandonBlocks int
}

// NewParser primes the two-token window from l.
func NewParser(l *Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Parse lexes and parses a complete source string.
func Parse(src string) (*Program, error) {
	return NewParser(NewLexer(src)).ParseProgram()
}

// ParseProgram parses statements until end of input. It returns either the
// program or an error: a *LexError if scanning failed, otherwise a
// *multierror.Error whose Errors are the recorded *ParseError values in
// source order.
func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{}
	for !p.curIs(EOF) {
		stmt := p.parseStatement()
		if p.abandon {
			p.skipAbandoned()
			p.abandon = false
		} else if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if p.lexErr != nil {
			break
		}
		p.next()
	}
	if p.lexErr != nil {
		return nil, p.lexErr
	}
	if p.errs != nil {
		p.errs.ErrorFormat = formatSyntaxErrors
		return nil, p.errs
	}
	return prog, nil
}

// Errors returns the messages of the syntax errors recorded so far.
func (p *Parser) Errors() []string {
	if p.errs == nil {
		return nil
	}
	out := make([]string, 0, len(p.errs.Errors))
	for _, e := range p.errs.Errors {
		if pe, ok := e.(*ParseError); ok {
			out = append(out, pe.Msg)
			continue
		}
		out = append(out, e.Error())
	}
	return out
}

// IsIncomplete reports whether err consists only of syntax errors raised at
// end of input, i.e. more source could complete the program.
func IsIncomplete(err error) bool {
	var merr *multierror.Error
	if !errors.As(err, &merr) || len(merr.Errors) == 0 {
		return false
	}
	for _, e := range merr.Errors {
		pe, ok := e.(*ParseError)
		if !ok || !pe.AtEOF {
			return false
		}
	}
	return true
}

// SyntaxErrors extracts the individual *ParseError values from err.
func SyntaxErrors(err error) []*ParseError {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return nil
	}
	out := make([]*ParseError, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		if pe, ok := e.(*ParseError); ok {
			out = append(out, pe)
		}
	}
	return out
}

//// END_OF_PUBLIC

func formatSyntaxErrors(es []error) string {
	lines := make([]string, len(es))
	for i, e := range es {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// ─────────────────────────── token basics & helpers ─────────────────────────

func (p *Parser) next() {
	p.cur = p.peek
	if p.lexErr != nil {
		p.peek = Token{Type: EOF, Line: p.cur.Line, Col: p.cur.Col}
		return
	}
	tok, err := p.l.Next()
	if err != nil {
		p.lexErr = err
		tok = Token{Type: EOF, Line: p.cur.Line, Col: p.cur.Col}
	}
	p.peek = tok
}

func (p *Parser) curIs(t TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t TokenType) bool { return p.peek.Type == t }

func (p *Parser) errorAt(tok Token, msg string) {
	p.errs = multierror.Append(p.errs, &ParseError{
		Line:  tok.Line,
		Col:   tok.Col,
		Msg:   msg,
		AtEOF: tok.Type == EOF,
	})
}

func (p *Parser) expected(want string, got Token) {
	p.errorAt(got, fmt.Sprintf("expected token %s, got token %s", want, got))
}

// expectPeek advances onto peek if it has type t; otherwise it records an error.
func (p *Parser) expectPeek(t TokenType) bool {
	if p.peekIs(t) {
		p.next()
		return true
	}
	p.expected(t.String(), p.peek)
	return false
}

func (p *Parser) maxDepth() int {
	if p.MaxDepth > 0 {
		return p.MaxDepth
	}
	return DefaultMaxParseDepth
}

// ───────────────────────────────── statements ───────────────────────────────

// parseStatement starts on the statement's first token and leaves cur on its
// last token (the ';' when present). A nil result means nothing was produced.
func (p *Parser) parseStatement() Statement {
	switch p.cur.Type {
	case SEMICOLON:
		return nil
	case LET:
		return p.parseLetStatement()
	case RETURN:
		return p.parseReturnStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() Statement {
	if !p.expectPeek(IDENT) {
		p.skipToStatementEnd()
		return nil
	}
	name := &Identifier{Name: p.cur.Name}
	if !p.expectPeek(ASSIGN) {
		p.skipToStatementEnd()
		return nil
	}
	p.next()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	if p.peekIs(SEMICOLON) {
		p.next()
	}
	return &LetStatement{Name: name, Value: value}
}

// skipToStatementEnd moves cur onto the next ';' without leaving the
// enclosing block or running past the end of input.
func (p *Parser) skipToStatementEnd() {
	for !p.curIs(SEMICOLON) && !p.peekIs(EOF) && !p.peekIs(RBRACE) {
		p.next()
	}
}

// skipAbandoned moves cur onto the last token of an abandoned top-level
// statement: its ';' once every block open at the failure point is closed,
// or the closing '}' itself when no ';' follows it.
func (p *Parser) skipAbandoned() {
	open := p.abandonBlocks
	for !p.curIs(EOF) && !p.peekIs(EOF) {
		switch p.cur.Type {
		case LBRACE:
			open++
		case RBRACE:
			open--
			if open <= 0 && !p.peekIs(SEMICOLON) {
				return
			}
		case SEMICOLON:
			if open <= 0 {
				return
			}
		}
		p.next()
	}
}

func (p *Parser) parseReturnStatement() Statement {
	if p.peekIs(SEMICOLON) || p.peekIs(RBRACE) || p.peekIs(EOF) {
		if p.peekIs(SEMICOLON) {
			p.next()
		}
		return &ReturnStatement{Value: EmptyExpr{}}
	}
	p.next()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	for !p.peekIs(SEMICOLON) && !p.peekIs(RBRACE) && !p.peekIs(EOF) {
		p.next()
	}
	if p.peekIs(SEMICOLON) {
		p.next()
	}
	return &ReturnStatement{Value: value}
}

func (p *Parser) parseExpressionStatement() Statement {
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if p.peekIs(SEMICOLON) {
		p.next()
	}
	return &ExpressionStatement{Expression: expr}
}

// parseBlock expects cur on '{' and leaves cur on the matching '}'.
func (p *Parser) parseBlock() *Block {
	p.blocks++
	defer func() { p.blocks-- }()

	block := &Block{}
	p.next()
	for !p.curIs(RBRACE) && !p.curIs(EOF) {
		stmt := p.parseStatement()
		if p.abandon {
			return block
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		} else if p.curIs(RBRACE) {
			// The failed statement stopped on the block's own '}'.
			break
		}
		p.next()
	}
	if p.curIs(EOF) {
		p.expected(RBRACE.String(), p.cur)
	}
	return block
}

// ──────────────────────────────── expressions ───────────────────────────────

func (p *Parser) parseExpression(min Precedence) Expression {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth() {
		p.errorAt(p.cur, fmt.Sprintf("expression nesting exceeds %d", p.maxDepth()))
		p.abandon = true
		p.abandonBlocks = p.blocks
		return nil
	}

	left := p.parsePrefix()
	if left == nil || p.abandon {
		return nil
	}

	for !p.peekIs(SEMICOLON) && min < precedenceOf(p.peek.Type) {
		switch p.peek.Type {
		case LPAREN:
			p.next()
			left = p.parseCall(left)
		case PLUS, MINUS, ASTERISK, SLASH, EQ, NOT_EQ, LT, GT:
			p.next()
			left = p.parseInfix(left)
		default:
			return left
		}
		if left == nil || p.abandon {
			return nil
		}
	}
	return left
}

// parsePrefix applies the prefix rule selected by the current token.
func (p *Parser) parsePrefix() Expression {
	switch p.cur.Type {
	case IDENT:
		return &Identifier{Name: p.cur.Name}
	case INT:
		return &IntegerLiteral{Value: p.cur.Int}
	case TRUE, FALSE:
		return &BooleanLiteral{Value: p.curIs(TRUE)}
	case BANG, MINUS:
		op := p.cur.Type
		p.next()
		right := p.parseExpression(PREFIX)
		if right == nil {
			return nil
		}
		return &PrefixExpr{Operator: op, Right: right}
	case LPAREN:
		return p.parseGrouped()
	case IF:
		return p.parseIf()
	case FUNCTION:
		return p.parseFunction()
	}
	p.expected("expression", p.cur)
	return nil
}

func (p *Parser) parseInfix(left Expression) Expression {
	op := p.cur.Type
	prec := precedenceOf(op)
	p.next()
	right := p.parseExpression(prec)
	if right == nil {
		return nil
	}
	return &InfixExpr{Operator: op, Left: left, Right: right}
}

func (p *Parser) parseGrouped() Expression {
	p.next()
	inner := p.parseExpression(LOWEST)
	if inner == nil {
		return nil
	}
	if !p.expectPeek(RPAREN) {
		return nil
	}
	return inner
}

// if (<cond>) { ... } [else { ... }]
func (p *Parser) parseIf() Expression {
	if !p.expectPeek(LPAREN) {
		return nil
	}
	p.next()
	cond := p.parseExpression(LOWEST)
	if cond == nil {
		return nil
	}
	if !p.expectPeek(RPAREN) || !p.expectPeek(LBRACE) {
		return nil
	}
	expr := &IfExpr{Condition: cond, Consequence: p.parseBlock()}
	if p.abandon {
		return nil
	}
	if p.peekIs(ELSE) {
		p.next()
		if !p.expectPeek(LBRACE) {
			return nil
		}
		expr.Alternative = p.parseBlock()
	}
	return expr
}

// fn(<params>) { ... }
func (p *Parser) parseFunction() Expression {
	if !p.expectPeek(LPAREN) {
		return nil
	}
	params, ok := p.parseParameters()
	if !ok || !p.expectPeek(LBRACE) {
		return nil
	}
	return &FunctionLiteral{Parameters: params, Body: p.parseBlock()}
}

// parseParameters expects cur on '(' and leaves cur on ')'.
func (p *Parser) parseParameters() ([]*Identifier, bool) {
	params := []*Identifier{}
	if p.peekIs(RPAREN) {
		p.next()
		return params, true
	}
	p.next()
	for {
		if !p.curIs(IDENT) {
			p.expected(IDENT.String(), p.cur)
			return nil, false
		}
		params = append(params, &Identifier{Name: p.cur.Name})
		switch {
		case p.peekIs(COMMA):
			p.next()
			p.next()
		case p.peekIs(RPAREN):
			p.next()
			return params, true
		default:
			p.expected(RPAREN.String(), p.peek)
			return nil, false
		}
	}
}

// parseCall expects cur on '(' following the callee.
func (p *Parser) parseCall(fn Expression) Expression {
	args := []Expression{}
	if p.peekIs(RPAREN) {
		p.next()
		return &CallExpr{Function: fn, Arguments: args}
	}
	p.next()
	for {
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if !p.peekIs(COMMA) {
			break
		}
		p.next()
		p.next()
	}
	if !p.expectPeek(RPAREN) {
		return nil
	}
	return &CallExpr{Function: fn, Arguments: args}
}
