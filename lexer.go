// lexer.go: single-pass scanner.
//
// The lexer walks the source bytes once, left to right, with one byte of
// lookahead (peek) for the two-character operators "==" and "!=". Each call to
// Next returns exactly one token. Once the input is exhausted, Next keeps
// returning EOF.
//
// Identifiers are [A-Za-z_]+ (no digits) and are matched case-sensitively
// against the keyword table in token.go. Integers are [0-9]+ and must fit in
// an int32; an overflowing literal, or a digit run immediately followed by an
// identifier character, is a *LexError. Lex errors are fatal: after the first
// one, every later Next returns the same error.
package monkey

import (
	"fmt"
	"strconv"
)

// Lexer scans a source string into tokens.
type Lexer struct {
	src   string
	start int // start index of current token
	cur   int // current index
	line  int // 1-based
	col   int // 0-based column within line

	tokStartLine int
	tokStartCol  int

	err error // sticky lex error
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1}
}

// LexError is a fatal scanning error. Col is 0-based.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// Next returns the next token. At end of input it returns an EOF token on
// every call. After a lex error it returns that error on every call.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}
	tok, err := l.scanToken()
	if err != nil {
		l.err = err
		return Token{}, err
	}
	return tok, nil
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks, nil
		}
	}
}

//// END_OF_PUBLIC

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) token(tt TokenType) Token {
	return Token{
		Type:   tt,
		Lexeme: l.src[l.start:l.cur],
		Line:   l.tokStartLine,
		Col:    l.tokStartCol,
	}
}

func (l *Lexer) errAtStart(msg string) error {
	return &LexError{Line: l.tokStartLine, Col: l.tokStartCol, Msg: msg}
}

func (l *Lexer) skipWhitespace() {
	for {
		ch, ok := l.peek()
		if !ok {
			return
		}
		switch ch {
		case ' ', '\t', '\n', '\r':
			l.advance()
		default:
			return
		}
	}
}

func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isLetter(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }

// twoChar emits long when the next byte is second, otherwise short.
func (l *Lexer) twoChar(second byte, long, short TokenType) Token {
	if b, ok := l.peek(); ok && b == second {
		l.advance()
		return l.token(long)
	}
	return l.token(short)
}

func (l *Lexer) scanToken() (Token, error) {
	l.skipWhitespace()
	l.start = l.cur
	l.tokStartLine = l.line
	l.tokStartCol = l.col

	ch, ok := l.advance()
	if !ok {
		return l.token(EOF), nil
	}

	switch ch {
	case '=':
		return l.twoChar('=', EQ, ASSIGN), nil
	case '!':
		return l.twoChar('=', NOT_EQ, BANG), nil
	case '+':
		return l.token(PLUS), nil
	case '-':
		return l.token(MINUS), nil
	case '*':
		return l.token(ASTERISK), nil
	case '/':
		return l.token(SLASH), nil
	case '<':
		return l.token(LT), nil
	case '>':
		return l.token(GT), nil
	case ',':
		return l.token(COMMA), nil
	case ';':
		return l.token(SEMICOLON), nil
	case '(':
		return l.token(LPAREN), nil
	case ')':
		return l.token(RPAREN), nil
	case '{':
		return l.token(LBRACE), nil
	case '}':
		return l.token(RBRACE), nil
	}

	if isLetter(ch) {
		for {
			b, ok := l.peek()
			if !ok || !isLetter(b) {
				break
			}
			l.advance()
		}
		tok := l.token(LookupIdent(l.src[l.start:l.cur]))
		if tok.Type == IDENT {
			tok.Name = tok.Lexeme
		}
		return tok, nil
	}

	if isDigit(ch) {
		return l.scanInteger()
	}

	return l.token(ILLEGAL), nil
}

// scanInteger reads the rest of a [0-9]+ run; the first digit is consumed.
func (l *Lexer) scanInteger() (Token, error) {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && isLetter(b) {
		return Token{}, l.errAtStart(fmt.Sprintf("invalid integer literal %q", l.src[l.start:l.cur+1]))
	}
	lex := l.src[l.start:l.cur]
	v, err := strconv.ParseInt(lex, 10, 32)
	if err != nil {
		return Token{}, l.errAtStart(fmt.Sprintf("integer literal %s overflows int32", lex))
	}
	tok := l.token(INT)
	tok.Int = int32(v)
	return tok, nil
}
