package monkey

import "strconv"

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Identifiers & literals
	IDENT
	INT

	// Operators
	ASSIGN   // "="
	PLUS     // "+"
	MINUS    // "-"
	BANG     // "!"
	ASTERISK // "*"
	SLASH    // "/"
	LT       // "<"
	GT       // ">"
	EQ       // "=="
	NOT_EQ   // "!="

	// Delimiters
	COMMA     // ","
	SEMICOLON // ";"
	LPAREN    // "("
	RPAREN    // ")"
	LBRACE    // "{"
	RBRACE    // "}"

	// Keywords
	FUNCTION
	LET
	TRUE
	FALSE
	IF
	ELSE
	RETURN
)

var tokenNames = [...]string{
	EOF:       "EOF",
	ILLEGAL:   "ILLEGAL",
	IDENT:     "IDENT",
	INT:       "INT",
	ASSIGN:    "=",
	PLUS:      "+",
	MINUS:     "-",
	BANG:      "!",
	ASTERISK:  "*",
	SLASH:     "/",
	LT:        "<",
	GT:        ">",
	EQ:        "==",
	NOT_EQ:    "!=",
	COMMA:     ",",
	SEMICOLON: ";",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	FUNCTION:  "fn",
	LET:       "let",
	TRUE:      "true",
	FALSE:     "false",
	IF:        "if",
	ELSE:      "else",
	RETURN:    "return",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "TokenType(" + strconv.Itoa(int(t)) + ")"
}

// keywords maps reserved words to their token types. Matching is case-sensitive.
var keywords = map[string]TokenType{
	"fn":     FUNCTION,
	"let":    LET,
	"true":   TRUE,
	"false":  FALSE,
	"if":     IF,
	"else":   ELSE,
	"return": RETURN,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}

// Token is a lexical token. Name is set for IDENT, Int for INT.
// Line is 1-based, Col is 0-based (as counted by the lexer).
type Token struct {
	Type   TokenType
	Lexeme string // raw text slice
	Name   string
	Int    int32
	Line   int
	Col    int
}

// Equal reports structural equality: same type and same payload.
// Positions and lexemes do not participate.
func (t Token) Equal(o Token) bool {
	if t.Type != o.Type {
		return false
	}
	switch t.Type {
	case IDENT:
		return t.Name == o.Name
	case INT:
		return t.Int == o.Int
	}
	return true
}

// String renders the token the way parser messages refer to it.
func (t Token) String() string {
	switch t.Type {
	case IDENT:
		return "IDENT(" + t.Name + ")"
	case INT:
		return "INT(" + strconv.FormatInt(int64(t.Int), 10) + ")"
	case ILLEGAL:
		if t.Lexeme != "" {
			return "ILLEGAL(" + strconv.Quote(t.Lexeme) + ")"
		}
	}
	return t.Type.String()
}
