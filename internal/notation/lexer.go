// Package notation compiles the movement notation used by the piece catalog
// into typed expression trees and evaluates them against the geometry
// primitives.
//
// Notation summary:
//
//	+        orthogonal unit steps
//	x        diagonal unit steps
//	n/m      one vector, m files right and n ranks forward
//	**A      the eight symmetric images of A
//	NA       A scaled by N (a leaper)
//	A_       A repeated until blocked (a rider)
//	AN       A repeated at most N times
//	m(A)     A may not capture
//	c(A)     A must capture
//	A,B      union
//	A>B      A, then B from every square A reaches over empty squares
//	o(B)     in A>B, B vectors with non-negative dot product with A
//	s(B)     in A>B, B vectors with positive dot product with A
//	n(B)     in A>B, B vectors with the largest dot product with A
//	p(B)     in A>B, B vectors perpendicular to A
//	K        macro names (upper case) expand to their bound notation
package notation

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Delimiters
	LPAREN // (
	RPAREN // )
	COMMA  // ,
	GT     // >

	// Directions
	PLUS  // +
	CROSS // x
	SLASH // /
	MINUS // -

	// Modifiers
	SYMMETRIC // **
	UNBOUNDED // _
	NUMBER    // 2, 14
	WRAPPER   // m, c, o, s, n, p
	MACRO     // K
)

var tokenNames = map[TokenType]string{
	ILLEGAL:   "ILLEGAL",
	EOF:       "end of input",
	LPAREN:    "(",
	RPAREN:    ")",
	COMMA:     ",",
	GT:        ">",
	PLUS:      "+",
	CROSS:     "x",
	SLASH:     "/",
	MINUS:     "-",
	SYMMETRIC: "**",
	UNBOUNDED: "_",
	NUMBER:    "number",
	WRAPPER:   "wrapper",
	MACRO:     "macro",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // Position in input
}

// Lexer tokenizes movement notation.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // next reading position
	ch      byte // current character
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Pos: l.pos}

	switch l.ch {
	case 0:
		tok.Type = EOF
		return tok
	case '(':
		tok.Type = LPAREN
	case ')':
		tok.Type = RPAREN
	case ',':
		tok.Type = COMMA
	case '>':
		tok.Type = GT
	case '+':
		tok.Type = PLUS
	case 'x':
		tok.Type = CROSS
	case '/':
		tok.Type = SLASH
	case '-':
		tok.Type = MINUS
	case '_':
		tok.Type = UNBOUNDED
	case '*':
		if l.peekChar() != '*' {
			tok.Type = ILLEGAL
			tok.Literal = "*"
			l.readChar()
			return tok
		}
		l.readChar()
		tok.Type = SYMMETRIC
		tok.Literal = "**"
		l.readChar()
		return tok
	case 'm', 'c', 'o', 's', 'n', 'p':
		tok.Type = WRAPPER
	default:
		switch {
		case isDigit(l.ch):
			tok.Type = NUMBER
			tok.Literal = l.readWhile(isDigit)
			return tok
		case isUpper(l.ch):
			tok.Type = MACRO
			tok.Literal = l.readWhile(isUpper)
			return tok
		}
		tok.Type = ILLEGAL
	}

	tok.Literal = string(l.ch)
	l.readChar()
	return tok
}

func (l *Lexer) readWhile(accept func(byte) bool) string {
	start := l.pos
	for accept(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isUpper(ch byte) bool {
	return ch >= 'A' && ch <= 'Z'
}
