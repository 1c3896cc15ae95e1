package parser

import (
	"bufio"
	"io"
	"strings"
)

// charClass classifies input bytes.
type charClass uint8

const (
	otherChar charClass = iota
	spaceChar
	alphaChar
	digitChar
	moveChar // punctuation allowed inside a move
)

// Character classification table
var chTab [256]charClass

func init() {
	initLexTables()
}

// initLexTables initializes the character classification table.
func initLexTables() {
	for _, c := range []byte{' ', '\t', '\r', '\n'} {
		chTab[c] = spaceChar
	}
	for c := byte('a'); c <= 'z'; c++ {
		chTab[c] = alphaChar
		chTab[c-32] = alphaChar
	}
	chTab['_'] = alphaChar
	for c := byte('0'); c <= '9'; c++ {
		chTab[c] = digitChar
	}
	for _, c := range []byte{'=', '@', '-', '+', '#'} {
		chTab[c] = moveChar
	}
}

// Lexer tokenizes game records.
type Lexer struct {
	reader  *bufio.Reader
	line    string
	pos     int
	lineNum uint
	eof     bool
}

// NewLexer creates a new lexer for the given reader.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{reader: bufio.NewReader(r)}
}

// readLine reads the next line from input.
func (l *Lexer) readLine() bool {
	if l.eof {
		return false
	}
	line, err := l.reader.ReadString('\n')
	if err != nil {
		l.eof = true
		if line == "" {
			return false
		}
	}
	l.line = line
	l.pos = 0
	l.lineNum++
	return true
}

// skipSpace moves past whitespace, reading lines as needed. It returns
// false at end of input.
func (l *Lexer) skipSpace() bool {
	for {
		for l.pos < len(l.line) && chTab[l.line[l.pos]] == spaceChar {
			l.pos++
		}
		if l.pos < len(l.line) {
			return true
		}
		if !l.readLine() {
			return false
		}
	}
}

// NextToken returns the next token. Tag brackets are consumed silently;
// a tag yields a TagToken followed by a StringToken.
func (l *Lexer) NextToken() *Token {
	for {
		if !l.skipSpace() {
			return &Token{Type: EOFToken, Line: l.lineNum}
		}
		ch := l.line[l.pos]
		switch {
		case ch == '[':
			l.pos++
			return l.gatherWord(TagToken)
		case ch == ']':
			l.pos++
			continue
		case ch == '"':
			return l.gatherString()
		case ch == '{':
			return l.gatherComment()
		case ch == ';':
			text := strings.TrimSpace(l.line[l.pos+1:])
			l.pos = len(l.line)
			return &Token{Type: CommentToken, Text: text, Line: l.lineNum}
		case ch == '*':
			l.pos++
			return &Token{Type: TerminatingResult, Text: "*", Line: l.lineNum}
		case chTab[ch] == digitChar:
			return l.gatherNumeric()
		case chTab[ch] == alphaChar:
			return l.gatherWord(MoveToken)
		default:
			l.pos++
			return &Token{Type: ErrorToken, Text: string(ch), Line: l.lineNum}
		}
	}
}

// gatherWord collects a tag name or a move.
func (l *Lexer) gatherWord(t TokenType) *Token {
	start := l.pos
	for l.pos < len(l.line) {
		c := chTab[l.line[l.pos]]
		if c == alphaChar || c == digitChar || (t == MoveToken && c == moveChar) {
			l.pos++
			continue
		}
		break
	}
	return &Token{Type: t, Text: l.line[start:l.pos], Line: l.lineNum}
}

// gatherString collects a quoted tag value, undoing backslash escapes.
func (l *Lexer) gatherString() *Token {
	line := l.lineNum
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.line) {
		ch := l.line[l.pos]
		l.pos++
		switch {
		case ch == '\\' && l.pos < len(l.line):
			sb.WriteByte(l.line[l.pos])
			l.pos++
		case ch == '"':
			return &Token{Type: StringToken, Text: sb.String(), Line: line}
		case ch == '\n' || ch == '\r':
			// Strings end at the line.
			l.pos = len(l.line)
		default:
			sb.WriteByte(ch)
		}
	}
	return &Token{Type: ErrorToken, Text: "unterminated string", Line: line}
}

// gatherComment collects a brace comment, which may span lines.
func (l *Lexer) gatherComment() *Token {
	line := l.lineNum
	l.pos++ // opening brace
	var sb strings.Builder
	for {
		if end := strings.IndexByte(l.line[l.pos:], '}'); end >= 0 {
			sb.WriteString(l.line[l.pos : l.pos+end])
			l.pos += end + 1
			return &Token{Type: CommentToken, Text: strings.TrimSpace(sb.String()), Line: line}
		}
		sb.WriteString(l.line[l.pos:])
		if !l.readLine() {
			return &Token{Type: ErrorToken, Text: "unterminated comment", Line: line}
		}
	}
}

// gatherNumeric collects a move number such as "12." or "12..." or a
// result.
func (l *Lexer) gatherNumeric() *Token {
	start := l.pos
	for l.pos < len(l.line) {
		ch := l.line[l.pos]
		if chTab[ch] == digitChar || ch == '-' || ch == '/' {
			l.pos++
			continue
		}
		break
	}
	text := l.line[start:l.pos]
	if results[text] {
		return &Token{Type: TerminatingResult, Text: text, Line: l.lineNum}
	}
	dots := 0
	for l.pos < len(l.line) && l.line[l.pos] == '.' {
		l.pos++
		dots++
	}
	if dots > 0 && !strings.ContainsAny(text, "-/") {
		return &Token{Type: MoveNumber, Text: text, Line: l.lineNum}
	}
	return &Token{Type: ErrorToken, Text: l.line[start:l.pos], Line: l.lineNum}
}

// LineNumber returns the current line number.
func (l *Lexer) LineNumber() uint {
	return l.lineNum
}
