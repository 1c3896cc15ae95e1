package notation

import (
	"testing"
)

func TestLexer_Tokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"+", []TokenType{PLUS, EOF}},
		{"x_", []TokenType{CROSS, UNBOUNDED, EOF}},
		{"**2/1", []TokenType{SYMMETRIC, NUMBER, SLASH, NUMBER, EOF}},
		{"-1/0", []TokenType{MINUS, NUMBER, SLASH, NUMBER, EOF}},
		{"2+, 2x", []TokenType{NUMBER, PLUS, COMMA, NUMBER, CROSS, EOF}},
		{"x>o(+_)", []TokenType{CROSS, GT, WRAPPER, LPAREN, PLUS, UNBOUNDED, RPAREN, EOF}},
		{"K>s(**2/1)", []TokenType{MACRO, GT, WRAPPER, LPAREN, SYMMETRIC, NUMBER, SLASH, NUMBER, RPAREN, EOF}},
		{"*", []TokenType{ILLEGAL, EOF}},
		{"?", []TokenType{ILLEGAL, EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := NewLexer(tt.input)
			for i, want := range tt.expected {
				tok := l.NextToken()
				if tok.Type != want {
					t.Fatalf("token[%d] = %v (%q), want %v", i, tok.Type, tok.Literal, want)
				}
			}
		})
	}
}

func TestLexer_Literals(t *testing.T) {
	l := NewLexer("14/-3 KQ m")
	want := []string{"14", "/", "-", "3", "KQ", "m", ""}
	for i, lit := range want {
		tok := l.NextToken()
		if tok.Literal != lit {
			t.Errorf("token[%d].Literal = %q, want %q", i, tok.Literal, lit)
		}
	}
}

func TestLexer_Positions(t *testing.T) {
	l := NewLexer("x > +")
	wantPos := []int{0, 2, 4, 5}
	for i, pos := range wantPos {
		if tok := l.NextToken(); tok.Pos != pos {
			t.Errorf("token[%d].Pos = %d, want %d", i, tok.Pos, pos)
		}
	}
}
