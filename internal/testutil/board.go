package testutil

import (
	"strings"
	"testing"

	"github.com/lgbarn/fairychess-go/internal/chess"
)

// ParsePlacement parses a placement such as "wK e1" or "bGr d4": a colour
// letter, the kind id, a space, and the square.
func ParsePlacement(s string) (chess.Colour, chess.Kind, chess.Position, bool) {
	piece, square, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok || len(piece) < 2 {
		return chess.White, "", chess.Position{}, false
	}
	colour, err := chess.ParseColour(piece[:1])
	if err != nil {
		return chess.White, "", chess.Position{}, false
	}
	pos, err := chess.ParsePosition(square)
	if err != nil {
		return chess.White, "", chess.Position{}, false
	}
	return colour, chess.Kind(piece[1:]), pos, true
}

// MustBoard builds a board of the given size from placements in
// ParsePlacement form. It calls t.Fatal on a malformed placement.
func MustBoard(t testing.TB, size int, placements ...string) *chess.Board {
	t.Helper()
	b := chess.NewBoard(size)
	for _, s := range placements {
		colour, kind, pos, ok := ParsePlacement(s)
		if !ok || !b.InBounds(pos) {
			t.Fatalf("invalid placement %q", s)
		}
		b.Place(pos, colour, kind)
	}
	return b
}

// Squares parses algebraic squares, calling t.Fatal on error.
func Squares(t testing.TB, squares ...string) []chess.Position {
	t.Helper()
	out := make([]chess.Position, len(squares))
	for i, s := range squares {
		p, err := chess.ParsePosition(s)
		if err != nil {
			t.Fatalf("Squares(%q): %v", s, err)
		}
		out[i] = p
	}
	return out
}

// Sq parses a single algebraic square known to be valid.
func Sq(s string) chess.Position {
	return chess.MustParsePosition(s)
}
