package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/testutil"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

func lookup(t testing.TB, id string) *variant.Variant {
	t.Helper()
	v, err := variant.MustDefault().Lookup(id)
	require.NoError(t, err)
	return v
}

// startGame starts variant id from its starting array.
func startGame(t testing.TB, id string) *Game {
	t.Helper()
	g, err := NewGame(lookup(t, id), catalog.MustDefault())
	require.NoError(t, err)
	return g
}

// gameOn starts variant id from the given placements without castling.
func gameOn(t testing.TB, id string, turn chess.Colour, placements ...string) *Game {
	t.Helper()
	v := lookup(t, id)
	g, err := NewGameFromFrame(v, catalog.MustDefault(), Frame{
		Board:   testutil.MustBoard(t, v.Size, placements...),
		Turn:    turn,
		Castled: [2]int{-1, -1},
	}, nil)
	require.NoError(t, err)
	return g
}

func fenGame(t testing.TB, fen string) *Game {
	t.Helper()
	g, err := NewGameFromFEN(fen)
	require.NoError(t, err)
	return g
}

// play applies coordinate moves such as "e2e4", completing promotions with
// the variant's last choice.
func play(t testing.TB, g *Game, moves ...string) {
	t.Helper()
	for _, s := range moves {
		from, to := split(t, s)
		_, err := g.Play(Move{From: from, To: to})
		require.NoError(t, err, "Play(%s)", s)
	}
}

func split(t testing.TB, s string) (chess.Position, chess.Position) {
	t.Helper()
	for i := 2; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			from, err := chess.ParsePosition(s[:i])
			require.NoError(t, err)
			to, err := chess.ParsePosition(s[i:])
			require.NoError(t, err)
			return from, to
		}
	}
	t.Fatalf("bad move %q", s)
	return chess.Position{}, chess.Position{}
}
