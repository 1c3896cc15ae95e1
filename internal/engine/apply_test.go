package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgbarn/fairychess-go/internal/chess"
	fcerrors "github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/testutil"
)

func TestApplyMove_Errors(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     error
	}{
		{"empty square", "e4", "e5", fcerrors.ErrEmptySquare},
		{"opponent piece", "e7", "e5", fcerrors.ErrNotYourTurn},
		{"illegal destination", "e2", "e5", fcerrors.ErrIllegalMove},
		{"own piece", "d1", "d2", fcerrors.ErrIllegalMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := startGame(t, "standard")
			_, err := g.ApplyMove(testutil.Sq(tt.from), testutil.Sq(tt.to))
			if !errors.Is(err, tt.want) {
				t.Errorf("ApplyMove(%s, %s) error = %v, want %v", tt.from, tt.to, err, tt.want)
			}
			assert.Equal(t, 0, g.Ply())
			assert.Equal(t, chess.White, g.Turn())
		})
	}
}

func TestApplyMove_Basic(t *testing.T) {
	g := startGame(t, "standard")
	out, err := g.ApplyMove(testutil.Sq("g1"), testutil.Sq("f3"))
	require.NoError(t, err)

	assert.Equal(t, InPlay, out.Phase)
	assert.Empty(t, out.Captured)
	assert.Equal(t, 1, g.Ply())
	assert.Equal(t, chess.Black, g.Turn())
	assert.True(t, g.Board().IsEmpty(testutil.Sq("g1")))

	knight, ok := g.Board().At(testutil.Sq("f3"))
	require.True(t, ok)
	assert.Equal(t, chess.Knight, knight.Kind)
	assert.Equal(t, 1, knight.Count)
}

func TestApplyMove_ScholarsMate(t *testing.T) {
	g := startGame(t, "standard")
	play(t, g, "e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6")
	assert.False(t, g.IsCheck())

	out, err := g.ApplyMove(testutil.Sq("h5"), testutil.Sq("f7"))
	require.NoError(t, err)
	require.Len(t, out.Captured, 1)
	assert.Equal(t, chess.Pawn, out.Captured[0].Kind)

	assert.Equal(t, GameOver, out.Phase)
	assert.True(t, g.IsCheck())
	assert.True(t, g.IsCheckmate())
	assert.False(t, g.IsStalemate())

	moves, err := g.Moves(chess.Black)
	require.NoError(t, err)
	assert.Empty(t, moves)

	_, err = g.ApplyMove(testutil.Sq("e8"), testutil.Sq("f7"))
	assert.True(t, errors.Is(err, fcerrors.ErrGameOver))
}

func TestApplyMove_Stalemate(t *testing.T) {
	g := fenGame(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	assert.False(t, g.IsCheck())
	assert.True(t, g.IsStalemate())
	assert.False(t, g.IsCheckmate())
	assert.Equal(t, GameOver, g.Phase())
}

func TestEnPassant_Window(t *testing.T) {
	g := startGame(t, "standard")
	play(t, g, "e2e4", "a7a6", "e4e5", "d7d5")
	testutil.AssertSquares(t, mustLegal(t, g, "e5"), []string{"e6", "d6"})
	assert.Equal(t, map[int]chess.Position{1: testutil.Sq("e4"), 4: testutil.Sq("d5")}, g.DoubleSteps())

	// The capture is gone once another ply has passed.
	alt := g.Clone()
	play(t, alt, "h2h3", "h7h6")
	testutil.AssertSquares(t, mustLegal(t, alt, "e5"), []string{"e6"})

	out, err := g.ApplyMove(testutil.Sq("e5"), testutil.Sq("d6"))
	require.NoError(t, err)
	require.Len(t, out.Captured, 1)
	assert.Equal(t, chess.Pawn, out.Captured[0].Kind)
	assert.True(t, g.Board().IsEmpty(testutil.Sq("d5")))
	pawn, ok := g.Board().At(testutil.Sq("d6"))
	require.True(t, ok)
	assert.Equal(t, chess.White, pawn.Colour)
}

func TestEnPassant_SingleStepGivesNone(t *testing.T) {
	g := startGame(t, "standard")
	play(t, g, "e2e4", "d7d6", "e4e5", "f7f6", "a2a3", "d6d5")
	testutil.AssertSquares(t, mustLegal(t, g, "e5"), []string{"e6", "f6"})
}

func TestPromotion(t *testing.T) {
	g := gameOn(t, "standard", chess.White, "wK e1", "bK h1", "wP a7")
	pawn, _ := g.Board().At(testutil.Sq("a7"))

	out, err := g.ApplyMove(testutil.Sq("a7"), testutil.Sq("a8"))
	require.NoError(t, err)
	assert.Equal(t, PromotionPending, out.Phase)
	assert.Equal(t, chess.White, g.Turn())

	_, err = g.ApplyMove(testutil.Sq("e1"), testutil.Sq("e2"))
	assert.True(t, errors.Is(err, fcerrors.ErrPendingChoice))
	_, err = g.ChoosePromotion("Gr")
	assert.True(t, errors.Is(err, fcerrors.ErrIllegalMove))
	_, err = g.ChoosePromotion(chess.King)
	assert.True(t, errors.Is(err, fcerrors.ErrIllegalMove))

	out, err = g.ChoosePromotion(chess.Queen)
	require.NoError(t, err)
	assert.Equal(t, chess.Queen, out.Promotion)
	assert.Equal(t, chess.Black, g.Turn())

	queen, ok := g.Board().At(testutil.Sq("a8"))
	require.True(t, ok)
	assert.Equal(t, chess.Queen, queen.Kind)
	assert.Equal(t, pawn.ID, queen.ID)
	assert.True(t, g.IsCheck())

	_, err = g.ChoosePromotion(chess.Queen)
	assert.True(t, errors.Is(err, fcerrors.ErrNoPendingChoice))
}

func TestPromotion_UndoCancels(t *testing.T) {
	g := gameOn(t, "standard", chess.White, "wK e1", "bK h3", "wP a7")
	_, err := g.ApplyMove(testutil.Sq("a7"), testutil.Sq("a8"))
	require.NoError(t, err)

	require.NoError(t, g.Undo())
	assert.Equal(t, InPlay, g.Phase())
	assert.Equal(t, 0, g.Ply())
	pawn, ok := g.Board().At(testutil.Sq("a7"))
	require.True(t, ok)
	assert.Equal(t, chess.Pawn, pawn.Kind)
	assert.Equal(t, 0, pawn.Count)
}

func TestPlay_PromotionDefaultsToLastChoice(t *testing.T) {
	g := gameOn(t, "standard", chess.White, "wK e1", "bK h3", "wP a7")
	out, err := g.Play(Move{From: testutil.Sq("a7"), To: testutil.Sq("a8")})
	require.NoError(t, err)
	assert.Equal(t, chess.Knight, out.Promotion)
}

func TestArcher_Fire(t *testing.T) {
	setup := func(t *testing.T) *Game {
		g := gameOn(t, "archers", chess.White, "wK a1", "bK j10", "wAr d4", "bN d8", "bP g5")
		targets, err := g.FireTargets(testutil.Sq("d4"), testutil.Sq("d5"))
		require.NoError(t, err)
		testutil.AssertSquares(t, targets, []string{"d8", "g5"})

		out, err := g.ApplyMove(testutil.Sq("d4"), testutil.Sq("d5"))
		require.NoError(t, err)
		require.Equal(t, FirePending, out.Phase)
		testutil.AssertSquares(t, g.PendingTargets(), []string{"d8", "g5"})
		return g
	}

	t.Run("fire", func(t *testing.T) {
		g := setup(t)
		_, err := g.Fire(testutil.Sq("e5"))
		assert.True(t, errors.Is(err, fcerrors.ErrIllegalMove))

		out, err := g.Fire(testutil.Sq("g5"))
		require.NoError(t, err)
		require.Len(t, out.Captured, 1)
		assert.Equal(t, chess.Pawn, out.Captured[0].Kind)
		assert.Equal(t, testutil.Sq("g5"), *out.Fired)
		assert.True(t, g.Board().IsEmpty(testutil.Sq("g5")))
		assert.Equal(t, chess.Black, g.Turn())
	})

	t.Run("hold", func(t *testing.T) {
		g := setup(t)
		_, err := g.HoldFire()
		require.NoError(t, err)
		assert.Equal(t, 5, g.Board().Len())
		assert.False(t, g.Board().IsEmpty(testutil.Sq("g5")))
		assert.False(t, g.Board().IsEmpty(testutil.Sq("d8")))
	})

	t.Run("moves list every shot", func(t *testing.T) {
		g := gameOn(t, "archers", chess.White, "wK a1", "bK j10", "wAr d4", "bN d8", "bP g5")
		moves, err := g.Moves(chess.White)
		require.NoError(t, err)
		var archer []string
		for _, m := range moves {
			if m.From == testutil.Sq("d4") {
				archer = append(archer, m.String())
			}
		}
		assert.ElementsMatch(t, []string{"d4d5", "d4d5@d8", "d4d5@g5"}, archer)
	})
}

func TestArcher_ForcedFire(t *testing.T) {
	// The rook on a7 checks; only the arrow from c5 removes it.
	g := gameOn(t, "archers", chess.White, "wK a1", "bR a7", "bK j10", "wAr c4")
	require.True(t, g.IsCheck())
	testutil.AssertSquares(t, mustLegal(t, g, "c4"), []string{"c5"})

	moves, err := g.Moves(chess.White)
	require.NoError(t, err)
	var archer []string
	for _, m := range moves {
		if m.From == testutil.Sq("c4") {
			archer = append(archer, m.String())
		}
	}
	assert.Equal(t, []string{"c4c5@a7"}, archer)

	_, err = g.ApplyMove(testutil.Sq("c4"), testutil.Sq("c5"))
	require.NoError(t, err)
	_, err = g.HoldFire()
	assert.True(t, errors.Is(err, fcerrors.ErrIllegalMove))

	_, err = g.Fire(testutil.Sq("a7"))
	require.NoError(t, err)
	assert.Equal(t, chess.Black, g.Turn())
}
