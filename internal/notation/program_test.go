package notation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgbarn/fairychess-go/internal/chess"
	fcerrors "github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/geometry"
	"github.com/lgbarn/fairychess-go/internal/testutil"
)

func movesOf(t *testing.T, src string, b *chess.Board, from string) chess.PositionSet {
	t.Helper()
	prog, err := Compile(src, WithBoardSize(b.Size()))
	require.NoError(t, err, "Compile(%q)", src)
	return prog.Moves(geometry.Scope{Board: b, Colour: chess.White}, testutil.Sq(from))
}

func TestProgram_BasicPieces(t *testing.T) {
	empty := testutil.MustBoard(t, 8, "wX d4")

	tests := []struct {
		name string
		src  string
		want int
	}{
		{"king", "K", 8},
		{"knight", "**2/1", 8},
		{"rook", "+_", 14},
		{"bishop", "x_", 13},
		{"queen", "K_", 27},
		{"knightess", "2+,2x", 8},
		{"mist", "+2", 8},
		{"nightrider", "**2/1_", 12},
		{"giraffe", "**4/1", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := movesOf(t, tt.src, empty, "d4")
			assert.Equal(t, tt.want, got.Len(), "moves of %q: %v", tt.src, got.Strings())
		})
	}
}

func TestProgram_Wrappers(t *testing.T) {
	b := testutil.MustBoard(t, 8, "wX d4", "bP e5", "wP c3")

	testutil.AssertSquares(t, movesOf(t, "m(K)", b, "d4"),
		[]string{"c4", "c5", "d3", "d5", "e3", "e4"})
	testutil.AssertSquares(t, movesOf(t, "c(K)", b, "d4"), []string{"e5"})
	testutil.AssertSquares(t, movesOf(t, "c(x_)", b, "d4"), []string{"e5"})
}

func TestProgram_Sequence(t *testing.T) {
	empty := testutil.MustBoard(t, 8, "wX d4")

	// Esquire: a diagonal step, then an orthogonal step outward.
	testutil.AssertSquares(t, movesOf(t, "x>o(+)", empty, "d4"),
		[]string{"e6", "f5", "f3", "e2", "c2", "b3", "b5", "c6"})

	// Bounded rider after a knight leap, outward only.
	corner := testutil.MustBoard(t, 8, "wX a1")
	testutil.AssertSquares(t, movesOf(t, "**2/1>o(+2)", corner, "a1"),
		[]string{"b4", "b5", "c3", "d3", "c4", "d2", "e2"})

	// Nearest filter keeps only the diagonal closest to the knight leap.
	testutil.AssertSquares(t, movesOf(t, "**2/1>n(x)", corner, "a1"),
		[]string{"c4", "d3"})

	// A blocked first step closes the sequence.
	blocked := testutil.MustBoard(t, 8, "wX d4", "bP e5")
	got := movesOf(t, "x>o(+)", blocked, "d4")
	assert.False(t, got.Has(testutil.Sq("e6")))
	assert.False(t, got.Has(testutil.Sq("f5")))
	assert.True(t, got.Has(testutil.Sq("c6")))
}

func TestProgram_RiderFirstPart(t *testing.T) {
	// Duke-like: ride diagonally, then one orthogonal step.
	b := testutil.MustBoard(t, 5, "wX a1", "bP c3")
	got := movesOf(t, "x_>+", b, "a1")

	// Only b2 is open on the diagonal; c3 blocks the rest of the path.
	testutil.AssertSquares(t, got, []string{"a2", "b1", "b3", "c2"})
}

func TestProgram_FilterModes(t *testing.T) {
	base := chess.Off(0, 1)
	king := geometry.Unique(append(geometry.Dir8(0, 1), geometry.Dir8(1, 1)...))

	tests := []struct {
		mode FilterMode
		want int
	}{
		{Outward, 5},
		{StrictOutward, 3},
		{Nearest, 3},
		{Perpendicular, 2},
	}

	for _, tt := range tests {
		got := tt.mode.keep(base, king)
		assert.Len(t, got, tt.want, "mode %c kept %v", tt.mode, got)
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile("x_>+")
	assert.True(t, errors.Is(err, fcerrors.ErrMissingBoardSize), "error = %v", err)

	_, err = Compile("x_>+", WithBoardSize(8))
	assert.NoError(t, err)

	// A bounded first part does not need the board size.
	_, err = Compile("K2>s(x)")
	assert.NoError(t, err)

	_, err = Compile("o(+)")
	assert.True(t, errors.Is(err, fcerrors.ErrInvalidNotation), "error = %v", err)

	_, err = Compile("+>x>+")
	assert.True(t, errors.Is(err, fcerrors.ErrInvalidNotation), "error = %v", err)
}

func TestCompile_CustomMacro(t *testing.T) {
	prog, err := Compile("W>s(F)", WithMacro("W", "+"), WithMacro("F", "x"))
	require.NoError(t, err)
	assert.Equal(t, "W>s(F)", prog.String())

	b := testutil.MustBoard(t, 8, "wX d4")
	got := prog.Moves(geometry.Scope{Board: b, Colour: chess.White}, testutil.Sq("d4"))
	assert.Equal(t, 8, got.Len())
}

func TestProgram_Mirror(t *testing.T) {
	prog := MustCompile("1/0")
	b := testutil.MustBoard(t, 8, "wX d4")
	pr := geometry.Scope{Board: b, Colour: chess.White}

	testutil.AssertSquares(t, prog.Moves(pr, testutil.Sq("d4")), []string{"d5"})
	testutil.AssertSquares(t, prog.Mirror().Moves(pr, testutil.Sq("d4")), []string{"d3"})
	assert.Equal(t, []chess.Offset{chess.Off(0, -1)}, prog.Mirror().Vectors())
}

func TestProgram_Vectors(t *testing.T) {
	assert.Len(t, MustCompile("K").Vectors(), 8)
	assert.Len(t, MustCompile("**2/1_").Vectors(), 8)
	assert.ElementsMatch(t,
		[]chess.Offset{chess.Off(2, 0), chess.Off(0, 2), chess.Off(-2, 0), chess.Off(0, -2)},
		MustCompile("2+").Vectors())
}
