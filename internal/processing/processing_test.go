package processing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/engine"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

func playGame(t *testing.T, id string, moves ...string) *engine.Game {
	t.Helper()
	v, err := variant.MustDefault().Lookup(id)
	require.NoError(t, err)
	g, err := engine.NewGame(v, catalog.MustDefault())
	require.NoError(t, err)
	for _, s := range moves {
		m := engine.Move{From: chess.MustParsePosition(s[:2]), To: chess.MustParsePosition(s[2:])}
		_, err := g.Play(m)
		require.NoError(t, err, "Play(%s)", s)
	}
	return g
}

var knightShuffle = []string{"g1f3", "g8f6", "f3g1", "f6g8"}

// TestAnalyzeGame verifies game analysis functionality
func TestAnalyzeGame(t *testing.T) {
	g := playGame(t, "standard", "e2e4", "d7d5", "e4d5", "d8d5")
	analysis := AnalyzeGame(g)

	if analysis.Plies != 4 {
		t.Errorf("Plies = %d, want 4", analysis.Plies)
	}
	if len(analysis.Positions) != 5 {
		t.Errorf("got %d positions, want 5", len(analysis.Positions))
	}
	if analysis.Lost != [2]int{1, 1} {
		t.Errorf("Lost = %v, want [1 1]", analysis.Lost)
	}
	if analysis.MaterialBalance() != 0 {
		t.Errorf("MaterialBalance() = %v, want 0", analysis.MaterialBalance())
	}
	if analysis.RepetitionDetected() {
		t.Error("no position repeats")
	}
}

// TestAnalyzeGame_Repetition verifies repetition detection
func TestAnalyzeGame_Repetition(t *testing.T) {
	var moves []string
	for i := 0; i < 2; i++ {
		moves = append(moves, knightShuffle...)
	}
	analysis := AnalyzeGame(playGame(t, "standard", moves...))

	if !analysis.HasRepetition {
		t.Fatal("Expected repetition to be detected")
	}
	if analysis.RepetitionPly != 8 {
		t.Errorf("RepetitionPly = %d, want 8", analysis.RepetitionPly)
	}
	if analysis.Positions[0] != analysis.Positions[4] {
		t.Error("returning the knights should restore the start position")
	}
}

func TestAnalyzeGame_UpToCurrentPly(t *testing.T) {
	g := playGame(t, "standard", "e2e4", "e7e5", "d2d4")
	require.NoError(t, g.Undo())

	analysis := AnalyzeGame(g)
	if analysis.Plies != 2 || len(analysis.Positions) != 3 {
		t.Errorf("analysis covers %d plies and %d positions, want 2 and 3",
			analysis.Plies, len(analysis.Positions))
	}
}

func TestAnalyzeGame_Castled(t *testing.T) {
	g := playGame(t, "standard", "e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6")
	kingside := chess.KingSide
	_, err := g.Play(engine.Move{Castle: &kingside})
	require.NoError(t, err)

	analysis := AnalyzeGame(g)
	if !analysis.Castled[chess.White] || analysis.Castled[chess.Black] {
		t.Errorf("Castled = %v, want [true false]", analysis.Castled)
	}
}

func TestMaterial(t *testing.T) {
	g := playGame(t, "standard")
	got := Material(g.Board(), g.Rules())
	if got[chess.White] != got[chess.Black] || got[chess.White] <= 0 {
		t.Errorf("Material() = %v, want equal positive sides", got)
	}
}

func TestTracker(t *testing.T) {
	g := playGame(t, "standard")
	tracker := NewTracker(g.Rules())
	if n := tracker.Add(g.Frame()); n != 1 {
		t.Fatalf("Add() = %d, want 1", n)
	}

	tests := []struct {
		move     string
		want     int
		repeated bool
	}{
		{"g1f3", 1, false},
		{"g8f6", 1, false},
		{"f3g1", 1, false},
		{"f6g8", 2, false},
		{"g1f3", 2, false},
		{"g8f6", 2, false},
		{"f3g1", 2, false},
		{"f6g8", 3, true},
	}
	for _, tt := range tests {
		m := engine.Move{From: chess.MustParsePosition(tt.move[:2]), To: chess.MustParsePosition(tt.move[2:])}
		_, err := g.Play(m)
		require.NoError(t, err)
		if got := tracker.Add(g.Frame()); got != tt.want {
			t.Errorf("Add() after %s = %d, want %d", tt.move, got, tt.want)
		}
		if got := tracker.Repeated(); got != tt.repeated {
			t.Errorf("Repeated() after %s = %v, want %v", tt.move, got, tt.repeated)
		}
	}
}

func TestTracker_MoveCounters(t *testing.T) {
	g := playGame(t, "standard")
	tracker := NewTracker(g.Rules())

	withCount := func(square string, count int) engine.Frame {
		f := g.Frame()
		f.Board = f.Board.Clone()
		p := chess.MustParsePosition(square)
		pc, ok := f.Board.At(p)
		require.True(t, ok, "no piece on %s", square)
		pc.Count = count
		f.Board.Set(p, pc)
		return f
	}

	tests := []struct {
		name   string
		a, b   engine.Frame
		sameAs bool
	}{
		{"knight counter ignored", withCount("g1", 0), withCount("g1", 4), true},
		{"pawn moved twice or once", withCount("e2", 1), withCount("e2", 2), true},
		{"pawn unmoved differs", withCount("e2", 0), withCount("e2", 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tracker.key(tt.a) == tracker.key(tt.b)
			if got != tt.sameAs {
				t.Errorf("keys equal = %v, want %v", got, tt.sameAs)
			}
		})
	}
}
