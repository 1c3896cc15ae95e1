package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/engine"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

func seeded(seed uint64, opts ...Option) *Searcher {
	return New(append([]Option{WithRand(rand.New(rand.NewSource(seed)))}, opts...)...)
}

func TestComputeMove_TakesHangingQueen(t *testing.T) {
	for _, foresight := range []bool{false, true} {
		g := fenGame(t, "4k3/8/8/8/q7/8/8/R3K3 w - - 0 1")
		d, err := seeded(1).ComputeMove(context.Background(), g, chess.White, 1, foresight)
		require.NoError(t, err)
		assert.Equal(t, "a1a4", d.Move.String(), "foresight=%v", foresight)
		assert.Positive(t, d.Nodes)
	}
}

func TestComputeMove_FindsMate(t *testing.T) {
	for _, foresight := range []bool{false, true} {
		g := fenGame(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
		d, err := seeded(2).ComputeMove(context.Background(), g, chess.White, 1, foresight)
		require.NoError(t, err)
		assert.Equal(t, "a1a8", d.Move.String(), "foresight=%v", foresight)
		assert.GreaterOrEqual(t, d.Score, mateScore)
	}
}

func TestComputeMove_AvoidsMateInOne(t *testing.T) {
	// Black threatens Ra1#; only foresight sees it.
	g := fenGame(t, "r5k1/8/8/8/8/8/5PPP/6K1 w - - 0 1")
	d, err := seeded(3).ComputeMove(context.Background(), g, chess.White, 1, true)
	require.NoError(t, err)

	_, err = g.Play(d.Move)
	require.NoError(t, err)
	_, err = g.Play(engine.Move{From: chess.MustParsePosition("a8"), To: chess.MustParsePosition("a1")})
	if err == nil {
		assert.False(t, g.IsCheckmate(), "%s allows Ra1#", d.Move)
	}
}

func TestComputeMove_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		colour  chess.Colour
		level   int
		wantErr error
	}{
		{
			name:    "checkmate",
			fen:     "r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 4",
			colour:  chess.Black,
			level:   1,
			wantErr: errors.ErrNoLegalMoves,
		},
		{
			name:    "stalemate",
			fen:     "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
			colour:  chess.Black,
			level:   1,
			wantErr: errors.ErrNoLegalMoves,
		},
		{
			name:    "not to move",
			fen:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			colour:  chess.Black,
			level:   1,
			wantErr: errors.ErrNotYourTurn,
		},
		{
			name:    "level too low",
			fen:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			colour:  chess.White,
			level:   0,
			wantErr: errors.ErrInvalidConfig,
		},
		{
			name:    "level too high",
			fen:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			colour:  chess.White,
			level:   6,
			wantErr: errors.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := fenGame(t, tt.fen)
			_, err := seeded(1).ComputeMove(context.Background(), g, tt.colour, tt.level, false)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestComputeMove_PendingChoice(t *testing.T) {
	g := fenGame(t, "7k/P7/8/8/8/8/8/K7 w - - 0 1")
	out, err := g.ApplyMove(chess.MustParsePosition("a7"), chess.MustParsePosition("a8"))
	require.NoError(t, err)
	require.Equal(t, engine.PromotionPending, out.Phase)

	_, err = seeded(1).ComputeMove(context.Background(), g, chess.White, 1, false)
	assert.ErrorIs(t, err, errors.ErrPendingChoice)
}

func TestComputeMove_Cancelled(t *testing.T) {
	g := fenGame(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := seeded(1).ComputeMove(ctx, g, chess.White, 1, true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeMove_LeavesGameUntouched(t *testing.T) {
	g := fenGame(t, "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3")
	before := g.Board().Clone()
	ply := g.Ply()

	_, err := seeded(4, WithWorkers(2)).ComputeMove(context.Background(), g, chess.Black, 2, false)
	require.NoError(t, err)

	assert.True(t, before.Equal(g.Board()))
	assert.Equal(t, ply, g.Ply())
	assert.Equal(t, chess.Black, g.Turn())
}

func TestComputeMove_WorkersAgree(t *testing.T) {
	var picks []string
	for _, workers := range []int{1, 4} {
		g := fenGame(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
		d, err := seeded(5, WithWorkers(workers)).ComputeMove(context.Background(), g, chess.White, 1, false)
		require.NoError(t, err)
		picks = append(picks, d.Move.String())
	}
	assert.Equal(t, picks[0], picks[1])
}

func TestScoreRoot_MoreWorkersThanMoves(t *testing.T) {
	g := fenGame(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	moves, err := g.Moves(chess.White)
	require.NoError(t, err)
	moves = moves[:3]

	s := seeded(1, WithWorkers(8))
	results, err := s.scoreRoot(context.Background(), g, moves, func(_ *engine.Game, m engine.Move) (float64, uint64, error) {
		return float64(m.To.Rank), 1, nil
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, moves[i], r.Move)
	}
}

func TestComputeMove_FairyVariants(t *testing.T) {
	reg := variant.MustDefault()
	for _, id := range []string{"standard", "archers", "growing"} {
		t.Run(id, func(t *testing.T) {
			v, err := reg.Lookup(id)
			require.NoError(t, err)
			g, err := engine.NewGame(v, catalog.MustDefault())
			require.NoError(t, err)

			s := seeded(6, WithWorkers(2))
			for ply := 0; ply < 4 && g.Phase() == engine.InPlay; ply++ {
				d, err := s.ComputeMove(context.Background(), g, g.Turn(), 2, false)
				require.NoError(t, err)
				_, err = g.Play(d.Move)
				require.NoError(t, err, "Play(%s)", d.Move)
			}
			// A greedy pick may mate early: growing's knacci leaper can
			// strike from its opening square.
			if g.Ply() < 4 {
				assert.True(t, g.IsCheckmate() || g.IsStalemate(), "stopped at ply %d in play", g.Ply())
			} else {
				assert.Equal(t, 4, g.Ply())
			}
		})
	}
}

func BenchmarkComputeMove(b *testing.B) {
	g, err := engine.NewGameFromFEN("r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3")
	if err != nil {
		b.Fatal(err)
	}
	s := seeded(7)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.ComputeMove(context.Background(), g, chess.Black, 3, false); err != nil {
			b.Fatal(err)
		}
	}
}
