package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/engine"
	fcerrors "github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/search"
	"github.com/lgbarn/fairychess-go/internal/testutil"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

func newSession(opts ...Option) *Session {
	searcher := search.New(search.WithRand(rand.New(rand.NewSource(7))), search.WithWorkers(2))
	return New(variant.MustDefault(), catalog.MustDefault(), append([]Option{WithSearcher(searcher)}, opts...)...)
}

// started returns a session playing id in the given mode.
func started(t *testing.T, id string, mode Mode, player chess.Colour) *Session {
	t.Helper()
	s := newSession()
	require.NoError(t, s.SelectVariant(id))
	require.NoError(t, s.SetMode(mode))
	require.NoError(t, s.SetPlayer(player))
	require.NoError(t, s.Start())
	return s
}

func move(t *testing.T, s *Session, moves ...string) {
	t.Helper()
	for _, m := range moves {
		_, err := s.Move(testutil.Sq(m[:2]), testutil.Sq(m[2:]))
		require.NoError(t, err, "Move(%s)", m)
	}
}

func TestSession_Flow(t *testing.T) {
	s := newSession()
	assert.Equal(t, VariantSelect, s.State())
	assert.NotEmpty(t, s.Variants())

	_, err := s.Move(testutil.Sq("e2"), testutil.Sq("e4"))
	assert.True(t, errors.Is(err, fcerrors.ErrWrongState))
	assert.True(t, errors.Is(s.Start(), fcerrors.ErrWrongState))

	assert.Error(t, s.SelectVariant("no-such-variant"))
	assert.Equal(t, VariantSelect, s.State())

	require.NoError(t, s.SelectVariant("standard"))
	assert.Equal(t, ColorModeSelect, s.State())
	assert.Equal(t, "standard", s.Variant().ID)

	require.NoError(t, s.Back())
	assert.Equal(t, VariantSelect, s.State())
	assert.Nil(t, s.Variant())

	require.NoError(t, s.SelectVariant("gardner"))
	assert.True(t, errors.Is(s.SetLevel(3), fcerrors.ErrWrongState), "level in PvP")
	require.NoError(t, s.SetMode(PvC))
	assert.Equal(t, search.MinLevel, s.Settings().Level)
	assert.True(t, errors.Is(s.SetLevel(9), fcerrors.ErrInvalidConfig))
	require.NoError(t, s.SetLevel(2))
	require.NoError(t, s.SetForesight(true))
	require.NoError(t, s.Start())

	assert.Equal(t, InPlay, s.State())
	assert.Equal(t, Settings{Mode: PvC, Player: chess.White, Level: 2, Foresight: true}, s.Settings())
	assert.Equal(t, 5, s.Game().Board().Size())

	s.Reset()
	assert.Equal(t, VariantSelect, s.State())
	assert.Nil(t, s.Game())
	assert.Equal(t, PvC, s.Settings().Mode)
}

func TestSession_SetModeClearsLevel(t *testing.T) {
	s := newSession()
	require.NoError(t, s.SelectVariant("standard"))
	require.NoError(t, s.SetMode(PvC))
	require.NoError(t, s.SetLevel(4))
	require.NoError(t, s.SetMode(PvP))
	assert.Equal(t, 0, s.Settings().Level)
}

func TestSession_GameOverAndUndo(t *testing.T) {
	s := started(t, "standard", PvP, chess.White)
	move(t, s, "e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7")

	assert.Equal(t, GameOver, s.State())
	assert.True(t, s.Game().IsCheckmate())
	_, err := s.Move(testutil.Sq("e8"), testutil.Sq("f7"))
	assert.True(t, errors.Is(err, fcerrors.ErrGameOver))
	_, err = s.PlayAuto(context.Background())
	assert.True(t, errors.Is(err, fcerrors.ErrWrongState))

	require.NoError(t, s.Undo())
	assert.Equal(t, InPlay, s.State())
	assert.Equal(t, 6, s.Game().Ply())

	require.NoError(t, s.Redo())
	assert.Equal(t, GameOver, s.State())
}

func TestSession_AgainstComputer(t *testing.T) {
	ctx := context.Background()
	s := started(t, "standard", PvC, chess.White)
	assert.False(t, s.ComputerToMove())

	_, err := s.PlayComputer(ctx)
	assert.True(t, errors.Is(err, fcerrors.ErrNotYourTurn))

	move(t, s, "e2e4")
	assert.True(t, s.ComputerToMove())
	_, err = s.Move(testutil.Sq("e7"), testutil.Sq("e5"))
	assert.True(t, errors.Is(err, fcerrors.ErrNotYourTurn))

	d, err := s.PlayComputer(ctx)
	require.NoError(t, err)
	pc, ok := s.Game().Board().At(d.To)
	require.True(t, ok)
	assert.Equal(t, chess.Black, pc.Colour)
	assert.Equal(t, 2, s.Game().Ply())
	assert.False(t, s.ComputerToMove())

	// Undo takes back the reply and the human move together.
	require.NoError(t, s.Undo())
	assert.Equal(t, 0, s.Game().Ply())
	assert.Equal(t, chess.White, s.Game().Turn())
}

func TestSession_ComputerOpensAsWhite(t *testing.T) {
	s := started(t, "gardner", PvC, chess.Black)
	assert.True(t, s.ComputerToMove())

	_, err := s.PlayComputer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, chess.Black, s.Game().Turn())
	assert.False(t, s.ComputerToMove())

	// Nothing before the computer's first move belongs to the human.
	require.NoError(t, s.Undo())
	assert.Equal(t, 0, s.Game().Ply())
	assert.True(t, s.ComputerToMove())
}

func TestSession_PendingChoices(t *testing.T) {
	s := started(t, "standard", PvP, chess.White)
	_, err := s.ConfirmCastle(true)
	assert.True(t, errors.Is(err, fcerrors.ErrNoPendingChoice))
	_, err = s.HoldFire()
	assert.True(t, errors.Is(err, fcerrors.ErrNoPendingChoice))
	_, err = s.ChoosePromotion(chess.Queen)
	assert.True(t, errors.Is(err, fcerrors.ErrNoPendingChoice))

	move(t, s, "e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6")
	out, err := s.Castle(chess.KingSide)
	require.NoError(t, err)
	assert.True(t, out.Castled)
	assert.Equal(t, 7, s.Game().CastledAt(chess.White))
}

func TestSession_SelfPlay(t *testing.T) {
	s := started(t, "gardner", PvP, chess.White)
	for i := 0; i < 12 && s.State() == InPlay; i++ {
		_, err := s.PlayAuto(context.Background())
		require.NoError(t, err, "ply %d", s.Game().Ply())
	}
	assert.Greater(t, s.Game().Ply(), 0)
	if s.State() == GameOver {
		assert.Equal(t, engine.GameOver, s.Game().Phase())
	}
}

func TestSession_Hint(t *testing.T) {
	s := started(t, "standard", PvP, chess.White)
	d, err := s.Hint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, s.Game().Ply(), "hint must not play")

	legal, err := s.LegalMoves(d.From)
	require.NoError(t, err)
	assert.True(t, legal.Has(d.To))
}

func TestSession_SaveResume(t *testing.T) {
	s := started(t, "standard", PvC, chess.Black)
	_, err := s.PlayComputer(context.Background())
	require.NoError(t, err)
	move(t, s, "e7e5")

	snap, err := s.Save()
	require.NoError(t, err)
	assert.Equal(t, "pvc", snap.Mode)
	assert.Equal(t, chess.Black, snap.Player)

	got := newSession()
	require.NoError(t, got.Resume(snap))
	assert.Equal(t, InPlay, got.State())
	assert.Equal(t, s.Settings(), got.Settings())
	assert.Equal(t, "standard", got.Variant().ID)
	assert.Equal(t, 2, got.Game().Ply())
	assert.True(t, got.ComputerToMove())
	assert.True(t, got.Game().Board().Equal(s.Game().Board()))
}

func TestSession_ResumeUnavailable(t *testing.T) {
	s := started(t, "standard", PvP, chess.White)
	move(t, s, "d2d4")
	good, err := s.Save()
	require.NoError(t, err)

	bad := *good
	bad.Mode = "spectator"
	got := newSession()
	err = got.Resume(&bad)
	assert.True(t, errors.Is(err, fcerrors.ErrSnapshotUnavailable))
	assert.Equal(t, VariantSelect, got.State())

	bad = *good
	bad.Variant = "no-such-variant"
	err = got.Resume(&bad)
	assert.True(t, errors.Is(err, fcerrors.ErrSnapshotUnavailable))
	assert.Nil(t, got.Game())

	_, err = got.Save()
	assert.True(t, errors.Is(err, fcerrors.ErrWrongState))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"pvp", PvP, false},
		{"PvC", PvC, false},
		{"cvc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	text, err := ColorModeSelect.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "colour_and_mode_select", string(text))
	assert.Equal(t, "unknown", State(9).String())
}

func TestState_JSONRoundTrip(t *testing.T) {
	for _, st := range []State{VariantSelect, ColorModeSelect, InPlay, GameOver} {
		t.Run(st.String(), func(t *testing.T) {
			data, err := json.Marshal(map[string]State{"session": st})
			require.NoError(t, err)

			var got map[string]State
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, st, got["session"])
		})
	}

	var st State
	err := st.UnmarshalText([]byte("lobby"))
	assert.True(t, errors.Is(err, fcerrors.ErrInvalidConfig))
}
