// Package engine implements the legality and game-state rules of fairy
// chess: legal move generation, check, castling, en passant, promotion,
// archer fire and undo/redo over a history of board frames.
package engine

import (
	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

// Phase is the state of play between moves.
type Phase int

const (
	InPlay Phase = iota
	PromotionPending
	CastlingConfirmPending
	FirePending
	GameOver
)

var phaseNames = [...]string{"in play", "promotion pending", "castling confirm pending", "fire pending", "game over"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Frame is the full game state after a ply. Frames are immutable once
// recorded.
type Frame struct {
	Board      *chess.Board
	Turn       chess.Colour
	Castling   [2][2]bool      // [colour][side]
	DoubleStep *chess.Position // pawn that double-stepped on this ply
	Castled    [2]int          // ply each colour castled on, -1 if not yet
}

func (f Frame) clone() Frame {
	f.Board = f.Board.Clone()
	return f
}

// pending is a move waiting for a choice before the turn completes.
type pending struct {
	from, to chess.Position
	// castling confirm
	side chess.Side
	// archer fire
	targets chess.PositionSet
	forced  bool
}

// Game is one game in progress. A Game is not safe for concurrent use;
// Clone it for parallel work.
type Game struct {
	variant *variant.Variant
	rules   *catalog.Rules
	files   *variant.CastlingFiles
	start   int // Chess960 number of the starting array, -1 if fixed

	cur     Frame
	ply     int
	history []Frame // history[i] is the state after ply i
	phase   Phase
	pending *pending

	check     bool
	checkmate bool
	stalemate bool

	memo *memo
}

// NewGame starts a game from a variant's starting position.
func NewGame(v *variant.Variant, cat *catalog.Catalog, opts ...variant.StartOption) (*Game, error) {
	rules, err := cat.Bind(v.Size)
	if err != nil {
		return nil, err
	}
	st, err := v.Start(cat, opts...)
	if err != nil {
		return nil, err
	}
	var rights [2][2]bool
	if st.Castling != nil {
		rights = [2][2]bool{{true, true}, {true, true}}
	}
	g, err := newGame(v, rules, st.Castling, Frame{
		Board:    st.Board,
		Turn:     chess.White,
		Castling: rights,
		Castled:  [2]int{-1, -1},
	})
	if err != nil {
		return nil, err
	}
	g.start = st.Position
	return g, nil
}

// NewGameFromFEN starts a standard-rules game from a FEN position.
func NewGameFromFEN(fen string) (*Game, error) {
	reg, err := variant.Default()
	if err != nil {
		return nil, err
	}
	v, err := reg.Lookup("standard")
	if err != nil {
		return nil, err
	}
	pos, err := variant.ImportFEN(fen)
	if err != nil {
		return nil, err
	}
	rules, err := catalog.MustDefault().Bind(v.Size)
	if err != nil {
		return nil, err
	}

	f := Frame{
		Board:    pos.Board,
		Turn:     pos.Turn,
		Castling: pos.Castling,
		Castled:  [2]int{-1, -1},
	}
	if pos.EnPassant != nil {
		// The pawn stands one step past the square it passed over.
		pawn := pos.EnPassant.Add(chess.Off(0, pos.Turn.Opposite().Forward()))
		f.DoubleStep = &pawn
	}
	files := pos.Files
	return newGame(v, rules, &files, f)
}

// NewGameFromFrame starts a game of variant v from an arbitrary position.
// files may be nil when castling is not possible.
func NewGameFromFrame(v *variant.Variant, cat *catalog.Catalog, f Frame, files *variant.CastlingFiles) (*Game, error) {
	if f.Board == nil || f.Board.Size() != v.Size {
		return nil, errors.Wrapf(errors.ErrInvalidVariant, "board does not fit %s", v.ID)
	}
	rules, err := cat.Bind(v.Size)
	if err != nil {
		return nil, err
	}
	if files == nil {
		f.Castling = [2][2]bool{}
	}
	return newGame(v, rules, files, f)
}

func newGame(v *variant.Variant, rules *catalog.Rules, files *variant.CastlingFiles, start Frame) (*Game, error) {
	g := &Game{
		variant: v,
		rules:   rules,
		files:   files,
		start:   -1,
		cur:     start,
		history: []Frame{start.clone()},
		memo:    newMemo(),
	}
	if err := g.refresh(); err != nil {
		return nil, err
	}
	return g, nil
}

// Variant returns the variant being played.
func (g *Game) Variant() *variant.Variant {
	return g.variant
}

// Rules returns the bound piece rules.
func (g *Game) Rules() *catalog.Rules {
	return g.rules
}

// Board returns the live board. Callers must not modify it.
func (g *Game) Board() *chess.Board {
	return g.cur.Board
}

// Turn returns the colour to move.
func (g *Game) Turn() chess.Colour {
	return g.cur.Turn
}

// Ply returns the number of completed plies.
func (g *Game) Ply() int {
	return g.ply
}

// Phase returns the current phase.
func (g *Game) Phase() Phase {
	return g.phase
}

// Frame returns the live state. Callers must not modify its board.
func (g *Game) Frame() Frame {
	return g.cur
}

// CastlingRights returns the castling rights as [colour][side].
func (g *Game) CastlingRights() [2][2]bool {
	return g.cur.Castling
}

// CastlingFiles returns the initial king and rook files, nil without
// castling.
func (g *Game) CastlingFiles() *variant.CastlingFiles {
	return g.files
}

// StartPosition returns the Chess960 number of the starting array, or -1
// when the variant places its pieces the same way every game.
func (g *Game) StartPosition() int {
	return g.start
}

// CastledAt returns the ply on which c castled, or -1.
func (g *Game) CastledAt(c chess.Colour) int {
	return g.cur.Castled[c]
}

// History returns the recorded frames, including any redo tail. Frames
// must not be modified.
func (g *Game) History() []Frame {
	return g.history
}

// DoubleSteps returns the pawns that double-stepped, keyed by ply.
func (g *Game) DoubleSteps() map[int]chess.Position {
	out := make(map[int]chess.Position)
	for ply, f := range g.history[:g.ply+1] {
		if f.DoubleStep != nil {
			out[ply] = *f.DoubleStep
		}
	}
	return out
}

// PendingTargets returns the fire targets while FirePending.
func (g *Game) PendingTargets() chess.PositionSet {
	if g.pending == nil || g.pending.targets == nil {
		return nil
	}
	return g.pending.targets.Clone()
}

// PendingSquares returns the origin and destination of the pending move.
func (g *Game) PendingSquares() (from, to chess.Position, ok bool) {
	if g.pending == nil {
		return chess.Position{}, chess.Position{}, false
	}
	return g.pending.from, g.pending.to, true
}

// IsCheck reports whether the side to move is in check.
func (g *Game) IsCheck() bool {
	return g.check
}

// IsCheckmate reports whether the side to move is checkmated.
func (g *Game) IsCheckmate() bool {
	return g.checkmate
}

// IsStalemate reports whether the side to move has no legal move and is
// not in check.
func (g *Game) IsStalemate() bool {
	return g.stalemate
}

// Clone returns an independent copy of the game. Recorded frames are
// shared, the live board is copied.
func (g *Game) Clone() *Game {
	c := *g
	c.cur = g.cur.clone()
	c.history = make([]Frame, len(g.history))
	copy(c.history, g.history)
	if g.pending != nil {
		p := *g.pending
		if p.targets != nil {
			p.targets = p.targets.Clone()
		}
		c.pending = &p
	}
	c.memo = newMemo()
	return &c
}

// Restore replaces the game state with a recorded history, positioned at
// ply. It is used to resume saved games.
func (g *Game) Restore(history []Frame, ply int) error {
	if len(history) == 0 || ply < 0 || ply >= len(history) {
		return errors.Wrapf(errors.ErrSnapshotUnavailable, "history of %d frames at ply %d", len(history), ply)
	}
	for _, f := range history {
		if f.Board == nil || f.Board.Size() != g.variant.Size {
			return errors.Wrapf(errors.ErrSnapshotUnavailable, "frame board does not fit %s", g.variant.ID)
		}
	}
	g.history = make([]Frame, len(history))
	copy(g.history, history)
	return g.restore(ply)
}

// restore makes history[ply] the live state.
func (g *Game) restore(ply int) error {
	g.ply = ply
	g.cur = g.history[ply].clone()
	g.pending = nil
	g.memo.reset()
	return g.refresh()
}

// refresh recomputes check, checkmate and stalemate for the side to move.
func (g *Game) refresh() error {
	check, err := g.InCheck(g.cur.Turn)
	if err != nil {
		return err
	}
	canMove, err := g.hasLegalMoves(g.cur.Turn)
	if err != nil {
		return err
	}
	g.check = check
	g.checkmate = check && !canMove
	g.stalemate = !check && !canMove
	g.phase = InPlay
	if !canMove {
		g.phase = GameOver
	}
	return nil
}

func (g *Game) fail(err error, from, to *chess.Position) error {
	ge := &errors.GameError{Err: err, Variant: g.variant.ID, Ply: g.ply}
	if from != nil {
		ge.From = from.String()
		if pc, ok := g.cur.Board.At(*from); ok {
			ge.Kind = string(pc.Kind)
		}
	}
	if to != nil {
		ge.To = to.String()
	}
	return ge
}
