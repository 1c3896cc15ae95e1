package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
)

// Outcome reports what a move or a choice did.
type Outcome struct {
	Phase     Phase           // phase after the call
	Captured  []chess.Piece   // pieces removed, including by en passant or fire
	Castled   bool            // the move was a castle
	Promotion chess.Kind      // kind chosen for a promoted pawn
	Fired     *chess.Position // square an archer shot at
}

// ready returns an error unless a new move may start.
func (g *Game) ready() error {
	switch {
	case g.pending != nil:
		return g.fail(errors.ErrPendingChoice, &g.pending.from, &g.pending.to)
	case g.phase == GameOver:
		return g.fail(errors.ErrGameOver, nil, nil)
	}
	return nil
}

// ApplyMove plays the piece on from to to for the side to move. A move to
// the far rank by a pawn, an archer relocation with shots available and a
// king move that may also be a castle stop in a pending phase until the
// matching choice is made.
func (g *Game) ApplyMove(from, to chess.Position) (Outcome, error) {
	if err := g.ready(); err != nil {
		return Outcome{}, err
	}
	pc, ok := g.cur.Board.At(from)
	if !ok {
		return Outcome{}, g.fail(errors.ErrEmptySquare, &from, &to)
	}
	if pc.Colour != g.cur.Turn {
		return Outcome{}, g.fail(errors.ErrNotYourTurn, &from, &to)
	}
	a, err := g.analyze(from)
	if err != nil {
		return Outcome{}, err
	}
	if !a.dests.Has(to) {
		return Outcome{}, g.fail(errors.ErrIllegalMove, &from, &to)
	}
	if side, ok := a.castles[to]; ok {
		if !a.ordinary.Has(to) {
			return g.castle(side)
		}
		g.pending = &pending{from: from, to: to, side: side}
		g.phase = CastlingConfirmPending
		return Outcome{Phase: g.phase}, nil
	}
	return g.move(from, to, a)
}

// move performs an ordinary move already known to be legal.
func (g *Game) move(from, to chess.Position, a *analysis) (Outcome, error) {
	b := g.cur.Board
	pc, _ := b.At(from)
	kind, _ := g.rules.Kind(pc.Kind)

	var out Outcome
	if victim, ok := a.enPassant[to]; ok {
		cp, _ := b.Remove(victim)
		out.Captured = append(out.Captured, cp)
	}
	g.revokeAt(from)
	g.revokeAt(to)
	if cp, ok := b.Move(from, to); ok {
		out.Captured = append(out.Captured, cp)
	}
	pc.Count++
	b.Set(to, pc)

	g.cur.DoubleStep = nil
	if kind.Pawn && from.File == to.File && abs(to.Rank-from.Rank) == 2 {
		step := to
		g.cur.DoubleStep = &step
	}

	log.Debug().Int("ply", g.ply).Str("from", from.String()).Str("to", to.String()).
		Str("kind", string(pc.Kind)).Int("captured", len(out.Captured)).Msg("move")

	switch {
	case g.promotes(pc, to):
		g.pending = &pending{from: from, to: to}
		g.phase = PromotionPending
		out.Phase = g.phase
		return out, nil
	case a.fire[to].targets.Len() > 0:
		choice := a.fire[to]
		g.pending = &pending{from: from, to: to, targets: choice.targets.Clone(), forced: choice.forced}
		g.phase = FirePending
		out.Phase = g.phase
		return out, nil
	}
	if err := g.finishTurn(); err != nil {
		return Outcome{}, err
	}
	out.Phase = g.phase
	return out, nil
}

// promotes reports whether pc arriving on to must promote.
func (g *Game) promotes(pc chess.Piece, to chess.Position) bool {
	k, ok := g.rules.Kind(pc.Kind)
	if !ok || !k.Pawn || len(g.variant.Promote) == 0 {
		return false
	}
	return to.Rank == g.backRank(pc.Colour.Opposite())
}

// revokeAt drops the castling rights tied to sq: the king's starting
// square or a rook's starting square, whichever piece leaves or is
// captured there.
func (g *Game) revokeAt(sq chess.Position) {
	if g.files == nil {
		return
	}
	for _, c := range chess.Colours {
		back := g.backRank(c)
		if sq == chess.Pos(g.files.King, back) {
			g.cur.Castling[c] = [2]bool{}
		}
		for _, side := range chess.Sides {
			if sq == chess.Pos(g.files.Rooks[side], back) {
				g.cur.Castling[c][side] = false
			}
		}
	}
}

// ChoosePromotion completes a pending promotion. The piece keeps its
// identity and move counter.
func (g *Game) ChoosePromotion(k chess.Kind) (Outcome, error) {
	if g.phase != PromotionPending || g.pending == nil {
		return Outcome{}, g.fail(errors.ErrNoPendingChoice, nil, nil)
	}
	p := g.pending
	if !g.variant.CanPromoteTo(k) {
		return Outcome{}, errors.Wrapf(g.fail(errors.ErrIllegalMove, &p.from, &p.to), "promotion to %s", k)
	}
	if _, ok := g.rules.Kind(k); !ok {
		return Outcome{}, errors.Wrapf(errors.ErrUnknownKind, "promotion to %s", k)
	}
	pc, _ := g.cur.Board.At(p.to)
	pc.Kind = k
	g.cur.Board.Set(p.to, pc)
	log.Debug().Int("ply", g.ply).Str("to", p.to.String()).Str("kind", string(k)).Msg("promote")

	if err := g.finishTurn(); err != nil {
		return Outcome{}, err
	}
	return Outcome{Phase: g.phase, Promotion: k}, nil
}

// Fire completes a pending archer move by shooting the piece on target.
func (g *Game) Fire(target chess.Position) (Outcome, error) {
	if g.phase != FirePending || g.pending == nil {
		return Outcome{}, g.fail(errors.ErrNoPendingChoice, nil, &target)
	}
	if !g.pending.targets.Has(target) {
		return Outcome{}, g.fail(errors.ErrIllegalMove, &g.pending.to, &target)
	}
	g.revokeAt(target)
	cp, _ := g.cur.Board.Remove(target)
	log.Debug().Int("ply", g.ply).Str("from", g.pending.to.String()).Str("to", target.String()).
		Str("kind", string(cp.Kind)).Msg("fire")

	if err := g.finishTurn(); err != nil {
		return Outcome{}, err
	}
	return Outcome{Phase: g.phase, Captured: []chess.Piece{cp}, Fired: &target}, nil
}

// HoldFire completes a pending archer move without shooting. It is refused
// when the relocation is legal only because a shot cures a check.
func (g *Game) HoldFire() (Outcome, error) {
	if g.phase != FirePending || g.pending == nil {
		return Outcome{}, g.fail(errors.ErrNoPendingChoice, nil, nil)
	}
	if g.pending.forced {
		return Outcome{}, errors.Wrap(g.fail(errors.ErrIllegalMove, &g.pending.from, &g.pending.to), "archer must fire")
	}
	if err := g.finishTurn(); err != nil {
		return Outcome{}, err
	}
	return Outcome{Phase: g.phase}, nil
}

// finishTurn records the live state as the next ply, dropping any redo
// tail, and hands the move to the opponent.
func (g *Game) finishTurn() error {
	g.pending = nil
	g.ply++
	g.cur.Turn = g.cur.Turn.Opposite()
	g.history = append(g.history[:g.ply], g.cur.clone())
	return g.refresh()
}
