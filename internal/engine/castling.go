package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
)

// backRank returns the first rank of colour c.
func (g *Game) backRank(c chess.Colour) int {
	if c == chess.White {
		return 0
	}
	return g.variant.Size - 1
}

// castleTargets returns the king and rook destination files for side.
// They are fixed relative to the board edge whatever the starting files.
func castleTargets(size int, side chess.Side) (king, rook int) {
	if side == chess.KingSide {
		return size - 2, size - 3
	}
	return 2, 3
}

// span returns the files from a to b inclusive, in either direction.
func span(a, b int) []int {
	lo, hi := min(a, b), max(a, b)
	out := make([]int, 0, hi-lo+1)
	for f := lo; f <= hi; f++ {
		out = append(out, f)
	}
	return out
}

// castleDest checks the castling requirements for the king on pos and
// returns the king's destination.
func (g *Game) castleDest(pos chess.Position, king chess.Piece, side chess.Side) (chess.Position, bool, error) {
	if g.files == nil || !g.cur.Castling[king.Colour][side] {
		return chess.Position{}, false, nil
	}
	back := g.backRank(king.Colour)
	if pos != chess.Pos(g.files.King, back) {
		return chess.Position{}, false, nil
	}
	b := g.cur.Board
	rookSq := chess.Pos(g.files.Rooks[side], back)
	rook, ok := b.At(rookSq)
	if !ok || rook.Colour != king.Colour {
		return chess.Position{}, false, nil
	}
	if k, ok := g.rules.Kind(rook.Kind); !ok || !k.CastlingRook {
		return chess.Position{}, false, nil
	}

	kingTo, rookTo := castleTargets(g.variant.Size, side)
	for _, route := range [][]int{span(g.files.King, kingTo), span(g.files.Rooks[side], rookTo)} {
		for _, f := range route {
			sq := chess.Pos(f, back)
			if sq != pos && sq != rookSq && !b.IsEmpty(sq) {
				return chess.Position{}, false, nil
			}
		}
	}

	check, err := inCheck(g.view(), king.Colour)
	if err != nil || check {
		return chess.Position{}, false, err
	}
	for _, f := range span(g.files.King, kingTo) {
		sq := chess.Pos(f, back)
		safe, err := g.safeAfter(king.Colour, func(s *chess.Board) {
			s.Remove(pos)
			s.Remove(rookSq)
			s.Set(sq, king)
		})
		if err != nil || !safe {
			return chess.Position{}, false, err
		}
	}
	safe, err := g.safeAfter(king.Colour, func(s *chess.Board) {
		castleOn(s, pos, rookSq, chess.Pos(kingTo, back), chess.Pos(rookTo, back))
	})
	if err != nil || !safe {
		return chess.Position{}, false, err
	}
	return chess.Pos(kingTo, back), true, nil
}

// castleOn relocates king and rook together. Only the king's move counter
// advances.
func castleOn(b *chess.Board, kingFrom, rookFrom, kingTo, rookTo chess.Position) {
	king, _ := b.Remove(kingFrom)
	rook, _ := b.Remove(rookFrom)
	king.Count++
	b.Set(kingTo, king)
	b.Set(rookTo, rook)
}

// AttemptCastle castles the side to move towards side.
func (g *Game) AttemptCastle(side chess.Side) (Outcome, error) {
	if err := g.ready(); err != nil {
		return Outcome{}, err
	}
	c := g.cur.Turn
	if g.files == nil {
		return Outcome{}, g.fail(errors.ErrIllegalMove, nil, nil)
	}
	pos := chess.Pos(g.files.King, g.backRank(c))
	a, err := g.analyze(pos)
	if err != nil {
		return Outcome{}, err
	}
	for _, s := range a.castles {
		if s == side {
			return g.castle(side)
		}
	}
	return Outcome{}, g.fail(errors.ErrIllegalMove, &pos, nil)
}

// ConfirmCastle resolves an ambiguous king move: yes castles, no plays the
// ordinary king move to the same square.
func (g *Game) ConfirmCastle(yes bool) (Outcome, error) {
	if g.phase != CastlingConfirmPending || g.pending == nil {
		return Outcome{}, g.fail(errors.ErrNoPendingChoice, nil, nil)
	}
	p := *g.pending
	if yes {
		g.pending = nil
		g.phase = InPlay
		return g.castle(p.side)
	}
	a, err := g.analyze(p.from)
	if err != nil {
		return Outcome{}, err
	}
	if !a.ordinary.Has(p.to) {
		return Outcome{}, g.fail(errors.ErrIllegalMove, &p.from, &p.to)
	}
	g.pending = nil
	g.phase = InPlay
	return g.move(p.from, p.to, a)
}

// castle performs a castle whose legality is already established.
func (g *Game) castle(side chess.Side) (Outcome, error) {
	c := g.cur.Turn
	back := g.backRank(c)
	kingTo, rookTo := castleTargets(g.variant.Size, side)
	kingFrom := chess.Pos(g.files.King, back)
	castleOn(g.cur.Board, kingFrom, chess.Pos(g.files.Rooks[side], back), chess.Pos(kingTo, back), chess.Pos(rookTo, back))

	g.cur.Castling[c] = [2]bool{}
	g.cur.Castled[c] = g.ply + 1
	g.cur.DoubleStep = nil
	to := chess.Pos(kingTo, back)
	log.Debug().Int("ply", g.ply).Str("from", kingFrom.String()).Str("to", to.String()).Str("side", side.String()).Msg("castle")
	if err := g.finishTurn(); err != nil {
		return Outcome{}, err
	}
	return Outcome{Phase: g.phase, Castled: true}, nil
}
