package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
)

// LegalMoves returns the legal destinations of the piece on pos,
// regardless of whose turn it is. Castling destinations are included;
// a castle that leaves the king on its own square is only reachable
// through AttemptCastle.
func (g *Game) LegalMoves(pos chess.Position) (chess.PositionSet, error) {
	a, err := g.analyze(pos)
	if err != nil {
		return nil, err
	}
	return a.dests.Clone(), nil
}

// FireTargets returns the shots available after the archer on from
// relocates to to, or nil when the move is not an archer relocation.
func (g *Game) FireTargets(from, to chess.Position) (chess.PositionSet, error) {
	a, err := g.analyze(from)
	if err != nil {
		return nil, err
	}
	choice, ok := a.fire[to]
	if !ok {
		return nil, nil
	}
	return choice.targets.Clone(), nil
}

// analyze computes, or recalls from the memo, the legal moves of the piece
// on pos.
func (g *Game) analyze(pos chess.Position) (*analysis, error) {
	b := g.cur.Board
	pc, ok := b.At(pos)
	if !ok {
		return nil, g.fail(errors.ErrEmptySquare, &pos, nil)
	}
	key := memoKey{id: pc.ID, version: b.Version()}
	if a, ok := g.memo.moves[key]; ok {
		return a, nil
	}
	kind, ok := g.rules.Kind(pc.Kind)
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownKind, "%s on %s", pc.Kind, pos)
	}

	v := g.view()
	pseudo := v.Moves(pos)
	if err := v.Err(); err != nil {
		return nil, err
	}

	a := &analysis{
		dests:     make(chess.PositionSet),
		ordinary:  make(chess.PositionSet),
		castles:   make(map[chess.Position]chess.Side),
		fire:      make(map[chess.Position]fireChoice),
		enPassant: make(map[chess.Position]chess.Position),
	}
	for _, to := range pseudo.Sorted() {
		if !b.InBounds(to) || to == pos {
			continue
		}
		if kind.IsArcher() && b.IsEmpty(to) {
			choice, legal, err := g.relocation(pos, to, pc.Colour)
			if err != nil {
				return nil, err
			}
			if legal {
				a.ordinary.Add(to)
				if choice.targets.Len() > 0 {
					a.fire[to] = choice
				}
			}
			continue
		}
		safe, err := g.safeAfter(pc.Colour, func(s *chess.Board) { s.Move(pos, to) })
		if err != nil {
			return nil, err
		}
		if safe {
			a.ordinary.Add(to)
		}
	}

	if kind.Pawn {
		if to, victim, ok := g.enPassantFor(pos, pc); ok && !a.ordinary.Has(to) {
			safe, err := g.safeAfter(pc.Colour, func(s *chess.Board) {
				s.Remove(victim)
				s.Move(pos, to)
			})
			if err != nil {
				return nil, err
			}
			if safe {
				a.ordinary.Add(to)
				a.enPassant[to] = victim
			}
		}
	}

	if kind.Royal {
		for _, side := range chess.Sides {
			dest, ok, err := g.castleDest(pos, pc, side)
			if err != nil {
				return nil, err
			}
			if ok {
				a.castles[dest] = side
			}
		}
	}

	a.dests.Union(a.ordinary)
	for dest := range a.castles {
		if dest != pos {
			a.dests.Add(dest)
		}
	}
	g.memo.moves[key] = a
	log.Trace().Str("from", pos.String()).Str("kind", string(pc.Kind)).Int("moves", a.dests.Len()).Msg("analyzed")
	return a, nil
}

// relocation decides whether an archer's quiet move from from to to is
// legal and which shots follow it. A move that leaves the king in check is
// legal only if some shot cures the check, and then firing is forced.
func (g *Game) relocation(from, to chess.Position, c chess.Colour) (fireChoice, bool, error) {
	after := g.cur.Board.Clone()
	after.Move(from, to)
	safe, err := g.safeOn(after, c)
	if err != nil {
		return fireChoice{}, false, err
	}

	allowed := make(chess.PositionSet)
	for _, t := range g.view().FireTargets(from, to).Sorted() {
		shot := after.Clone()
		shot.Remove(t)
		ok, err := g.safeOn(shot, c)
		if err != nil {
			return fireChoice{}, false, err
		}
		if ok {
			allowed.Add(t)
		}
	}
	if safe {
		return fireChoice{targets: allowed}, true, nil
	}
	if allowed.Len() == 0 {
		return fireChoice{}, false, nil
	}
	return fireChoice{targets: allowed, forced: true}, true, nil
}

// enPassantFor returns the en passant destination of the pawn on pos and
// the square of the pawn it captures. The enemy pawn must have
// double-stepped on the previous ply onto a square beside pos.
func (g *Game) enPassantFor(pos chess.Position, pc chess.Piece) (to, victim chess.Position, ok bool) {
	ds := g.cur.DoubleStep
	if ds == nil || ds.Rank != pos.Rank || abs(ds.File-pos.File) != 1 {
		return chess.Position{}, chess.Position{}, false
	}
	enemy, ok := g.cur.Board.At(*ds)
	if !ok || enemy.Colour == pc.Colour {
		return chess.Position{}, chess.Position{}, false
	}
	if k, ok := g.rules.Kind(enemy.Kind); !ok || !k.Pawn {
		return chess.Position{}, chess.Position{}, false
	}
	to = ds.Add(chess.Off(0, pc.Colour.Forward()))
	if !g.cur.Board.IsEmpty(to) {
		return chess.Position{}, chess.Position{}, false
	}
	return to, *ds, true
}
