package engine

import (
	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
)

// InCheck reports whether any royal piece of colour c is attacked on the
// live board.
func (g *Game) InCheck(c chess.Colour) (bool, error) {
	return inCheck(g.view(), c)
}

// inCheck reports whether a royal piece of colour c is attacked in v.
// Archers attack through both their movement and their arrows.
func inCheck(v *catalog.View, c chess.Colour) (bool, error) {
	for _, sq := range royals(v, c) {
		if v.Attacked(sq, c.Opposite()) {
			return true, nil
		}
	}
	return false, v.Err()
}

// royals returns the squares of c's royal pieces.
func royals(v *catalog.View, c chess.Colour) []chess.Position {
	rules := v.Rules()
	return v.Board().Find(func(pc chess.Piece) bool {
		if pc.Colour != c {
			return false
		}
		k, ok := rules.Kind(pc.Kind)
		return ok && k.Royal
	})
}

// safeOn reports whether c's king is safe on a scratch board.
func (g *Game) safeOn(b *chess.Board, c chess.Colour) (bool, error) {
	check, err := inCheck(g.rules.View(b), c)
	return !check, err
}

// safeAfter reports whether c's king is safe after mutate is applied to a
// scratch copy of the live board.
func (g *Game) safeAfter(c chess.Colour, mutate func(*chess.Board)) (bool, error) {
	b := g.cur.Board.Clone()
	mutate(b)
	return g.safeOn(b, c)
}

// hasLegalMoves reports whether any piece of colour c has a legal move.
func (g *Game) hasLegalMoves(c chess.Colour) (bool, error) {
	for _, sq := range g.cur.Board.Occupied(c) {
		a, err := g.analyze(sq)
		if err != nil {
			return false, err
		}
		if a.dests.Len() > 0 || len(a.castles) > 0 {
			return true, nil
		}
	}
	return false, nil
}
