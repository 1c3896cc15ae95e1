package engine

import (
	"strings"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
)

// Move is a complete move including the choice that finishes it.
type Move struct {
	From, To  chess.Position
	Castle    *chess.Side     // castle towards this side
	Promotion chess.Kind      // promotion choice for a pawn reaching the far rank
	Fire      *chess.Position // archer shot; nil holds fire
}

// String renders the move in coordinate form, e.g. e7e8=Q, O-O or
// c2c4@e6.
func (m Move) String() string {
	if m.Castle != nil {
		if *m.Castle == chess.KingSide {
			return "O-O"
		}
		return "O-O-O"
	}
	var sb strings.Builder
	sb.WriteString(m.From.String())
	sb.WriteString(m.To.String())
	if m.Promotion != "" {
		sb.WriteByte('=')
		sb.WriteString(string(m.Promotion))
	}
	if m.Fire != nil {
		sb.WriteByte('@')
		sb.WriteString(m.Fire.String())
	}
	return sb.String()
}

// Moves returns every complete legal move of colour c: one per promotion
// choice, one per shot plus holding fire where allowed, and castles as
// separate moves.
func (g *Game) Moves(c chess.Colour) ([]Move, error) {
	var out []Move
	for _, from := range g.cur.Board.Occupied(c) {
		a, err := g.analyze(from)
		if err != nil {
			return nil, err
		}
		pc, _ := g.cur.Board.At(from)
		for _, to := range a.ordinary.Sorted() {
			switch choice, ok := a.fire[to]; {
			case g.promotes(pc, to):
				for _, k := range g.variant.Promote {
					out = append(out, Move{From: from, To: to, Promotion: k})
				}
			case ok:
				if !choice.forced {
					out = append(out, Move{From: from, To: to})
				}
				for _, t := range choice.targets.Sorted() {
					out = append(out, Move{From: from, To: to, Fire: &t})
				}
			default:
				out = append(out, Move{From: from, To: to})
			}
		}
		for _, side := range chess.Sides {
			for dest, s := range a.castles {
				if s == side {
					out = append(out, Move{From: from, To: dest, Castle: &side})
				}
			}
		}
	}
	return out, nil
}

// Play applies a complete move for the side to move, making its pending
// choice. A promotion without a kind takes the variant's last option.
func (g *Game) Play(m Move) (Outcome, error) {
	if m.Castle != nil {
		return g.AttemptCastle(*m.Castle)
	}
	out, err := g.ApplyMove(m.From, m.To)
	if err != nil {
		return out, err
	}
	switch out.Phase {
	case CastlingConfirmPending:
		out, err = g.ConfirmCastle(false)
	case PromotionPending:
		k := m.Promotion
		if k == "" {
			k = g.variant.Promote[len(g.variant.Promote)-1]
		}
		var promo Outcome
		promo, err = g.ChoosePromotion(k)
		promo.Captured = out.Captured
		out = promo
	case FirePending:
		var shot Outcome
		if m.Fire != nil {
			shot, err = g.Fire(*m.Fire)
		} else {
			shot, err = g.HoldFire()
		}
		shot.Captured = append(out.Captured, shot.Captured...)
		out = shot
	}
	if err != nil {
		// Leave the game as it was before the move.
		if undoErr := g.Undo(); undoErr != nil {
			return Outcome{}, undoErr
		}
		return Outcome{}, err
	}
	return out, nil
}

// Perft counts the leaf nodes of the complete move tree to depth.
func (g *Game) Perft(depth int) (uint64, error) {
	if depth == 0 {
		return 1, nil
	}
	if g.pending != nil {
		return 0, g.fail(errors.ErrPendingChoice, &g.pending.from, &g.pending.to)
	}
	if g.phase == GameOver {
		return 0, nil
	}
	moves, err := g.Moves(g.cur.Turn)
	if err != nil {
		return 0, err
	}
	if depth == 1 {
		return uint64(len(moves)), nil
	}
	var nodes uint64
	for _, m := range moves {
		if _, err := g.Play(m); err != nil {
			return 0, errors.Wrapf(err, "perft %s", m)
		}
		n, err := g.Perft(depth - 1)
		if err != nil {
			return 0, err
		}
		nodes += n
		if err := g.Undo(); err != nil {
			return 0, err
		}
	}
	return nodes, nil
}
