package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/lgbarn/fairychess-go/internal/errors"
)

// Undo steps back one ply. With a choice pending it cancels the pending
// move instead and leaves the ply unchanged.
func (g *Game) Undo() error {
	if g.pending != nil {
		log.Debug().Int("ply", g.ply).Str("phase", g.phase.String()).Msg("cancel pending move")
		return g.restore(g.ply)
	}
	if g.ply == 0 {
		return g.fail(errors.ErrHistoryStart, nil, nil)
	}
	return g.restore(g.ply - 1)
}

// Redo replays the next recorded ply, if no move has been made since the
// last Undo.
func (g *Game) Redo() error {
	if g.pending != nil {
		return g.fail(errors.ErrPendingChoice, &g.pending.from, &g.pending.to)
	}
	if g.ply+1 >= len(g.history) {
		return g.fail(errors.ErrHistoryEnd, nil, nil)
	}
	return g.restore(g.ply + 1)
}

// CanUndo reports whether Undo would change the state.
func (g *Game) CanUndo() bool {
	return g.pending != nil || g.ply > 0
}

// CanRedo reports whether a recorded ply follows the current one.
func (g *Game) CanRedo() bool {
	return g.pending == nil && g.ply+1 < len(g.history)
}
