package engine

import (
	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
)

// memoKey identifies a piece on one board state. Board versions are
// process-wide, so a key never matches a different position.
type memoKey struct {
	id      uint32
	version uint64
}

// fireChoice is the legal shots after an archer's quiet relocation.
// forced means the relocation is only legal if the archer fires.
type fireChoice struct {
	targets chess.PositionSet
	forced  bool
}

// analysis is the legal move set of one piece with the detail needed to
// apply each destination.
type analysis struct {
	dests     chess.PositionSet                 // every legal destination
	ordinary  chess.PositionSet                 // destinations legal as a plain move
	castles   map[chess.Position]chess.Side     // king destinations legal as a castle
	fire      map[chess.Position]fireChoice     // archer relocations with shots
	enPassant map[chess.Position]chess.Position // destination to captured pawn
}

// memo caches per-piece analyses and the movement view of the live board.
type memo struct {
	moves map[memoKey]*analysis

	view        *catalog.View
	viewVersion uint64
}

func newMemo() *memo {
	return &memo{moves: make(map[memoKey]*analysis)}
}

// reset drops every cached entry.
func (m *memo) reset() {
	clear(m.moves)
	m.view = nil
	m.viewVersion = 0
}

// view returns the movement view of b, reusing the cached one while the
// board version is unchanged.
func (g *Game) view() *catalog.View {
	b := g.cur.Board
	if g.memo.view == nil || g.memo.viewVersion != b.Version() {
		if len(g.memo.moves) > 4096 {
			clear(g.memo.moves)
		}
		g.memo.view = g.rules.View(b)
		g.memo.viewVersion = b.Version()
	}
	return g.memo.view
}
