// Package geometry implements the movement primitives every piece kind is
// built from: leapers, riders, gated (sliding) leapers and riders, and the
// reflecting and wave riders. All primitives are pure functions of a Scope.
package geometry

import (
	"math"

	"github.com/lgbarn/fairychess-go/internal/chess"
)

// Mode restricts which destinations a primitive reports.
type Mode int

const (
	// MoveOrCapture reports empty squares and enemy-occupied squares.
	MoveOrCapture Mode = iota
	// MoveOnly reports empty squares only; occupied squares block.
	MoveOnly
	// CaptureOnly reports enemy-occupied squares only.
	CaptureOnly
)

func (m Mode) String() string {
	switch m {
	case MoveOnly:
		return "move-only"
	case CaptureOnly:
		return "capture-only"
	}
	return "move-or-capture"
}

// Halter reports squares that stop riders passing through them.
type Halter interface {
	Halts(p chess.Position) bool
}

// Scope is the read-only context a primitive evaluates against: the board,
// the colour of the moving piece, and the zones that halt its rays.
type Scope struct {
	Board  *chess.Board
	Colour chess.Colour
	Zones  Halter
	// Immune pieces are not halted by zones.
	Immune bool
}

func (pr Scope) halted(p chess.Position) bool {
	return !pr.Immune && pr.Zones != nil && pr.Zones.Halts(p)
}

// open reports whether p can be passed over: on the board, empty and not
// inside a halting zone.
func (pr Scope) open(p chess.Position) bool {
	return pr.Board.IsEmpty(p) && !pr.halted(p)
}

// land classifies p for a piece arriving there. ok is false when the piece
// may not end its move on p; stop is true when a ray must not continue past p.
func (pr Scope) land(p chess.Position, mode Mode) (ok, stop bool) {
	if !pr.Board.InBounds(p) {
		return false, true
	}
	occupant, occupied := pr.Board.At(p)
	switch {
	case !occupied:
		return mode != CaptureOnly, pr.halted(p)
	case occupant.Colour != pr.Colour:
		return mode != MoveOnly, true
	default:
		return false, true
	}
}

// Dir8 returns the eight symmetric images of (x, y), clockwise.
// Duplicates occur when x == y or either is zero.
func Dir8(x, y int) []chess.Offset {
	return []chess.Offset{
		chess.Off(x, y), chess.Off(y, x), chess.Off(y, -x), chess.Off(x, -y),
		chess.Off(-x, -y), chess.Off(-y, -x), chess.Off(-y, x), chess.Off(-x, y),
	}
}

// Unique returns offsets with duplicates removed, keeping first occurrences.
func Unique(offsets []chess.Offset) []chess.Offset {
	seen := make(map[chess.Offset]struct{}, len(offsets))
	out := make([]chess.Offset, 0, len(offsets))
	for _, o := range offsets {
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

// KingMoves lists the eight unit steps, clockwise from straight ahead.
var KingMoves = []chess.Offset{
	chess.Off(0, 1), chess.Off(1, 1), chess.Off(1, 0), chess.Off(1, -1),
	chess.Off(0, -1), chess.Off(-1, -1), chess.Off(-1, 0), chess.Off(-1, 1),
}

// DistanceGroups returns, for each pair 0 <= i <= j with i*i + j*j == d,
// the eight Dir8 images of (i, j).
func DistanceGroups(d int) [][]chess.Offset {
	if d < 0 {
		return nil
	}
	root := math.Sqrt(float64(d))
	lo := int(math.Floor(root * math.Sqrt2 / 2))
	hi := int(math.Floor(root))
	var groups [][]chess.Offset
	for i := 0; i <= lo; i++ {
		for j := lo; j <= hi; j++ {
			if i*i+j*j == d {
				groups = append(groups, Dir8(i, j))
			}
		}
	}
	return groups
}

// DistanceVectors returns every offset whose squared length is d.
func DistanceVectors(d int) []chess.Offset {
	var out []chess.Offset
	for _, g := range DistanceGroups(d) {
		out = append(out, g...)
	}
	return Unique(out)
}

// Heading returns the turn, in eighths of a circle, from straight ahead to
// the direction from start to end. Positive values turn counter-clockwise.
// Ahead is +rank for White; callers mirror for Black.
func Heading(start, end chess.Position) int {
	dx := end.File - start.File
	dy := end.Rank - start.Rank
	switch {
	case dx == 0:
		if dy > 0 {
			return 0
		}
		return 4
	case dy == dx:
		if dy > 0 {
			return -1
		}
		return 3
	case dy == 0:
		if dx > 0 {
			return -2
		}
		return 2
	case dy == -dx:
		if dy < 0 {
			return -3
		}
		return 1
	}
	return 0
}

// HeadingVector returns the unit step for heading h (see Heading).
func HeadingVector(h int) chess.Offset {
	switch ((h % 8) + 8) % 8 {
	case 0:
		return chess.Off(0, 1)
	case 1:
		return chess.Off(-1, 1)
	case 2:
		return chess.Off(-1, 0)
	case 3:
		return chess.Off(-1, -1)
	case 4:
		return chess.Off(0, -1)
	case 5:
		return chess.Off(1, -1)
	case 6:
		return chess.Off(1, 0)
	default:
		return chess.Off(1, 1)
	}
}
