package geometry

import (
	"github.com/lgbarn/fairychess-go/internal/chess"
)

// Leaper jumps from from by each offset, ignoring anything in between.
func Leaper(pr Scope, from chess.Position, dirs []chess.Offset, mode Mode) chess.PositionSet {
	out := make(chess.PositionSet)
	for _, d := range dirs {
		to := from.Add(d)
		if ok, _ := pr.land(to, mode); ok {
			out.Add(to)
		}
	}
	return out
}

// Rider repeats each offset until the board edge, a piece or a zone stops
// it. A positive limit caps the number of steps.
func Rider(pr Scope, from chess.Position, dirs []chess.Offset, limit int, mode Mode) chess.PositionSet {
	out := make(chess.PositionSet)
	ride(pr, from, dirs, limit, mode, out)
	return out
}

func ride(pr Scope, from chess.Position, dirs []chess.Offset, limit int, mode Mode, out chess.PositionSet) {
	for _, d := range dirs {
		if d.IsZero() {
			continue
		}
		to := from
		for step := 1; limit <= 0 || step <= limit; step++ {
			to = to.Add(d)
			ok, stop := pr.land(to, mode)
			if ok {
				out.Add(to)
			}
			if stop {
				break
			}
		}
	}
}

// Gate pairs a path of offsets from the origin with the offsets it unlocks.
type Gate struct {
	Path []chess.Offset
	Dest []chess.Offset
}

// GatedLeaper leaps from the origin by a gate's Dest offsets when every
// square of its Path is open (on the board, empty, outside any zone).
func GatedLeaper(pr Scope, from chess.Position, gates []Gate, mode Mode) chess.PositionSet {
	out := make(chess.PositionSet)
	for _, g := range gates {
		if !pathOpen(pr, from, g.Path) {
			continue
		}
		for _, d := range g.Dest {
			to := from.Add(d)
			if ok, _ := pr.land(to, mode); ok {
				out.Add(to)
			}
		}
	}
	return out
}

// SlideLeaper walks each gate's Path while squares stay open, and from every
// open path square leaps by the gate's Dest offsets.
func SlideLeaper(pr Scope, from chess.Position, gates []Gate, mode Mode) chess.PositionSet {
	out := make(chess.PositionSet)
	for _, g := range gates {
		for _, step := range g.Path {
			via := from.Add(step)
			if !pr.open(via) {
				break
			}
			for _, d := range g.Dest {
				to := via.Add(d)
				if ok, _ := pr.land(to, mode); ok {
					out.Add(to)
				}
			}
		}
	}
	return out
}

// SlideRider walks each gate's Path while squares stay open, and from every
// open path square rides along the gate's Dest offsets.
func SlideRider(pr Scope, from chess.Position, gates []Gate, limit int, mode Mode) chess.PositionSet {
	out := make(chess.PositionSet)
	for _, g := range gates {
		for _, step := range g.Path {
			via := from.Add(step)
			if !pr.open(via) {
				break
			}
			ride(pr, via, g.Dest, limit, mode, out)
		}
	}
	return out
}

// ReflectRider rides and bounces off the board edges, negating each
// component whose next step would leave the board. Rays stop after more
// than reflections bounces.
func ReflectRider(pr Scope, from chess.Position, dirs []chess.Offset, reflections int, mode Mode) chess.PositionSet {
	out := make(chess.PositionSet)
	size := pr.Board.Size()
	for _, d := range dirs {
		if d.IsZero() {
			continue
		}
		to := from.Add(d)
		bounced := 0
		for bounced <= reflections {
			ok, stop := pr.land(to, mode)
			if ok {
				out.Add(to)
			}
			if stop {
				break
			}
			if next := to.File + d.DX; next < 0 || next >= size {
				bounced++
				d.DX = -d.DX
			}
			if next := to.Rank + d.DY; next < 0 || next >= size {
				bounced++
				d.DY = -d.DY
			}
			to = to.Add(d)
		}
	}
	return out
}

// WaveRider rides a zig-zag path. The first offset (a, b) defines the wave:
// offsets with |dx| == a start vertical waves whose file swings back across
// the origin file every step, and offsets with |dy| == a start horizontal
// waves swinging across the origin rank.
func WaveRider(pr Scope, from chess.Position, dirs []chess.Offset, mode Mode) chess.PositionSet {
	out := make(chess.PositionSet)
	if len(dirs) == 0 {
		return out
	}
	a, b := dirs[0].DX, dirs[0].DY
	if b == 0 {
		return out
	}
	for _, d := range Unique(dirs) {
		if abs(d.DX) == a {
			wave(pr, from, d, a, b, false, mode, out)
		}
		if abs(d.DY) == a {
			wave(pr, from, d, a, b, true, mode, out)
		}
	}
	return out
}

func wave(pr Scope, from chess.Position, d chess.Offset, a, b int, horizontal bool, mode Mode, out chess.PositionSet) {
	// Work in a frame where the wave advances along the rank axis.
	swing, advance := d.DX, d.DY
	originSwing, originAdvance := from.File, from.Rank
	if horizontal {
		swing, advance = d.DY, d.DX
		originSwing, originAdvance = from.Rank, from.File
	}
	s, v := originSwing+swing, originAdvance+advance
	lateral := 0
	for {
		to := chess.Pos(s, v)
		if horizontal {
			to = chess.Pos(v, s)
		}
		ok, stop := pr.land(to, mode)
		if ok {
			out.Add(to)
		}
		if stop {
			return
		}
		if s < originSwing {
			lateral = a
		} else if s > originSwing {
			lateral = -a
		}
		s += lateral
		if v > originAdvance {
			v += b
		} else {
			v -= b
		}
	}
}

func pathOpen(pr Scope, from chess.Position, path []chess.Offset) bool {
	for _, step := range path {
		if !pr.open(from.Add(step)) {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
