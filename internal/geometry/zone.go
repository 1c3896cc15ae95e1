package geometry

import (
	"github.com/lgbarn/fairychess-go/internal/chess"
)

// Zone is the square area of Chebyshev radius Radius around Center.
type Zone struct {
	Center chess.Position
	Radius int
}

// Contains reports whether p lies inside the zone.
func (z Zone) Contains(p chess.Position) bool {
	return chess.Chebyshev(z.Center, p) <= z.Radius
}

// ZoneField is the union of the zones on a board. The zero value halts nothing.
type ZoneField []Zone

// Halts implements Halter.
func (f ZoneField) Halts(p chess.Position) bool {
	for _, z := range f {
		if z.Contains(p) {
			return true
		}
	}
	return false
}
