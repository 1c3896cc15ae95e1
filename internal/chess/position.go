package chess

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MaxBoardSize is the largest supported number of files (and ranks).
const MaxBoardSize = 14

// Position is a 0-based (file, rank) board coordinate.
type Position struct {
	File int
	Rank int
}

// Pos is shorthand for Position{file, rank}.
func Pos(file, rank int) Position {
	return Position{File: file, Rank: rank}
}

// Add returns the position displaced by o.
func (p Position) Add(o Offset) Position {
	return Position{File: p.File + o.DX, Rank: p.Rank + o.DY}
}

// Sub returns the offset leading from q to p.
func (p Position) Sub(q Position) Offset {
	return Offset{DX: p.File - q.File, DY: p.Rank - q.Rank}
}

// String renders the position algebraically: "a1", "n14".
func (p Position) String() string {
	if p.File < 0 || p.File >= 26 {
		return fmt.Sprintf("(%d,%d)", p.File, p.Rank)
	}
	return string(rune('a'+p.File)) + strconv.Itoa(p.Rank+1)
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(text []byte) error {
	parsed, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePosition parses an algebraic square such as "e2" or "a10".
func ParsePosition(s string) (Position, error) {
	if len(s) < 2 {
		return Position{}, fmt.Errorf("invalid square %q", s)
	}
	file := int(s[0]) - 'a'
	if file < 0 || file >= MaxBoardSize {
		return Position{}, fmt.Errorf("invalid file in square %q", s)
	}
	rank, err := strconv.Atoi(s[1:])
	if err != nil || rank < 1 || rank > MaxBoardSize {
		return Position{}, fmt.Errorf("invalid rank in square %q", s)
	}
	return Position{File: file, Rank: rank - 1}, nil
}

// MustParsePosition is ParsePosition for literals known to be valid.
func MustParsePosition(s string) Position {
	p, err := ParsePosition(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Chebyshev returns the king-move distance between two squares.
func Chebyshev(a, b Position) int {
	return max(abs(a.File-b.File), abs(a.Rank-b.Rank))
}

// Offset is a relative displacement: DX files to the right, DY ranks forward.
type Offset struct {
	DX int
	DY int
}

// Off is shorthand for Offset{dx, dy}.
func Off(dx, dy int) Offset {
	return Offset{DX: dx, DY: dy}
}

// Scale multiplies the offset by k.
func (o Offset) Scale(k int) Offset {
	return Offset{DX: o.DX * k, DY: o.DY * k}
}

// Plus returns the component-wise sum.
func (o Offset) Plus(q Offset) Offset {
	return Offset{DX: o.DX + q.DX, DY: o.DY + q.DY}
}

// Dot returns the dot product.
func (o Offset) Dot(q Offset) int {
	return o.DX*q.DX + o.DY*q.DY
}

// FlipRank mirrors the offset across the horizontal axis.
func (o Offset) FlipRank() Offset {
	return Offset{DX: o.DX, DY: -o.DY}
}

// IsZero reports whether the offset is (0, 0).
func (o Offset) IsZero() bool {
	return o.DX == 0 && o.DY == 0
}

func (o Offset) String() string {
	return fmt.Sprintf("(%d,%d)", o.DX, o.DY)
}

// PositionSet is an unordered set of squares.
type PositionSet map[Position]struct{}

// NewPositionSet builds a set from the given squares.
func NewPositionSet(ps ...Position) PositionSet {
	s := make(PositionSet, len(ps))
	for _, p := range ps {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts p.
func (s PositionSet) Add(p Position) {
	s[p] = struct{}{}
}

// Has reports whether p is in the set.
func (s PositionSet) Has(p Position) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of members.
func (s PositionSet) Len() int {
	return len(s)
}

// Remove deletes p.
func (s PositionSet) Remove(p Position) {
	delete(s, p)
}

// Union adds every member of other.
func (s PositionSet) Union(other PositionSet) {
	for p := range other {
		s[p] = struct{}{}
	}
}

// Clone returns an independent copy.
func (s PositionSet) Clone() PositionSet {
	return maps.Clone(s)
}

// Sorted returns the members ordered by file, then rank.
func (s PositionSet) Sorted() []Position {
	out := make([]Position, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, ComparePositions)
	return out
}

// Strings returns the sorted members in algebraic form.
func (s PositionSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, p := range sorted {
		out[i] = p.String()
	}
	return out
}

// ComparePositions orders squares by file, then rank.
func ComparePositions(a, b Position) int {
	if a.File != b.File {
		return a.File - b.File
	}
	return a.Rank - b.Rank
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
