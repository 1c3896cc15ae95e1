package chess

import (
	"strings"
	"sync/atomic"

	"golang.org/x/exp/maps"
)

// Piece is one piece instance on the board. ID is stable across moves,
// Count is the number of moves this instance has completed.
type Piece struct {
	ID     uint32
	Colour Colour
	Kind   Kind
	Count  int
}

// versionSeq issues board version stamps. It is process-wide so that a
// stamp identifies one board state even across clones.
var versionSeq atomic.Uint64

func nextVersion() uint64 {
	return versionSeq.Add(1)
}

// Board is a square board of Size files and ranks holding at most one
// piece per square. Every mutation advances Version.
type Board struct {
	size    int
	squares map[Position]Piece
	version uint64
	nextID  uint32
}

// NewBoard creates an empty board with size files and ranks.
func NewBoard(size int) *Board {
	return &Board{
		size:    size,
		squares: make(map[Position]Piece),
		version: nextVersion(),
	}
}

// Size returns the number of files (and ranks).
func (b *Board) Size() int {
	return b.size
}

// Version returns the current version stamp.
func (b *Board) Version() uint64 {
	return b.version
}

// InBounds reports whether p lies on the board.
func (b *Board) InBounds(p Position) bool {
	return p.File >= 0 && p.File < b.size && p.Rank >= 0 && p.Rank < b.size
}

// At returns the piece on p, if any.
func (b *Board) At(p Position) (Piece, bool) {
	pc, ok := b.squares[p]
	return pc, ok
}

// IsEmpty reports whether p is on the board and unoccupied.
func (b *Board) IsEmpty(p Position) bool {
	if !b.InBounds(p) {
		return false
	}
	_, ok := b.squares[p]
	return !ok
}

// Len returns the number of pieces on the board.
func (b *Board) Len() int {
	return len(b.squares)
}

// Place puts a new piece instance of kind k on p and returns it.
func (b *Board) Place(p Position, c Colour, k Kind) Piece {
	b.nextID++
	pc := Piece{ID: b.nextID, Colour: c, Kind: k}
	b.Set(p, pc)
	return pc
}

// Set puts pc on p, replacing any occupant.
func (b *Board) Set(p Position, pc Piece) {
	if pc.ID > b.nextID {
		b.nextID = pc.ID
	}
	b.squares[p] = pc
	b.version = nextVersion()
}

// Remove clears p and returns what stood there.
func (b *Board) Remove(p Position) (Piece, bool) {
	pc, ok := b.squares[p]
	if ok {
		delete(b.squares, p)
		b.version = nextVersion()
	}
	return pc, ok
}

// Move relocates the piece on from to to, capturing any occupant of to.
func (b *Board) Move(from, to Position) (captured Piece, didCapture bool) {
	pc, ok := b.squares[from]
	if !ok || from == to {
		return Piece{}, false
	}
	captured, didCapture = b.squares[to]
	delete(b.squares, from)
	b.squares[to] = pc
	b.version = nextVersion()
	return captured, didCapture
}

// Clone returns an independent copy with the same version stamp.
func (b *Board) Clone() *Board {
	return &Board{
		size:    b.size,
		squares: maps.Clone(b.squares),
		version: b.version,
		nextID:  b.nextID,
	}
}

// Positions returns the occupied squares ordered by file, then rank.
func (b *Board) Positions() []Position {
	set := make(PositionSet, len(b.squares))
	for p := range b.squares {
		set.Add(p)
	}
	return set.Sorted()
}

// Occupied returns the squares holding pieces of colour c.
func (b *Board) Occupied(c Colour) []Position {
	var out []Position
	for _, p := range b.Positions() {
		if b.squares[p].Colour == c {
			out = append(out, p)
		}
	}
	return out
}

// Find returns the squares whose piece satisfies match, in board order.
func (b *Board) Find(match func(Piece) bool) []Position {
	var out []Position
	for _, p := range b.Positions() {
		if match(b.squares[p]) {
			out = append(out, p)
		}
	}
	return out
}

// Equal reports whether both boards hold the same pieces on the same squares.
func (b *Board) Equal(other *Board) bool {
	if other == nil || b.size != other.size {
		return false
	}
	return maps.Equal(b.squares, other.squares)
}

// String renders the board from Black's side down to rank 1, one kind
// abbreviation per square, upper case for White.
func (b *Board) String() string {
	var sb strings.Builder
	for rank := b.size - 1; rank >= 0; rank-- {
		for file := 0; file < b.size; file++ {
			if file > 0 {
				sb.WriteByte(' ')
			}
			pc, ok := b.squares[Pos(file, rank)]
			cell := "."
			if ok {
				cell = string(pc.Kind)
				if pc.Colour == Black {
					cell = strings.ToLower(cell)
				}
			}
			sb.WriteString(cell)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
