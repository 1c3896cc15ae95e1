package variant

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
)

// StandardPosition is the Chess960 number of the classical array.
const StandardPosition = 518

// NumChess960 is the number of Chess960 starting arrays.
const NumChess960 = 960

// CastlingFiles records where the king and the castling rooks start.
type CastlingFiles struct {
	King  int
	Rooks [2]int // indexed by chess.Side
}

// Start is a ready-to-play starting position.
type Start struct {
	Variant  *Variant
	Board    *chess.Board
	Castling *CastlingFiles // nil when the variant has no castling
	Position int            // Chess960 number, -1 for fixed placements
}

type startOptions struct {
	position int
	rng      *rand.Rand
}

// StartOption configures Variant.Start.
type StartOption func(*startOptions)

// WithPosition fixes the Chess960 array instead of drawing one.
func WithPosition(id int) StartOption {
	return func(o *startOptions) {
		o.position = id
	}
}

// WithRand sets the random source used to draw a Chess960 array.
func WithRand(r *rand.Rand) StartOption {
	return func(o *startOptions) {
		o.rng = r
	}
}

// Start builds the starting board. Randomly placed variants draw a
// Chess960 array other than the classical one unless WithPosition is given.
func (v *Variant) Start(cat *catalog.Catalog, opts ...StartOption) (*Start, error) {
	o := startOptions{position: -1}
	for _, opt := range opts {
		opt(&o)
	}

	first := v.Placers[1]
	st := &Start{Variant: v, Position: -1}
	if v.Random == RandomChess960 {
		id := o.position
		if id < 0 {
			id = drawChess960(o.rng)
		}
		row, err := Chess960(id)
		if err != nil {
			return nil, err
		}
		first = make([]Cell, len(row))
		for i, k := range row {
			first[i] = Cell{Kind: k, Colour: chess.White}
		}
		st.Position = id
	}

	b, err := v.place(first)
	if err != nil {
		return nil, err
	}
	st.Board = b
	if v.Castling {
		files, err := castlingFiles(v, cat, first)
		if err != nil {
			return nil, err
		}
		st.Castling = files
	}
	return st, nil
}

func drawChess960(r *rand.Rand) int {
	for {
		var id int
		if r != nil {
			id = r.Intn(NumChess960)
		} else {
			id = rand.Intn(NumChess960)
		}
		if id != StandardPosition {
			return id
		}
	}
}

// knightRookKing fills the last five empty squares, indexed by the
// remaining quotient of the Chess960 number.
var knightRookKing = [10][5]chess.Kind{
	{chess.Knight, chess.Knight, chess.Rook, chess.King, chess.Rook},
	{chess.Knight, chess.Rook, chess.Knight, chess.King, chess.Rook},
	{chess.Knight, chess.Rook, chess.King, chess.Knight, chess.Rook},
	{chess.Knight, chess.Rook, chess.King, chess.Rook, chess.Knight},
	{chess.Rook, chess.Knight, chess.Knight, chess.King, chess.Rook},
	{chess.Rook, chess.Knight, chess.King, chess.Knight, chess.Rook},
	{chess.Rook, chess.Knight, chess.King, chess.Rook, chess.Knight},
	{chess.Rook, chess.King, chess.Knight, chess.Knight, chess.Rook},
	{chess.Rook, chess.King, chess.Knight, chess.Rook, chess.Knight},
	{chess.Rook, chess.King, chess.Rook, chess.Knight, chess.Knight},
}

// Chess960 returns the first-rank array with the given number, 0..959.
func Chess960(id int) ([]chess.Kind, error) {
	if id < 0 || id >= NumChess960 {
		return nil, fmt.Errorf("chess960 position %d: %w", id, errors.ErrInvalidVariant)
	}
	row := make([]chess.Kind, 8)

	q, r := id/4, id%4
	row[2*r+1] = chess.Bishop
	q, r = q/4, q%4
	row[2*r] = chess.Bishop
	q, r = q/6, q%6
	for i := range row {
		if row[i] != "" {
			continue
		}
		if r == 0 {
			row[i] = chess.Queen
			break
		}
		r--
	}

	rest := knightRookKing[q]
	n := 0
	for i := range row {
		if row[i] == "" {
			row[i] = rest[n]
			n++
		}
	}
	return row, nil
}

// castlingFiles finds the royal piece and the castling rook on each side
// of it in the first-rank row.
func castlingFiles(v *Variant, cat *catalog.Catalog, row []Cell) (*CastlingFiles, error) {
	king := -1
	var rooks []int
	for file, cell := range row {
		if cell.Empty() {
			continue
		}
		k, ok := cat.Kind(cell.Kind)
		if !ok {
			return nil, v.invalid("unknown kind %s on rank 1", cell.Kind)
		}
		switch {
		case k.Royal:
			if king >= 0 {
				return nil, v.invalid("castling with two royal pieces on rank 1")
			}
			king = file
		case k.CastlingRook:
			rooks = append(rooks, file)
		}
	}
	if king < 0 {
		return nil, v.invalid("castling without a royal piece on rank 1")
	}
	if len(rooks) != 2 || rooks[0] > king || rooks[1] < king {
		return nil, v.invalid("castling needs one rook on each side of the king, got files %v", rooks)
	}
	return &CastlingFiles{King: king, Rooks: [2]int{rooks[0], rooks[1]}}, nil
}
