package catalog

import (
	"fmt"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/geometry"
	"github.com/lgbarn/fairychess-go/internal/notation"
)

// Rules is a catalog compiled for one board size. It is immutable and safe
// for concurrent use; Views built from it are not.
type Rules struct {
	catalog *Catalog
	size    int
	kinds   map[chess.Kind]*bound
}

// bound is a kind with its movement compiled, per colour.
type bound struct {
	kind    *Kind
	move    [2]*notation.Program
	capture [2]*notation.Program
	gen     generator
}

// Bind compiles every kind for boards of size files and ranks.
func (c *Catalog) Bind(size int) (*Rules, error) {
	if size < 1 || size > chess.MaxBoardSize {
		return nil, fmt.Errorf("board size %d: %w", size, errors.ErrInvalidVariant)
	}
	r := &Rules{catalog: c, size: size, kinds: make(map[chess.Kind]*bound, len(c.kinds))}
	for _, k := range c.Kinds() {
		b, err := bind(k, size)
		if err != nil {
			return nil, err
		}
		r.kinds[k.ID] = b
	}
	return r, nil
}

func bind(k *Kind, size int) (*bound, error) {
	b := &bound{kind: k}
	if k.Generator != "" {
		gen, err := generators[k.Generator].build(k, size)
		if err != nil {
			return nil, err
		}
		b.gen = gen
		return b, nil
	}

	compile := func(src string) ([2]*notation.Program, error) {
		var out [2]*notation.Program
		if src == "" {
			return out, nil
		}
		prog, err := notation.Compile(src, notation.WithBoardSize(size))
		if err != nil {
			return out, errors.Wrapf(err, "kind %s", k.ID)
		}
		out[chess.White], out[chess.Black] = prog, prog
		if k.Relative {
			out[chess.Black] = prog.Mirror()
		}
		return out, nil
	}

	var err error
	if b.move, err = compile(k.Move); err != nil {
		return nil, err
	}
	if b.capture, err = compile(k.Capture); err != nil {
		return nil, err
	}
	return b, nil
}

// Catalog returns the catalog the rules were bound from.
func (r *Rules) Catalog() *Catalog {
	return r.catalog
}

// Size returns the board size the rules were bound for.
func (r *Rules) Size() int {
	return r.size
}

// Kind looks up a kind descriptor.
func (r *Rules) Kind(id chess.Kind) (*Kind, bool) {
	b, ok := r.kinds[id]
	if !ok {
		return nil, false
	}
	return b.kind, true
}

// Value returns the material value of a kind, zero when unknown.
func (r *Rules) Value(id chess.Kind) float64 {
	if b, ok := r.kinds[id]; ok {
		return b.kind.Value
	}
	return 0
}

// movement evaluates a non-mimic kind from from. count is the piece's move
// counter; attack selects the threat pattern.
func (b *bound) movement(pr geometry.Scope, from chess.Position, count int, attack bool) chess.PositionSet {
	if b.gen != nil {
		return b.gen(pr, from, count, attack)
	}
	move, capture := b.move[pr.Colour], b.capture[pr.Colour]
	if capture == nil {
		if move == nil {
			return make(chess.PositionSet)
		}
		return move.Moves(pr, from)
	}

	threats := capture.Moves(pr, from)
	if attack {
		return threats
	}
	out := make(chess.PositionSet)
	if move != nil {
		out = move.Moves(pr, from)
	}
	out.Union(enemies(pr, threats))
	return out
}
