package notation

import (
	"fmt"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/geometry"
)

// DefaultMacros are available to every compilation.
var DefaultMacros = map[string]string{
	"K": "+,x",
}

// Option configures compilation.
type Option func(*options)

type options struct {
	size   int
	macros map[string]string
}

// WithBoardSize sets the board size that unbounded first parts of a
// sequence expand against. Compiling such a sequence without it fails with
// ErrMissingBoardSize.
func WithBoardSize(n int) Option {
	return func(o *options) {
		o.size = n
	}
}

// WithMacro binds an upper-case name to notation.
func WithMacro(name, body string) Option {
	return func(o *options) {
		o.macros[name] = body
	}
}

// Program is a compiled, immutable movement expression. It is safe for
// concurrent use.
type Program struct {
	source string
	root   Node
	size   int
	mirror bool
}

// Compile parses and validates src.
func Compile(src string, opts ...Option) (*Program, error) {
	o := &options{macros: make(map[string]string, len(DefaultMacros))}
	for name, body := range DefaultMacros {
		o.macros[name] = body
	}
	for _, opt := range opts {
		opt(o)
	}

	root, err := Parse(src, o.macros)
	if err != nil {
		return nil, err
	}
	if err := validate(root, src, o.size, false); err != nil {
		return nil, err
	}
	return &Program{source: src, root: root, size: o.size}, nil
}

// MustCompile is Compile for notation known to be valid.
func MustCompile(src string, opts ...Option) *Program {
	p, err := Compile(src, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func validate(n Node, src string, size int, inThen bool) error {
	switch n := n.(type) {
	case *Direction:
		return nil
	case *Symmetrize:
		return validate(n.Inner, src, size, inThen)
	case *Scale:
		return validate(n.Inner, src, size, inThen)
	case *Bound:
		return validate(n.Inner, src, size, inThen)
	case *MoveOnly:
		return validate(n.Inner, src, size, inThen)
	case *CaptureOnly:
		return validate(n.Inner, src, size, inThen)
	case *OutwardFilter:
		if !inThen {
			return &errors.ParseError{Err: errors.ErrInvalidNotation, Source: src,
				Got: fmt.Sprintf("%c() outside the second part of a sequence", n.Mode)}
		}
		return validate(n.Inner, src, size, inThen)
	case *Union:
		for _, t := range n.Terms {
			if err := validate(t, src, size, inThen); err != nil {
				return err
			}
		}
		return nil
	case *Sequence:
		if inThen {
			return &errors.ParseError{Err: errors.ErrInvalidNotation, Source: src, Got: "nested sequence"}
		}
		core, _ := unwrapMode(n.First)
		if b, ok := core.(*Bound); ok && b.Limit == 0 && size <= 0 {
			return &errors.ParseError{Err: errors.ErrMissingBoardSize, Source: src, Got: n.First.String() + ">"}
		}
		if err := validate(n.First, src, size, false); err != nil {
			return err
		}
		return validate(n.Then, src, size, true)
	}
	return fmt.Errorf("unexpected node %T: %w", n, errors.ErrInvariant)
}

// String returns the notation the program was compiled from.
func (p *Program) String() string {
	return p.source
}

// Root returns the expression tree.
func (p *Program) Root() Node {
	return p.root
}

// Mirror returns the program with every vector reflected across the
// horizontal axis, for forward-relative movement of the second player.
func (p *Program) Mirror() *Program {
	m := *p
	m.mirror = !p.mirror
	return &m
}

// Vectors returns the first-step directions of the program.
func (p *Program) Vectors() []chess.Offset {
	return geometry.Unique(p.vectors(p.root))
}

// Moves returns the destinations the program reaches from from.
func (p *Program) Moves(pr geometry.Scope, from chess.Position) chess.PositionSet {
	out := make(chess.PositionSet)
	p.eval(p.root, pr, from, geometry.MoveOrCapture, out)
	return out
}

func (p *Program) eval(n Node, pr geometry.Scope, from chess.Position, mode geometry.Mode, out chess.PositionSet) {
	switch n := n.(type) {
	case *Direction, *Symmetrize, *Scale:
		out.Union(geometry.Leaper(pr, from, p.vectors(n), mode))
	case *Bound:
		out.Union(geometry.Rider(pr, from, p.vectors(n.Inner), n.Limit, mode))
	case *MoveOnly:
		p.eval(n.Inner, pr, from, geometry.MoveOnly, out)
	case *CaptureOnly:
		p.eval(n.Inner, pr, from, geometry.CaptureOnly, out)
	case *OutwardFilter:
		p.eval(n.Inner, pr, from, mode, out)
	case *Union:
		for _, t := range n.Terms {
			p.eval(t, pr, from, mode, out)
		}
	case *Sequence:
		p.evalSequence(n, pr, from, mode, out)
	}
}

func (p *Program) evalSequence(n *Sequence, pr geometry.Scope, from chess.Position, mode geometry.Mode, out chess.PositionSet) {
	firstCore, _ := unwrapMode(n.First)
	thenCore, thenMode := unwrapMode(n.Then)
	if thenMode != geometry.MoveOrCapture {
		mode = thenMode
	}
	filter, hasFilter := FilterMode(0), false
	if f, ok := thenCore.(*OutwardFilter); ok {
		filter, hasFilter = f.Mode, true
		thenCore, thenMode = unwrapMode(f.Inner)
		if thenMode != geometry.MoveOrCapture {
			mode = thenMode
		}
	}

	steps := 1
	firstVectors := p.vectors(firstCore)
	if b, ok := firstCore.(*Bound); ok {
		steps = b.Limit
		if steps == 0 {
			steps = p.size - 1
		}
	}

	limit, ride := 0, false
	thenVectors := p.vectors(thenCore)
	if b, ok := thenCore.(*Bound); ok {
		limit, ride = b.Limit, true
	}

	gates := make([]geometry.Gate, 0, len(firstVectors))
	for _, v := range geometry.Unique(firstVectors) {
		path := make([]chess.Offset, steps)
		for i := range path {
			path[i] = v.Scale(i + 1)
		}
		dest := thenVectors
		if hasFilter {
			dest = filter.keep(v, thenVectors)
		}
		gates = append(gates, geometry.Gate{Path: path, Dest: dest})
	}

	if ride {
		out.Union(geometry.SlideRider(pr, from, gates, limit, mode))
		return
	}
	out.Union(geometry.SlideLeaper(pr, from, gates, mode))
}

// vectors returns the direction set a node contributes, flattening riders
// and wrappers.
func (p *Program) vectors(n Node) []chess.Offset {
	switch n := n.(type) {
	case *Direction:
		if !p.mirror {
			return n.Vectors
		}
		out := make([]chess.Offset, len(n.Vectors))
		for i, v := range n.Vectors {
			out[i] = v.FlipRank()
		}
		return out
	case *Symmetrize:
		var out []chess.Offset
		for _, v := range p.vectors(n.Inner) {
			out = append(out, geometry.Dir8(v.DX, v.DY)...)
		}
		return geometry.Unique(out)
	case *Scale:
		inner := p.vectors(n.Inner)
		out := make([]chess.Offset, len(inner))
		for i, v := range inner {
			out[i] = v.Scale(n.Factor)
		}
		return out
	case *Bound:
		return p.vectors(n.Inner)
	case *MoveOnly:
		return p.vectors(n.Inner)
	case *CaptureOnly:
		return p.vectors(n.Inner)
	case *OutwardFilter:
		return p.vectors(n.Inner)
	case *Union:
		var out []chess.Offset
		for _, t := range n.Terms {
			out = append(out, p.vectors(t)...)
		}
		return geometry.Unique(out)
	case *Sequence:
		return p.vectors(n.First)
	}
	return nil
}

// unwrapMode strips move-only and capture-only wrappers.
func unwrapMode(n Node) (Node, geometry.Mode) {
	mode := geometry.MoveOrCapture
	for {
		switch w := n.(type) {
		case *MoveOnly:
			mode, n = geometry.MoveOnly, w.Inner
		case *CaptureOnly:
			mode, n = geometry.CaptureOnly, w.Inner
		default:
			return n, mode
		}
	}
}
