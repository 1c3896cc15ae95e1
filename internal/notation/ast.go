package notation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lgbarn/fairychess-go/internal/chess"
)

// Node is the interface for all expression tree nodes.
type Node interface {
	node()
	String() string
}

// Direction is an explicit set of vectors: "+", "x" or "n/m".
type Direction struct {
	Symbol  string
	Vectors []chess.Offset
}

func (d *Direction) node() {}
func (d *Direction) String() string {
	return d.Symbol
}

// Symmetrize expands each inner vector into its eight symmetric images.
type Symmetrize struct {
	Inner Node
}

func (s *Symmetrize) node() {}
func (s *Symmetrize) String() string {
	return "**" + s.Inner.String()
}

// Scale multiplies every inner vector by Factor.
type Scale struct {
	Factor int
	Inner  Node
}

func (s *Scale) node() {}
func (s *Scale) String() string {
	return strconv.Itoa(s.Factor) + s.Inner.String()
}

// Bound turns the inner vectors into a rider of at most Limit steps.
// A zero Limit rides until blocked.
type Bound struct {
	Limit int
	Inner Node
}

func (b *Bound) node() {}
func (b *Bound) String() string {
	if b.Limit == 0 {
		return b.Inner.String() + "_"
	}
	return b.Inner.String() + strconv.Itoa(b.Limit)
}

// MoveOnly forbids captures.
type MoveOnly struct {
	Inner Node
}

func (m *MoveOnly) node() {}
func (m *MoveOnly) String() string {
	return "m(" + m.Inner.String() + ")"
}

// CaptureOnly requires captures.
type CaptureOnly struct {
	Inner Node
}

func (c *CaptureOnly) node() {}
func (c *CaptureOnly) String() string {
	return "c(" + c.Inner.String() + ")"
}

// Union combines alternatives.
type Union struct {
	Terms []Node
}

func (u *Union) node() {}
func (u *Union) String() string {
	parts := make([]string, len(u.Terms))
	for i, t := range u.Terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

// Sequence is "First then Then": Then is evaluated from each square First
// reaches, and the squares First passes over must be empty.
type Sequence struct {
	First Node
	Then  Node
}

func (s *Sequence) node() {}
func (s *Sequence) String() string {
	return s.First.String() + ">" + s.Then.String()
}

// FilterMode selects which vectors of the second part of a Sequence
// survive relative to the first part's direction.
type FilterMode byte

const (
	Outward       FilterMode = 'o' // dot product >= 0
	StrictOutward FilterMode = 's' // dot product > 0
	Nearest       FilterMode = 'n' // largest dot product
	Perpendicular FilterMode = 'p' // dot product == 0
)

// OutwardFilter restricts the second part of a Sequence by direction.
type OutwardFilter struct {
	Mode  FilterMode
	Inner Node
}

func (o *OutwardFilter) node() {}
func (o *OutwardFilter) String() string {
	return fmt.Sprintf("%c(%s)", o.Mode, o.Inner.String())
}

// keep reports which of candidates survive the filter against base.
func (m FilterMode) keep(base chess.Offset, candidates []chess.Offset) []chess.Offset {
	best := 0
	if m == Nearest {
		for i, c := range candidates {
			if d := base.Dot(c); i == 0 || d > best {
				best = d
			}
		}
	}
	var out []chess.Offset
	for _, c := range candidates {
		d := base.Dot(c)
		switch m {
		case Outward:
			if d >= 0 {
				out = append(out, c)
			}
		case StrictOutward:
			if d > 0 {
				out = append(out, c)
			}
		case Nearest:
			if d == best {
				out = append(out, c)
			}
		case Perpendicular:
			if d == 0 {
				out = append(out, c)
			}
		}
	}
	return out
}
