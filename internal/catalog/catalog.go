// Package catalog holds the piece kinds a variant can place and evaluates
// their movement on a board.
//
// A kind is data: an identifier, a material value, a movement descriptor
// (notation or a builtin generator) and capability flags. Kinds are loaded
// from YAML; the default catalog is embedded. Bind compiles every kind for
// one board size, and Rules.View evaluates movement against one board.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/notation"
)

//go:embed kinds.yaml
var defaultKinds []byte

// Effect is what a zone does to non-zone pieces starting inside it.
type Effect string

const (
	// Freeze leaves pieces without moves.
	Freeze Effect = "freeze"
	// Slow restricts pieces to single king steps.
	Slow Effect = "slow"
)

// Mimicry selects which neighbours donate movement to a mimicry kind.
type Mimicry string

const (
	// Threat donors are enemy pieces that attack the mimic.
	Threat Mimicry = "threat"
	// Defend donors are own pieces that defend the mimic.
	Defend Mimicry = "defend"
)

// Zone describes the area a zone kind projects.
type Zone struct {
	Radius int    `yaml:"radius"`
	Effect Effect `yaml:"effect"`
}

// Params configure builtin generators.
type Params struct {
	Dirs        string `yaml:"dirs,omitempty"`
	Reflections int    `yaml:"reflections,omitempty"`
	Series      string `yaml:"series,omitempty"`
	Chain       int    `yaml:"chain,omitempty"`
	AllGroups   bool   `yaml:"all_groups,omitempty"`
	Gated       bool   `yaml:"gated,omitempty"`
}

// Kind is an immutable piece kind descriptor.
type Kind struct {
	ID    chess.Kind `yaml:"id"`
	Name  string     `yaml:"name"`
	Value float64    `yaml:"value"`

	// Move is the movement notation. Capture, when set, replaces Move for
	// captures: Move then only reaches empty squares through m().
	Move      string `yaml:"move,omitempty"`
	Capture   string `yaml:"capture,omitempty"`
	Relative  bool   `yaml:"relative,omitempty"`
	Generator string `yaml:"generator,omitempty"`
	Params    Params `yaml:"params,omitempty"`

	Royal        bool    `yaml:"royal,omitempty"`
	Pawn         bool    `yaml:"pawn,omitempty"`
	CastlingRook bool    `yaml:"castling_rook,omitempty"`
	Mimicry      Mimicry `yaml:"mimicry,omitempty"`
	Archer       []int   `yaml:"archer,omitempty"`
	Zone         *Zone   `yaml:"zone,omitempty"`
}

// Counting reports whether the kind's movement depends on its move counter.
func (k *Kind) Counting() bool {
	f, ok := generators[k.Generator]
	return ok && f.counting
}

// IsArcher reports whether the kind may fire after a quiet move.
func (k *Kind) IsArcher() bool {
	return len(k.Archer) > 0
}

// IsMimic reports whether the kind borrows movement from its neighbours.
func (k *Kind) IsMimic() bool {
	return k.Mimicry != ""
}

// IsZone reports whether the kind projects a zone.
func (k *Kind) IsZone() bool {
	return k.Zone != nil
}

func (k *Kind) String() string {
	return string(k.ID)
}

func (k *Kind) validate() error {
	if k.ID == "" {
		return fmt.Errorf("kind without id: %w", errors.ErrInvalidVariant)
	}
	if k.Generator != "" {
		if _, ok := generators[k.Generator]; !ok {
			return fmt.Errorf("kind %s: unknown generator %q: %w", k.ID, k.Generator, errors.ErrInvalidVariant)
		}
	}
	if k.Generator == "" && k.Move == "" && !k.IsMimic() {
		return fmt.Errorf("kind %s: no movement: %w", k.ID, errors.ErrInvalidVariant)
	}
	switch k.Mimicry {
	case "", Threat, Defend:
	default:
		return fmt.Errorf("kind %s: unknown mimicry %q: %w", k.ID, k.Mimicry, errors.ErrInvalidVariant)
	}
	if k.Zone != nil {
		if k.Zone.Radius < 0 || (k.Zone.Effect != Freeze && k.Zone.Effect != Slow) {
			return fmt.Errorf("kind %s: bad zone %+v: %w", k.ID, *k.Zone, errors.ErrInvalidVariant)
		}
	}
	return nil
}

// Catalog is an immutable set of kinds indexed by id.
type Catalog struct {
	kinds map[chess.Kind]*Kind
	order []chess.Kind
}

// Load reads a YAML list of kinds and checks that every notation compiles.
func Load(r io.Reader) (*Catalog, error) {
	var kinds []*Kind
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&kinds); err != nil {
		return nil, errors.Wrap(err, "decode kinds")
	}
	return New(kinds...)
}

// New builds a catalog from descriptors. Ids must be unique.
func New(kinds ...*Kind) (*Catalog, error) {
	c := &Catalog{kinds: make(map[chess.Kind]*Kind, len(kinds))}
	for _, k := range kinds {
		if err := k.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.kinds[k.ID]; dup {
			return nil, fmt.Errorf("duplicate kind %s: %w", k.ID, errors.ErrInvalidVariant)
		}
		for _, src := range []string{k.Move, k.Capture, k.Params.Dirs} {
			if src == "" {
				continue
			}
			if _, err := notation.Compile(src, notation.WithBoardSize(chess.MaxBoardSize)); err != nil {
				return nil, errors.Wrapf(err, "kind %s", k.ID)
			}
		}
		c.kinds[k.ID] = k
		c.order = append(c.order, k.ID)
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(bytes.NewReader(defaultKinds))
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that treat a broken embedded catalog
// as a programming error.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Kind looks up a kind by id.
func (c *Catalog) Kind(id chess.Kind) (*Kind, bool) {
	k, ok := c.kinds[id]
	return k, ok
}

// Lookup is Kind returning ErrUnknownKind for missing ids.
func (c *Catalog) Lookup(id chess.Kind) (*Kind, error) {
	k, ok := c.kinds[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, errors.ErrUnknownKind)
	}
	return k, nil
}

// Kinds returns the kinds in catalog order.
func (c *Catalog) Kinds() []*Kind {
	out := make([]*Kind, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.kinds[id])
	}
	return out
}

// Len returns the number of kinds.
func (c *Catalog) Len() int {
	return len(c.order)
}

// IDs returns the kind ids sorted lexically.
func (c *Catalog) IDs() []chess.Kind {
	ids := slices.Clone(c.order)
	slices.Sort(ids)
	return ids
}
