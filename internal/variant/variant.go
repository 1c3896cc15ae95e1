// Package variant defines the playable variants: board size, castling,
// promotion choices and the starting placement, loaded from an embedded
// YAML table and validated against the piece catalog.
package variant

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
)

//go:embed variants.yaml
var builtin []byte

// MinBoardSize is the smallest supported number of files.
const MinBoardSize = 5

// Random placement schemes.
const (
	RandomNone     = ""
	RandomChess960 = "chess960"
)

// Cell is one square of a placement row. An empty Kind leaves the square
// empty. Colour is only meaningful in asymmetric variants.
type Cell struct {
	Kind   chess.Kind
	Colour chess.Colour
}

// Empty reports whether the cell places nothing.
func (c Cell) Empty() bool {
	return c.Kind == ""
}

// UnmarshalYAML accepts ~ (empty), a kind id, or a [kind, colour] pair.
func (c *Cell) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*c = Cell{}
			return nil
		}
		*c = Cell{Kind: chess.Kind(node.Value), Colour: chess.White}
		return nil
	case yaml.SequenceNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: placement pair needs kind and colour: %w", node.Line, errors.ErrInvalidVariant)
		}
		colour, err := chess.ParseColour(node.Content[1].Value)
		if err != nil {
			return fmt.Errorf("line %d: %v: %w", node.Line, err, errors.ErrInvalidVariant)
		}
		*c = Cell{Kind: chess.Kind(node.Content[0].Value), Colour: colour}
		return nil
	}
	return fmt.Errorf("line %d: bad placement cell: %w", node.Line, errors.ErrInvalidVariant)
}

// Row is one placement rank. It decodes its cells itself because yaml.v3
// drops null sequence items without calling the element's unmarshaler.
type Row []Cell

// UnmarshalYAML decodes a sequence of cells, ~ included.
func (r *Row) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: placement row must be a list: %w", node.Line, errors.ErrInvalidVariant)
	}
	row := make(Row, len(node.Content))
	for i, item := range node.Content {
		if err := row[i].UnmarshalYAML(item); err != nil {
			return err
		}
	}
	*r = row
	return nil
}

// MarshalYAML writes the cell back in the form UnmarshalYAML reads.
func (c Cell) MarshalYAML() (interface{}, error) {
	if c.Empty() {
		return nil, nil
	}
	return string(c.Kind), nil
}

// Variant is one game definition.
type Variant struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Size     int            `yaml:"size"`
	Castling bool           `yaml:"castling"`
	Promote  []chess.Kind   `yaml:"promote2"`
	Asym     bool           `yaml:"asym"`
	Placers  map[int]Row    `yaml:"placers"`
	Random   string         `yaml:"random,omitempty"`
}

func (v *Variant) String() string {
	return fmt.Sprintf("%s (%dx%d)", v.Name, v.Size, v.Size)
}

// Ranks returns the placer rank numbers in ascending order.
func (v *Variant) Ranks() []int {
	ranks := make([]int, 0, len(v.Placers))
	for r := range v.Placers {
		ranks = append(ranks, r)
	}
	slices.Sort(ranks)
	return ranks
}

// CanPromoteTo reports whether k is one of the variant's promotion choices.
func (v *Variant) CanPromoteTo(k chess.Kind) bool {
	for _, p := range v.Promote {
		if p == k {
			return true
		}
	}
	return false
}

func (v *Variant) invalid(format string, args ...interface{}) error {
	return fmt.Errorf("variant %s: %s: %w", v.ID, fmt.Sprintf(format, args...), errors.ErrInvalidVariant)
}

// Validate checks the definition against the catalog: board size, row
// lengths, known kinds, exactly one royal piece per colour and, when
// castling is enabled, a castling rook on each side of the king.
func (v *Variant) Validate(cat *catalog.Catalog) error {
	if v.ID == "" {
		return fmt.Errorf("variant without id: %w", errors.ErrInvalidVariant)
	}
	if v.Size < MinBoardSize || v.Size > chess.MaxBoardSize {
		return v.invalid("size %d outside %d..%d", v.Size, MinBoardSize, chess.MaxBoardSize)
	}
	switch v.Random {
	case RandomNone:
	case RandomChess960:
		if v.Size != 8 || v.Asym {
			return v.invalid("chess960 placement needs a symmetric 8x8 board")
		}
	default:
		return v.invalid("unknown random placement %q", v.Random)
	}
	if v.Castling && v.Asym {
		return v.invalid("castling needs a symmetric placement")
	}

	for _, rank := range v.Ranks() {
		row := v.Placers[rank]
		if rank < 1 || rank > v.Size {
			return v.invalid("rank %d off the board", rank)
		}
		if len(row) != v.Size {
			return v.invalid("rank %d has %d cells, want %d", rank, len(row), v.Size)
		}
		for _, cell := range row {
			if cell.Empty() {
				continue
			}
			if _, err := cat.Lookup(cell.Kind); err != nil {
				return errors.Wrapf(err, "variant %s rank %d", v.ID, rank)
			}
		}
	}
	for _, k := range v.Promote {
		if _, err := cat.Lookup(k); err != nil {
			return errors.Wrapf(err, "variant %s promotion", v.ID)
		}
	}

	b, err := v.place(v.Placers[1])
	if err != nil {
		return err
	}
	for _, c := range chess.Colours {
		royals := b.Find(func(pc chess.Piece) bool {
			k, _ := cat.Kind(pc.Kind)
			return pc.Colour == c && k.Royal
		})
		if len(royals) != 1 {
			return v.invalid("%s has %d royal pieces, want 1", c, len(royals))
		}
	}
	if v.Castling {
		if _, err := castlingFiles(v, cat, v.Placers[1]); err != nil {
			return err
		}
	}
	if len(v.Promote) == 0 && len(b.Find(func(pc chess.Piece) bool {
		k, _ := cat.Kind(pc.Kind)
		return k.Pawn
	})) > 0 {
		return v.invalid("pawns without promotion choices")
	}
	return nil
}

// place builds the starting board with first as the first-rank row.
func (v *Variant) place(first []Cell) (*chess.Board, error) {
	b := chess.NewBoard(v.Size)
	for file := 0; file < v.Size; file++ {
		for _, rank := range v.Ranks() {
			row := v.Placers[rank]
			if rank == 1 {
				row = first
			}
			if file >= len(row) || row[file].Empty() {
				continue
			}
			cell := row[file]
			if v.Asym {
				b.Place(chess.Pos(file, rank-1), cell.Colour, cell.Kind)
				continue
			}
			b.Place(chess.Pos(file, rank-1), chess.White, cell.Kind)
			b.Place(chess.Pos(file, v.Size-rank), chess.Black, cell.Kind)
		}
	}
	if b.Len() == 0 {
		return nil, v.invalid("empty placement")
	}
	return b, nil
}

// Registry holds variants by id, in table order.
type Registry struct {
	byID  map[string]*Variant
	order []string
}

// Load reads a YAML variant list and validates every entry against cat.
func Load(r io.Reader, cat *catalog.Catalog) (*Registry, error) {
	var list []*Variant
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("decode variants: %v: %w", err, errors.ErrInvalidVariant)
	}
	reg := &Registry{byID: make(map[string]*Variant, len(list))}
	for _, v := range list {
		if err := reg.Add(v, cat); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Add validates v and appends it to the registry.
func (r *Registry) Add(v *Variant, cat *catalog.Catalog) error {
	if err := v.Validate(cat); err != nil {
		return err
	}
	if _, dup := r.byID[v.ID]; dup {
		return v.invalid("duplicate id")
	}
	r.byID[v.ID] = v
	r.order = append(r.order, v.ID)
	return nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the builtin variants, validated against the default
// catalog.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		cat, err := catalog.Default()
		if err != nil {
			defaultErr = err
			return
		}
		defaultReg, defaultErr = Load(bytes.NewReader(builtin), cat)
	})
	return defaultReg, defaultErr
}

// LoadBuiltin validates the builtin variants against cat, for callers
// that replace the piece catalog but keep the variant table.
func LoadBuiltin(cat *catalog.Catalog) (*Registry, error) {
	return Load(bytes.NewReader(builtin), cat)
}

// MustDefault is Default, panicking on a broken builtin table.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the variant with the given id.
func (r *Registry) Lookup(id string) (*Variant, error) {
	v, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown variant %q: %w", id, errors.ErrInvalidVariant)
	}
	return v, nil
}

// Variants returns every variant in table order.
func (r *Registry) Variants() []*Variant {
	out := make([]*Variant, len(r.order))
	for i, id := range r.order {
		out[i] = r.byID[id]
	}
	return out
}

// Len returns the number of variants.
func (r *Registry) Len() int {
	return len(r.order)
}
