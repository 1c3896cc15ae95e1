// Package snapshot saves and resumes games. A snapshot records the whole
// history so that undo keeps working after a resume.
package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/engine"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

// Piece is one piece on a recorded board.
type Piece struct {
	Position chess.Position `yaml:"position"`
	Kind     chess.Kind     `yaml:"kind"`
	Colour   chess.Colour   `yaml:"colour"`
	Count    int            `yaml:"count"`
	ID       uint32         `yaml:"id,omitempty"`
}

// Rights are one colour's castling rights.
type Rights struct {
	QueenSide bool `yaml:"queenside"`
	KingSide  bool `yaml:"kingside"`
}

// Castling holds a value per colour.
type Castling struct {
	White Rights `yaml:"white"`
	Black Rights `yaml:"black"`
}

// Castled holds the ply each colour castled on, -1 if not yet.
type Castled struct {
	White int `yaml:"white"`
	Black int `yaml:"black"`
}

// Frame is the recorded state after one ply.
type Frame struct {
	Ply      int          `yaml:"ply"`
	Turn     chess.Colour `yaml:"turn"`
	Board    []Piece      `yaml:"board"`
	Castling Castling     `yaml:"castling"`
}

// Snapshot is a saved game together with the session settings it was
// played under.
type Snapshot struct {
	Variant   string       `yaml:"variant"`
	Mode      string       `yaml:"mode"`
	Player    chess.Colour `yaml:"player"`
	Level     int          `yaml:"level"`
	Foresight bool         `yaml:"foresight"`

	Board    []Piece      `yaml:"board"`
	Turn     chess.Colour `yaml:"turn"`
	Ply      int          `yaml:"ply"`
	Castling Castling     `yaml:"castling"`

	// History holds every recorded ply, including undone plies that can
	// still be redone.
	History []Frame `yaml:"history"`
	// EnPassant maps a ply to the pawn that double-stepped on it.
	EnPassant map[int]chess.Position `yaml:"en_passant,omitempty"`
	CastledAt Castled                `yaml:"castled_at"`
	Files     *variant.CastlingFiles `yaml:"files,omitempty"`
}

// Settings are the session fields stored alongside the game.
type Settings struct {
	Mode      string
	Player    chess.Colour // colour of the human in a game against the computer
	Level     int
	Foresight bool
}

// Capture records g. A move waiting for a choice is not recorded: the
// snapshot holds the last completed ply.
func Capture(g *engine.Game, s Settings) *Snapshot {
	history := g.History()
	cur := history[g.Ply()]
	// Castles are monotone along the recorded line, so the last frame
	// knows every castle including those in the redo tail.
	last := history[len(history)-1]
	snap := &Snapshot{
		Variant:   g.Variant().ID,
		Mode:      s.Mode,
		Player:    s.Player,
		Level:     s.Level,
		Foresight: s.Foresight,
		Board:     pieces(cur.Board, false),
		Turn:      cur.Turn,
		Ply:       g.Ply(),
		Castling:  castling(cur.Castling),
		CastledAt: Castled{White: last.Castled[chess.White], Black: last.Castled[chess.Black]},
		Files:     g.CastlingFiles(),
	}
	for ply, f := range history {
		snap.History = append(snap.History, Frame{
			Ply:      ply,
			Turn:     f.Turn,
			Board:    pieces(f.Board, true),
			Castling: castling(f.Castling),
		})
		if f.DoubleStep != nil {
			if snap.EnPassant == nil {
				snap.EnPassant = make(map[int]chess.Position)
			}
			snap.EnPassant[ply] = *f.DoubleStep
		}
	}
	return snap
}

// pieces lists the board. Instance ids are kept for history frames so
// that a resumed game tells pieces apart the same way.
func pieces(b *chess.Board, ids bool) []Piece {
	var out []Piece
	for _, p := range b.Positions() {
		pc, _ := b.At(p)
		rec := Piece{Position: p, Kind: pc.Kind, Colour: pc.Colour, Count: pc.Count}
		if ids {
			rec.ID = pc.ID
		}
		out = append(out, rec)
	}
	return out
}

func castling(r [2][2]bool) Castling {
	return Castling{
		White: Rights{QueenSide: r[chess.White][chess.QueenSide], KingSide: r[chess.White][chess.KingSide]},
		Black: Rights{QueenSide: r[chess.Black][chess.QueenSide], KingSide: r[chess.Black][chess.KingSide]},
	}
}

func (c Castling) rights() [2][2]bool {
	var r [2][2]bool
	r[chess.White] = [2]bool{c.White.QueenSide, c.White.KingSide}
	r[chess.Black] = [2]bool{c.Black.QueenSide, c.Black.KingSide}
	return r
}

// at returns the Castled field of the frame at ply: a castle counts from
// the ply it completed on.
func (c Castled) at(ply int) [2]int {
	out := [2]int{-1, -1}
	for i, at := range [2]int{c.White, c.Black} {
		if at >= 0 && at <= ply {
			out[i] = at
		}
	}
	return out
}

// Resume rebuilds the game. A variant the registry does not know, or a
// snapshot inconsistent with it, yields ErrSnapshotUnavailable.
func (s *Snapshot) Resume(reg *variant.Registry, cat *catalog.Catalog) (*engine.Game, error) {
	v, err := reg.Lookup(s.Variant)
	if err != nil {
		return nil, unavailable(err)
	}
	if len(s.History) == 0 {
		return nil, unavailable(fmt.Errorf("no history"))
	}
	if s.Ply < 0 || s.Ply >= len(s.History) {
		return nil, unavailable(fmt.Errorf("ply %d outside history of %d", s.Ply, len(s.History)))
	}

	frames := make([]engine.Frame, len(s.History))
	for i, rec := range s.History {
		if rec.Ply != i {
			return nil, unavailable(fmt.Errorf("history entry %d records ply %d", i, rec.Ply))
		}
		b, err := board(v.Size, cat, rec.Board)
		if err != nil {
			return nil, unavailable(err)
		}
		f := engine.Frame{
			Board:    b,
			Turn:     rec.Turn,
			Castling: rec.Castling.rights(),
			Castled:  s.CastledAt.at(i),
		}
		if p, ok := s.EnPassant[i]; ok {
			f.DoubleStep = &p
		}
		frames[i] = f
	}

	if !matches(frames[s.Ply].Board, s.Board) || s.Turn != frames[s.Ply].Turn {
		return nil, unavailable(fmt.Errorf("board does not match history at ply %d", s.Ply))
	}

	g, err := engine.NewGameFromFrame(v, cat, frames[0], s.Files)
	if err != nil {
		return nil, unavailable(err)
	}
	if err := g.Restore(frames, s.Ply); err != nil {
		return nil, unavailable(err)
	}
	return g, nil
}

func board(size int, cat *catalog.Catalog, list []Piece) (*chess.Board, error) {
	b := chess.NewBoard(size)
	for _, p := range list {
		if !b.InBounds(p.Position) {
			return nil, fmt.Errorf("%s off a %dx%d board", p.Position, size, size)
		}
		if !b.IsEmpty(p.Position) {
			return nil, fmt.Errorf("two pieces on %s", p.Position)
		}
		if _, err := cat.Lookup(p.Kind); err != nil {
			return nil, err
		}
		if p.ID == 0 {
			placed := b.Place(p.Position, p.Colour, p.Kind)
			placed.Count = p.Count
			b.Set(p.Position, placed)
			continue
		}
		b.Set(p.Position, chess.Piece{ID: p.ID, Colour: p.Colour, Kind: p.Kind, Count: p.Count})
	}
	return b, nil
}

// matches reports whether list describes b, ignoring instance ids.
func matches(b *chess.Board, list []Piece) bool {
	if b.Len() != len(list) {
		return false
	}
	for _, p := range list {
		pc, ok := b.At(p.Position)
		if !ok || pc.Kind != p.Kind || pc.Colour != p.Colour || pc.Count != p.Count {
			return false
		}
	}
	return true
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", errors.ErrSnapshotUnavailable, err)
}

// Encode writes s as YAML.
func Encode(w io.Writer, s *Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

// Decode reads a YAML snapshot.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, unavailable(err)
	}
	return &s, nil
}

// Save writes s to path.
func Save(path string, s *Snapshot) error {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Load reads a snapshot from path. A missing or unreadable file yields
// ErrSnapshotUnavailable.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, unavailable(err)
	}
	return Decode(bytes.NewReader(data))
}
