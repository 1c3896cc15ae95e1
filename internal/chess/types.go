// Package chess provides the core data model for variable-size fairy chess:
// colours, board coordinates, piece instances and the versioned board.
package chess

import (
	"fmt"
	"strings"
)

// Colour represents the colour of a piece or player.
type Colour int

const (
	Black Colour = iota
	White
)

// Colours lists both colours, White first.
var Colours = [2]Colour{White, Black}

// String returns the string representation of a colour.
func (c Colour) String() string {
	if c == White {
		return "White"
	}
	return "Black"
}

// Opposite returns the opposite colour.
func (c Colour) Opposite() Colour {
	if c == White {
		return Black
	}
	return White
}

// Forward returns the rank direction pawns of this colour advance in.
func (c Colour) Forward() int {
	if c == White {
		return 1
	}
	return -1
}

// MarshalText implements encoding.TextMarshaler.
func (c Colour) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(c.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Colour) UnmarshalText(text []byte) error {
	parsed, err := ParseColour(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColour parses "white"/"black" (or "w"/"b"), case-insensitively.
func ParseColour(s string) (Colour, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return Black, fmt.Errorf("unknown colour %q", s)
}

// Side identifies a castling wing.
type Side int

const (
	QueenSide Side = iota // towards file a
	KingSide              // towards the last file
)

// Sides lists both castling wings.
var Sides = [2]Side{QueenSide, KingSide}

// String returns the string representation of a side.
func (s Side) String() string {
	if s == KingSide {
		return "kingside"
	}
	return "queenside"
}

// Kind is the catalog identifier of a piece kind, e.g. "K", "N" or "Gr".
type Kind string

// Standard kinds referenced directly by the engine and importers.
const (
	King   Kind = "K"
	Queen  Kind = "Q"
	Rook   Kind = "R"
	Bishop Kind = "B"
	Knight Kind = "N"
	Pawn   Kind = "P"
)
