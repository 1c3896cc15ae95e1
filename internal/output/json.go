package output

import (
	"encoding/json"
	"io"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/engine"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

// JSONPiece is a piece on a square.
type JSONPiece struct {
	Square string `json:"square"`
	Kind   string `json:"kind"`
	Colour string `json:"colour"`
	Count  int    `json:"count,omitempty"`
}

// JSONPending describes a move waiting for a choice.
type JSONPending struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Targets []string `json:"targets,omitempty"` // archer fire targets
	Promote []string `json:"promote,omitempty"` // promotion kinds
}

// JSONState is the live state of a game.
type JSONState struct {
	Variant   string       `json:"variant"`
	Size      int          `json:"size"`
	Turn      string       `json:"turn"`
	Ply       int          `json:"ply"`
	Phase     string       `json:"phase"`
	Check     bool         `json:"check"`
	Checkmate bool         `json:"checkmate"`
	Stalemate bool         `json:"stalemate"`
	Result    string       `json:"result"`
	Pieces    []JSONPiece  `json:"pieces"`
	Castling  [2][2]bool   `json:"castling"` // [colour][side]
	Pending   *JSONPending `json:"pending,omitempty"`
	CanUndo   bool         `json:"canUndo"`
	CanRedo   bool         `json:"canRedo"`
	FEN       string       `json:"fen,omitempty"` // standard kinds on 8x8 only
}

// JSONMove is a move with the choice that completes it.
type JSONMove struct {
	Ply       int    `json:"ply,omitempty"`
	Colour    string `json:"colour,omitempty"`
	Move      string `json:"move"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Castle    string `json:"castle,omitempty"`
	Promotion string `json:"promotion,omitempty"`
	Fire      string `json:"fire,omitempty"`
}

// JSONGame is a played game.
type JSONGame struct {
	Tags     map[string]string `json:"tags,omitempty"`
	Variant  string            `json:"variant"`
	Result   string            `json:"result"`
	PlyCount int               `json:"plyCount"`
	Moves    []JSONMove        `json:"moves"`
	Final    *JSONState        `json:"final"`
}

// JSONOutput holds multiple games for array output.
type JSONOutput struct {
	Games []*JSONGame `json:"games"`
}

// StateToJSON converts the live state of g.
func StateToJSON(g *engine.Game) *JSONState {
	b := g.Board()
	st := &JSONState{
		Variant:   g.Variant().ID,
		Size:      b.Size(),
		Turn:      colourName(g.Turn()),
		Ply:       g.Ply(),
		Phase:     g.Phase().String(),
		Check:     g.IsCheck(),
		Checkmate: g.IsCheckmate(),
		Stalemate: g.IsStalemate(),
		Result:    Result(g),
		Pieces:    PiecesToJSON(b),
		Castling:  g.CastlingRights(),
		CanUndo:   g.CanUndo(),
		CanRedo:   g.CanRedo(),
		FEN:       FEN(g),
	}
	if from, to, ok := g.PendingSquares(); ok {
		p := &JSONPending{From: from.String(), To: to.String()}
		switch g.Phase() {
		case engine.FirePending:
			p.Targets = g.PendingTargets().Strings()
		case engine.PromotionPending:
			for _, k := range g.Variant().Promote {
				p.Promote = append(p.Promote, string(k))
			}
		}
		st.Pending = p
	}
	return st
}

// PiecesToJSON lists the pieces of b in square order.
func PiecesToJSON(b *chess.Board) []JSONPiece {
	out := make([]JSONPiece, 0, b.Len())
	for _, sq := range b.Positions() {
		pc, _ := b.At(sq)
		out = append(out, JSONPiece{
			Square: sq.String(),
			Kind:   string(pc.Kind),
			Colour: colourName(pc.Colour),
			Count:  pc.Count,
		})
	}
	return out
}

// MoveToJSON converts a move.
func MoveToJSON(m engine.Move) JSONMove {
	jm := JSONMove{
		Move:      m.String(),
		From:      m.From.String(),
		To:        m.To.String(),
		Promotion: string(m.Promotion),
	}
	if m.Castle != nil {
		jm.Castle = m.Castle.String()
	}
	if m.Fire != nil {
		jm.Fire = m.Fire.String()
	}
	return jm
}

// GameToJSON converts a played game.
func GameToJSON(rec *Record) *JSONGame {
	jg := &JSONGame{
		Tags:     rec.Tags,
		Variant:  rec.Game.Variant().ID,
		Result:   RecordResult(rec),
		PlyCount: len(rec.Moves),
		Moves:    make([]JSONMove, 0, len(rec.Moves)),
		Final:    StateToJSON(rec.Game),
	}
	c := rec.Game.History()[0].Turn
	for i, m := range rec.Moves {
		jm := MoveToJSON(m)
		jm.Ply = i + 1
		jm.Colour = colourName(c)
		jg.Moves = append(jg.Moves, jm)
		c = c.Opposite()
	}
	return jg
}

// OutputGameJSON writes a single game as indented JSON.
func OutputGameJSON(rec *Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(GameToJSON(rec))
}

// FEN returns the FEN of g's current position, or "" when the board is
// not 8x8 or holds pieces FEN cannot name.
func FEN(g *engine.Game) string {
	if g.Board().Size() != 8 {
		return ""
	}
	p := &variant.FENPosition{
		Board:    g.Board(),
		Turn:     g.Turn(),
		Castling: g.CastlingRights(),
		Files:    variant.ClassicalFiles,
		FullMove: g.Ply()/2 + 1,
	}
	if files := g.CastlingFiles(); files != nil {
		p.Files = *files
	}
	if ds := g.Frame().DoubleStep; ds != nil {
		// The square the pawn passed over, behind it from the mover's side.
		passed := ds.Add(chess.Off(0, g.Turn().Forward()))
		p.EnPassant = &passed
	}
	s, err := variant.EncodeFEN(p)
	if err != nil {
		return ""
	}
	return s
}

func colourName(c chess.Colour) string {
	text, _ := c.MarshalText()
	return string(text)
}
