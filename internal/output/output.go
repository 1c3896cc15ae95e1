// Package output provides game output formatting: move records in text
// and JSON, and board diagrams.
package output

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/engine"
)

// DefaultLineLength is the wrap width of move text.
const DefaultLineLength = 80

// Record is a played game: the game in its final state and the moves that
// led there from its first frame.
type Record struct {
	Game  *engine.Game
	Moves []engine.Move
	Tags  map[string]string // extra tags such as player names
}

// Result returns the game result in the usual notation: "1-0", "0-1",
// "1/2-1/2", or "*" for an unfinished game.
func Result(g *engine.Game) string {
	switch {
	case g.IsCheckmate() && g.Turn() == chess.Black:
		return "1-0"
	case g.IsCheckmate():
		return "0-1"
	case g.IsStalemate():
		return "1/2-1/2"
	}
	return "*"
}

// RecordResult is the result of rec: the game's own result, or the
// "Result" tag for a game that was stopped before it ended.
func RecordResult(rec *Record) string {
	if r := Result(rec.Game); r != "*" {
		return r
	}
	if r := rec.Tags["Result"]; r != "" {
		return r
	}
	return "*"
}

// OutputWriter handles formatted output with line length control.
type OutputWriter struct {
	w             io.Writer
	lineLength    int
	maxLineLength int
	needsSpace    bool
}

// NewOutputWriter creates a new output writer.
func NewOutputWriter(w io.Writer, maxLineLength int) *OutputWriter {
	if maxLineLength <= 0 {
		maxLineLength = DefaultLineLength
	}
	return &OutputWriter{
		w:             w,
		maxLineLength: maxLineLength,
	}
}

// Write writes a string, adding a space separator if needed.
func (o *OutputWriter) Write(s string) {
	if o.needsSpace && len(s) > 0 {
		if o.lineLength+1+len(s) > o.maxLineLength {
			fmt.Fprintln(o.w)
			o.lineLength = 0
			o.needsSpace = false
		} else {
			fmt.Fprint(o.w, " ")
			o.lineLength++
		}
	}

	fmt.Fprint(o.w, s)
	o.lineLength += len(s)
	o.needsSpace = true
}

// NewLine starts a new line.
func (o *OutputWriter) NewLine() {
	fmt.Fprintln(o.w)
	o.lineLength = 0
	o.needsSpace = false
}

// OutputRecord writes a game as tag pairs followed by numbered coordinate
// moves and the result.
func OutputRecord(rec *Record, w io.Writer, maxLineLength int) {
	outputTags(rec, w)
	fmt.Fprintln(w)
	outputMoves(rec, w, maxLineLength)
	fmt.Fprintln(w)
}

// tagRoster are the tags always written, in order.
var tagRoster = []string{"Variant", "White", "Black", "Result"}

func outputTags(rec *Record, w io.Writer) {
	for _, tag := range tagRoster {
		var value string
		switch tag {
		case "Variant":
			value = rec.Game.Variant().ID
		case "Result":
			value = RecordResult(rec)
		default:
			value = rec.Tags[tag]
		}
		if value == "" {
			value = "?"
		}
		fmt.Fprintf(w, "[%s \"%s\"]\n", tag, escapeTagValue(value))
	}
	for _, tag := range sortedKeys(rec.Tags) {
		if !slices.Contains(tagRoster, tag) {
			fmt.Fprintf(w, "[%s \"%s\"]\n", tag, escapeTagValue(rec.Tags[tag]))
		}
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// escapeTagValue escapes special characters in tag values.
func escapeTagValue(s string) string {
	if !strings.ContainsAny(s, "\\\"") {
		return s
	}
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}

func outputMoves(rec *Record, w io.Writer, maxLineLength int) {
	ow := NewOutputWriter(w, maxLineLength)
	first := rec.Game.History()[0].Turn
	for i, m := range rec.Moves {
		white := (first == chess.White) == (i%2 == 0)
		switch {
		case white:
			ow.Write(fmt.Sprintf("%d.", moveNumber(first, i)))
		case i == 0:
			ow.Write(fmt.Sprintf("%d...", moveNumber(first, i)))
		}
		ow.Write(m.String())
	}
	ow.Write(RecordResult(rec))
	ow.NewLine()
}

// moveNumber is the full-move number of the i-th ply of a game whose first
// mover is first.
func moveNumber(first chess.Colour, i int) int {
	if first == chess.Black {
		i++
	}
	return i/2 + 1
}

// WriteBoard draws b with rank numbers and file letters, White at the
// bottom. Upper-case kinds are White's, lower-case Black's, and '.' marks
// an empty square.
func WriteBoard(w io.Writer, b *chess.Board) error {
	width := 1
	for _, sq := range b.Positions() {
		pc, _ := b.At(sq)
		width = max(width, len(pc.Kind))
	}
	var sb strings.Builder
	for rank := b.Size() - 1; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%2d ", rank+1)
		for file := 0; file < b.Size(); file++ {
			sb.WriteByte(' ')
			sb.WriteString(pad(cell(b, chess.Pos(file, rank)), width))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   ")
	for file := 0; file < b.Size(); file++ {
		sb.WriteByte(' ')
		sb.WriteString(pad(string(rune('a'+file)), width))
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

func cell(b *chess.Board, p chess.Position) string {
	pc, ok := b.At(p)
	if !ok {
		return "."
	}
	if pc.Colour == chess.Black {
		return strings.ToLower(string(pc.Kind))
	}
	return string(pc.Kind)
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", width-len(s))
}
