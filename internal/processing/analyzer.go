// Package processing analyses played games: repetition, material and
// castling over the recorded frames.
package processing

import (
	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/engine"
	"github.com/lgbarn/fairychess-go/internal/hashing"
)

// RepetitionLimit is how often a position must occur to count as
// repeated.
const RepetitionLimit = 3

// GameAnalysis holds analysis results from replaying a game's frames.
type GameAnalysis struct {
	Plies     int
	Positions []uint64 // frame hashes, the start position first

	// HasRepetition is set once a position occurred RepetitionLimit times;
	// RepetitionPly is the ply it happened on, or -1.
	HasRepetition bool
	RepetitionPly int

	// Indexed by colour
	Lost     [2]int     // pieces captured from each side
	Material [2]float64 // catalog value left on the board at the end
	Castled  [2]bool
}

// RepetitionDetected returns true if some position occurred
// RepetitionLimit times.
func (ga *GameAnalysis) RepetitionDetected() bool {
	return ga.HasRepetition
}

// MaterialBalance returns White's material minus Black's at the end.
func (ga *GameAnalysis) MaterialBalance() float64 {
	return ga.Material[chess.White] - ga.Material[chess.Black]
}

// AnalyzeGame walks the frames of g up to its current ply.
func AnalyzeGame(g *engine.Game) *GameAnalysis {
	frames := g.History()[:g.Ply()+1]
	analysis := &GameAnalysis{
		Plies:         g.Ply(),
		RepetitionPly: -1,
	}

	tracker := NewTracker(g.Rules())
	var before [2]int
	for ply, f := range frames {
		if tracker.Add(f) >= RepetitionLimit && !analysis.HasRepetition {
			analysis.HasRepetition = true
			analysis.RepetitionPly = ply
		}
		analysis.Positions = append(analysis.Positions, tracker.last)

		count := pieceCount(f.Board)
		if ply > 0 {
			for _, c := range chess.Colours {
				if count[c] < before[c] {
					analysis.Lost[c] += before[c] - count[c]
				}
			}
		}
		before = count
	}

	last := frames[len(frames)-1]
	for _, c := range chess.Colours {
		analysis.Castled[c] = last.Castled[c] >= 0
	}
	analysis.Material = Material(last.Board, g.Rules())
	return analysis
}

func pieceCount(b *chess.Board) [2]int {
	var out [2]int
	for _, c := range chess.Colours {
		out[c] = len(b.Occupied(c))
	}
	return out
}

// Material sums the catalog values of each side's pieces.
func Material(b *chess.Board, rules *catalog.Rules) [2]float64 {
	var out [2]float64
	for _, p := range b.Positions() {
		pc, _ := b.At(p)
		out[pc.Colour] += rules.Value(pc.Kind)
	}
	return out
}

// Tracker counts how often each position has occurred. Move counters
// only tell positions apart where they change movement: counting kinds
// keep theirs and pawns keep whether they have moved.
type Tracker struct {
	rules *catalog.Rules
	seen  map[uint64]int
	last  uint64
}

// NewTracker creates an empty tracker for games under rules.
func NewTracker(rules *catalog.Rules) *Tracker {
	return &Tracker{rules: rules, seen: make(map[uint64]int)}
}

// Add records f and returns how often its position has now occurred.
func (t *Tracker) Add(f engine.Frame) int {
	t.last = t.key(f)
	t.seen[t.last]++
	return t.seen[t.last]
}

// Repeated reports whether the last position added occurred
// RepetitionLimit times or more.
func (t *Tracker) Repeated() bool {
	return t.seen[t.last] >= RepetitionLimit
}

func (t *Tracker) key(f engine.Frame) uint64 {
	b := f.Board.Clone()
	for _, p := range b.Positions() {
		pc, _ := b.At(p)
		k, ok := t.rules.Kind(pc.Kind)
		switch {
		case !ok || k.Counting():
			continue
		case k.Pawn && pc.Count > 1:
			pc.Count = 1
		case !k.Pawn && pc.Count > 0:
			pc.Count = 0
		default:
			continue
		}
		b.Set(p, pc)
	}
	f.Board = b
	return hashing.FrameHash(f)
}
