package search

import (
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/engine"
)

// Coefficients weight the material and threat terms and the check bonus.
// They are drawn afresh for every decision so that the computer does not
// replay the same game.
type Coefficients struct {
	Material float64
	Threat   float64
	Check    float64
}

// DrawCoefficients draws coefficients for level: material and threat
// weights uniformly from [5*level, 35], the check bonus from [2, 6]. A nil
// r uses the shared source.
func DrawCoefficients(r *rand.Rand, level int) Coefficients {
	lo := 5 * level
	return Coefficients{
		Material: float64(lo + intn(r, 36-lo)),
		Threat:   float64(lo + intn(r, 36-lo)),
		Check:    float64(2 + intn(r, 5)),
	}
}

func intn(r *rand.Rand, n int) int {
	if r == nil {
		return rand.Intn(n)
	}
	return r.Intn(n)
}

// Evaluator scores positions. Level gates the positional terms: 1 is
// material, threats, check and the endgame basics; each further level adds
// finer terms.
type Evaluator struct {
	Level int
	Coef  Coefficients
}

// terms are the raw evaluation features, before weighting.
type terms struct {
	material       float64
	threatened     float64
	checking       float64
	kingMobility   float64
	pawnAdvance    float64
	kingDistance   float64
	defended       float64
	threatening    float64
	castled        float64
	movedUncastled float64
	attackRange    float64
	skewer         float64
	mate           float64
	minorFront     float64
	seventhRook    float64
	crossConnect   float64
}

// Evaluate scores the live position of g for colour c. Higher is better
// for c.
func (e Evaluator) Evaluate(g *engine.Game, c chess.Colour) (float64, error) {
	b := g.Board()
	rules := g.Rules()
	size := b.Size()
	opp := c.Opposite()
	v := rules.View(b)

	endgame := float64(b.Len()) <= float64(size*size)/6
	opening := float64(g.Ply()) <= float64(size)*3/2

	var t terms
	t.material = material(b, rules, c) - material(b, rules, opp)

	for _, pos := range b.Occupied(c) {
		pc, _ := b.At(pos)
		k, ok := rules.Kind(pc.Kind)
		if !ok {
			continue
		}
		if k.Pawn && endgame {
			t.pawnAdvance += float64(advance(pos, c, size))
		}

		attackers := v.Attackers(pos, opp)
		defenders := defendersOf(rules, b, pos, c)
		if len(attackers) > 0 {
			t.threatened += exchangeLoss(k.Value, values(b, rules, attackers), values(b, rules, defenders))
		}

		if e.Level >= 2 && len(defenders) > 0 {
			t.defended++
		}
		if e.Level >= 3 {
			t.attackRange += attackRange(rules, b, pos, opening)
			t.skewer += skewer(rules, v, pos)
		}
		if e.Level >= 4 && opening && (pc.Kind == "N" || pc.Kind == "B") && developed(pos, c, size) {
			t.minorFront++
		}
		if e.Level >= 4 && k.CastlingRook && pos.Rank == seventh(c, size) {
			t.seventhRook = 1
		}
		if e.Level >= 5 && (pc.Kind == "R" || pc.Kind == "Q") {
			t.crossConnect += crossConnection(b, defenders)
		}
	}

	for _, pos := range b.Occupied(opp) {
		pc, _ := b.At(pos)
		k, ok := rules.Kind(pc.Kind)
		if !ok {
			continue
		}
		if e.Level >= 2 && !k.Royal && v.Attacked(pos, c) {
			t.threatening += k.Value
		}
		if endgame && k.Royal {
			moves, err := g.LegalMoves(pos)
			if err != nil {
				return 0, err
			}
			t.kingMobility = float64(moves.Len())
		}
	}
	if err := v.Err(); err != nil {
		return 0, err
	}

	if endgame {
		t.kingDistance = kingDistance(b, rules)
		if e.Level >= 3 && g.Turn() == opp {
			switch {
			case g.IsCheckmate():
				t.mate = 1
			case g.IsStalemate():
				t.mate = -1
			}
		}
	}

	check, err := g.InCheck(opp)
	if err != nil {
		return 0, err
	}
	if check {
		t.checking = 1
	}

	if e.Level >= 2 {
		castled := g.CastledAt(c) >= 0
		if castled {
			t.castled = 1
		}
		rights := g.CastlingRights()[c]
		if !castled && g.CastlingFiles() != nil && !(rights[chess.QueenSide] && rights[chess.KingSide]) {
			t.movedUncastled = 1
		}
	}

	if endgame {
		t.material *= 2
		t.threatened *= 2
		t.seventhRook /= 10
		t.crossConnect /= 4
		t.attackRange = 0
	}
	return e.combine(t), nil
}

func (e Evaluator) combine(t terms) float64 {
	return t.material*e.Coef.Material -
		t.threatened*e.Coef.Threat +
		t.checking*e.Coef.Check +
		t.seventhRook*10 +
		t.mate*10 +
		t.castled*6 -
		t.kingMobility +
		t.pawnAdvance*4 -
		t.movedUncastled*4 +
		t.skewer*2 +
		t.crossConnect*2 +
		t.threatening*2 +
		t.defended -
		t.kingDistance +
		t.attackRange +
		t.minorFront
}

// material sums the value of c's pieces, royals excluded.
func material(b *chess.Board, rules *catalog.Rules, c chess.Colour) float64 {
	var sum float64
	for _, pos := range b.Occupied(c) {
		pc, _ := b.At(pos)
		if k, ok := rules.Kind(pc.Kind); ok && !k.Royal {
			sum += k.Value
		}
	}
	return sum
}

func values(b *chess.Board, rules *catalog.Rules, squares []chess.Position) []float64 {
	out := make([]float64, 0, len(squares))
	for _, sq := range squares {
		pc, _ := b.At(sq)
		out = append(out, rules.Value(pc.Kind))
	}
	return out
}

// exchangeLoss is the value a piece worth value stands to lose when both
// sides trade on its square cheapest piece first. A trade stops as soon as
// it turns against the attacker.
func exchangeLoss(value float64, attackers, defenders []float64) float64 {
	if len(attackers) == 0 {
		return 0
	}
	if len(defenders) == 0 {
		return value
	}
	attackers = slices.Clone(attackers)
	defenders = slices.Clone(defenders)
	slices.Sort(attackers)
	slices.Sort(defenders)

	var balance float64
	for n := 0; n < min(len(attackers), len(defenders)); n++ {
		balance = sum(attackers[:n+1]) - sum(defenders[:n])
		if balance < 0 {
			balance = 0
			break
		}
	}
	return max(0, value-balance)
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

// decoy is the enemy stand-in placed on a square to ask who could capture
// there: an enemy pawn when the rules have one.
func decoy(rules *catalog.Rules, c chess.Colour, fallback chess.Kind) chess.Piece {
	if k, ok := rules.Kind("P"); ok && k.Pawn {
		return chess.Piece{Colour: c, Kind: "P"}
	}
	return chess.Piece{Colour: c, Kind: fallback}
}

// defendersOf returns c's pieces that could recapture on pos.
func defendersOf(rules *catalog.Rules, b *chess.Board, pos chess.Position, c chess.Colour) []chess.Position {
	pc, _ := b.At(pos)
	tmp := b.Clone()
	tmp.Set(pos, decoy(rules, c.Opposite(), pc.Kind))
	return rules.View(tmp).Attackers(pos, c)
}

// attackRange counts the squares the piece on pos could reach if every
// other piece were an enemy pawn. In the opening only central squares
// count.
func attackRange(rules *catalog.Rules, b *chess.Board, pos chess.Position, opening bool) float64 {
	pc, _ := b.At(pos)
	tmp := chess.NewBoard(b.Size())
	for _, sq := range b.Positions() {
		if sq != pos {
			tmp.Set(sq, decoy(rules, pc.Colour.Opposite(), pc.Kind))
		}
	}
	tmp.Set(pos, pc)

	reach := rules.View(tmp).Moves(pos)
	if !opening {
		return float64(reach.Len())
	}
	size := float64(b.Size())
	var n float64
	for sq := range reach {
		f, r := float64(sq.File), float64(sq.Rank)
		if size/4 <= f && f < size*3/4 && size/4 <= r && r < size*3/4 {
			n++
		}
	}
	return n
}

// skewer values the pieces standing behind the ones the piece on pos
// attacks, with a bonus when a royal piece is among them.
func skewer(rules *catalog.Rules, v *catalog.View, pos chess.Position) float64 {
	b := v.Board()
	tmp := b.Clone()
	var hit bool
	for sq := range v.Moves(pos) {
		if !b.IsEmpty(sq) {
			tmp.Remove(sq)
			hit = true
		}
	}
	if !hit {
		return 0
	}

	var score float64
	var royal bool
	for sq := range rules.View(tmp).Moves(pos) {
		pc, ok := tmp.At(sq)
		if !ok {
			continue
		}
		k, ok := rules.Kind(pc.Kind)
		if !ok {
			continue
		}
		score += k.Value
		royal = royal || k.Royal
	}
	if royal {
		score += 10
	}
	return score
}

func crossConnection(b *chess.Board, defenders []chess.Position) float64 {
	var rook, queen bool
	for _, sq := range defenders {
		pc, _ := b.At(sq)
		rook = rook || pc.Kind == "R"
		queen = queen || pc.Kind == "Q"
	}
	var n float64
	if rook {
		n++
	}
	if queen {
		n++
	}
	return n
}

// advance is how far a pawn of c stands from its own edge.
func advance(pos chess.Position, c chess.Colour, size int) int {
	if c == chess.White {
		return pos.Rank
	}
	return size - 1 - pos.Rank
}

// developed reports whether a piece has left c's two home ranks.
func developed(pos chess.Position, c chess.Colour, size int) bool {
	if c == chess.White {
		return pos.Rank > 1
	}
	return pos.Rank < size-2
}

// seventh is the rank before the opponent's back rank.
func seventh(c chess.Colour, size int) int {
	if c == chess.White {
		return size - 2
	}
	return 1
}

// kingDistance is the squared distance between the two sides' royals.
func kingDistance(b *chess.Board, rules *catalog.Rules) float64 {
	var kings [2]*chess.Position
	for _, sq := range b.Positions() {
		pc, _ := b.At(sq)
		if k, ok := rules.Kind(pc.Kind); ok && k.Royal && kings[pc.Colour] == nil {
			kings[pc.Colour] = &sq
		}
	}
	if kings[chess.White] == nil || kings[chess.Black] == nil {
		return 0
	}
	d := kings[chess.White].Sub(*kings[chess.Black])
	return float64(d.DX*d.DX + d.DY*d.DY)
}
