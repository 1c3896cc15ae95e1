package catalog

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/geometry"
)

// KindSet is a set of kind ids.
type KindSet map[chess.Kind]struct{}

// Has reports whether id is in the set.
func (s KindSet) Has(id chess.Kind) bool {
	_, ok := s[id]
	return ok
}

// covers reports whether every id of other is in s.
func (s KindSet) covers(other KindSet) bool {
	for id := range other {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the ids in lexical order.
func (s KindSet) Sorted() []chess.Kind {
	out := make([]chess.Kind, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// View evaluates movement on one board. It caches per-square results, so
// the board must not change while the view is in use. A View is not safe
// for concurrent use.
type View struct {
	rules  *Rules
	board  *chess.Board
	zones  geometry.ZoneField
	freeze geometry.ZoneField
	slow   geometry.ZoneField

	moves    map[chess.Position]chess.PositionSet
	patterns map[chess.Position]chess.PositionSet
	donors   map[chess.Position]KindSet
	err      error
}

// View returns a movement view of b.
func (r *Rules) View(b *chess.Board) *View {
	v := &View{
		rules:    r,
		board:    b,
		moves:    make(map[chess.Position]chess.PositionSet),
		patterns: make(map[chess.Position]chess.PositionSet),
	}
	for _, p := range b.Positions() {
		pc, _ := b.At(p)
		k, ok := r.Kind(pc.Kind)
		if !ok || !k.IsZone() {
			continue
		}
		z := geometry.Zone{Center: p, Radius: k.Zone.Radius}
		v.zones = append(v.zones, z)
		switch k.Zone.Effect {
		case Freeze:
			v.freeze = append(v.freeze, z)
		case Slow:
			v.slow = append(v.slow, z)
		}
	}
	return v
}

// Board returns the board the view evaluates.
func (v *View) Board() *chess.Board {
	return v.board
}

// Rules returns the rules the view was built from.
func (v *View) Rules() *Rules {
	return v.rules
}

// Zones returns the zones on the board.
func (v *View) Zones() geometry.ZoneField {
	return v.zones
}

// Err reports an internal failure met while resolving mimicry.
func (v *View) Err() error {
	return v.err
}

func (v *View) scope(c chess.Colour, immune bool) geometry.Scope {
	pr := geometry.Scope{Board: v.board, Colour: c, Immune: immune}
	if len(v.zones) > 0 {
		pr.Zones = v.zones
	}
	return pr
}

func (v *View) piece(p chess.Position) (chess.Piece, *bound, bool) {
	pc, ok := v.board.At(p)
	if !ok {
		return chess.Piece{}, nil, false
	}
	b, ok := v.rules.kinds[pc.Kind]
	return pc, b, ok
}

// restricted applies zone effects to a non-zone piece starting on p.
func (v *View) restricted(p chess.Position, pc chess.Piece, b *bound) (chess.PositionSet, bool) {
	if b.kind.IsZone() {
		return nil, false
	}
	if v.freeze.Halts(p) {
		return make(chess.PositionSet), true
	}
	if v.slow.Halts(p) {
		return geometry.Leaper(v.scope(pc.Colour, false), p, geometry.KingMoves, geometry.MoveOrCapture), true
	}
	return nil, false
}

// Moves returns the pseudo-legal destinations of the piece on p: its
// movement with zone effects applied and mimicry resolved. The result is
// shared with the view's cache and must not be modified.
func (v *View) Moves(p chess.Position) chess.PositionSet {
	if set, ok := v.moves[p]; ok {
		return set
	}
	pc, b, ok := v.piece(p)
	if !ok {
		return make(chess.PositionSet)
	}
	set, ok := v.restricted(p, pc, b)
	if !ok {
		if b.kind.IsMimic() {
			set = v.borrowed(p, pc.Colour, false)
		} else {
			set = b.movement(v.scope(pc.Colour, b.kind.IsZone()), p, pc.Count, false)
		}
	}
	v.moves[p] = set
	return set
}

// Pattern returns the squares the piece on p threatens, occupied or not.
// For most kinds this is Moves; kinds with a separate capture rule, pawns
// and tanks report their capture squares.
func (v *View) Pattern(p chess.Position) chess.PositionSet {
	if set, ok := v.patterns[p]; ok {
		return set
	}
	pc, b, ok := v.piece(p)
	if !ok {
		return make(chess.PositionSet)
	}
	set, ok := v.restricted(p, pc, b)
	if !ok {
		if b.kind.IsMimic() {
			set = v.borrowed(p, pc.Colour, true)
		} else {
			set = b.movement(v.scope(pc.Colour, b.kind.IsZone()), p, pc.Count, true)
		}
	}
	v.patterns[p] = set
	return set
}

// borrowed is the union of the donors' movement from p, as colour c.
func (v *View) borrowed(p chess.Position, c chess.Colour, attack bool) chess.PositionSet {
	out := make(chess.PositionSet)
	for _, id := range v.Donors(p).Sorted() {
		if b, ok := v.rules.kinds[id]; ok {
			out.Union(b.movement(v.scope(c, false), p, 0, attack))
		}
	}
	return out
}

// Donors returns the kinds whose movement the mimic on p has taken on.
func (v *View) Donors(p chess.Position) KindSet {
	if v.donors == nil {
		v.resolveDonors()
	}
	return v.donors[p]
}

// resolveDonors computes every mimic's donor set. Each mimic starts from
// the non-mimic pieces threatening or defending it, then passes its donors
// to the enemy threat mimics its movement reaches and to the own defend
// mimics it protects, until no set grows.
func (v *View) resolveDonors() {
	v.donors = make(map[chess.Position]KindSet)
	var mimics []chess.Position
	for _, p := range v.board.Positions() {
		pc, b, ok := v.piece(p)
		if ok && b.kind.IsMimic() {
			mimics = append(mimics, p)
			v.donors[p] = v.seedDonors(p, pc, b.kind.Mimicry)
		}
	}

	queue := slices.Clone(mimics)
	queued := chess.NewPositionSet(mimics...)
	limit := (v.rules.catalog.Len() + 1) * len(mimics)
	for steps := 0; len(queue) > 0; steps++ {
		if steps >= limit {
			v.err = fmt.Errorf("mimicry unsettled after %d steps: %w", limit, errors.ErrInvariant)
			return
		}
		p := queue[0]
		queue = queue[1:]
		queued.Remove(p)

		pc, _ := v.board.At(p)
		pass := func(reach chess.PositionSet, colour chess.Colour, mode Mimicry) {
			for _, q := range reach.Sorted() {
				t, tb, ok := v.piece(q)
				if !ok || t.Colour != colour || tb.kind.Mimicry != mode {
					continue
				}
				if v.donors[q].covers(v.donors[p]) {
					continue
				}
				for id := range v.donors[p] {
					v.donors[q][id] = struct{}{}
				}
				if !queued.Has(q) {
					queued.Add(q)
					queue = append(queue, q)
				}
			}
		}
		pass(v.donorReach(p, pc.Colour), pc.Colour.Opposite(), Threat)
		pass(v.donorReach(p, pc.Colour.Opposite()), pc.Colour, Defend)
	}
}

// donorReach is the donors' movement from p for a piece of colour c,
// under the same zone effects as the mimic's own moves. Played as the
// opposite colour it reaches the own pieces p defends.
func (v *View) donorReach(p chess.Position, c chess.Colour) chess.PositionSet {
	if pc, b, ok := v.piece(p); ok {
		pc.Colour = c
		if set, ok := v.restricted(p, pc, b); ok {
			return set
		}
	}
	out := make(chess.PositionSet)
	for id := range v.donors[p] {
		out.Union(v.rules.kinds[id].movement(v.scope(c, false), p, 0, false))
	}
	return out
}

// seedDonors finds the non-mimic pieces that threaten (enemies) or defend
// (own pieces, tested against an enemy stand-in) the mimic on p.
func (v *View) seedDonors(p chess.Position, pc chess.Piece, mode Mimicry) KindSet {
	donors := make(KindSet)
	view, colour := v, pc.Colour.Opposite()
	if mode == Defend {
		stand := v.board.Clone()
		stand.Set(p, chess.Piece{ID: pc.ID, Colour: pc.Colour.Opposite(), Kind: pc.Kind, Count: pc.Count})
		view, colour = v.rules.View(stand), pc.Colour
	}
	for _, q := range view.board.Occupied(colour) {
		qc, qb, ok := view.piece(q)
		if !ok || qb.kind.IsMimic() {
			continue
		}
		if view.Moves(q).Has(p) {
			donors[qc.Kind] = struct{}{}
		}
	}
	return donors
}

// FireTargets returns the enemy pieces an archer on from could shoot after
// a quiet move to to. Arrows fly from to along the archer's fire headings,
// turned to the direction of the move, on the board after the move.
func (v *View) FireTargets(from, to chess.Position) chess.PositionSet {
	pc, b, ok := v.piece(from)
	if !ok || !b.kind.IsArcher() || !v.board.IsEmpty(to) {
		return make(chess.PositionSet)
	}
	after := v.board.Clone()
	after.Move(from, to)
	return v.rules.View(after).arrows(to, pc.Colour, b.kind.Archer, geometry.Heading(from, to))
}

func (v *View) arrows(at chess.Position, c chess.Colour, headings []int, heading int) chess.PositionSet {
	dirs := make([]chess.Offset, len(headings))
	for i, h := range headings {
		dirs[i] = geometry.HeadingVector(heading + h)
	}
	return geometry.Rider(v.scope(c, false), at, dirs, 0, geometry.CaptureOnly)
}

// Attacks reports whether the piece on p attacks target: its movement
// reaches target or, for an archer, an arrow after some quiet move does.
func (v *View) Attacks(p, target chess.Position) bool {
	if v.Moves(p).Has(target) {
		return true
	}
	_, b, ok := v.piece(p)
	if !ok || !b.kind.IsArcher() {
		return false
	}
	for _, to := range v.Moves(p).Sorted() {
		if v.board.IsEmpty(to) && v.FireTargets(p, to).Has(target) {
			return true
		}
	}
	return false
}

// Attackers returns the pieces of colour c attacking target.
func (v *View) Attackers(target chess.Position, c chess.Colour) []chess.Position {
	var out []chess.Position
	for _, p := range v.board.Occupied(c) {
		if v.Attacks(p, target) {
			out = append(out, p)
		}
	}
	return out
}

// Attacked reports whether any piece of colour c attacks target.
func (v *View) Attacked(target chess.Position, c chess.Colour) bool {
	for _, p := range v.board.Occupied(c) {
		if v.Attacks(p, target) {
			return true
		}
	}
	return false
}
