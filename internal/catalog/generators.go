package catalog

import (
	"fmt"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/geometry"
	"github.com/lgbarn/fairychess-go/internal/notation"
)

// generator computes the movement of one piece. With attack set it returns
// the squares the piece threatens instead, whether occupied or not.
type generator func(pr geometry.Scope, from chess.Position, count int, attack bool) chess.PositionSet

type factory struct {
	counting bool
	build    func(k *Kind, size int) (generator, error)
}

// generators is the registry of builtin movement.
var generators = map[string]factory{
	"pawn":             {build: func(*Kind, int) (generator, error) { return pawnMoves, nil }},
	"tank":             {build: func(*Kind, int) (generator, error) { return tankMoves, nil }},
	"wave":             {build: buildWave},
	"reflect":          {build: buildReflect},
	"series":           {build: buildSeries},
	"series-gated":     {build: buildSeriesGated},
	"developing-man":   {counting: true, build: buildDevelopingMan},
	"developing-prime": {counting: true, build: buildDevelopingPrime},
	"nacci":            {counting: true, build: buildNacci},
	"imitator":         {counting: true, build: buildImitator},
}

var (
	orthogonal = geometry.Unique(geometry.Dir8(0, 1))
	vertical   = []chess.Offset{chess.Off(0, 1), chess.Off(0, -1)}
)

// enemies keeps the squares of set occupied by the other colour.
func enemies(pr geometry.Scope, set chess.PositionSet) chess.PositionSet {
	out := make(chess.PositionSet)
	for p := range set {
		if pc, ok := pr.Board.At(p); ok && pc.Colour != pr.Colour {
			out.Add(p)
		}
	}
	return out
}

// pawnMoves steps forward onto empty squares, two steps on the first move,
// and captures one step diagonally forward.
func pawnMoves(pr geometry.Scope, from chess.Position, count int, attack bool) chess.PositionSet {
	fwd := pr.Colour.Forward()
	capture := make(chess.PositionSet)
	for _, dx := range []int{-1, 1} {
		if to := from.Add(chess.Off(dx, fwd)); pr.Board.InBounds(to) {
			capture.Add(to)
		}
	}
	if attack {
		return capture
	}

	out := enemies(pr, capture)
	one := from.Add(chess.Off(0, fwd))
	if pr.Board.IsEmpty(one) {
		out.Add(one)
		if two := one.Add(chess.Off(0, fwd)); count == 0 && pr.Board.IsEmpty(two) {
			out.Add(two)
		}
	}
	return out
}

// tankMoves slides orthogonally without capturing. It captures on the
// squares beside it and, through an empty side square, along that file.
func tankMoves(pr geometry.Scope, from chess.Position, _ int, attack bool) chess.PositionSet {
	capture := make(chess.PositionSet)
	for _, dx := range []int{-1, 1} {
		side := from.Add(chess.Off(dx, 0))
		if !pr.Board.InBounds(side) {
			continue
		}
		capture.Add(side)
		if pr.Board.IsEmpty(side) {
			capture.Union(geometry.Rider(pr, side, vertical, 0, geometry.MoveOrCapture))
		}
	}
	if attack {
		return capture
	}

	out := geometry.Rider(pr, from, orthogonal, 0, geometry.MoveOnly)
	out.Union(enemies(pr, capture))
	return out
}

func paramVectors(k *Kind) ([]chess.Offset, error) {
	if k.Params.Dirs == "" {
		return nil, fmt.Errorf("kind %s: %s needs params.dirs: %w", k.ID, k.Generator, errors.ErrInvalidVariant)
	}
	prog, err := notation.Compile(k.Params.Dirs)
	if err != nil {
		return nil, errors.Wrapf(err, "kind %s", k.ID)
	}
	return prog.Vectors(), nil
}

func buildWave(k *Kind, _ int) (generator, error) {
	dirs, err := paramVectors(k)
	if err != nil {
		return nil, err
	}
	return func(pr geometry.Scope, from chess.Position, _ int, _ bool) chess.PositionSet {
		return geometry.WaveRider(pr, from, dirs, geometry.MoveOrCapture)
	}, nil
}

func buildReflect(k *Kind, _ int) (generator, error) {
	dirs, err := paramVectors(k)
	if err != nil {
		return nil, err
	}
	n := k.Params.Reflections
	return func(pr geometry.Scope, from chess.Position, _ int, _ bool) chess.PositionSet {
		return geometry.ReflectRider(pr, from, dirs, n, geometry.MoveOrCapture)
	}, nil
}

func buildSeries(k *Kind, _ int) (generator, error) {
	distances, err := seriesDistances(k.Params.Series)
	if err != nil {
		return nil, errors.Wrapf(err, "kind %s", k.ID)
	}
	dirs := leapVectors(distances)
	return func(pr geometry.Scope, from chess.Position, _ int, _ bool) chess.PositionSet {
		return geometry.Leaper(pr, from, dirs, geometry.MoveOrCapture)
	}, nil
}

func buildSeriesGated(k *Kind, _ int) (generator, error) {
	distances, err := seriesDistances(k.Params.Series)
	if err != nil {
		return nil, errors.Wrapf(err, "kind %s", k.ID)
	}
	gates := chainGates(distances, k.Params.AllGroups, k.Params.Chain)
	return func(pr geometry.Scope, from chess.Position, _ int, _ bool) chess.PositionSet {
		return geometry.GatedLeaper(pr, from, gates, geometry.MoveOrCapture)
	}, nil
}

// countingLeaper leaps by the distances a piece has unlocked after count
// moves, gated along chains when the kind asks for it.
func countingLeaper(gated bool, distances func(count int) []int) generator {
	return func(pr geometry.Scope, from chess.Position, count int, _ bool) chess.PositionSet {
		ds := distances(count)
		if gated {
			return geometry.GatedLeaper(pr, from, chainGates(ds, true, 0), geometry.MoveOrCapture)
		}
		return geometry.Leaper(pr, from, leapVectors(ds), geometry.MoveOrCapture)
	}
}

// buildDevelopingMan leaps to squared distances 1..count+1.
func buildDevelopingMan(k *Kind, _ int) (generator, error) {
	return countingLeaper(k.Params.Gated, func(count int) []int {
		return span(1, count+1, func(i int) int { return i })
	}), nil
}

// buildDevelopingPrime leaps to the prime squared distances up to count+2.
func buildDevelopingPrime(k *Kind, _ int) (generator, error) {
	return countingLeaper(k.Params.Gated, func(count int) []int {
		var out []int
		for i := 2; i <= count+2; i++ {
			if isPrime(i) {
				out = append(out, i)
			}
		}
		return out
	}), nil
}

func buildNacci(k *Kind, _ int) (generator, error) {
	return countingLeaper(k.Params.Gated, nacciDistances), nil
}

// imitatorCycle is the movement an imitator takes on, by move count.
var imitatorCycle = []string{"**2/1", "x_", "+_", "K_", "K"}

func buildImitator(_ *Kind, size int) (generator, error) {
	progs := make([]*notation.Program, len(imitatorCycle))
	for i, src := range imitatorCycle {
		prog, err := notation.Compile(src, notation.WithBoardSize(size))
		if err != nil {
			return nil, err
		}
		progs[i] = prog
	}
	return func(pr geometry.Scope, from chess.Position, count int, _ bool) chess.PositionSet {
		return progs[count%len(progs)].Moves(pr, from)
	}, nil
}
