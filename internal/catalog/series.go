package catalog

import (
	"fmt"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/geometry"
)

// Series leapers jump to every square whose squared distance from the
// origin is a term of an integer sequence.

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for i := 2; i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// knacci returns the n-th k-bonacci number, 1-based, with k-1 leading
// zeros: knacci(2, 1..6) = 0 1 1 2 3 5.
func knacci(k, n int) int {
	terms := make([]int, k)
	terms[k-1] = 1
	if n <= k {
		return terms[n-1]
	}
	for i := 0; i < n-k; i++ {
		sum := 0
		for _, t := range terms {
			sum += t
		}
		terms = append(terms[1:], sum)
	}
	return terms[k-1]
}

// recurrence returns the n-th term (1-based) of the sequence seeded with
// seed, where each further term is next of the preceding len(seed) terms.
func recurrence(n int, seed []int, next func([]int) int) int {
	terms := append([]int(nil), seed...)
	for len(terms) < n {
		terms = append(terms, next(terms[len(terms)-len(seed):]))
	}
	return terms[n-1]
}

func lucas(n int) int {
	return recurrence(n, []int{2, 1}, func(t []int) int { return t[0] + t[1] })
}

func pell(n int) int {
	return recurrence(n, []int{1, 2}, func(t []int) int { return t[0] + 2*t[1] })
}

func perrin(n int) int {
	return recurrence(n, []int{3, 0, 2}, func(t []int) int { return t[0] + t[1] })
}

func span(lo, hi int, term func(int) int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, term(i))
	}
	return out
}

// seriesDistances returns the squared distances of a named series.
func seriesDistances(name string) ([]int, error) {
	switch name {
	case "prime":
		var out []int
		for i := 2; i < 42; i++ {
			if isPrime(i) {
				out = append(out, i)
			}
		}
		return out, nil
	case "fibonacci":
		return span(2, 14, func(i int) int { return knacci(2, i) }), nil
	case "tribonacci":
		return span(3, 13, func(i int) int { return knacci(3, i) }), nil
	case "tetranacci":
		return span(4, 13, func(i int) int { return knacci(4, i) }), nil
	case "pentanacci":
		return span(5, 13, func(i int) int { return knacci(5, i) }), nil
	case "lucas":
		return span(1, 14, lucas), nil
	case "pell":
		return span(1, 7, pell), nil
	case "perrin":
		return span(3, 22, perrin), nil
	case "pythagoras":
		return span(1, 14, func(i int) int { return i * i }), nil
	}
	return nil, fmt.Errorf("unknown series %q: %w", name, errors.ErrInvalidVariant)
}

// nacciDistances returns the squared distances of the nacci leaper after
// count moves: the (count+2)-bonacci numbers, or powers of two once the
// sequence would outgrow the board.
func nacciDistances(count int) []int {
	if count > 6 {
		return span(0, 8, func(i int) int { return 1 << i })
	}
	return span(1, count+11, func(i int) int { return knacci(count+2, i) })
}

// leapVectors returns every offset at any of the squared distances.
func leapVectors(distances []int) []chess.Offset {
	var out []chess.Offset
	for _, d := range distances {
		out = append(out, geometry.DistanceVectors(d)...)
	}
	return geometry.Unique(out)
}

// chainGates builds the gates of a gated series leaper. Along each of the
// eight symmetric directions, the series forms a chain of leaps of growing
// length; leap j is enabled only when leaps 0..j-1 land on open squares.
// With allGroups every vector pair of a distance joins the chain, otherwise
// only the first. A positive limit caps the number of gates per direction.
func chainGates(distances []int, allGroups bool, limit int) []geometry.Gate {
	var groups [][]chess.Offset
	for _, d := range distances {
		if d == 0 {
			continue
		}
		gs := geometry.DistanceGroups(d)
		if len(gs) == 0 {
			continue
		}
		if allGroups {
			groups = append(groups, gs...)
		} else {
			groups = append(groups, gs[0])
		}
	}
	n := len(groups)
	if limit > 0 && limit < n {
		n = limit
	}

	gates := make([]geometry.Gate, 0, 8*n)
	for m := 0; m < 8; m++ {
		chain := make([]chess.Offset, len(groups))
		for i, g := range groups {
			chain[i] = g[m]
		}
		for j := 0; j < n; j++ {
			gates = append(gates, geometry.Gate{Path: chain[:j], Dest: []chess.Offset{chain[j]}})
		}
	}
	return gates
}
