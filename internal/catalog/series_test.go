package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lgbarn/fairychess-go/internal/chess"
)

func TestSequences(t *testing.T) {
	tests := []struct {
		name string
		got  []int
		want []int
	}{
		{"fibonacci", span(1, 7, func(i int) int { return knacci(2, i) }), []int{0, 1, 1, 2, 3, 5, 8}},
		{"tribonacci", span(1, 7, func(i int) int { return knacci(3, i) }), []int{0, 0, 1, 1, 2, 4, 7}},
		{"lucas", span(1, 5, lucas), []int{2, 1, 3, 4, 7}},
		{"pell", span(1, 5, pell), []int{1, 2, 5, 12, 29}},
		{"perrin", span(1, 6, perrin), []int{3, 0, 2, 3, 2, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got); diff != "" {
				t.Errorf("sequence mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSeriesDistances(t *testing.T) {
	primes, err := seriesDistances("prime")
	if err != nil {
		t.Fatalf("seriesDistances(prime) error = %v", err)
	}
	want := []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41}
	if diff := cmp.Diff(want, primes); diff != "" {
		t.Errorf("primes mismatch (-want +got):\n%s", diff)
	}

	if _, err := seriesDistances("golden"); err == nil {
		t.Error("seriesDistances(golden) error = nil, want error")
	}
}

func TestNacciDistances(t *testing.T) {
	if got := nacciDistances(0)[:5]; !cmp.Equal(got, []int{0, 1, 1, 2, 3}) {
		t.Errorf("nacciDistances(0) = %v", got)
	}
	if got := nacciDistances(7); len(got) != 9 || got[8] != 256 {
		t.Errorf("nacciDistances(7) = %v, want powers of two up to 256", got)
	}
}

func TestChainGates(t *testing.T) {
	gates := chainGates([]int{1, 2, 3, 5}, false, 0)
	if len(gates) != 8*3 {
		t.Fatalf("len(gates) = %d, want 24", len(gates))
	}

	// The first direction chains (0,1), (1,1), (1,2).
	want := []chess.Offset{chess.Off(0, 1), chess.Off(1, 1)}
	if diff := cmp.Diff(want, gates[2].Path); diff != "" {
		t.Errorf("gate path mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]chess.Offset{chess.Off(1, 2)}, gates[2].Dest); diff != "" {
		t.Errorf("gate dest mismatch (-want +got):\n%s", diff)
	}
	if len(gates[0].Path) != 0 {
		t.Errorf("first gate path = %v, want empty", gates[0].Path)
	}

	if got := chainGates([]int{1, 2, 5}, false, 2); len(got) != 16 {
		t.Errorf("limited gates = %d, want 16", len(got))
	}
	if got := chainGates([]int{0, 25}, true, 0); len(got) != 16 {
		t.Errorf("all-group gates = %d, want 16", len(got))
	}
}
