package chess

import (
	"testing"
)

func TestNewBoard(t *testing.T) {
	b := NewBoard(8)

	if b.Size() != 8 {
		t.Errorf("Size() = %d; want 8", b.Size())
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d; want 0", b.Len())
	}
	for file := 0; file < 8; file++ {
		for rank := 0; rank < 8; rank++ {
			if !b.IsEmpty(Pos(file, rank)) {
				t.Errorf("IsEmpty(%v) = false; want true", Pos(file, rank))
			}
		}
	}
}

func TestBoard_InBounds(t *testing.T) {
	b := NewBoard(10)

	tests := []struct {
		name string
		pos  Position
		want bool
	}{
		{"origin", Pos(0, 0), true},
		{"far corner", Pos(9, 9), true},
		{"file overflow", Pos(10, 0), false},
		{"rank overflow", Pos(0, 10), false},
		{"negative file", Pos(-1, 3), false},
		{"negative rank", Pos(3, -1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.InBounds(tt.pos); got != tt.want {
				t.Errorf("InBounds(%v) = %v; want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestBoard_VersionAdvancesOnMutation(t *testing.T) {
	b := NewBoard(8)
	v0 := b.Version()

	b.Place(Pos(4, 0), White, King)
	v1 := b.Version()
	if v1 == v0 {
		t.Fatal("Place() did not advance the version")
	}

	b.Move(Pos(4, 0), Pos(4, 1))
	v2 := b.Version()
	if v2 == v1 {
		t.Fatal("Move() did not advance the version")
	}

	if _, ok := b.Remove(Pos(0, 0)); ok {
		t.Fatal("Remove() of empty square reported a piece")
	}
	if b.Version() != v2 {
		t.Error("Remove() of empty square advanced the version")
	}
}

func TestBoard_CloneIsIndependent(t *testing.T) {
	b := NewBoard(8)
	king := b.Place(Pos(4, 0), White, King)

	c := b.Clone()
	if c.Version() != b.Version() {
		t.Errorf("Clone().Version() = %d; want %d", c.Version(), b.Version())
	}
	if !c.Equal(b) {
		t.Fatal("Clone() not equal to original")
	}

	c.Move(Pos(4, 0), Pos(4, 1))
	if c.Version() == b.Version() {
		t.Error("mutated clone shares version with original")
	}
	if got, ok := b.At(Pos(4, 0)); !ok || got != king {
		t.Errorf("original At(e1) = %v, %v; want %v, true", got, ok, king)
	}

	// Fresh ids from a clone do not collide with ids already issued.
	other := c.Place(Pos(0, 0), Black, Rook)
	if other.ID == king.ID {
		t.Errorf("Place() on clone reused id %d", other.ID)
	}
}

func TestBoard_MoveCaptures(t *testing.T) {
	b := NewBoard(8)
	rook := b.Place(Pos(0, 0), White, Rook)
	pawn := b.Place(Pos(0, 6), Black, Pawn)

	captured, ok := b.Move(Pos(0, 0), Pos(0, 6))
	if !ok || captured != pawn {
		t.Fatalf("Move() captured = %v, %v; want %v, true", captured, ok, pawn)
	}
	if got, _ := b.At(Pos(0, 6)); got != rook {
		t.Errorf("At(a7) = %v; want %v", got, rook)
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d; want 1", b.Len())
	}
}

func TestBoard_PositionsOrder(t *testing.T) {
	b := NewBoard(8)
	b.Place(Pos(3, 3), White, Queen)
	b.Place(Pos(0, 7), Black, Rook)
	b.Place(Pos(0, 1), White, Pawn)

	got := b.Positions()
	want := []Position{Pos(0, 1), Pos(0, 7), Pos(3, 3)}
	if len(got) != len(want) {
		t.Fatalf("Positions() = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Positions()[%d] = %v; want %v", i, got[i], want[i])
		}
	}

	if white := b.Occupied(White); len(white) != 2 {
		t.Errorf("Occupied(White) = %v; want 2 squares", white)
	}
}

func TestBoard_String(t *testing.T) {
	b := NewBoard(5)
	b.Place(Pos(0, 0), White, King)
	b.Place(Pos(4, 4), Black, King)

	want := ". . . . k\n" +
		". . . . .\n" +
		". . . . .\n" +
		". . . . .\n" +
		"K . . . .\n"
	if got := b.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}
