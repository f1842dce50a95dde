package chess

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func squareNames(squares []Square) []string {
	names := make([]string, 0, len(squares))
	for _, s := range squares {
		names = append(names, s.String())
	}
	sort.Strings(names)
	return names
}

func TestRookOnEmptyBoard(t *testing.T) {
	b := EmptyBoard()
	b.Set(sq(t, "a1"), Piece{Type: Rook, Color: White})

	got := PseudoLegalDestinations(b, sq(t, "a1"), White)
	assert.Len(t, got, 14)
	assert.Equal(t, []string{
		"a2", "a3", "a4", "a5", "a6", "a7", "a8",
		"b1", "c1", "d1", "e1", "f1", "g1", "h1",
	}, squareNames(got))
}

func TestRookRayTruncation(t *testing.T) {
	b := EmptyBoard()
	b.Set(sq(t, "d4"), Piece{Type: Rook, Color: White})
	b.Set(sq(t, "d6"), Piece{Type: Knight, Color: White})
	b.Set(sq(t, "g4"), Piece{Type: Bishop, Color: Black})

	got := PseudoLegalDestinations(b, sq(t, "d4"), White)
	// Up stops before the friendly knight, right includes the enemy bishop.
	assert.Equal(t, []string{
		"a4", "b4", "c4", "d1", "d2", "d3", "d5", "e4", "f4", "g4",
	}, squareNames(got))
}

func TestPawnPushes(t *testing.T) {
	tests := []struct {
		name    string
		blocker string
		want    []string
	}{
		{name: "both squares empty", want: []string{"e3", "e4"}},
		{name: "one-step occupied", blocker: "e3", want: []string{}},
		{name: "two-step occupied", blocker: "e4", want: []string{"e3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := EmptyBoard()
			b.Set(sq(t, "e2"), Piece{Type: Pawn, Color: White})
			if tt.blocker != "" {
				b.Set(sq(t, tt.blocker), Piece{Type: Knight, Color: Black})
			}
			assert.Equal(t, tt.want, squareNames(PseudoLegalDestinations(b, sq(t, "e2"), White)))
		})
	}
}

func TestPawnCapturesOnlyOpponents(t *testing.T) {
	b := EmptyBoard()
	b.Set(sq(t, "d5"), Piece{Type: Pawn, Color: Black})
	b.Set(sq(t, "c4"), Piece{Type: Pawn, Color: White})
	b.Set(sq(t, "e4"), Piece{Type: Pawn, Color: Black})
	b.Set(sq(t, "d4"), Piece{Type: Pawn, Color: White})

	// d4 blocks the push, e4 is friendly and c4 is a capture.
	assert.Equal(t, []string{"c4"}, squareNames(PseudoLegalDestinations(b, sq(t, "d5"), Black)))
}

func TestPawnNotOnHomeRankMovesOnce(t *testing.T) {
	b := EmptyBoard()
	b.Set(sq(t, "a3"), Piece{Type: Pawn, Color: White})
	assert.Equal(t, []string{"a4"}, squareNames(PseudoLegalDestinations(b, sq(t, "a3"), White)))

	// A pawn on the last rank has nowhere to go: there is no promotion.
	b.Set(sq(t, "h8"), Piece{Type: Pawn, Color: White})
	assert.Empty(t, PseudoLegalDestinations(b, sq(t, "h8"), White))
}

func TestKnightAndKingSteps(t *testing.T) {
	b := EmptyBoard()
	b.Set(sq(t, "a1"), Piece{Type: Knight, Color: White})
	b.Set(sq(t, "b3"), Piece{Type: Pawn, Color: White})
	b.Set(sq(t, "c2"), Piece{Type: Pawn, Color: Black})
	assert.Equal(t, []string{"c2"}, squareNames(PseudoLegalDestinations(b, sq(t, "a1"), White)))

	b = EmptyBoard()
	b.Set(sq(t, "e4"), Piece{Type: King, Color: Black})
	assert.Len(t, PseudoLegalDestinations(b, sq(t, "e4"), Black), 8)

	b.Set(sq(t, "h8"), Piece{Type: King, Color: White})
	assert.Len(t, PseudoLegalDestinations(b, sq(t, "h8"), White), 3)
}

func TestQueenIsRookPlusBishop(t *testing.T) {
	b := EmptyBoard()
	b.Set(sq(t, "d4"), Piece{Type: Queen, Color: White})
	assert.Len(t, PseudoLegalDestinations(b, sq(t, "d4"), White), 27)

	b.Set(sq(t, "d4"), Piece{Type: Bishop, Color: White})
	assert.Len(t, PseudoLegalDestinations(b, sq(t, "d4"), White), 13)
}

func TestEmptySquareGeneratesNothing(t *testing.T) {
	assert.Nil(t, PseudoLegalDestinations(EmptyBoard(), Square{Row: 3, Col: 3}, White))
}
