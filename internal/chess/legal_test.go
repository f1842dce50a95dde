package chess

import (
	"math/rand"
	"testing"

	notnil "github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialPositionHasTwentyMoves(t *testing.T) {
	b := NewBoard()
	assert.Len(t, LegalMoves(b, White), 20)
	assert.Len(t, LegalMoves(b, Black), 20)
}

func TestLegalMovesOrder(t *testing.T) {
	moves := LegalMoves(NewBoard(), White)
	require.NotEmpty(t, moves)
	// Row-major scan: rank 2 pawns come before the rank 1 knights.
	assert.Equal(t, "a2a3", moves[0].String())
	assert.Equal(t, "a2a4", moves[1].String())
	assert.Equal(t, "g1h3", moves[len(moves)-1].String())
}

func TestIsLegalRejections(t *testing.T) {
	b := NewBoard()
	tests := []struct {
		name     string
		from, to Square
		color    Color
	}{
		{"from off board", Square{Row: -1, Col: 4}, Square{Row: 4, Col: 4}, White},
		{"to off board", Square{Row: 6, Col: 4}, Square{Row: 6, Col: 8}, White},
		{"empty origin", Square{Row: 4, Col: 4}, Square{Row: 3, Col: 4}, White},
		{"opponent piece", Square{Row: 1, Col: 4}, Square{Row: 2, Col: 4}, White},
		{"self capture", Square{Row: 7, Col: 3}, Square{Row: 6, Col: 3}, White},
		{"wrong shape", Square{Row: 6, Col: 4}, Square{Row: 3, Col: 4}, White},
		{"knight wrong shape", Square{Row: 7, Col: 6}, Square{Row: 5, Col: 4}, White},
		{"blocked slider", Square{Row: 7, Col: 0}, Square{Row: 5, Col: 0}, White},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := b.Clone()
			assert.False(t, IsLegal(b, tt.from, tt.to, tt.color))
			assert.True(t, before.Equal(b), "IsLegal must not mutate the board")
		})
	}
}

func TestKingCaptureIsAlwaysIllegal(t *testing.T) {
	b, _ := mustFEN(t, "4k3/8/8/8/8/8/8/4R2K w - - 0 1")

	assert.Contains(t, squareNames(PseudoLegalDestinations(b, sq(t, "e1"), White)), "e8")
	assert.False(t, IsLegal(b, sq(t, "e1"), sq(t, "e8"), White))
	for _, m := range LegalMoves(b, White) {
		assert.NotEqual(t, King, b.At(m.To).Type, "move %s captures a king", m)
	}
}

func TestPinnedPieceCannotMove(t *testing.T) {
	b, _ := mustFEN(t, "4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1")

	assert.Contains(t, squareNames(PseudoLegalDestinations(b, sq(t, "e2"), White)), "d3")
	assert.False(t, IsLegal(b, sq(t, "e2"), sq(t, "d3"), White))
	assert.Empty(t, LegalDestinations(b, sq(t, "e2"), White))
}

func TestKingCannotStayOnCheckingRay(t *testing.T) {
	b, _ := mustFEN(t, "4k3/8/8/8/8/8/8/r3K3 w - - 0 1")

	require.True(t, InCheck(b, White))
	assert.Equal(t, []string{"d2", "e2", "f2"}, squareNames(LegalDestinations(b, sq(t, "e1"), White)))
}

func TestKingsStayApart(t *testing.T) {
	b, _ := mustFEN(t, "8/8/8/3k4/8/3K4/8/8 w - - 0 1")
	assert.Equal(t, []string{"c2", "c3", "d2", "e2", "e3"}, squareNames(LegalDestinations(b, sq(t, "d3"), White)))
}

func TestInCheckWithoutKingIsFalse(t *testing.T) {
	b := EmptyBoard()
	b.Set(sq(t, "a1"), Piece{Type: Queen, Color: White})
	assert.False(t, InCheck(b, Black))
	assert.False(t, InCheck(b, White))
}

func TestPawnAttacksOnlyDiagonally(t *testing.T) {
	b := EmptyBoard()
	b.Set(sq(t, "e4"), Piece{Type: King, Color: White})
	b.Set(sq(t, "e5"), Piece{Type: Pawn, Color: Black})
	assert.False(t, InCheck(b, White), "a pawn directly ahead does not attack")

	b.Set(sq(t, "e5"), NoPiece)
	b.Set(sq(t, "d5"), Piece{Type: Pawn, Color: Black})
	assert.True(t, InCheck(b, White))

	b.Set(sq(t, "d5"), NoPiece)
	b.Set(sq(t, "d3"), Piece{Type: Pawn, Color: Black})
	assert.False(t, InCheck(b, White), "black pawns attack downward only")
}

// Positions without castling rights, en passant or promotions, where the
// full rules and ours agree.
var oraclePositions = []string{
	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w - - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 b - - 0 1",
	"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w - - 1 3",
	"r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w - - 4 4",
	"r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR b - - 4 4",
}

func TestLegalMoveCountsMatchReference(t *testing.T) {
	for _, fen := range oraclePositions {
		t.Run(fen, func(t *testing.T) {
			b, turn := mustFEN(t, fen)

			opt, err := notnil.FEN(fen)
			require.NoError(t, err)
			reference := notnil.NewGame(opt).ValidMoves()

			assert.Len(t, LegalMoves(b, turn), len(reference))
		})
	}
}

// TestRandomGamesKeepInvariants plays seeded random games and checks every
// position along the way.
func TestRandomGamesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for game := 0; game < 4; game++ {
		b := NewBoard()
		turn := White
		for ply := 0; ply < 80; ply++ {
			moves := LegalMoves(b, turn)

			mate, stale := IsCheckmate(b, turn), IsStalemate(b, turn)
			require.False(t, mate && stale, "checkmate and stalemate at once")
			if len(moves) > 0 {
				require.False(t, mate || stale)
			} else {
				require.True(t, mate || stale)
				break
			}

			for _, m := range moves {
				next := b.Clone()
				next.Apply(m)
				require.False(t, InCheck(next, turn), "move %s leaves own king in check", m)
				require.NotEqual(t, King, b.At(m.To).Type, "move %s captures a king", m)
			}

			b.Apply(moves[rng.Intn(len(moves))])
			turn = turn.Other()
		}
	}
}
