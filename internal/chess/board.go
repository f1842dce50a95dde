package chess

import (
	"fmt"
	"strings"
)

// Square is a (row, column) pair. Row 0 is rank 8 and column 0 is file a.
type Square struct {
	Row int
	Col int
}

func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

// String returns algebraic notation, e.g. "e2".
func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+s.Col, 8-s.Row)
}

// ParseSquare converts algebraic notation into a square.
func ParseSquare(sq string) (Square, error) {
	sq = strings.ToLower(strings.TrimSpace(sq))
	if len(sq) != 2 {
		return Square{}, fmt.Errorf("%w: square %q", ErrMalformedInput, sq)
	}

	file := int(sq[0]) - 'a'
	rank := int(sq[1]) - '0'

	s := Square{Row: 8 - rank, Col: file}
	if !s.Valid() {
		return Square{}, fmt.Errorf("%w: square %q out of range", ErrMalformedInput, sq)
	}
	return s, nil
}

// Move is an ordered (from, to) pair. There is no promotion, castling or
// en-passant metadata.
type Move struct {
	From Square
	To   Square
}

func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// ParseMove accepts "e2e4", "e2 e4", "e2-e4" and "e2 to e4".
func ParseMove(s string) (Move, error) {
	fields := strings.Fields(strings.ToLower(s))
	var from, to string
	switch {
	case len(fields) == 3 && fields[1] == "to":
		from, to = fields[0], fields[2]
	case len(fields) == 2:
		from, to = fields[0], fields[1]
	case len(fields) == 1 && len(fields[0]) == 4:
		from, to = fields[0][:2], fields[0][2:]
	case len(fields) == 1 && len(fields[0]) == 5 && fields[0][2] == '-':
		from, to = fields[0][:2], fields[0][3:]
	default:
		return Move{}, fmt.Errorf("%w: move %q", ErrMalformedInput, s)
	}

	f, err := ParseSquare(from)
	if err != nil {
		return Move{}, err
	}
	t, err := ParseSquare(to)
	if err != nil {
		return Move{}, err
	}
	return Move{From: f, To: t}, nil
}

// Board maps every square to an optional piece. It holds no side-to-move.
type Board struct {
	squares [8][8]Piece
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position.
func NewBoard() *Board {
	b := &Board{}
	for col, t := range backRank {
		b.squares[0][col] = Piece{Type: t, Color: Black}
		b.squares[1][col] = Piece{Type: Pawn, Color: Black}
		b.squares[6][col] = Piece{Type: Pawn, Color: White}
		b.squares[7][col] = Piece{Type: t, Color: White}
	}
	return b
}

// EmptyBoard returns a board with no pieces.
func EmptyBoard() *Board {
	return &Board{}
}

// At returns the piece on sq, or NoPiece when sq is empty or off the board.
func (b *Board) At(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return b.squares[sq.Row][sq.Col]
}

// Set places p on sq. Off-board squares are ignored.
func (b *Board) Set(sq Square, p Piece) {
	if !sq.Valid() {
		return
	}
	b.squares[sq.Row][sq.Col] = p
}

// Apply moves whatever occupies m.From to m.To, overwriting the destination.
// It performs no legality checking.
func (b *Board) Apply(m Move) {
	if !m.From.Valid() || !m.To.Valid() {
		return
	}
	p := b.squares[m.From.Row][m.From.Col]
	b.squares[m.From.Row][m.From.Col] = NoPiece
	b.squares[m.To.Row][m.To.Col] = p
}

// Clone returns a fully independent copy.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// KingSquare locates color's king.
func (b *Board) KingSquare(color Color) (Square, bool) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b.squares[row][col]
			if p.Type == King && p.Color == color {
				return Square{Row: row, Col: col}, true
			}
		}
	}
	return Square{}, false
}

// Equal reports whether both boards hold the same pieces on the same squares.
func (b *Board) Equal(o *Board) bool {
	return b.squares == o.squares
}
