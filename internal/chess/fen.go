package chess

import (
	"fmt"
	"strings"

	notnil "github.com/notnil/chess"
)

// ParseFEN decodes a FEN string into a board and the side to move. A bare
// piece-placement field is accepted and defaults to White to move. Castling
// and en-passant fields are parsed but ignored.
func ParseFEN(fen string) (*Board, Color, error) {
	fen = strings.TrimSpace(fen)
	switch len(strings.Fields(fen)) {
	case 0:
		return nil, NoColor, fmt.Errorf("%w: empty FEN", ErrMalformedInput)
	case 1:
		fen += " w - - 0 1"
	}
	placement := strings.Fields(fen)[0]
	if strings.Count(placement, "K") != 1 || strings.Count(placement, "k") != 1 {
		return nil, NoColor, fmt.Errorf("%w: FEN must hold exactly one king per side", ErrMalformedInput)
	}

	opt, err := notnil.FEN(fen)
	if err != nil {
		return nil, NoColor, fmt.Errorf("%w: invalid FEN: %v", ErrMalformedInput, err)
	}
	pos := notnil.NewGame(opt).Position()

	b := EmptyBoard()
	for sq, p := range pos.Board().SquareMap() {
		b.Set(fromNotnilSquare(sq), fromNotnilPiece(p))
	}

	turn := White
	if pos.Turn() == notnil.Black {
		turn = Black
	}
	return b, turn, nil
}

// FEN returns the piece-placement field of the board.
func (b *Board) FEN() string {
	m := make(map[notnil.Square]notnil.Piece)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b.squares[row][col]
			if p.IsEmpty() {
				continue
			}
			m[toNotnilSquare(Square{Row: row, Col: col})] = toNotnilPiece(p)
		}
	}
	return notnil.NewBoard(m).String()
}

// FormatFEN renders a full FEN record. Castling and en-passant are always "-".
func FormatFEN(b *Board, turn Color, halfmove, fullmove int) string {
	active := "w"
	if turn == Black {
		active = "b"
	}
	return fmt.Sprintf("%s %s - - %d %d", b.FEN(), active, halfmove, fullmove)
}

func fromNotnilSquare(sq notnil.Square) Square {
	return Square{Row: 7 - int(sq.Rank()), Col: int(sq.File())}
}

func toNotnilSquare(sq Square) notnil.Square {
	return notnil.Square((7-sq.Row)*8 + sq.Col)
}

func fromNotnilPiece(p notnil.Piece) Piece {
	var t PieceType
	switch p.Type() {
	case notnil.Pawn:
		t = Pawn
	case notnil.Knight:
		t = Knight
	case notnil.Bishop:
		t = Bishop
	case notnil.Rook:
		t = Rook
	case notnil.Queen:
		t = Queen
	case notnil.King:
		t = King
	default:
		return NoPiece
	}
	if p.Color() == notnil.White {
		return Piece{Type: t, Color: White}
	}
	return Piece{Type: t, Color: Black}
}

func toNotnilPiece(p Piece) notnil.Piece {
	c := notnil.White
	if p.Color == Black {
		c = notnil.Black
	}
	switch p.Type {
	case Pawn:
		return notnil.NewPiece(notnil.Pawn, c)
	case Knight:
		return notnil.NewPiece(notnil.Knight, c)
	case Bishop:
		return notnil.NewPiece(notnil.Bishop, c)
	case Rook:
		return notnil.NewPiece(notnil.Rook, c)
	case Queen:
		return notnil.NewPiece(notnil.Queen, c)
	case King:
		return notnil.NewPiece(notnil.King, c)
	default:
		return notnil.NoPiece
	}
}
