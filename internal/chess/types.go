package chess

import (
	"fmt"
	"strings"
)

type Color int8

const (
	NoColor Color = iota
	White
	Black
)

// Other returns the opposing color. NoColor maps to itself.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// ParseColor accepts "white"/"black" and their one-letter forms.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return NoColor, fmt.Errorf("%w: unknown color %q", ErrMalformedInput, s)
	}
}

type PieceType int8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (t PieceType) String() string {
	switch t {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return ""
	}
}

// Piece is a (type, color) pair. The zero value is an empty square.
type Piece struct {
	Type  PieceType
	Color Color
}

var NoPiece = Piece{}

func (p Piece) IsEmpty() bool {
	return p.Type == NoPieceType
}

// Rune returns the FEN letter for the piece: uppercase for White, '.' when empty.
func (p Piece) Rune() rune {
	var r rune
	switch p.Type {
	case Pawn:
		r = 'p'
	case Knight:
		r = 'n'
	case Bishop:
		r = 'b'
	case Rook:
		r = 'r'
	case Queen:
		r = 'q'
	case King:
		r = 'k'
	default:
		return '.'
	}
	if p.Color == White {
		r -= 'a' - 'A'
	}
	return r
}

func (p Piece) String() string {
	return string(p.Rune())
}

type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusDraw     GameStatus = "draw"
	StatusWhiteWon GameStatus = "white_won"
	StatusBlackWon GameStatus = "black_won"
)

type MoveResult struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Piece     string `json:"piece"`
	Captured  string `json:"captured,omitempty"`
	Color     string `json:"color"`
	FEN       string `json:"fen"`
	Check     bool   `json:"check"`
	Checkmate bool   `json:"checkmate"`
	Stalemate bool   `json:"stalemate"`
	Draw      bool   `json:"draw"`
	GameOver  bool   `json:"gameOver"`
	Result    string `json:"result"`
}

// MaterialCount represents the material count for both sides
type MaterialCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// StandardPieceValues are the material values reported to players.
var StandardPieceValues = map[string]int{
	"pawn":   1,
	"knight": 3,
	"bishop": 3,
	"rook":   5,
	"queen":  9,
	"king":   0, // King has no material value
}
