package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/justinabrahms/chessai/internal/chess"
)

const (
	squareSize = 60
	margin     = 20
	boardSize  = 8*squareSize + 2*margin
)

var (
	lightSquare = "fill:#f0d9b5"
	darkSquare  = "fill:#b58863"
	highlight   = "fill:#cdd26a;fill-opacity:0.8"
	labelStyle  = "font-family:sans-serif;font-size:12px;fill:#444;text-anchor:middle"
	pieceStyle  = "font-family:serif;font-size:46px;text-anchor:middle;dominant-baseline:central"
)

var glyphs = map[chess.Color]map[chess.PieceType]string{
	chess.White: {
		chess.King: "♔", chess.Queen: "♕", chess.Rook: "♖",
		chess.Bishop: "♗", chess.Knight: "♘", chess.Pawn: "♙",
	},
	chess.Black: {
		chess.King: "♚", chess.Queen: "♛", chess.Rook: "♜",
		chess.Bishop: "♝", chess.Knight: "♞", chess.Pawn: "♟",
	},
}

// SVGOptions tweaks how a board is drawn.
type SVGOptions struct {
	// Perspective is the side drawn at the bottom. NoColor means White.
	Perspective chess.Color
	// LastMove, when set, highlights its two squares.
	LastMove *chess.Move
	Title    string
}

// SVG writes an SVG image of the board to w.
func SVG(w io.Writer, b *chess.Board, opts SVGOptions) {
	canvas := svg.New(w)
	canvas.Start(boardSize, boardSize)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}

	flipped := opts.Perspective == chess.Black
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			sq := chess.Square{Row: row, Col: col}
			x, y := origin(sq, flipped)

			style := lightSquare
			if (row+col)%2 == 1 {
				style = darkSquare
			}
			canvas.Rect(x, y, squareSize, squareSize, style)

			if opts.LastMove != nil && (sq == opts.LastMove.From || sq == opts.LastMove.To) {
				canvas.Rect(x, y, squareSize, squareSize, highlight)
			}

			if p := b.At(sq); !p.IsEmpty() {
				canvas.Text(x+squareSize/2, y+squareSize/2, glyphs[p.Color][p.Type], pieceStyle)
			}
		}
	}

	for i := 0; i < 8; i++ {
		file, rank := i, 8-i
		if flipped {
			file, rank = 7-i, i+1
		}
		pos := margin + i*squareSize + squareSize/2
		canvas.Text(pos, boardSize-margin/2+4, string(rune('a'+file)), labelStyle)
		canvas.Text(margin/2, pos+4, fmt.Sprint(rank), labelStyle)
	}
	canvas.End()
}

// origin is the top-left pixel of sq.
func origin(sq chess.Square, flipped bool) (int, int) {
	row, col := sq.Row, sq.Col
	if flipped {
		row, col = 7-row, 7-col
	}
	return margin + col*squareSize, margin + row*squareSize
}
