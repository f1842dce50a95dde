// Package render draws boards for terminals and browsers.
package render

import (
	"io"
	"strings"

	"github.com/justinabrahms/chessai/internal/chess"
)

const (
	files   = "       a   b   c   d   e   f   g   h\n"
	divider = "  +---+---+---+---+---+---+---+---+\n"
)

// Text draws the board as a framed grid, rank 8 at the top. Empty squares
// are dots and pieces use FEN letters.
func Text(b *chess.Board) string {
	var sb strings.Builder
	sb.WriteString(files)
	sb.WriteString(divider)
	for row := 0; row < 8; row++ {
		rank := byte('8' - row)
		sb.WriteByte(rank)
		sb.WriteString(" |")
		for col := 0; col < 8; col++ {
			p := b.At(chess.Square{Row: row, Col: col})
			sb.WriteByte(' ')
			if p.IsEmpty() {
				sb.WriteByte('.')
			} else {
				sb.WriteRune(p.Rune())
			}
			sb.WriteString(" |")
		}
		sb.WriteByte(' ')
		sb.WriteByte(rank)
		sb.WriteByte('\n')
		sb.WriteString(divider)
	}
	sb.WriteString(files)
	return sb.String()
}

// WriteText writes Text(b) to w.
func WriteText(w io.Writer, b *chess.Board) error {
	_, err := io.WriteString(w, Text(b))
	return err
}
