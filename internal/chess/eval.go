package chess

// searchValues are the material weights used by Evaluate. The king carries a
// large value so that positions without it dominate the score.
var searchValues = [...]int{
	NoPieceType: 0,
	Pawn:        1,
	Knight:      3,
	Bishop:      3,
	Rook:        5,
	Queen:       9,
	King:        1000,
}

// Evaluate returns the signed material sum, positive for White. There is no
// positional term.
func Evaluate(b *Board) int {
	score := 0
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b.squares[row][col]
			switch p.Color {
			case White:
				score += searchValues[p.Type]
			case Black:
				score -= searchValues[p.Type]
			}
		}
	}
	return score
}

// Material counts StandardPieceValues per side; kings count zero.
func Material(b *Board) MaterialCount {
	var mc MaterialCount
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b.squares[row][col]
			v := StandardPieceValues[p.Type.String()]
			switch p.Color {
			case White:
				mc.White += v
			case Black:
				mc.Black += v
			}
		}
	}
	return mc
}
