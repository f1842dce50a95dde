package chess

// InCheck reports whether color's king is attacked. A board without that
// king is never in check.
func InCheck(b *Board, color Color) bool {
	king, ok := b.KingSquare(color)
	if !ok {
		return false
	}
	return IsAttacked(b, king, color.Other())
}

// IsAttacked reports whether any piece of attacker attacks sq.
func IsAttacked(b *Board, sq Square, attacker Color) bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b.squares[row][col]
			if p.IsEmpty() || p.Color != attacker {
				continue
			}
			if attacks(b, p, Square{Row: row, Col: col}, sq) {
				return true
			}
		}
	}
	return false
}

// attacks uses the movement shapes, except that pawns only ever attack one
// square diagonally forward.
func attacks(b *Board, p Piece, from, target Square) bool {
	if from == target {
		return false
	}
	switch p.Type {
	case Pawn:
		return target.Row == from.Row+forward(p.Color) && abs(target.Col-from.Col) == 1
	case Knight:
		return validKnightMove(from, target)
	case Bishop:
		return validBishopMove(b, from, target)
	case Rook:
		return validRookMove(b, from, target)
	case Queen:
		return validRookMove(b, from, target) || validBishopMove(b, from, target)
	case King:
		return validKingMove(from, target)
	default:
		return false
	}
}
