package chess

type offset struct {
	dr, dc int
}

var (
	orthogonal  = []offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	diagonal    = []offset{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	knightJumps = []offset{
		{-2, -1}, {-2, 1}, {2, -1}, {2, 1},
		{-1, -2}, {-1, 2}, {1, -2}, {1, 2},
	}
	kingSteps = []offset{
		{-1, 0}, {1, 0}, {0, -1}, {0, 1},
		{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
	}
)

// forward is the row delta of a pawn push for color.
func forward(color Color) int {
	if color == White {
		return -1
	}
	return 1
}

func homeRow(color Color) int {
	if color == White {
		return 6
	}
	return 1
}

func (s Square) add(o offset, n int) Square {
	return Square{Row: s.Row + o.dr*n, Col: s.Col + o.dc*n}
}

// isOpponent reports whether p belongs to the side opposing color.
func isOpponent(p Piece, color Color) bool {
	return !p.IsEmpty() && p.Color != color
}

// PseudoLegalDestinations enumerates destinations for the piece on from as if
// it moved for color. King safety is not considered.
func PseudoLegalDestinations(b *Board, from Square, color Color) []Square {
	p := b.At(from)
	switch p.Type {
	case Pawn:
		return pawnMoves(b, from, color)
	case Knight:
		return stepMoves(b, from, color, knightJumps)
	case Bishop:
		return slideMoves(b, from, color, diagonal)
	case Rook:
		return slideMoves(b, from, color, orthogonal)
	case Queen:
		return append(slideMoves(b, from, color, orthogonal), slideMoves(b, from, color, diagonal)...)
	case King:
		return stepMoves(b, from, color, kingSteps)
	default:
		return nil
	}
}

func pawnMoves(b *Board, from Square, color Color) []Square {
	var moves []Square
	dir := offset{dr: forward(color)}

	one := from.add(dir, 1)
	if one.Valid() && b.At(one).IsEmpty() {
		moves = append(moves, one)

		if from.Row == homeRow(color) {
			two := from.add(dir, 2)
			if two.Valid() && b.At(two).IsEmpty() {
				moves = append(moves, two)
			}
		}
	}

	for _, dc := range []int{-1, 1} {
		target := Square{Row: from.Row + dir.dr, Col: from.Col + dc}
		if target.Valid() && isOpponent(b.At(target), color) {
			moves = append(moves, target)
		}
	}
	return moves
}

func stepMoves(b *Board, from Square, color Color, steps []offset) []Square {
	var moves []Square
	for _, o := range steps {
		to := from.add(o, 1)
		if !to.Valid() {
			continue
		}
		if target := b.At(to); target.IsEmpty() || target.Color != color {
			moves = append(moves, to)
		}
	}
	return moves
}

// slideMoves walks each ray until it leaves the board or meets a piece.
// An opposing piece ends the ray and is included as a capture.
func slideMoves(b *Board, from Square, color Color, rays []offset) []Square {
	var moves []Square
	for _, o := range rays {
		for n := 1; ; n++ {
			to := from.add(o, n)
			if !to.Valid() {
				break
			}
			target := b.At(to)
			if target.IsEmpty() {
				moves = append(moves, to)
				continue
			}
			if target.Color != color {
				moves = append(moves, to)
			}
			break
		}
	}
	return moves
}

// validShape is the yes/no form of the generators above, used by IsLegal.
// Destination occupancy by a friendly piece is checked by the caller.
func validShape(b *Board, p Piece, from, to Square, color Color) bool {
	switch p.Type {
	case Pawn:
		return validPawnMove(b, from, to, color)
	case Knight:
		return validKnightMove(from, to)
	case Bishop:
		return validBishopMove(b, from, to)
	case Rook:
		return validRookMove(b, from, to)
	case Queen:
		return validRookMove(b, from, to) || validBishopMove(b, from, to)
	case King:
		return validKingMove(from, to)
	default:
		return false
	}
}

func validPawnMove(b *Board, from, to Square, color Color) bool {
	dir := forward(color)

	if from.Col == to.Col {
		if to.Row == from.Row+dir && b.At(to).IsEmpty() {
			return true
		}
		if from.Row == homeRow(color) && to.Row == from.Row+2*dir {
			mid := Square{Row: from.Row + dir, Col: from.Col}
			return b.At(mid).IsEmpty() && b.At(to).IsEmpty()
		}
		return false
	}

	if abs(from.Col-to.Col) == 1 && to.Row == from.Row+dir {
		return isOpponent(b.At(to), color)
	}
	return false
}

func validRookMove(b *Board, from, to Square) bool {
	if from.Row != to.Row && from.Col != to.Col {
		return false
	}
	return pathClear(b, from, to)
}

func validBishopMove(b *Board, from, to Square) bool {
	if abs(from.Row-to.Row) != abs(from.Col-to.Col) {
		return false
	}
	return pathClear(b, from, to)
}

func validKnightMove(from, to Square) bool {
	dr, dc := abs(from.Row-to.Row), abs(from.Col-to.Col)
	return (dr == 2 && dc == 1) || (dr == 1 && dc == 2)
}

func validKingMove(from, to Square) bool {
	return abs(from.Row-to.Row) <= 1 && abs(from.Col-to.Col) <= 1
}

// pathClear reports whether every square strictly between from and to is
// empty. from and to must share a row, column or diagonal.
func pathClear(b *Board, from, to Square) bool {
	step := offset{dr: sign(to.Row - from.Row), dc: sign(to.Col - from.Col)}
	for sq := from.add(step, 1); sq != to; sq = sq.add(step, 1) {
		if !b.At(sq).IsEmpty() {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
