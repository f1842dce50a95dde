package chess

// IsLegal reports whether color may move the piece on from to to. It never
// mutates b.
func IsLegal(b *Board, from, to Square, color Color) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}

	p := b.At(from)
	if p.IsEmpty() || p.Color != color {
		return false
	}

	target := b.At(to)
	if !target.IsEmpty() {
		if target.Color == color {
			return false
		}
		// Kings are checkmated, never captured.
		if target.Type == King {
			return false
		}
	}

	if !validShape(b, p, from, to, color) {
		return false
	}

	next := b.Clone()
	next.Apply(Move{From: from, To: to})
	return !InCheck(next, color)
}

// LegalDestinations filters the pseudo-legal destinations of the piece on
// from through IsLegal.
func LegalDestinations(b *Board, from Square, color Color) []Square {
	var dests []Square
	for _, to := range PseudoLegalDestinations(b, from, color) {
		if IsLegal(b, from, to, color) {
			dests = append(dests, to)
		}
	}
	return dests
}

// LegalMoves returns every legal move for color. Origins are scanned
// row-major and each origin keeps its generation order; search relies on
// this order for tie-breaks.
func LegalMoves(b *Board, color Color) []Move {
	var moves []Move
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			from := Square{Row: row, Col: col}
			if p := b.At(from); p.IsEmpty() || p.Color != color {
				continue
			}
			for _, to := range LegalDestinations(b, from, color) {
				moves = append(moves, Move{From: from, To: to})
			}
		}
	}
	return moves
}

// HasLegalMove stops at the first legal move found.
func HasLegalMove(b *Board, color Color) bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			from := Square{Row: row, Col: col}
			if p := b.At(from); p.IsEmpty() || p.Color != color {
				continue
			}
			for _, to := range PseudoLegalDestinations(b, from, color) {
				if IsLegal(b, from, to, color) {
					return true
				}
			}
		}
	}
	return false
}
