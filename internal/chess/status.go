package chess

import "fmt"

type ResultKind int

const (
	Ongoing ResultKind = iota
	Checkmate
	Stalemate
)

// GameResult is derived from a position and a side to move; it is never stored.
type GameResult struct {
	Kind  ResultKind
	Color Color // side that is mated or stalemated
}

func (r GameResult) String() string {
	switch r.Kind {
	case Checkmate:
		return fmt.Sprintf("checkmate (%s)", r.Color)
	case Stalemate:
		return fmt.Sprintf("stalemate (%s)", r.Color)
	default:
		return "ongoing"
	}
}

// Status maps the result onto the game status reported to players.
func (r GameResult) Status() GameStatus {
	switch r.Kind {
	case Checkmate:
		if r.Color == White {
			return StatusBlackWon
		}
		return StatusWhiteWon
	case Stalemate:
		return StatusDraw
	default:
		return StatusActive
	}
}

func IsCheckmate(b *Board, color Color) bool {
	return InCheck(b, color) && !HasLegalMove(b, color)
}

func IsStalemate(b *Board, color Color) bool {
	return !InCheck(b, color) && !HasLegalMove(b, color)
}

// Outcome classifies the position for color to move.
func Outcome(b *Board, color Color) GameResult {
	if HasLegalMove(b, color) {
		return GameResult{Kind: Ongoing}
	}
	if InCheck(b, color) {
		return GameResult{Kind: Checkmate, Color: color}
	}
	return GameResult{Kind: Stalemate, Color: color}
}
