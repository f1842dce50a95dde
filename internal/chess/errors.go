package chess

import "errors"

var (
	// ErrMalformedInput is returned when notation cannot be parsed into in-range squares.
	ErrMalformedInput = errors.New("malformed input")
	// ErrIllegalMove is returned when a move fails legality checking. The board is untouched.
	ErrIllegalMove = errors.New("illegal move")
	// ErrNoMoves is returned when the side to move has no legal move.
	ErrNoMoves = errors.New("no legal moves")
	// ErrGameOver is returned for a move played after checkmate or stalemate.
	ErrGameOver = errors.New("game is over")
)
