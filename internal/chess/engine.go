package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// Engine is the live game: one board plus whose turn it is. The board is
// mutated in place only after a move has been validated.
type Engine struct {
	board    *Board
	turn     Color
	halfmove int
	fullmove int
	history  []Move
}

func NewEngine() *Engine {
	return &Engine{
		board:    NewBoard(),
		turn:     White,
		fullmove: 1,
	}
}

func NewEngineFromFEN(fen string) (*Engine, error) {
	board, turn, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		board:    board,
		turn:     turn,
		fullmove: 1,
	}
	if fields := strings.Fields(fen); len(fields) == 6 {
		if n, err := strconv.Atoi(fields[4]); err == nil && n >= 0 {
			e.halfmove = n
		}
		if n, err := strconv.Atoi(fields[5]); err == nil && n > 0 {
			e.fullmove = n
		}
	}
	return e, nil
}

// MakeMove validates and applies a move for the side to move. On error the
// board is unchanged.
func (e *Engine) MakeMove(from, to string) (*MoveResult, error) {
	fromSquare, err := ParseSquare(from)
	if err != nil {
		return nil, err
	}
	toSquare, err := ParseSquare(to)
	if err != nil {
		return nil, err
	}

	return e.Play(Move{From: fromSquare, To: toSquare})
}

// Play is MakeMove for an already parsed move.
func (e *Engine) Play(m Move) (*MoveResult, error) {
	if e.Outcome().Kind != Ongoing {
		return nil, ErrGameOver
	}
	if !IsLegal(e.board, m.From, m.To, e.turn) {
		return nil, fmt.Errorf("%w: %s to %s", ErrIllegalMove, m.From, m.To)
	}

	mover := e.turn
	piece := e.board.At(m.From)
	captured := e.board.At(m.To)

	e.board.Apply(m)
	e.history = append(e.history, m)
	if piece.Type == Pawn || !captured.IsEmpty() {
		e.halfmove = 0
	} else {
		e.halfmove++
	}
	if mover == Black {
		e.fullmove++
	}
	e.turn = mover.Other()

	outcome := e.Outcome()
	result := &MoveResult{
		From:      m.From.String(),
		To:        m.To.String(),
		Piece:     piece.Type.String(),
		Color:     mover.String(),
		FEN:       e.GetFEN(),
		Check:     InCheck(e.board, e.turn),
		Checkmate: outcome.Kind == Checkmate,
		Stalemate: outcome.Kind == Stalemate,
		Draw:      outcome.Kind == Stalemate,
		GameOver:  outcome.Kind != Ongoing,
	}
	if !captured.IsEmpty() {
		result.Captured = captured.Type.String()
	}
	if result.GameOver {
		result.Result = string(outcome.Status())
	}

	return result, nil
}

// AIMove searches depth plies for the side to move and plays the result.
func (e *Engine) AIMove(depth int) (*MoveResult, SearchResult, error) {
	res := Search(e.board, e.turn, depth)
	if !res.Found {
		if e.Outcome().Kind != Ongoing {
			return nil, res, ErrGameOver
		}
		return nil, res, fmt.Errorf("%w: search depth %d", ErrNoMoves, depth)
	}

	mr, err := e.Play(res.Move)
	return mr, res, err
}

// Board returns a copy of the live board.
func (e *Engine) Board() *Board {
	return e.board.Clone()
}

func (e *Engine) Turn() Color {
	return e.turn
}

func (e *Engine) Outcome() GameResult {
	return Outcome(e.board, e.turn)
}

func (e *Engine) LegalMoves() []Move {
	return LegalMoves(e.board, e.turn)
}

// History returns the moves played since the engine was created.
func (e *Engine) History() []Move {
	return append([]Move(nil), e.history...)
}

func (e *Engine) GetFEN() string {
	return FormatFEN(e.board, e.turn, e.halfmove, e.fullmove)
}

func (e *Engine) GetStatus() GameStatus {
	return e.Outcome().Status()
}

func (e *Engine) GetActiveColor() string {
	return e.turn.String()
}

func (e *Engine) ValidateFEN(fen string) error {
	_, _, err := ParseFEN(fen)
	return err
}

func (e *Engine) GetPieceValues() map[string]int {
	values := make(map[string]int, len(StandardPieceValues))
	for k, v := range StandardPieceValues {
		values[k] = v
	}
	return values
}

func (e *Engine) GetMaterialCount() MaterialCount {
	return Material(e.board)
}

// GetMaterialBalance is White's material minus Black's.
func (e *Engine) GetMaterialBalance() int {
	mc := Material(e.board)
	return mc.White - mc.Black
}
