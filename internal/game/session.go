package game

import (
	"sync"
	"time"

	"github.com/justinabrahms/chessai/internal/chess"
)

// Session is one human-versus-engine game. Its mutex serializes moves and
// searches against the live board.
type Session struct {
	ID        string
	Human     chess.Color
	AI        chess.Color
	Depth     int
	CreatedAt time.Time

	mu        sync.Mutex
	engine    *chess.Engine
	updatedAt time.Time
}

// Snapshot is a consistent read-only view of a session.
type Snapshot struct {
	ID        string              `json:"id"`
	White     string              `json:"white"`
	Black     string              `json:"black"`
	Depth     int                 `json:"depth"`
	Status    chess.GameStatus    `json:"status"`
	Turn      string              `json:"turn"`
	FEN       string              `json:"fen"`
	Check     bool                `json:"check"`
	Moves     []string            `json:"moves"`
	Material  chess.MaterialCount `json:"materialCount"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func player(c, human chess.Color) string {
	if c == human {
		return "human"
	}
	return "engine"
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	history := s.engine.History()
	moves := make([]string, 0, len(history))
	for _, m := range history {
		moves = append(moves, m.String())
	}

	board := s.engine.Board()
	return Snapshot{
		ID:        s.ID,
		White:     player(chess.White, s.Human),
		Black:     player(chess.Black, s.Human),
		Depth:     s.Depth,
		Status:    s.engine.GetStatus(),
		Turn:      s.engine.GetActiveColor(),
		FEN:       s.engine.GetFEN(),
		Check:     chess.InCheck(board, s.engine.Turn()),
		Moves:     moves,
		Material:  s.engine.GetMaterialCount(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
}

// Board returns a copy of the current position.
func (s *Session) Board() *chess.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Board()
}

// History returns the moves played so far.
func (s *Session) History() []chess.Move {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.History()
}

// LegalMoves lists legal moves for the side to move, restricted to from
// when it is non-empty.
func (s *Session) LegalMoves(from string) ([]chess.Move, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from == "" {
		return s.engine.LegalMoves(), nil
	}
	sq, err := chess.ParseSquare(from)
	if err != nil {
		return nil, err
	}
	board := s.engine.Board()
	var moves []chess.Move
	for _, to := range chess.LegalDestinations(board, sq, s.engine.Turn()) {
		moves = append(moves, chess.Move{From: sq, To: to})
	}
	return moves, nil
}

// pendingReplyLocked reports whether the engine is to move in a game that is
// still going. s.mu must be held.
func (s *Session) pendingReplyLocked() bool {
	return s.engine.Turn() == s.AI && s.engine.Outcome().Kind == chess.Ongoing
}
