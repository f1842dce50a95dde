package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/justinabrahms/chessai/internal/chess"
	"github.com/rs/zerolog"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNotYourTurn  = errors.New("not your turn")
)

// SearchFunc picks a move for color on a board the caller owns.
type SearchFunc func(ctx context.Context, b *chess.Board, color chess.Color, depth int) (chess.SearchResult, error)

// SequentialSearch is the single-threaded alpha-beta search.
func SequentialSearch(_ context.Context, b *chess.Board, color chess.Color, depth int) (chess.SearchResult, error) {
	return chess.Search(b, color, depth), nil
}

// ParallelSearch splits the root moves across workers goroutines.
func ParallelSearch(workers int) SearchFunc {
	return func(ctx context.Context, b *chess.Board, color chess.Color, depth int) (chess.SearchResult, error) {
		return chess.ParallelBestMove(ctx, b, color, depth, workers)
	}
}

// SearchFor picks the search a configured engine should run.
func SearchFor(parallel bool, workers int) SearchFunc {
	if parallel {
		return ParallelSearch(workers)
	}
	return SequentialSearch
}

// MoveListener is told about every move applied to a session.
type MoveListener func(gameID string, result *chess.MoveResult)

// Turn is the outcome of a human move and the engine's reply, if any.
type Turn struct {
	Human  *chess.MoveResult   `json:"human"`
	Engine *chess.MoveResult   `json:"engine,omitempty"`
	Search *chess.SearchResult `json:"search,omitempty"`
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	search   SearchFunc
	listener MoveListener
	logger   zerolog.Logger
	now      func() time.Time
}

type Option func(*Manager)

func WithSearch(search SearchFunc) Option {
	return func(m *Manager) {
		m.search = search
	}
}

func WithMoveListener(l MoveListener) Option {
	return func(m *Manager) {
		m.listener = l
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		search:   SequentialSearch,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a game from the initial position. When the engine plays
// White it opens immediately.
func (m *Manager) Create(ctx context.Context, human chess.Color, depth int) (*Session, error) {
	if human != chess.White && human != chess.Black {
		return nil, fmt.Errorf("%w: human color must be white or black", chess.ErrMalformedInput)
	}

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Human:     human,
		AI:        human.Other(),
		Depth:     depth,
		CreatedAt: now,
		engine:    chess.NewEngine(),
		updatedAt: now,
	}

	if s.AI == chess.White {
		s.mu.Lock()
		_, _, err := m.engineMoveLocked(ctx, s)
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info().
		Str("gameID", s.ID).
		Str("human", human.String()).
		Int("depth", depth).
		Msg("Game created")
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return s, nil
}

// List returns snapshots of every session, newest first.
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		snapshots = append(snapshots, s.Snapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots
}

// Play applies a move for color and, if the game goes on, the engine's reply.
// Nothing changes when the human move is rejected. The reply does not follow
// ctx cancellation. A reply that failed earlier is played before color's move
// is considered.
func (m *Manager) Play(ctx context.Context, id string, color chess.Color, from, to string) (*Turn, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if color == s.Human && s.pendingReplyLocked() {
		m.logger.Warn().Str("gameID", s.ID).Msg("Playing pending engine reply")
		if _, _, err := m.engineMoveLocked(ctx, s); err != nil {
			return nil, err
		}
	}

	if color != s.Human || color != s.engine.Turn() {
		return nil, fmt.Errorf("%w: %s to move", ErrNotYourTurn, s.engine.GetActiveColor())
	}

	human, err := s.engine.MakeMove(from, to)
	if err != nil {
		return nil, err
	}
	s.updatedAt = m.now()
	m.notify(s.ID, human)

	turn := &Turn{Human: human}
	if human.GameOver {
		m.logger.Info().Str("gameID", s.ID).Str("result", human.Result).Msg("Game over")
		return turn, nil
	}

	reply, res, err := m.engineMoveLocked(ctx, s)
	if err != nil {
		return turn, err
	}
	turn.Engine = reply
	turn.Search = &res
	return turn, nil
}

// Analyze runs the manager's search on a position outside any session.
func (m *Manager) Analyze(ctx context.Context, b *chess.Board, color chess.Color, depth int) (chess.SearchResult, error) {
	return m.search(ctx, b.Clone(), color, depth)
}

// engineMoveLocked searches on a copy of the board and plays the result.
// s.mu must be held.
func (m *Manager) engineMoveLocked(ctx context.Context, s *Session) (*chess.MoveResult, chess.SearchResult, error) {
	start := m.now()
	res, err := m.search(context.WithoutCancel(ctx), s.engine.Board(), s.engine.Turn(), s.Depth)
	if err != nil {
		return nil, res, fmt.Errorf("engine search failed: %w", err)
	}
	if !res.Found {
		return nil, res, fmt.Errorf("%w: engine found no move", chess.ErrNoMoves)
	}

	reply, err := s.engine.Play(res.Move)
	if err != nil {
		return nil, res, fmt.Errorf("engine move %s rejected: %w", res.Move, err)
	}
	s.updatedAt = m.now()

	m.logger.Debug().
		Str("gameID", s.ID).
		Str("move", res.Move.String()).
		Int("score", res.Score).
		Int64("nodes", res.Nodes).
		Dur("elapsed", s.updatedAt.Sub(start)).
		Msg("Engine moved")
	m.notify(s.ID, reply)
	return reply, res, nil
}

func (m *Manager) notify(id string, result *chess.MoveResult) {
	if m.listener != nil {
		m.listener(id, result)
	}
}
