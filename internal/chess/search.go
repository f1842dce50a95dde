package chess

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// scoreInf is larger than any material score and stands in for infinity.
const scoreInf = 1_000_000_000

// SearchResult is the outcome of a tree search. Score is White-positive.
type SearchResult struct {
	Score int   `json:"score"`
	Move  Move  `json:"-"`
	Found bool  `json:"found"`
	Nodes int64 `json:"nodes"`
}

type searcher struct {
	nodes int64
}

// Minimax explores the full tree to depth plies with no pruning. A
// maximizing node keeps the first child with the strictly greatest score, a
// minimizing node the first with the strictly smallest.
func Minimax(b *Board, depth int, maximizing bool, side Color) SearchResult {
	s := &searcher{}
	score, move, found := s.minimax(b, depth, maximizing, side)
	return SearchResult{Score: score, Move: move, Found: found, Nodes: s.nodes}
}

// AlphaBeta searches the same tree as Minimax within the (alpha, beta)
// window. With a full window the score equals Minimax; among tying moves the
// chosen move may differ.
func AlphaBeta(b *Board, depth, alpha, beta int, maximizing bool, side Color) SearchResult {
	s := &searcher{}
	score, move, found := s.alphaBeta(b, depth, alpha, beta, maximizing, side)
	return SearchResult{Score: score, Move: move, Found: found, Nodes: s.nodes}
}

// Search runs a full-window alpha-beta search from the root for color.
//
// The root is always a maximizing node, whatever color is searching, while
// Evaluate scores White-positive. For White this picks White's best move.
// For Black it picks the move that is best for White. This is the engine's
// established behavior and is kept until the intended semantics are decided.
func Search(b *Board, color Color, depth int) SearchResult {
	if !HasLegalMove(b, color) {
		return SearchResult{Score: Evaluate(b)}
	}
	return AlphaBeta(b, depth, -scoreInf, scoreInf, true, color)
}

// BestMove returns the move chosen by Search, or false when color has no
// legal move or depth is below one.
func BestMove(b *Board, color Color, depth int) (Move, bool) {
	res := Search(b, color, depth)
	return res.Move, res.Found
}

// ParallelBestMove searches each root move on its own goroutine and board
// clone. Every child gets a full window so the root score equals Minimax,
// and ties resolve to the earliest move in generation order. ctx is checked
// only before a root move starts. workers <= 0 uses one goroutine per CPU.
func ParallelBestMove(ctx context.Context, b *Board, color Color, depth, workers int) (SearchResult, error) {
	moves := LegalMoves(b, color)
	if len(moves) == 0 || depth < 1 {
		return SearchResult{Score: Evaluate(b), Nodes: 1}, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	scores := make([]int, len(moves))
	var nodes int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			child := b.Clone()
			child.Apply(m)
			s := &searcher{}
			scores[i], _, _ = s.alphaBeta(child, depth-1, -scoreInf, scoreInf, false, color.Other())
			atomic.AddInt64(&nodes, s.nodes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SearchResult{}, err
	}

	res := SearchResult{Score: -scoreInf, Found: true, Nodes: nodes + 1}
	for i, score := range scores {
		if score > res.Score {
			res.Score = score
			res.Move = moves[i]
		}
	}
	return res, nil
}

// expand returns the legal moves at a node, or nil when the node is a leaf:
// depth exhausted, checkmate or stalemate.
func (s *searcher) expand(b *Board, depth int, side Color) []Move {
	s.nodes++
	if depth <= 0 {
		return nil
	}
	return LegalMoves(b, side)
}

func (s *searcher) minimax(b *Board, depth int, maximizing bool, side Color) (int, Move, bool) {
	moves := s.expand(b, depth, side)
	if len(moves) == 0 {
		return Evaluate(b), Move{}, false
	}

	var best Move
	value := scoreInf
	if maximizing {
		value = -scoreInf
	}
	for _, m := range moves {
		child := b.Clone()
		child.Apply(m)
		score, _, _ := s.minimax(child, depth-1, !maximizing, side.Other())
		if (maximizing && score > value) || (!maximizing && score < value) {
			value, best = score, m
		}
	}
	return value, best, true
}

func (s *searcher) alphaBeta(b *Board, depth, alpha, beta int, maximizing bool, side Color) (int, Move, bool) {
	moves := s.expand(b, depth, side)
	if len(moves) == 0 {
		return Evaluate(b), Move{}, false
	}

	var best Move
	if maximizing {
		value := -scoreInf
		for _, m := range moves {
			child := b.Clone()
			child.Apply(m)
			score, _, _ := s.alphaBeta(child, depth-1, alpha, beta, false, side.Other())
			if score > value {
				value, best = score, m
			}
			alpha = max(alpha, value)
			if alpha >= beta {
				break // beta cutoff
			}
		}
		return value, best, true
	}

	value := scoreInf
	for _, m := range moves {
		child := b.Clone()
		child.Apply(m)
		score, _, _ := s.alphaBeta(child, depth-1, alpha, beta, true, side.Other())
		if score < value {
			value, best = score, m
		}
		beta = min(beta, value)
		if beta <= alpha {
			break // alpha cutoff
		}
	}
	return value, best, true
}
