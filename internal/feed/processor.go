package feed

import (
	"fmt"
	"io"
	"sync"

	"github.com/justinabrahms/chessai/internal/chess"
	"github.com/justinabrahms/chessai/internal/render"
)

// Printer writes a running commentary of a game to a terminal, redrawing
// the board after every move.
type Printer struct {
	out io.Writer

	mu       sync.Mutex
	finished bool
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// ProcessEvent is an EventHandler.
func (p *Printer) ProcessEvent(event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch event.Type {
	case EventTypeMove:
		return p.printMove(event.Move)
	case EventTypeGameEnd:
		p.finished = true
		_, err := fmt.Fprintf(p.out, "Game over: %s\n", event.Result)
		return err
	case EventTypeSpectatorCount:
		_, err := fmt.Fprintf(p.out, "Spectators: %d\n", event.Count)
		return err
	}
	return nil
}

func (p *Printer) printMove(m *chess.MoveResult) error {
	if m == nil {
		return fmt.Errorf("move update without a move")
	}

	board, _, err := chess.ParseFEN(m.FEN)
	if err != nil {
		return fmt.Errorf("move update carries a bad FEN: %w", err)
	}

	line := fmt.Sprintf("%s %s from %s to %s", m.Color, m.Piece, m.From, m.To)
	if m.Captured != "" {
		line += ", capturing " + m.Captured
	}
	switch {
	case m.Checkmate:
		line += ", checkmate"
	case m.Check:
		line += ", check"
	case m.Stalemate:
		line += ", stalemate"
	}

	if _, err := fmt.Fprintln(p.out, line); err != nil {
		return err
	}
	return render.WriteText(p.out, board)
}

// Finished reports whether a game_end update has been seen.
func (p *Printer) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}
