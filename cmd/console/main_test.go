package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinabrahms/chessai/internal/chess"
	"github.com/justinabrahms/chessai/internal/game"
)

func newConsole(t *testing.T, fen, input string, ask bool) (*console, *bytes.Buffer) {
	t.Helper()
	engine := chess.NewEngine()
	if fen != "" {
		var err error
		engine, err = chess.NewEngineFromFEN(fen)
		require.NoError(t, err)
	}

	var out bytes.Buffer
	return &console{
		in:     bufio.NewScanner(strings.NewReader(input)),
		out:    &out,
		engine: engine,
		human:  chess.White,
		depth:  1,
		search: game.SequentialSearch,
		ask:    ask,
		logger: zerolog.Nop(),
	}, &out
}

func TestConsoleOneRound(t *testing.T) {
	c, out := newConsole(t, "", "e2 to e4\nn\n", true)
	require.NoError(t, c.run(context.Background()))

	s := out.String()
	assert.Contains(t, s, "--- White's Turn (Human) ---")
	assert.Contains(t, s, "White moved from e2 to e4")
	assert.Contains(t, s, "--- Black's Turn (AI) ---")
	assert.Contains(t, s, "AI (black) is thinking...")
	assert.Contains(t, s, "Black AI moved from ")
	assert.Contains(t, s, "Continue? (y/n): ")
	assert.Len(t, c.engine.History(), 2)
}

func TestConsoleRejectsBadInput(t *testing.T) {
	c, out := newConsole(t, "", "hello\ne2 to e5\ne2e4\n", false)
	require.NoError(t, c.run(context.Background()))

	s := out.String()
	assert.Contains(t, s, "Invalid move format. Please enter in the format 'e2 to e4'.")
	assert.Contains(t, s, "Invalid move. Try again.")
	assert.Contains(t, s, "White moved from e2 to e4")
	// Input ran out on White's second turn.
	assert.Len(t, c.engine.History(), 2)
}

func TestConsoleAnnouncesEnd(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want string
	}{
		{"white mated", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w - - 1 3", "Checkmate! Black wins!"},
		{"white stalemated", "7k/8/8/8/8/8/5q2/7K w", "Stalemate - draw."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newConsole(t, tt.fen, "", true)
			require.NoError(t, c.run(context.Background()))
			assert.Contains(t, out.String(), tt.want)
			assert.Empty(t, c.engine.History())
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "White", title(chess.White))
	assert.Equal(t, "Black", title(chess.Black))
}
