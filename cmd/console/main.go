package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chessai/internal/chess"
	"github.com/justinabrahms/chessai/internal/config"
	"github.com/justinabrahms/chessai/internal/game"
	"github.com/justinabrahms/chessai/internal/render"
)

func main() {
	var (
		depth    int
		fen      string
		noPrompt bool
	)
	flag.IntVar(&depth, "depth", 0, "Search depth in plies (default from config)")
	flag.StringVar(&fen, "fen", "", "Start from this position instead of the initial one")
	flag.BoolVar(&noPrompt, "no-prompt", false, "Do not ask to continue after each engine move")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if depth == 0 {
		depth = cfg.Engine.Depth
	}

	engine := chess.NewEngine()
	if fen != "" {
		if engine, err = chess.NewEngineFromFEN(fen); err != nil {
			log.Fatal().Err(err).Msg("Invalid starting position")
		}
	}

	ai, err := chess.ParseColor(cfg.Engine.AIColor)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid engine color")
	}

	c := &console{
		in:     bufio.NewScanner(os.Stdin),
		out:    os.Stdout,
		engine: engine,
		human:  ai.Other(),
		depth:  depth,
		search: game.SearchFor(cfg.Engine.Parallel, cfg.Engine.Workers),
		ask:    !noPrompt,
		logger: log.Logger,
	}
	if err := c.run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Game aborted")
	}
}

type console struct {
	in     *bufio.Scanner
	out    io.Writer
	engine *chess.Engine
	human  chess.Color
	depth  int
	search game.SearchFunc
	ask    bool
	logger zerolog.Logger
}

func title(c chess.Color) string {
	s := c.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// run alternates human and engine turns until the game ends or input runs out.
func (c *console) run(ctx context.Context) error {
	for {
		c.printBoard()
		if c.finished() {
			return nil
		}

		turn := c.engine.Turn()
		if turn == c.human {
			fmt.Fprintf(c.out, "\n--- %s's Turn (Human) ---\n", title(turn))
			if !c.humanMove() {
				return nil
			}
			continue
		}

		fmt.Fprintf(c.out, "\n--- %s's Turn (AI) ---\n", title(turn))
		fmt.Fprintf(c.out, "AI (%s) is thinking...\n", turn)
		if err := c.engineMove(ctx); err != nil {
			return err
		}

		if c.ask && c.engine.Outcome().Kind == chess.Ongoing {
			if !c.confirm() {
				return nil
			}
		}
	}
}

func (c *console) printBoard() {
	_ = render.WriteText(c.out, c.engine.Board())
}

// finished announces a terminal position for the side to move.
func (c *console) finished() bool {
	outcome := c.engine.Outcome()
	switch outcome.Kind {
	case chess.Checkmate:
		fmt.Fprintf(c.out, "Checkmate! %s wins!\n", title(outcome.Color.Other()))
		return true
	case chess.Stalemate:
		fmt.Fprintln(c.out, "Stalemate - draw.")
		return true
	default:
		return false
	}
}

// humanMove prompts until a legal move is played. It returns false at end
// of input.
func (c *console) humanMove() bool {
	color := c.engine.Turn()
	for {
		fmt.Fprintf(c.out, "Enter your move for %s (e.g., e2 to e4): ", color)
		if !c.in.Scan() {
			fmt.Fprintln(c.out)
			return false
		}

		m, err := chess.ParseMove(c.in.Text())
		if err != nil {
			fmt.Fprintln(c.out, "Invalid move format. Please enter in the format 'e2 to e4'.")
			continue
		}
		if _, err := c.engine.Play(m); err != nil {
			fmt.Fprintln(c.out, "Invalid move. Try again.")
			continue
		}
		fmt.Fprintf(c.out, "%s moved from %s to %s\n", title(color), m.From, m.To)
		return true
	}
}

func (c *console) engineMove(ctx context.Context) error {
	color := c.engine.Turn()
	res, err := c.search(ctx, c.engine.Board(), color, c.depth)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if !res.Found {
		return errors.New("engine has no valid moves")
	}
	if _, err := c.engine.Play(res.Move); err != nil {
		return fmt.Errorf("engine move %s rejected: %w", res.Move, err)
	}

	c.logger.Debug().Str("move", res.Move.String()).Int("score", res.Score).Int64("nodes", res.Nodes).Msg("Engine moved")
	fmt.Fprintf(c.out, "%s AI moved from %s to %s\n", title(color), res.Move.From, res.Move.To)
	return nil
}

func (c *console) confirm() bool {
	fmt.Fprint(c.out, "Continue? (y/n): ")
	if !c.in.Scan() {
		return false
	}
	return strings.ToLower(strings.TrimSpace(c.in.Text())) == "y"
}
