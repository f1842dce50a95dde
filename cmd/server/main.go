package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chessai/internal/auth"
	"github.com/justinabrahms/chessai/internal/config"
	"github.com/justinabrahms/chessai/internal/game"
	"github.com/justinabrahms/chessai/internal/web"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogging(cfg.Development)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := web.NewHub(log.With().Str("component", "hub").Logger())
	go hub.Run(ctx)

	games := game.NewManager(
		game.WithSearch(game.SearchFor(cfg.Engine.Parallel, cfg.Engine.Workers)),
		game.WithMoveListener(hub.OnMove),
		game.WithLogger(log.With().Str("component", "games").Logger()),
	)
	secret, err := cfg.SigningSecret()
	if err != nil {
		log.Fatal().Err(err).Msg("No token secret")
	}
	if secret == config.DevSecret {
		log.Warn().Msg("Signing player tokens with the development secret")
	}
	tokens := auth.NewTokenManager(secret, cfg.Auth.TokenTTL)
	service := web.NewService(games, tokens, cfg, hub, log.With().Str("component", "web").Logger())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      service.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // deep searches answer slowly
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Int("depth", cfg.Engine.Depth).
			Bool("parallel", cfg.Engine.Parallel).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	stop()

	log.Info().Msg("Server exited")
}

func setupLogging(dev config.DevelopmentConfig) {
	level, err := zerolog.ParseLevel(dev.LogLevel)
	if err != nil {
		log.Warn().Str("level", dev.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if dev.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func showHelpMessage() {
	fmt.Println(`ChessAI Server

DESCRIPTION:
    HTTP service for playing chess against a minimax engine with
    alpha-beta pruning. Games live in memory; each game is one human
    against the engine. Spectators follow games over WebSocket.

USAGE:
    chessai-server [OPTIONS]

OPTIONS:
    -h, --help    Show this help message

CONFIGURATION:
    The server reads config.yaml from the current directory or ./config.
    Every key can be overridden with a CHESSAI_ environment variable,
    e.g. CHESSAI_ENGINE_DEPTH=4.

    Example config.yaml:
        server:
          host: localhost
          port: 8080
        
        engine:
          depth: 3          # plies searched, 1-6
          ai_color: black   # side the engine plays by default
          parallel: false   # split root moves across goroutines
          workers: 0        # 0 means one per CPU
        
        auth:
          secret: "change-me"   # see chessai-generate-secret
          token_ttl: 24h
        
        development:
          debug: true
          log_level: debug

API ENDPOINTS:
    GET  /api/health                  - Service health check
    POST /api/games                   - Start a game {color, depth}
    GET  /api/games                   - List games
    GET  /api/games/{id}              - Game state
    GET  /api/games/{id}/moves        - Legal moves (?from=e2)
    POST /api/games/{id}/moves        - Play {from, to} with Bearer token
    GET  /api/games/{id}/board.svg    - Board image (?perspective=black)
    GET  /api/games/{id}/record       - Record (?format=dag-json|dag-cbor|car)
    GET  /api/games/{id}/abandonment  - Idle check
    GET  /api/archive.car             - Every game as a CAR file
    GET  /api/spectate                - Games in progress
    POST /api/analyze                 - Best move for {fen, color, depth}
    GET  /ws?gameId={id}              - Spectator WebSocket

BEHAVIOR:
    - Castling, en passant, promotion and draw rules are not played
    - The engine answers every human move in the same request
    - Graceful shutdown on SIGINT/SIGTERM

EXAMPLES:
    # Start with default configuration
    chessai-server

    # Start a game as white
    curl -X POST http://localhost:8080/api/games \
      -H "Content-Type: application/json" \
      -d '{"color": "white", "depth": 3}'

    # Play e2-e4 with the returned token
    curl -X POST http://localhost:8080/api/games/$ID/moves \
      -H "Authorization: Bearer $TOKEN" \
      -d '{"from": "e2", "to": "e4"}'

SEE ALSO:
    chessai-console(1), chessai-generate-secret(1), config.yaml(5)`)
}
