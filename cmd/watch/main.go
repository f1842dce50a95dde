package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chessai/internal/feed"
)

func main() {
	var (
		server string
		gameID string
		debug  bool
	)
	flag.StringVar(&server, "server", "http://localhost:8080", "Base URL of the chess server")
	flag.StringVar(&gameID, "game", "", "ID of the game to watch")
	flag.BoolVar(&debug, "debug", false, "Log connection details")
	flag.Parse()

	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger().Level(level)

	if gameID == "" {
		log.Fatal().Msg("-game is required")
	}
	streamURL, err := feed.StreamURL(server, gameID)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid server address")
	}

	printer := feed.NewPrinter(os.Stdout)
	client := feed.NewClient(streamURL, printer.ProcessEvent, feed.WithLogger(log.Logger))
	if err := client.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start watching")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for !printer.Finished() {
		select {
		case <-quit:
			_ = client.Stop()
			return
		case <-ticker.C:
		}
	}
	_ = client.Stop()
}
