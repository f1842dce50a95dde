package web

import (
	"net/http"
	"time"

	"github.com/justinabrahms/chessai/internal/chess"
	"github.com/justinabrahms/chessai/internal/game"
)

// abandonmentTimeout is how long a game may sit waiting on its human player.
const abandonmentTimeout = 3 * 24 * time.Hour

// GameIndex represents a game available for spectating
type GameIndex struct {
	game.Snapshot
	MoveCount      int `json:"moveCount"`
	SpectatorCount int `json:"spectatorCount"`
}

func (s *Service) view(snap game.Snapshot) GameIndex {
	idx := GameIndex{Snapshot: snap, MoveCount: len(snap.Moves)}
	if s.hub != nil {
		idx.SpectatorCount = s.hub.Count(snap.ID)
	}
	return idx
}

// GetActiveGamesHandler lists the games still in progress, most recent first.
func (s *Service) GetActiveGamesHandler(w http.ResponseWriter, r *http.Request) {
	games := []GameIndex{}
	for _, snap := range s.games.List() {
		if snap.Status == chess.StatusActive {
			games = append(games, s.view(snap))
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"total": len(games),
	})
}

// CheckAbandonmentHandler reports whether a game has been idle too long.
func (s *Service) CheckAbandonmentHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	snap := session.Snapshot()

	if snap.Status != chess.StatusActive {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"abandoned": false,
			"reason":    "Game already ended",
		})
		return
	}

	idle := time.Since(snap.UpdatedAt)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"abandoned":         idle > abandonmentTimeout,
		"lastActivity":      snap.UpdatedAt.Format(time.RFC3339),
		"timeSinceLastMove": idle.Round(time.Second).String(),
		"timeout":           abandonmentTimeout.String(),
	})
}
