package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/justinabrahms/chessai/internal/chess"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Update types pushed to spectators.
const (
	UpdateMove           = "move"
	UpdateGameEnd        = "game_end"
	UpdateSpectatorCount = "spectator_count"
)

// Hub fans game updates out to the WebSocket clients watching each game.
type Hub struct {
	// Registered clients by game ID
	gameClients map[string]map[*Client]bool

	broadcast  chan GameUpdate
	register   chan *Client
	unregister chan *Client

	// done is closed when Run returns.
	done chan struct{}

	mu     sync.RWMutex
	logger zerolog.Logger
}

// Client represents a WebSocket connection
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
}

type GameUpdate struct {
	GameID string      `json:"gameId"`
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		gameClients: make(map[string]map[*Client]bool),
		broadcast:   make(chan GameUpdate, sendBuffer),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Run is the hub's event loop. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.gameClients[client.gameID] == nil {
				h.gameClients[client.gameID] = make(map[*Client]bool)
			}
			h.gameClients[client.gameID][client] = true
			h.mu.Unlock()

			h.logger.Info().Str("gameID", client.gameID).Msg("Client connected to game")
			h.deliver(h.countUpdate(client.gameID))

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

			h.logger.Info().Str("gameID", client.gameID).Msg("Client disconnected from game")
			h.deliver(h.countUpdate(client.gameID))

		case update := <-h.broadcast:
			h.deliver(update)
		}
	}
}

// deliver writes update to every client of its game. Clients that cannot
// keep up are dropped.
func (h *Hub) deliver(update GameUpdate) {
	message, err := json.Marshal(update)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal game update")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.gameClients[update.GameID] {
		select {
		case client.send <- message:
		default:
			h.removeLocked(client)
		}
	}
}

// removeLocked forgets client and closes its send channel. h.mu must be held.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.gameClients[client.gameID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.gameClients, client.gameID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.gameClients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

func (h *Hub) countUpdate(gameID string) GameUpdate {
	return GameUpdate{
		GameID: gameID,
		Type:   UpdateSpectatorCount,
		Data:   map[string]int{"count": h.Count(gameID)},
	}
}

// Count is the number of clients watching gameID.
func (h *Hub) Count(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.gameClients[gameID])
}

// BroadcastGameUpdate queues an update without blocking the caller.
func (h *Hub) BroadcastGameUpdate(update GameUpdate) {
	select {
	case h.broadcast <- update:
	default:
		h.logger.Warn().Str("gameID", update.GameID).Msg("Broadcast channel full, dropping update")
	}
}

// OnMove publishes a played move, plus a game_end update when it ends the game.
func (h *Hub) OnMove(gameID string, result *chess.MoveResult) {
	h.BroadcastGameUpdate(GameUpdate{GameID: gameID, Type: UpdateMove, Data: result})
	if result.GameOver {
		h.BroadcastGameUpdate(GameUpdate{
			GameID: gameID,
			Type:   UpdateGameEnd,
			Data:   map[string]string{"result": result.Result},
		})
	}
}

// WebSocketHandler upgrades spectators of an existing game.
func (s *Service) WebSocketHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("gameId")
		if gameID == "" {
			http.Error(w, "Missing gameId parameter", http.StatusBadRequest)
			return
		}
		if _, err := s.games.Get(gameID); err != nil {
			s.writeError(w, r, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
			return
		}

		client := &Client{
			hub:    hub,
			conn:   conn,
			send:   make(chan []byte, sendBuffer),
			gameID: gameID,
		}
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// readPump discards client messages and notices when the connection goes
// away. Only writePump writes to the connection.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error().Err(err).Msg("WebSocket error")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
