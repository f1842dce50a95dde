// Package feed follows a game's spectator stream from a running server.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/justinabrahms/chessai/internal/chess"
)

const (
	// Reconnection parameters
	initialReconnectDelay  = 1 * time.Second
	maxReconnectDelay      = 5 * time.Minute
	reconnectBackoffFactor = 2

	// WebSocket parameters
	pingInterval = 30 * time.Second
	pongTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

// EventType mirrors the update types the server pushes.
type EventType string

const (
	EventTypeMove           EventType = "move"
	EventTypeGameEnd        EventType = "game_end"
	EventTypeSpectatorCount EventType = "spectator_count"
)

// Event is one decoded update from the stream. Only the field matching Type
// is set.
type Event struct {
	Type      EventType
	GameID    string
	Move      *chess.MoveResult
	Result    string
	Count     int
	Timestamp time.Time
}

type EventHandler func(event Event) error

// Client keeps a WebSocket open to one game's stream, reconnecting with
// exponential backoff when it drops.
type Client struct {
	url            string
	handler        EventHandler
	logger         zerolog.Logger
	dialer         *websocket.Dialer
	ctx            context.Context
	cancel         context.CancelFunc
	reconnectDelay time.Duration

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	started   bool
	done      chan struct{}
}

type Option func(*Client)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = dialer
	}
}

func WithInitialReconnectDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.reconnectDelay = delay
	}
}

// StreamURL builds the spectator endpoint for gameID on server, which may be
// an http(s) or ws(s) base URL.
func StreamURL(server, gameID string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"gameId": {gameID}}.Encode()
	return u.String(), nil
}

func NewClient(streamURL string, handler EventHandler, opts ...Option) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	client := &Client{
		url:            streamURL,
		handler:        handler,
		logger:         zerolog.Nop(),
		dialer:         websocket.DefaultDialer,
		ctx:            ctx,
		cancel:         cancel,
		reconnectDelay: initialReconnectDelay,
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Start begins following the stream in the background.
func (c *Client) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return fmt.Errorf("client already started")
	}
	c.started = true
	go c.run()
	return nil
}

// Stop closes the connection and waits for the client to finish.
func (c *Client) Stop() error {
	c.cancel()

	c.mu.Lock()
	var err error
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	c.connected = false
	started := c.started
	c.mu.Unlock()

	if started {
		<-c.done
	}
	return err
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) run() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		conn, err := c.connect()
		if err != nil {
			c.logger.Error().Err(err).Msg("Failed to connect to game stream")
			c.handleReconnect()
			continue
		}
		if err := c.listen(conn); err != nil && c.ctx.Err() == nil {
			c.logger.Error().Err(err).Msg("Error reading game stream")
		}
		c.handleReconnect()
	}
}

func (c *Client) connect() (*websocket.Conn, error) {
	c.logger.Info().Str("url", c.url).Msg("Connecting to game stream")

	headers := http.Header{}
	headers.Set("User-Agent", "chessai-watch/1.0")

	ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
	defer cancel()

	conn, resp, err := c.dialer.DialContext(ctx, c.url, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		conn.Close()
		return nil, c.ctx.Err()
	}
	c.conn = conn
	c.connected = true
	c.reconnectDelay = initialReconnectDelay
	c.mu.Unlock()

	c.logger.Info().Msg("Connected to game stream")

	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	return conn, nil
}

func (c *Client) listen(conn *websocket.Conn) error {
	stop := make(chan struct{})
	defer close(stop)
	go c.pingLoop(conn, stop)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("websocket read error: %w", err)
			}
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))

		if messageType != websocket.TextMessage {
			continue
		}
		if err := c.processMessage(data); err != nil {
			c.logger.Error().Err(err).Msg("Error processing message")
		}
	}
}

// processMessage decodes one server update and hands it to the handler.
func (c *Client) processMessage(data []byte) error {
	var update struct {
		GameID string          `json:"gameId"`
		Type   EventType       `json:"type"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &update); err != nil {
		return fmt.Errorf("failed to parse update: %w", err)
	}

	event := Event{Type: update.Type, GameID: update.GameID, Timestamp: time.Now()}
	switch update.Type {
	case EventTypeMove:
		var move chess.MoveResult
		if err := json.Unmarshal(update.Data, &move); err != nil {
			return fmt.Errorf("failed to parse move: %w", err)
		}
		event.Move = &move
	case EventTypeGameEnd:
		var end struct {
			Result string `json:"result"`
		}
		if err := json.Unmarshal(update.Data, &end); err != nil {
			return fmt.Errorf("failed to parse game end: %w", err)
		}
		event.Result = end.Result
	case EventTypeSpectatorCount:
		var count struct {
			Count int `json:"count"`
		}
		if err := json.Unmarshal(update.Data, &count); err != nil {
			return fmt.Errorf("failed to parse spectator count: %w", err)
		}
		event.Count = count.Count
	default:
		c.logger.Debug().Str("type", string(update.Type)).Msg("Ignoring unknown update type")
		return nil
	}

	if err := c.handler(event); err != nil {
		c.logger.Error().Err(err).Msg("Event handler error")
	}
	return nil
}

func (c *Client) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout)); err != nil {
				c.logger.Error().Err(err).Msg("Ping failed")
				return
			}
		}
	}
}

func (c *Client) handleReconnect() {
	c.mu.Lock()
	c.connected = false
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	delay := c.reconnectDelay
	c.reconnectDelay = time.Duration(float64(c.reconnectDelay) * reconnectBackoffFactor)
	if c.reconnectDelay > maxReconnectDelay {
		c.reconnectDelay = maxReconnectDelay
	}
	c.mu.Unlock()

	if c.ctx.Err() != nil {
		return
	}
	c.logger.Info().Str("delay", delay.String()).Msg("Waiting before reconnect")

	select {
	case <-time.After(delay):
	case <-c.ctx.Done():
	}
}
