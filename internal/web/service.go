package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/justinabrahms/chessai/internal/archive"
	"github.com/justinabrahms/chessai/internal/auth"
	"github.com/justinabrahms/chessai/internal/chess"
	"github.com/justinabrahms/chessai/internal/config"
	"github.com/justinabrahms/chessai/internal/game"
	"github.com/justinabrahms/chessai/internal/render"
)

var ErrWrongGame = errors.New("token is for another game")

type Service struct {
	games  *game.Manager
	tokens *auth.TokenManager
	config *config.Config
	hub    *Hub
	logger zerolog.Logger
}

func NewService(games *game.Manager, tokens *auth.TokenManager, cfg *config.Config, hub *Hub, logger zerolog.Logger) *Service {
	return &Service{
		games:  games,
		tokens: tokens,
		config: cfg,
		hub:    hub,
		logger: logger,
	}
}

// Routes registers every endpoint on router.
func (s *Service) Routes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HealthHandler).Methods("GET")
	api.HandleFunc("/games", s.CreateGameHandler).Methods("POST")
	api.HandleFunc("/games", s.ListGamesHandler).Methods("GET")
	api.HandleFunc("/games/{id}", s.GetGameHandler).Methods("GET")
	api.HandleFunc("/games/{id}/moves", s.LegalMovesHandler).Methods("GET")
	api.HandleFunc("/games/{id}/moves", s.MakeMoveHandler).Methods("POST")
	api.HandleFunc("/games/{id}/board.svg", s.BoardSVGHandler).Methods("GET")
	api.HandleFunc("/games/{id}/record", s.RecordHandler).Methods("GET")
	api.HandleFunc("/games/{id}/abandonment", s.CheckAbandonmentHandler).Methods("GET")
	api.HandleFunc("/archive.car", s.ArchiveHandler).Methods("GET")
	api.HandleFunc("/spectate", s.GetActiveGamesHandler).Methods("GET")
	api.HandleFunc("/analyze", s.AnalyzeHandler).Methods("POST")
	router.HandleFunc("/ws", s.WebSocketHandler(s.hub))
}

// Handler is the complete HTTP surface. CORS wraps the router so that
// preflights are answered even for routes without an OPTIONS method.
func (s *Service) Handler() http.Handler {
	router := mux.NewRouter()
	s.Routes(router)
	return CORS(router)
}

// CORS allows browser clients on other origins and answers preflights.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chess.ErrMalformedInput), errors.Is(err, archive.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrWrongGame):
		return http.StatusForbidden
	case errors.Is(err, game.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotYourTurn):
		return http.StatusConflict
	case errors.Is(err, chess.ErrIllegalMove), errors.Is(err, chess.ErrGameOver):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	event := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("Request failed")
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"games":  len(s.games.List()),
	})
}

type CreateGameRequest struct {
	Color string `json:"color"`
	Depth int    `json:"depth"`
}

type CreateGameResponse struct {
	Game  game.Snapshot `json:"game"`
	Color string        `json:"color"`
	Token string        `json:"token"`
}

func (s *Service) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid request body", chess.ErrMalformedInput))
		return
	}

	human, err := s.humanColor(req.Color)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	depth := req.Depth
	if depth == 0 {
		depth = s.config.Engine.Depth
	}
	if depth < config.MinDepth || depth > config.MaxDepth {
		s.writeError(w, r, fmt.Errorf("%w: depth must be between %d and %d", chess.ErrMalformedInput, config.MinDepth, config.MaxDepth))
		return
	}

	session, err := s.games.Create(r.Context(), human, depth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	token, err := s.tokens.Issue(session.ID, human)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateGameResponse{
		Game:  session.Snapshot(),
		Color: human.String(),
		Token: token,
	})
}

// humanColor defaults to the side the engine does not play.
func (s *Service) humanColor(requested string) (chess.Color, error) {
	if requested != "" {
		return chess.ParseColor(requested)
	}
	ai, err := chess.ParseColor(s.config.Engine.AIColor)
	if err != nil {
		return chess.White, nil
	}
	return ai.Other(), nil
}

func (s *Service) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	games := s.games.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"total": len(games),
	})
}

func (s *Service) session(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	session, err := s.games.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return session, true
}

func (s *Service) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(session.Snapshot()))
}

func (s *Service) LegalMovesHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	moves, err := session.LegalMoves(r.URL.Query().Get("from"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	names := make([]string, 0, len(moves))
	for _, m := range moves {
		names = append(names, m.String())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"moves": names,
		"total": len(names),
	})
}

type MakeMoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", fmt.Errorf("%w: missing bearer token", auth.ErrInvalidToken)
	}
	return token, nil
}

func (s *Service) MakeMoveHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	token, err := bearerToken(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tokenGame, color, err := s.tokens.Verify(token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tokenGame != gameID {
		s.writeError(w, r, ErrWrongGame)
		return
	}

	var req MakeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid request body", chess.ErrMalformedInput))
		return
	}

	s.logger.Info().Str("gameID", gameID).Str("from", req.From).Str("to", req.To).Msg("MakeMoveHandler called")

	turn, err := s.games.Play(r.Context(), gameID, color, req.From, req.To)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (s *Service) BoardSVGHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	opts := render.SVGOptions{Title: "Game " + session.ID}
	if p := r.URL.Query().Get("perspective"); p != "" {
		color, err := chess.ParseColor(p)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Perspective = color
	}
	if history := session.History(); len(history) > 0 {
		last := history[len(history)-1]
		opts.LastMove = &last
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	render.SVG(w, session.Board(), opts)
}

func (s *Service) RecordHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	rec := archive.FromSnapshot(session.Snapshot())

	if r.URL.Query().Get("format") == "car" {
		w.Header().Set("Content-Type", "application/vnd.ipld.car")
		if err := archive.WriteCAR(w, rec); err != nil {
			s.logger.Error().Err(err).Str("gameID", session.ID).Msg("Failed to write CAR")
		}
		return
	}

	format, err := archive.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := archive.Marshal(rec, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write(data)
}

// ArchiveHandler exports every game as one CAR file.
func (s *Service) ArchiveHandler(w http.ResponseWriter, r *http.Request) {
	snapshots := s.games.List()
	records := make([]archive.Record, 0, len(snapshots))
	for _, snap := range snapshots {
		records = append(records, archive.FromSnapshot(snap))
	}

	w.Header().Set("Content-Type", "application/vnd.ipld.car")
	w.Header().Set("Content-Disposition", `attachment; filename="games.car"`)
	if err := archive.WriteCAR(w, records...); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write archive")
	}
}

type AnalyzeRequest struct {
	FEN   string `json:"fen"`
	Color string `json:"color"`
	Depth int    `json:"depth"`
}

type AnalyzeResponse struct {
	Move    string `json:"move,omitempty"`
	Score   int    `json:"score"`
	Nodes   int64  `json:"nodes"`
	Found   bool   `json:"found"`
	Outcome string `json:"outcome"`
}

// AnalyzeHandler runs a one-off search on any position without creating a game.
func (s *Service) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid request body", chess.ErrMalformedInput))
		return
	}

	board, color, err := chess.ParseFEN(req.FEN)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Color != "" {
		if color, err = chess.ParseColor(req.Color); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	depth := req.Depth
	if depth == 0 {
		depth = s.config.Engine.Depth
	}
	if depth < config.MinDepth || depth > config.MaxDepth {
		s.writeError(w, r, fmt.Errorf("%w: depth must be between %d and %d", chess.ErrMalformedInput, config.MinDepth, config.MaxDepth))
		return
	}

	res, err := s.games.Analyze(r.Context(), board, color, depth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := AnalyzeResponse{
		Score:   res.Score,
		Nodes:   res.Nodes,
		Found:   res.Found,
		Outcome: chess.Outcome(board, color).String(),
	}
	if res.Found {
		resp.Move = res.Move.String()
	}
	writeJSON(w, http.StatusOK, resp)
}
