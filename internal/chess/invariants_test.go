package chess

import (
	"encoding/json"
	"testing"
)

// TestMoveResultJSONSerializationAlwaysIncludesRequiredFields ensures that
// MoveResult structs always serialize to JSON with the expected field names
func TestMoveResultJSONSerializationAlwaysIncludesRequiredFields(t *testing.T) {
	engine := NewEngine()
	moveResult, err := engine.MakeMove("e2", "e4")
	if err != nil {
		t.Fatalf("Failed to make move: %v", err)
	}

	jsonData, err := json.Marshal(moveResult)
	if err != nil {
		t.Fatalf("Failed to marshal MoveResult: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(jsonData, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	expectedFields := []string{"from", "to", "piece", "color", "fen", "check", "checkmate", "stalemate", "draw", "gameOver", "result"}
	for _, field := range expectedFields {
		if _, exists := parsed[field]; !exists {
			t.Errorf("Missing field in JSON: %s", field)
		}
	}

	// Quiet moves omit the capture field.
	if _, exists := parsed["captured"]; exists {
		t.Error("Expected captured to be omitted for a quiet move")
	}
	if parsed["fen"] != moveResult.FEN {
		t.Errorf("Expected fen=%s, got %v", moveResult.FEN, parsed["fen"])
	}
}

// TestFENValidationRejectsInvalidInput ensures that the chess engine
// properly validates FEN strings and rejects invalid input
func TestFENValidationRejectsInvalidInput(t *testing.T) {
	testCases := []struct {
		name     string
		fen      string
		expected bool // whether it should be valid
	}{
		{
			name:     "Empty FEN should be rejected",
			fen:      "",
			expected: false,
		},
		{
			name:     "Valid starting position should be accepted",
			fen:      "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			expected: true,
		},
		{
			name:     "Invalid FEN with too few sections should be rejected",
			fen:      "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq",
			expected: false,
		},
		{
			name:     "Valid mid-game position should be accepted",
			fen:      "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
			expected: true,
		},
		{
			name:     "Invalid board configuration should be rejected",
			fen:      "invalid/board/config/here w KQkq - 0 1",
			expected: false,
		},
		{
			name:     "Board without kings should be rejected",
			fen:      "8/8/8/8/8/8/PPPPPPPP/8 w - - 0 1",
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEngineFromFEN(tc.fen)

			if tc.expected && err != nil {
				t.Errorf("Expected valid FEN, got error: %v", err)
			}
			if !tc.expected && err == nil {
				t.Errorf("Expected invalid FEN to return error, got nil")
			}
		})
	}
}

// TestMoveValidationEnforcesChessRules ensures that the chess engine
// properly validates moves according to chess rules
func TestMoveValidationEnforcesChessRules(t *testing.T) {
	testCases := []struct {
		name     string
		from     string
		to       string
		expected bool // whether move should be valid
	}{
		{
			name:     "Valid pawn move should be accepted",
			from:     "e2",
			to:       "e4",
			expected: true,
		},
		{
			name:     "Invalid pawn move should be rejected",
			from:     "e2",
			to:       "e5",
			expected: false,
		},
		{
			name:     "Valid knight move should be accepted",
			from:     "g1",
			to:       "f3",
			expected: true,
		},
		{
			name:     "Invalid knight move should be rejected",
			from:     "g1",
			to:       "e2",
			expected: false,
		},
		{
			name:     "Move to occupied square by same color should be rejected",
			from:     "e2",
			to:       "d1",
			expected: false,
		},
		{
			name:     "Castling is not supported",
			from:     "e1",
			to:       "g1",
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewEngine()
			before := engine.GetFEN()
			_, err := engine.MakeMove(tc.from, tc.to)

			if tc.expected && err != nil {
				t.Errorf("Expected valid move, got error: %v", err)
			}
			if !tc.expected {
				if err == nil {
					t.Errorf("Expected invalid move to return error, got nil")
				}
				if engine.GetFEN() != before {
					t.Errorf("Rejected move changed the position")
				}
			}
		})
	}
}

// TestLegalMovesNeverLeaveKingInCheck plays every legal move of a tactical
// position and re-verifies king safety on the resulting board.
func TestLegalMovesNeverLeaveKingInCheck(t *testing.T) {
	fens := []string{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w - - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b - - 0 1",
		"4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1",
	}

	for _, fen := range fens {
		engine, err := NewEngineFromFEN(fen)
		if err != nil {
			t.Fatalf("Failed to create engine: %v", err)
		}
		mover := engine.Turn()
		for _, m := range engine.LegalMoves() {
			b := engine.Board()
			b.Apply(m)
			if InCheck(b, mover) {
				t.Errorf("%s: move %s leaves %s in check", fen, m, mover)
			}
		}
	}
}
