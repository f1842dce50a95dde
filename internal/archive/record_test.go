package archive

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/justinabrahms/chessai/internal/chess"
	"github.com/justinabrahms/chessai/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func foolsMate(t *testing.T) Record {
	t.Helper()
	e := chess.NewEngine()
	moves := []string{"f2f3", "e7e5", "g2g4", "d8h4"}
	for _, s := range moves {
		m, err := chess.ParseMove(s)
		require.NoError(t, err)
		_, err = e.Play(m)
		require.NoError(t, err)
	}
	return Record{
		ID:        "fools-mate",
		White:     "human",
		Black:     "engine",
		Depth:     2,
		StartFEN:  chess.NewEngine().GetFEN(),
		Moves:     moves,
		Status:    e.GetStatus(),
		FinalFEN:  e.GetFEN(),
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatDAGJSON, false},
		{"dag-json", FormatDAGJSON, false},
		{"JSON", FormatDAGJSON, false},
		{"dag-cbor", FormatDAGCBOR, false},
		{"cbor", FormatDAGCBOR, false},
		{"protobuf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnknownFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	rec := foolsMate(t)
	require.Equal(t, chess.StatusBlackWon, rec.Status)

	for _, f := range []Format{FormatDAGJSON, FormatDAGCBOR} {
		t.Run(string(f), func(t *testing.T) {
			data, err := Marshal(rec, f)
			require.NoError(t, err)

			got, err := Decode(bytes.NewReader(data), f)
			require.NoError(t, err)
			assert.Equal(t, rec, got)
		})
	}
}

func TestDAGJSONIsReadable(t *testing.T) {
	data, err := Marshal(foolsMate(t), FormatDAGJSON)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"moves":["f2f3","e7e5","g2g4","d8h4"]`)
	assert.Contains(t, s, `"status":"black_won"`)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `{{`},
		{"not a map", `["a"]`},
		{"missing id", `{"white":"human"}`},
		{"bad moves", `{"id":"x","white":"h","black":"e","startFen":"","status":"","finalFen":"","createdAt":"2024-01-01T00:00:00Z","depth":1,"moves":"e2e4"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in), FormatDAGJSON)
			assert.True(t, errors.Is(err, ErrInvalidRecord), "got %v", err)
		})
	}
}

func TestReplay(t *testing.T) {
	t.Run("reaches final position", func(t *testing.T) {
		rec := foolsMate(t)
		e, err := Replay(rec)
		require.NoError(t, err)
		assert.Equal(t, chess.StatusBlackWon, e.GetStatus())
	})

	t.Run("illegal move", func(t *testing.T) {
		rec := foolsMate(t)
		rec.Moves[1] = "e7e4"
		_, err := Replay(rec)
		assert.True(t, errors.Is(err, chess.ErrIllegalMove))
	})

	t.Run("final position differs", func(t *testing.T) {
		rec := foolsMate(t)
		rec.FinalFEN = chess.NewEngine().GetFEN()
		_, err := Replay(rec)
		assert.True(t, errors.Is(err, ErrReplayMismatch))
	})
}

func TestFromSnapshot(t *testing.T) {
	ctx := context.Background()
	m := game.NewManager()
	s, err := m.Create(ctx, chess.White, 1)
	require.NoError(t, err)
	_, err = m.Play(ctx, s.ID, chess.White, "d2", "d4")
	require.NoError(t, err)

	rec := FromSnapshot(s.Snapshot())
	assert.Len(t, rec.Moves, 2)

	e, err := Replay(rec)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot().FEN, e.GetFEN())
}

func TestCAR(t *testing.T) {
	first := foolsMate(t)
	second := foolsMate(t)
	second.ID = "second"

	var buf bytes.Buffer
	require.NoError(t, WriteCAR(&buf, first, second))

	got, err := ReadCAR(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first, got[0])
	assert.Equal(t, second, got[1])

	a, err := CID(first)
	require.NoError(t, err)
	b, err := CID(first)
	require.NoError(t, err)
	c, err := CID(second)
	require.NoError(t, err)
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestReadCARRejectsGarbage(t *testing.T) {
	_, err := ReadCAR(strings.NewReader("not a car file"))
	assert.Error(t, err)
}
