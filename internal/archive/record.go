// Package archive stores finished or in-progress games as IPLD records.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"

	"github.com/justinabrahms/chessai/internal/chess"
	"github.com/justinabrahms/chessai/internal/game"
)

var (
	ErrUnknownFormat  = errors.New("unknown record format")
	ErrInvalidRecord  = errors.New("invalid game record")
	ErrReplayMismatch = errors.New("replayed position does not match record")
)

// Format selects the IPLD codec used for a record.
type Format string

const (
	FormatDAGJSON Format = "dag-json"
	FormatDAGCBOR Format = "dag-cbor"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json", string(FormatDAGJSON):
		return FormatDAGJSON, nil
	case "cbor", string(FormatDAGCBOR):
		return FormatDAGCBOR, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType is the media type served for f.
func (f Format) ContentType() string {
	if f == FormatDAGCBOR {
		return "application/vnd.ipld.dag-cbor"
	}
	return "application/vnd.ipld.dag-json"
}

// Record is the portable form of a game: where it started, what was played
// and where it ended.
type Record struct {
	ID        string
	White     string
	Black     string
	Depth     int
	StartFEN  string
	Moves     []string
	Status    chess.GameStatus
	FinalFEN  string
	CreatedAt time.Time
}

// FromSnapshot builds a record for a session. Sessions always start from the
// initial position.
func FromSnapshot(s game.Snapshot) Record {
	return Record{
		ID:        s.ID,
		White:     s.White,
		Black:     s.Black,
		Depth:     s.Depth,
		StartFEN:  chess.NewEngine().GetFEN(),
		Moves:     append([]string(nil), s.Moves...),
		Status:    s.Status,
		FinalFEN:  s.FEN,
		CreatedAt: s.CreatedAt,
	}
}

// Node converts the record into an IPLD map node.
func (r Record) Node() (datamodel.Node, error) {
	return qp.BuildMap(basicnode.Prototype.Any, 9, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "id", qp.String(r.ID))
		qp.MapEntry(ma, "white", qp.String(r.White))
		qp.MapEntry(ma, "black", qp.String(r.Black))
		qp.MapEntry(ma, "depth", qp.Int(int64(r.Depth)))
		qp.MapEntry(ma, "startFen", qp.String(r.StartFEN))
		qp.MapEntry(ma, "moves", qp.List(int64(len(r.Moves)), func(la datamodel.ListAssembler) {
			for _, m := range r.Moves {
				qp.ListEntry(la, qp.String(m))
			}
		}))
		qp.MapEntry(ma, "status", qp.String(string(r.Status)))
		qp.MapEntry(ma, "finalFen", qp.String(r.FinalFEN))
		qp.MapEntry(ma, "createdAt", qp.String(r.CreatedAt.UTC().Format(time.RFC3339)))
	})
}

// Encode writes the record to w in format f.
func Encode(w io.Writer, r Record, f Format) error {
	n, err := r.Node()
	if err != nil {
		return fmt.Errorf("failed to build record node: %w", err)
	}
	switch f {
	case FormatDAGJSON:
		return dagjson.Encode(n, w)
	case FormatDAGCBOR:
		return dagcbor.Encode(n, w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Marshal is Encode into a byte slice.
func Marshal(r Record, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, r, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a record in format f.
func Decode(rd io.Reader, f Format) (Record, error) {
	nb := basicnode.Prototype.Any.NewBuilder()
	var err error
	switch f {
	case FormatDAGJSON:
		err = dagjson.Decode(nb, rd)
	case FormatDAGCBOR:
		err = dagcbor.Decode(nb, rd)
	default:
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: failed to decode %s: %v", ErrInvalidRecord, f, err)
	}
	return FromNode(nb.Build())
}

// FromNode reads a record back out of an IPLD map node.
func FromNode(n datamodel.Node) (Record, error) {
	if n.Kind() != datamodel.Kind_Map {
		return Record{}, fmt.Errorf("%w: expected map, got %v", ErrInvalidRecord, n.Kind())
	}

	var (
		r   Record
		err error
	)
	str := func(key string) string {
		if err != nil {
			return ""
		}
		var v datamodel.Node
		if v, err = n.LookupByString(key); err != nil {
			err = fmt.Errorf("%w: field %q: %v", ErrInvalidRecord, key, err)
			return ""
		}
		var s string
		if s, err = v.AsString(); err != nil {
			err = fmt.Errorf("%w: field %q: %v", ErrInvalidRecord, key, err)
		}
		return s
	}

	r.ID = str("id")
	r.White = str("white")
	r.Black = str("black")
	r.StartFEN = str("startFen")
	r.Status = chess.GameStatus(str("status"))
	r.FinalFEN = str("finalFen")
	created := str("createdAt")
	if err != nil {
		return Record{}, err
	}

	if r.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return Record{}, fmt.Errorf("%w: createdAt: %v", ErrInvalidRecord, err)
	}

	depth, err := n.LookupByString("depth")
	if err != nil {
		return Record{}, fmt.Errorf("%w: field \"depth\": %v", ErrInvalidRecord, err)
	}
	d, err := depth.AsInt()
	if err != nil {
		return Record{}, fmt.Errorf("%w: field \"depth\": %v", ErrInvalidRecord, err)
	}
	r.Depth = int(d)

	moves, err := n.LookupByString("moves")
	if err != nil {
		return Record{}, fmt.Errorf("%w: field \"moves\": %v", ErrInvalidRecord, err)
	}
	if moves.Kind() != datamodel.Kind_List {
		return Record{}, fmt.Errorf("%w: moves must be a list", ErrInvalidRecord)
	}
	iter := moves.ListIterator()
	for !iter.Done() {
		_, v, err := iter.Next()
		if err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		m, err := v.AsString()
		if err != nil {
			return Record{}, fmt.Errorf("%w: move: %v", ErrInvalidRecord, err)
		}
		r.Moves = append(r.Moves, m)
	}
	return r, nil
}

// Replay plays the record's moves from its start position. The final
// position must match FinalFEN when one is recorded.
func Replay(r Record) (*chess.Engine, error) {
	e, err := chess.NewEngineFromFEN(r.StartFEN)
	if err != nil {
		return nil, err
	}
	for i, s := range r.Moves {
		m, err := chess.ParseMove(s)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		if _, err := e.Play(m); err != nil {
			return nil, fmt.Errorf("move %d (%s): %w", i+1, s, err)
		}
	}

	if r.FinalFEN != "" && placement(e.GetFEN()) != placement(r.FinalFEN) {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrReplayMismatch, e.GetFEN(), r.FinalFEN)
	}
	return e, nil
}

func placement(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return fen
	}
	return fields[0] + " " + fields[1]
}
