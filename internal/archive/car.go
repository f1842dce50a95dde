package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-car"
	"github.com/ipld/go-car/util"
	"github.com/multiformats/go-multihash"
)

var ErrCIDMismatch = errors.New("block does not match its CID")

// cidPrefix is CIDv1, dag-cbor, sha2-256.
var cidPrefix = cid.Prefix{
	Version:  1,
	Codec:    cid.DagCBOR,
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

// CID returns the content identifier of the record's dag-cbor encoding.
func CID(r Record) (cid.Cid, error) {
	data, err := Marshal(r, FormatDAGCBOR)
	if err != nil {
		return cid.Undef, err
	}
	return cidPrefix.Sum(data)
}

// WriteCAR writes records as a CARv1 stream with every record as a root.
func WriteCAR(w io.Writer, records ...Record) error {
	type block struct {
		id   cid.Cid
		data []byte
	}

	blocks := make([]block, 0, len(records))
	roots := make([]cid.Cid, 0, len(records))
	for _, r := range records {
		data, err := Marshal(r, FormatDAGCBOR)
		if err != nil {
			return fmt.Errorf("failed to encode record %s: %w", r.ID, err)
		}
		id, err := cidPrefix.Sum(data)
		if err != nil {
			return fmt.Errorf("failed to hash record %s: %w", r.ID, err)
		}
		blocks = append(blocks, block{id: id, data: data})
		roots = append(roots, id)
	}

	if err := car.WriteHeader(&car.CarHeader{Roots: roots, Version: 1}, w); err != nil {
		return fmt.Errorf("failed to write CAR header: %w", err)
	}
	for _, b := range blocks {
		if err := util.LdWrite(w, b.id.Bytes(), b.data); err != nil {
			return fmt.Errorf("failed to write block %s: %w", b.id, err)
		}
	}
	return nil
}

// ReadCAR reads back every record in a CAR stream, checking each block
// against its CID.
func ReadCAR(r io.Reader) ([]Record, error) {
	reader, err := car.NewCarReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create CAR reader: %w", err)
	}

	var records []Record
	for {
		block, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read block: %w", err)
		}

		sum, err := block.Cid().Prefix().Sum(block.RawData())
		if err != nil {
			return nil, fmt.Errorf("failed to hash block: %w", err)
		}
		if !sum.Equals(block.Cid()) {
			return nil, fmt.Errorf("%w: %s", ErrCIDMismatch, block.Cid())
		}

		rec, err := Decode(bytes.NewReader(block.RawData()), FormatDAGCBOR)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", block.Cid(), err)
		}
		records = append(records, rec)
	}
	return records, nil
}
