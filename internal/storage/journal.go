package storage

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-msgpack/v2/codec"
	"github.com/oklog/ulid/v2"

	"github.com/yndnr/idmesh-go/internal/core/domain"
)

var journalPrefix = []byte("ledger/")

// LedgerJournal appends submitted ledger batches to a KVEngine. Keys are
// ULIDs, so a prefix scan returns batches in submission order.
type LedgerJournal struct {
	kv KVEngine
	mh *codec.MsgpackHandle
}

// NewLedgerJournal returns a journal backed by kv.
func NewLedgerJournal(kv KVEngine) *LedgerJournal {
	return &LedgerJournal{kv: kv, mh: &codec.MsgpackHandle{}}
}

// Submit records ops as one batch.
func (j *LedgerJournal) Submit(ctx context.Context, ops []domain.LedgerOperation) error {
	var buf []byte
	if err := codec.NewEncoderBytes(&buf, j.mh).Encode(ops); err != nil {
		return fmt.Errorf("encode ledger batch: %w", err)
	}
	key := append(append([]byte(nil), journalPrefix...), ulid.Make().String()...)
	if err := j.kv.Set(ctx, key, buf); err != nil {
		return fmt.Errorf("append ledger batch: %w", err)
	}
	return nil
}

// Batches returns every recorded batch in submission order.
func (j *LedgerJournal) Batches(ctx context.Context) ([][]domain.LedgerOperation, error) {
	var (
		out     [][]domain.LedgerOperation
		scanErr error
	)
	err := j.kv.Scan(ctx, journalPrefix, func(key, value []byte) bool {
		var ops []domain.LedgerOperation
		if err := codec.NewDecoderBytes(value, j.mh).Decode(&ops); err != nil {
			scanErr = fmt.Errorf("decode ledger batch %s: %w", key, err)
			return false
		}
		out = append(out, ops)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, scanErr
}
