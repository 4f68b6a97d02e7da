package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
)

var watermarkKey = []byte("allocator/watermark")

// WatermarkStore persists the range allocator's next unallocated ID.
type WatermarkStore interface {
	LoadWatermark(ctx context.Context) (int64, error)
	SaveWatermark(ctx context.Context, wm int64) error
}

// KVWatermarkStore keeps the watermark in a KVEngine as 8 big-endian bytes.
type KVWatermarkStore struct {
	kv KVEngine
}

// NewWatermarkStore returns a WatermarkStore backed by kv.
func NewWatermarkStore(kv KVEngine) *KVWatermarkStore {
	return &KVWatermarkStore{kv: kv}
}

// LoadWatermark returns the stored watermark, or 0 if none was saved.
func (s *KVWatermarkStore) LoadWatermark(ctx context.Context) (int64, error) {
	raw, err := s.kv.Get(ctx, watermarkKey)
	if errors.Is(err, ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load watermark: %w", err)
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("load watermark: corrupt value of %d bytes", len(raw))
	}
	return int64(binary.BigEndian.Uint64(raw)), nil
}

// SaveWatermark stores wm.
func (s *KVWatermarkStore) SaveWatermark(ctx context.Context, wm int64) error {
	if wm < 0 {
		return fmt.Errorf("save watermark: negative value %d", wm)
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(wm))
	if err := s.kv.Set(ctx, watermarkKey, buf); err != nil {
		return fmt.Errorf("save watermark: %w", err)
	}
	return nil
}
