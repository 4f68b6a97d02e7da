package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

func newMemoryEngine(t *testing.T) *BadgerEngine {
	t.Helper()
	e, err := NewBadgerEngine(KVConfig{}, logger.Discard())
	if err != nil {
		t.Fatalf("NewBadgerEngine() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestBadgerEngine_BasicOperations(t *testing.T) {
	e := newMemoryEngine(t)
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		if err := e.Set(ctx, []byte("k"), []byte("v")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := e.Get(ctx, []byte("k"))
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != "v" {
			t.Errorf("Get() = %q, want %q", got, "v")
		}
	})

	t.Run("missing key", func(t *testing.T) {
		if _, err := e.Get(ctx, []byte("missing")); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := e.Set(ctx, []byte("d"), []byte("x")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := e.Delete(ctx, []byte("d")); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := e.Get(ctx, []byte("d")); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Get() after Delete error = %v, want ErrKeyNotFound", err)
		}
	})

	t.Run("batch and scan in key order", func(t *testing.T) {
		err := e.SetBatch(ctx, []KV{
			{Key: []byte("p/2"), Value: []byte("b")},
			{Key: []byte("p/1"), Value: []byte("a")},
			{Key: []byte("q/1"), Value: []byte("z")},
		})
		if err != nil {
			t.Fatalf("SetBatch() error = %v", err)
		}

		var keys []string
		err = e.Scan(ctx, []byte("p/"), func(k, v []byte) bool {
			keys = append(keys, string(k))
			return true
		})
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if !reflect.DeepEqual(keys, []string{"p/1", "p/2"}) {
			t.Errorf("Scan() keys = %v, want [p/1 p/2]", keys)
		}
	})
}

func TestBadgerEngine_ClosedErrors(t *testing.T) {
	e, err := NewBadgerEngine(KVConfig{}, logger.Discard())
	if err != nil {
		t.Fatalf("NewBadgerEngine() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if err := e.Set(context.Background(), []byte("k"), []byte("v")); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() after Close error = %v, want ErrClosed", err)
	}
}

func TestBadgerEngine_OnDiskPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	e, err := NewBadgerEngine(DefaultKVConfig(dir), logger.Discard())
	if err != nil {
		t.Fatalf("NewBadgerEngine() error = %v", err)
	}
	if err := NewWatermarkStore(e).SaveWatermark(ctx, 4096); err != nil {
		t.Fatalf("SaveWatermark() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	e, err = NewBadgerEngine(DefaultKVConfig(dir), logger.Discard())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer e.Close()

	wm, err := NewWatermarkStore(e).LoadWatermark(ctx)
	if err != nil {
		t.Fatalf("LoadWatermark() error = %v", err)
	}
	if wm != 4096 {
		t.Errorf("LoadWatermark() = %d, want 4096", wm)
	}
}

func TestWatermarkStore(t *testing.T) {
	ctx := context.Background()
	s := NewWatermarkStore(newMemoryEngine(t))

	wm, err := s.LoadWatermark(ctx)
	if err != nil {
		t.Fatalf("LoadWatermark() error = %v", err)
	}
	if wm != 0 {
		t.Errorf("fresh store watermark = %d, want 0", wm)
	}

	if err := s.SaveWatermark(ctx, 64); err != nil {
		t.Fatalf("SaveWatermark() error = %v", err)
	}
	if wm, err = s.LoadWatermark(ctx); err != nil || wm != 64 {
		t.Errorf("LoadWatermark() = %d, %v, want 64", wm, err)
	}

	if err := s.SaveWatermark(ctx, -1); err == nil {
		t.Error("SaveWatermark(-1) should fail")
	}
}

func TestLedgerJournal(t *testing.T) {
	ctx := context.Background()
	j := NewLedgerJournal(newMemoryEngine(t))

	first := []domain.LedgerOperation{{ID: "op1", Kind: domain.LedgerIssue, Account: "0", Amount: 10}}
	second := []domain.LedgerOperation{
		{ID: "op2", Kind: domain.LedgerIssue, Account: "1", Amount: 5},
		{ID: "op3", Kind: domain.LedgerRetire, Account: "0", Amount: 10},
	}
	if err := j.Submit(ctx, first); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := j.Submit(ctx, second); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	batches, err := j.Batches(ctx)
	if err != nil {
		t.Fatalf("Batches() error = %v", err)
	}
	want := [][]domain.LedgerOperation{first, second}
	if !reflect.DeepEqual(batches, want) {
		t.Errorf("Batches() = %+v, want %+v", batches, want)
	}
}

func TestBadgerEngine_Collectors(t *testing.T) {
	e := newMemoryEngine(t)
	if n := len(e.Collectors()); n != 2 {
		t.Errorf("Collectors() = %d, want 2", n)
	}
}
