package shutdown

import (
	"context"
	"errors"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"go.uber.org/multierr"
)

func TestHandler_HooksRunInReverse(t *testing.T) {
	h := NewHandler(time.Second)

	var (
		mu    sync.Mutex
		order []int
	)
	for i := 1; i <= 3; i++ {
		h.OnShutdown(func(context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}

	h.Trigger("test")
	reason, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if reason != "test" {
		t.Errorf("reason = %q, want %q", reason, "test")
	}
	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Errorf("hook order = %v, want [3 2 1]", order)
	}

	select {
	case <-h.Done():
	default:
		t.Fatal("Done should be closed")
	}
}

func TestHandler_HookErrorsCombined(t *testing.T) {
	h := NewHandler(time.Second)
	errA := errors.New("close store")
	errB := errors.New("stop transport")
	ran := false

	h.OnShutdown(func(context.Context) error { return errA })
	h.OnShutdown(func(context.Context) error { ran = true; return nil })
	h.OnShutdown(func(context.Context) error { return errB })

	err := h.Run()
	if !ran {
		t.Error("a failing hook must not stop the others")
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Run() error = %v, want both hook errors", err)
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("combined errors = %d, want 2", n)
	}

	if err := h.Run(); err != nil {
		t.Errorf("second Run() error = %v, want nil", err)
	}
}

func TestHandler_WaitWithSignal(t *testing.T) {
	h := NewHandler(time.Second)
	called := make(chan struct{})
	h.OnShutdown(func(context.Context) error { close(called); return nil })

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
	}()

	reason, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !strings.Contains(reason, "signal") {
		t.Errorf("reason = %q, want a signal reason", reason)
	}
	<-called
}

func TestHandler_WaitContext(t *testing.T) {
	h := NewHandler(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reason, err := h.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if reason != "context done" {
		t.Errorf("reason = %q, want %q", reason, "context done")
	}
}

func TestHandler_HookDeadline(t *testing.T) {
	h := NewHandler(20 * time.Millisecond)
	h.OnShutdown(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if err := h.Run(); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want deadline exceeded", err)
	}
}
