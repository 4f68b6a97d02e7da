package cmap

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{8, 8},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			if got := NewWithShards[string, int](tt.input).ShardCount(); got != tt.expected {
				t.Errorf("NewWithShards(%d) shard count = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSetGetDelete(t *testing.T) {
	m := New[string, int]()

	m.Set("a", 1)
	m.Set("b", 2)
	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = (%d, %v), want (1, true)", v, ok)
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}

	m.Delete("a")
	if _, ok := m.Get("a"); ok {
		t.Error("Get(a) found a deleted key")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestSetIfAbsent(t *testing.T) {
	m := New[string, string]()

	if !m.SetIfAbsent("/user/ids", "first") {
		t.Fatal("SetIfAbsent on an empty map returned false")
	}
	if m.SetIfAbsent("/user/ids", "second") {
		t.Error("SetIfAbsent replaced an existing key")
	}
	if v, _ := m.Get("/user/ids"); v != "first" {
		t.Errorf("Get = %q, want %q", v, "first")
	}
}

func TestGetOrSet(t *testing.T) {
	m := New[string, *int]()
	var created int

	create := func() *int {
		created++
		v := created
		return &v
	}
	first := m.GetOrSet("10.0.0.1", create)
	second := m.GetOrSet("10.0.0.1", create)

	if first != second {
		t.Error("GetOrSet returned different values for the same key")
	}
	if created != 1 {
		t.Errorf("create called %d times, want 1", created)
	}
}

func TestDeleteIf(t *testing.T) {
	m := New[string, int]()
	m.Set("k", 7)

	if m.DeleteIf("k", func(v int) bool { return v == 8 }) {
		t.Error("DeleteIf removed a value that did not match")
	}
	if m.DeleteIf("missing", func(int) bool { return true }) {
		t.Error("DeleteIf reported removing a missing key")
	}
	if !m.DeleteIf("k", func(v int) bool { return v == 7 }) {
		t.Error("DeleteIf did not remove a matching value")
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}

func TestSweep(t *testing.T) {
	m := New[string, int]()
	for i := 0; i < 100; i++ {
		m.Set(strconv.Itoa(i), i)
	}

	removed := m.Sweep(func(_ string, v int) bool { return v%2 == 0 })
	if removed != 50 {
		t.Errorf("Sweep removed %d, want 50", removed)
	}
	m.Range(func(_ string, v int) bool {
		if v%2 == 0 {
			t.Errorf("even value %d survived the sweep", v)
		}
		return true
	})
}

func TestRange_Stop(t *testing.T) {
	m := New[string, int]()
	for i := 0; i < 10; i++ {
		m.Set(strconv.Itoa(i), i)
	}

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return visited < 3
	})
	if visited != 3 {
		t.Errorf("visited %d entries, want 3", visited)
	}
}

func TestShardSpread(t *testing.T) {
	m := NewWithShards[string, int](4)
	for i := 0; i < 1000; i++ {
		m.Set(fmt.Sprintf("/user/supervisor/ids/$%d", i), i)
	}
	for i, s := range m.shards {
		if n := len(s.items); n == 0 {
			t.Errorf("shard %d is empty", i)
		}
	}
}

type path string

func TestNamedStringKeys(t *testing.T) {
	m := New[path, int]()
	m.Set(path("/user/backend"), 1)
	if v, ok := m.Get("/user/backend"); !ok || v != 1 {
		t.Errorf("Get = (%d, %v), want (1, true)", v, ok)
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[string, int]()
	var wins atomic.Int64
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d", i)
				if m.SetIfAbsent(key, g) {
					wins.Add(1)
				}
				m.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if wins.Load() != 200 {
		t.Errorf("SetIfAbsent won %d times, want 200", wins.Load())
	}
	if m.Count() != 200 {
		t.Errorf("Count() = %d, want 200", m.Count())
	}
}
