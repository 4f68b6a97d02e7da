package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

// Capacities are the ID cache sizes benchmarked.
var Capacities = []int{16, 64, 256}

const askTimeout = 5 * time.Second

func newSystem(b *testing.B) *actor.System {
	b.Helper()
	sys := actor.NewSystem(b.Name(), actor.WithLogger(logger.Discard()))
	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = sys.Shutdown(ctx)
	})
	return sys
}

func spawn(b *testing.B, sys *actor.System, props actor.Props, name string) actor.Ref {
	b.Helper()
	ref, err := sys.Spawn(props, name)
	if err != nil {
		b.Fatalf("spawn %s: %v", name, err)
	}
	return ref
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithCapacities runs a benchmark function once per cache capacity.
func runWithCapacities(b *testing.B, benchFn func(b *testing.B, capacity int)) {
	for _, capacity := range Capacities {
		b.Run(fmt.Sprintf("capacity_%d", capacity), func(b *testing.B) {
			benchFn(b, capacity)
		})
	}
}
