package clusterserver

import (
	"context"
	"io"
	"log"
	"log/slog"

	"github.com/hashicorp/go-hclog"

	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

// hclogSink forwards hclog records to slog.
type hclogSink struct {
	log *slog.Logger
}

func (s hclogSink) Accept(name string, level hclog.Level, msg string, args ...interface{}) {
	s.log.Log(context.Background(), slogLevel(level), msg, append([]any{"subsystem", name}, args...)...)
}

func slogLevel(l hclog.Level) slog.Level {
	switch l {
	case hclog.Trace, hclog.Debug:
		return slog.LevelDebug
	case hclog.Warn:
		return slog.LevelWarn
	case hclog.Error:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newHCLogger returns an hclog.Logger that writes nothing itself and
// forwards every record to l.
func newHCLogger(name string, l logger.Logger) hclog.InterceptLogger {
	il := hclog.NewInterceptLogger(&hclog.LoggerOptions{
		Name:   name,
		Level:  hclog.Trace,
		Output: io.Discard,
	})
	il.RegisterSink(hclogSink{log: l.Slog()})
	return il
}

// stdLogger adapts l for libraries that take a *log.Logger and prefix
// their lines with [LEVEL].
func stdLogger(name string, l logger.Logger) *log.Logger {
	return newHCLogger(name, l).StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})
}
