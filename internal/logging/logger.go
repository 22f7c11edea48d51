// Package logging provides named zap loggers for compliancegen subsystems.
// The root logger is a no-op until Init is called, so library code can log
// unconditionally and tests stay quiet by default.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	root = zap.NewNop()
)

// Init builds the process logger. Called once from the CLI before any
// pipeline work starts.
func Init(verbose bool) error {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	SetLogger(logger)
	return nil
}

// SetLogger replaces the root logger. Tests use this with an observer core.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l
}

// Named returns a child logger for a subsystem (spec, generator, pipeline, ...).
func Named(name string) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.Named(name)
}

// Sync flushes buffered log entries. Safe to call on a no-op logger.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}
