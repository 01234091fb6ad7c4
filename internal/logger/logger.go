// Package logger provides structured logging using Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	mu    sync.RWMutex
)

// Init initializes the global logger for the given environment.
// "production" uses a JSON encoder at info level, "test" discards everything,
// and any other value uses the human-readable development encoder.
// Only the first call has an effect.
func Init(env string) {
	mu.Lock()
	defer mu.Unlock()
	if sugar != nil {
		return
	}
	sugar = build(env).Sugar()
}

func build(env string) *zap.Logger {
	var (
		base *zap.Logger
		err  error
	)
	switch env {
	case "production":
		base, err = zap.NewProduction()
	case "test":
		return zap.NewNop()
	default:
		base, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return base
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	mu.RLock()
	l := sugar
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init("development")
	return Get()
}

// Named returns a child of the global logger tagged with a component name.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if sugar != nil {
		_ = sugar.Sync()
	}
}
