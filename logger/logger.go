// Package logger provides the process-wide structured logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Init initializes the singleton logger for the given environment.
// It is idempotent: only the first call has effect.
func Init(environment string) {
	once.Do(func() {
		var (
			l   *zap.Logger
			err error
		)
		if environment == "production" {
			l, err = zap.NewProduction()
		} else {
			l, err = zap.NewDevelopment()
		}
		if err != nil {
			l = zap.NewNop()
		}
		instance = l
	})
}

// L returns the singleton logger, initializing a development logger if
// Init was never called.
func L() *zap.Logger {
	if instance == nil {
		Init("development")
	}
	return instance
}

// Named returns a logger tagged with a component name.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushes any buffered log entries. Call with defer in main.
func Sync() error {
	if instance != nil {
		return instance.Sync()
	}
	return nil
}
