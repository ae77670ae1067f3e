// Package logger installs the process-wide zap logger.
package logger

import (
	"errors"
	"log"
	"syscall"

	"walletd/internal/config"

	"go.uber.org/zap"
)

// Initialize builds a zap logger, installs it as the global logger and
// returns a cleanup func that flushes buffered entries.
func Initialize() (*zap.Logger, func()) {
	var (
		logger *zap.Logger
		err    error
	)
	if config.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil && !isIgnorableSyncError(err) {
			log.Printf("Failed to sync logger: %v\n", err)
		}
	}

	return logger, cleanup
}

// stdout/stderr on a terminal cannot be fsynced.
func isIgnorableSyncError(err error) bool {
	return errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL)
}
