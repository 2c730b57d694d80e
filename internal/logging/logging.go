// Package logging builds the logrus logger that carries the janitor's audit
// trail.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bit2swaz/cache-janitor/internal/config"
)

// Open returns a logger writing to cfg.File, or to fallback when no file is
// configured. The returned close func flushes and closes the file and must be
// called on every exit path. A file that cannot be opened degrades the logger
// to fallback instead of failing.
func Open(cfg config.LogConfig, fallback io.Writer) (*logrus.Logger, func() error) {
	logger := logrus.New()
	logger.SetOutput(fallback)

	switch cfg.Format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	noop := func() error { return nil }
	if cfg.File == "" {
		return logger, noop
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.WithError(err).Warnf("open log file %s, logging to stderr", cfg.File)
		return logger, noop
	}
	logger.SetOutput(f)

	return logger, func() error {
		syncErr := f.Sync()
		if err := f.Close(); err != nil {
			return fmt.Errorf("close log file %s: %w", cfg.File, err)
		}
		if syncErr != nil {
			return fmt.Errorf("sync log file %s: %w", cfg.File, syncErr)
		}
		return nil
	}
}
