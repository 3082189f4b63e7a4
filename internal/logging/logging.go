// Package logging builds the process logger from config.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"craftdex-engine/internal/config"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// New returns a logger configured per cfg. An unknown level falls back
// to info with a warning; unknown format or output is an error.
func New(cfg config.Log) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		log.Warnf("invalid log level %q, using info", cfg.Level)
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		})
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	switch cfg.Output {
	case "stdout", "":
		log.SetOutput(os.Stdout)
	case "stderr":
		log.SetOutput(os.Stderr)
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("log.file_path is required when log.output=file")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		rotated := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		// Keep the console visible while debugging.
		if level >= logrus.DebugLevel {
			log.SetOutput(io.MultiWriter(os.Stdout, rotated))
		} else {
			log.SetOutput(rotated)
		}
	default:
		return nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	return log, nil
}

// TimeBlock logs how long a block took. Defer the returned func at the
// top of the block being measured.
func TimeBlock(log logrus.FieldLogger, label string) func() {
	start := time.Now()
	return func() {
		log.Infof("%s took %s", label, time.Since(start).Round(time.Millisecond))
	}
}
