package config

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Writer returns the log sink selected by Output and a close function for it.
// File output is rotated by lumberjack.
func (c LoggingConfig) Writer() (io.Writer, func() error) {
	noop := func() error { return nil }

	if c.Output == "stdout" || c.Output == "" {
		return os.Stdout, noop
	}

	rotating := &lumberjack.Logger{
		Filename:   c.FilePath,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}

	if c.Output == "both" {
		return io.MultiWriter(os.Stdout, rotating), rotating.Close
	}
	return rotating, rotating.Close
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Enabled reports whether messages at level pass the configured threshold.
// An empty Level behaves like info.
func (c LoggingConfig) Enabled(level string) bool {
	threshold, ok := levelRank[c.Level]
	if !ok {
		threshold = levelRank["info"]
	}
	return levelRank[level] >= threshold
}

// Infof logs through the standard logger when info messages are enabled.
func (c LoggingConfig) Infof(format string, args ...any) {
	if c.Enabled("info") {
		log.Printf(format, args...)
	}
}
