// ABOUTME: SQL logging through gorm's logger.
// ABOUTME: Maps the configured level name onto gorm log levels.
package storage

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

// LogLevels lists the accepted level names, quietest first.
var LogLevels = []string{"silent", "error", "warn", "info"}

// ParseLogLevel maps a level name onto a gorm log level. Empty means silent.
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "silent":
		return logger.Silent, nil
	case "error":
		return logger.Error, nil
	case "warn", "warning":
		return logger.Warn, nil
	case "info", "debug":
		return logger.Info, nil
	default:
		return logger.Silent, fmt.Errorf("unknown log level: %q (use %s)", level, strings.Join(LogLevels, ", "))
	}
}

// NewLogger returns a gorm logger writing to w at the named level.
func NewLogger(w io.Writer, level string) (logger.Interface, error) {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return logger.New(log.New(w, "", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	}), nil
}
