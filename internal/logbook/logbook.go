package logbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// tailCapacity bounds the lines kept in memory for Tail.
const tailCapacity = 256

// Logbook persists the session's activity to a text file through zap and
// keeps the most recent lines in memory for the log panel.
// A nil *Logbook discards everything.
type Logbook struct {
	path   string
	file   *os.File
	recent *ring
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	mu     sync.Mutex
}

// New creates a logbook that appends to the provided path at the given
// level (debug, info, warn or error). Unknown levels fall back to info.
func New(path, level string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.CallerKey = zapcore.OmitKey
	encoderConfig.StacktraceKey = zapcore.OmitKey

	atomicLevel := zap.NewAtomicLevelAt(zapLevel)
	recent := newRing(tailCapacity)
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(file), atomicLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), recent, atomicLevel),
	)
	logger := zap.New(core)
	return &Logbook{
		path:   path,
		file:   file,
		recent: recent,
		logger: logger,
		sugar:  logger.Sugar(),
	}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Logger exposes the structured logger so other components write to the
// same file.
func (l *Logbook) Logger() *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.logger
}

// Tail returns up to maxLines of the most recent entries written in this
// session along with the number of lines written so far. At most
// tailCapacity lines are retained.
func (l *Logbook) Tail(maxLines int) ([]string, int) {
	if l == nil || maxLines <= 0 {
		return nil, 0
	}
	return l.recent.last(maxLines)
}

// Debug appends a debug entry.
func (l *Logbook) Debug(format string, args ...any) {
	if l == nil {
		return
	}
	l.sugar.Debug(clean(format, args))
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	if l == nil {
		return
	}
	l.sugar.Info(clean(format, args))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	if l == nil {
		return
	}
	l.sugar.Warn(clean(format, args))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	if l == nil {
		return
	}
	l.sugar.Error(clean(format, args))
}

// Close flushes pending entries and releases the file.
func (l *Logbook) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.logger.Sync()
	return l.file.Close()
}

func clean(format string, args []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
