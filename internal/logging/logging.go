// Package logging wires the two append-only log streams: a detail log
// carrying lifecycle narration and an error log carrying failures.
// Both are write-only; nothing in the process reads them back.
package logging

import (
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logs bundles the detail and error streams.
type Logs struct {
	Detail *zap.SugaredLogger
	Errors *zap.SugaredLogger
}

// Open builds file-backed loggers at the given paths. With verbose set
// and stderr attached to a terminal, the detail stream is echoed there
// as well. The returned func flushes both streams.
func Open(detailPath, errorPath string, verbose bool) (*Logs, func(), error) {
	for _, p := range []string{detailPath, errorPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, nil, err
		}
	}

	echo := verbose && isatty.IsTerminal(os.Stderr.Fd())

	detail, err := build(detailPath, zapcore.InfoLevel, echo)
	if err != nil {
		return nil, nil, err
	}
	errors, err := build(errorPath, zapcore.ErrorLevel, echo)
	if err != nil {
		return nil, nil, err
	}

	logs := &Logs{Detail: detail.Sugar(), Errors: errors.Sugar()}
	sync := func() {
		_ = detail.Sync()
		_ = errors.Sync()
	}
	return logs, sync, nil
}

func build(path string, level zapcore.Level, echo bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{path}
	if echo {
		cfg.OutputPaths = append(cfg.OutputPaths, "stderr")
	}
	return cfg.Build()
}

// Nop returns discard-everything streams for tests and one-shot
// commands that should stay quiet.
func Nop() *Logs {
	nop := zap.NewNop().Sugar()
	return &Logs{Detail: nop, Errors: nop}
}
