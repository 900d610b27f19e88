package tlog

import (
	"fmt"
	"testing"

	"github.com/ridge/must/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// New creates a top-level logger writing to stderr.
//
// Standard output is left alone: the example programs print their own
// protocol lines there.
func New(config Config) *zap.Logger {
	ec := DefaultEncoderConfig
	var encoding string
	development := true
	switch config.Format {
	case FormatJSON:
		encoding = "json"
		development = false
	case FormatText:
		encoding = "console"
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		if colored(config.Color) {
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	default:
		panic(fmt.Errorf("unexpected --log-format value: %s", config.Format))
	}

	level := zapcore.InfoLevel
	if config.Verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      development,
		Encoding:         encoding,
		EncoderConfig:    ec,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger := must.OK1(cfg.Build())

	if config.Name != "" {
		logger = logger.Named(config.Name)
	}

	return logger
}

func colored(c Color) bool {
	switch c {
	case ColorYes:
		return true
	case ColorNo:
		return false
	case ColorAuto:
		return term.IsTerminal(unix.Stderr)
	default:
		panic(fmt.Errorf("unexpected --log-color value: %s", c))
	}
}

// NewForTesting creates a verbose logger for use in unit tests
func NewForTesting(t *testing.T) *zap.Logger {
	return New(Config{
		Name:    t.Name(),
		Format:  FormatText,
		Color:   ColorAuto,
		Verbose: true,
	})
}
