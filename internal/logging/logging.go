package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Supported output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatAuto    = "auto"
)

// New creates a structured logger writing to stderr. FormatAuto selects
// console output when stderr is a terminal and JSON otherwise.
func New(format string) (*zap.Logger, error) {
	encoding, err := resolveEncoding(format, term.IsTerminal(int(os.Stderr.Fd())))
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = encoding
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false
	if encoding == FormatConsole {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// ValidFormat reports whether format is accepted by New.
func ValidFormat(format string) bool {
	switch format {
	case FormatJSON, FormatConsole, FormatAuto, "":
		return true
	}
	return false
}

func resolveEncoding(format string, tty bool) (string, error) {
	switch format {
	case FormatJSON, FormatConsole:
		return format, nil
	case FormatAuto, "":
		if tty {
			return FormatConsole, nil
		}
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown log format %q", format)
	}
}
