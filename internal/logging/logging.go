// ABOUTME: Structured logger construction shared by the CLI, MCP server and engine
// ABOUTME: Wraps phuslu/log with console or JSON output and a level from config
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"
)

// New builds a logger writing to w. format is "text" or "json".
func New(level, format string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	var writer log.Writer
	if strings.EqualFold(format, "json") {
		writer = &log.IOWriter{Writer: w}
	} else {
		writer = &log.ConsoleWriter{
			Writer:         w,
			ColorOutput:    false,
			QuoteString:    true,
			EndWithMessage: true,
		}
	}

	return &log.Logger{
		Level:      ParseLevel(level),
		TimeFormat: "15:04:05",
		Writer:     writer,
	}
}

// Nop returns a logger that discards everything
func Nop() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}

// ParseLevel maps a level name to a log level, defaulting to info
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
