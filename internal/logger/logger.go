package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New() zerolog.Logger {
	return NewWithWriter(os.Stdout, zerolog.DebugLevel)
}

// NewWithWriter builds the service logger on w. The CLI logs to stderr so
// report tables on stdout stay clean.
func NewWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger.Level(level)
}

// ParseLevel falls back to info for unknown names.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return level
}

var Module = fx.Provide(New)
