package commands

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/fivetwenty-io/aot/pkg/aot"
)

// zerologLogger adapts a zerolog.Logger to aot.Logger.
type zerologLogger struct {
	logger zerolog.Logger
}

var _ aot.Logger = (*zerologLogger)(nil)

// NewLogger creates a console logger writing to out. Verbose enables debug
// output; otherwise only warnings and errors are shown.
func NewLogger(out io.Writer, verbose bool) aot.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = out
	})).Level(level).With().Timestamp().Logger()

	return &zerologLogger{logger: logger}
}

func (l *zerologLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}
