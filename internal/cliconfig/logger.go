package cliconfig

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/termlink/pkg/log"
)

// Logger returns the console logger the CLI writes to stderr at info level.
func Logger() zerolog.Logger {
	l, _ := NewLogger(os.Stderr, "info")
	return l
}

// NewLogger builds a console zerolog logger writing to w at the named level.
func NewLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger(), nil
}
