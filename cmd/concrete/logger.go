package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05.000",
		NoColor:    w != os.Stderr,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// fileLogger logs to a file so that it doesn't disturb the terminal during
// playback
func fileLogger(file string, verbose bool) (zerolog.Logger, io.Closer, error) {
	if file == "" {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return newLogger(f, verbose), f, nil
}
