package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to w (stdout when nil) at the given level.
//
// The level parameter can be one of: debug, info, warn, error, fatal.
// In development, output is rendered with zerolog's console writer.
func New(level, env string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, err
	}
	if w == nil {
		w = os.Stdout
	}
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).
		With().
		Timestamp().
		Str("service", "notify-api").
		Logger().
		Level(lvl), nil
}
