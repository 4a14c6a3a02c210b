package observability

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger builds a timestamped logger writing JSON to w (stdout when nil).
func NewLogger(level string, w io.Writer) *zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	case "off", "disabled":
		lvl = zerolog.Disabled
	}
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &logger
}
