package observability

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/danmuck/procreceive/internal/logging"
	"github.com/rs/zerolog"
)

// InitLogger returns the process logger tagged with app and session.
func InitLogger(app, session string, w io.Writer, cfg logging.Config) zerolog.Logger {
	return logging.New(w, cfg).With().Str("app", app).Str("session", session).Logger()
}

// OpenLogSink opens path for appending, creating its directory. Hook
// invocations share the file, so every event must be a single write.
func OpenLogSink(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // operator-configured log path
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
