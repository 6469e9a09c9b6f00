package testlog

import (
	"testing"

	"github.com/danmuck/procreceive/internal/logging"
	"github.com/rs/zerolog"
)

// Start returns a debug-level logger that writes through t.Log.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	cfg := logging.DefaultConfig(logging.ProfileTest)
	logging.ApplyEnv(&cfg)
	log := logging.New(zerolog.NewTestWriter(t), cfg)
	log.Info().Msgf("test=%s", t.Name())
	return log
}
