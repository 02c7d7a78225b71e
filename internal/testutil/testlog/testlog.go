package testlog

import (
	"testing"

	"github.com/danmuck/d4/internal/logging"
	"github.com/rs/zerolog"
)

// Start returns a logger that writes through t.Log.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	cfg := logging.ConfigureTests()
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(cfg.Level).With().Str("test", t.Name()).Logger()
	logger.Debug().Msg("start")
	return logger
}
