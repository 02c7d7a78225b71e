package observability

import (
	"io"
	"os"
	"time"

	"github.com/danmuck/d4/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs a console logger on stderr as the global logger.
// Stdout is left alone because the client may write frames there.
func InitLogger(app string) zerolog.Logger {
	logger := NewLogger(os.Stderr, app, logging.ConfigureRuntime())
	log.Logger = logger
	return logger
}

func NewLogger(out io.Writer, app string, cfg logging.Config) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    cfg.NoColor,
	}
	if !cfg.Timestamp {
		output.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	ctx := zerolog.New(output).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Str("app", app).Logger()
}
