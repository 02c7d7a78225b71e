package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/d4/internal/collector"
	"github.com/danmuck/d4/internal/config"
	"github.com/danmuck/d4/internal/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("c", "collector.toml", "collector TOML config")
	flag.Parse()

	logger := observability.InitLogger("d4collector")
	cfg, keys, err := config.LoadCollectorFile(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load collector config")
	}
	defer keys.Wipe()
	log.Info().Str("path", *configPath).Int("keys", keys.Len()).Msg("loaded collector config")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, keys, logger); err != nil {
		log.Error().Err(err).Msg("collector stopped")
		stop()
		keys.Wipe()
		os.Exit(1)
	}
	log.Info().Msg("collector stopped")
}

func run(ctx context.Context, cfg collector.Config, keys *collector.Keyring, logger zerolog.Logger) error {
	out, err := collector.OpenOutput(cfg.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	if cfg.MetricsAddr != "" {
		observability.RegisterMetrics()
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metricsMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	c := collector.New(cfg, keys, out, collector.WithLogger(logger))
	ln, err := c.Listen()
	if err != nil {
		return err
	}
	return c.Serve(ctx, ln)
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
