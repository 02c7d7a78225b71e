package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/d4/internal/config"
	"github.com/danmuck/d4/internal/observability"
	"github.com/danmuck/d4/internal/protocol/d4"
	"github.com/danmuck/d4/internal/transport"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	logger := observability.InitLogger("d4client")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "d4client: %v\n", err)
		os.Exit(1)
	}
}

// run reads stdin, seals it into one D4 frame and delivers it.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("d4client", flag.ContinueOnError)
	dir := fs.String("config-directory", "conf.sample", "client config directory (uuid, key, version, type, destination)")
	fs.StringVar(dir, "c", "conf.sample", "shorthand for -config-directory")
	file := fs.String("config", "", "client TOML config; overrides -config-directory")
	fs.StringVar(file, "f", "", "shorthand for -config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*dir, *file)
	if err != nil {
		return err
	}
	defer cfg.Wipe()

	body, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	msg, err := d4.New(cfg.ProtocolVersion, cfg.PacketType, cfg.SensorID[:], cfg.Key, body)
	cfg.Wipe()
	if err != nil {
		return err
	}

	opts, err := cfg.TransportOptions()
	if err != nil {
		return err
	}
	if err := transport.Send(ctx, cfg.Destination, msg.Bytes(), stdout, opts); err != nil {
		return err
	}

	h := msg.Header()
	logger.Debug().
		Str("sensor", uuid.UUID(h.SensorID).String()).
		Uint8("version", h.ProtocolVersion).
		Uint8("type", h.PacketType).
		Uint32("size", h.Size).
		Str("destination", cfg.Destination.String()).
		Msg("frame sent")
	return nil
}

func loadConfig(dir, file string) (config.ClientConfig, error) {
	if file != "" {
		return config.LoadClientFile(file)
	}
	return config.LoadClientDir(dir)
}
