package collector

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/danmuck/d4/internal/observability"
	"github.com/danmuck/d4/internal/protocol/d4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/trickstertwo/xclock"
)

var (
	ErrStaleFrame      = errors.New("collector: frame timestamp outside allowed skew")
	ErrRejectedVersion = errors.New("collector: protocol version not accepted")
)

type Option func(*Collector)

// WithNow overrides the time source used for the skew check.
func WithNow(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Collector) { c.log = logger }
}

// Collector is safe for concurrent connections; output writes are serialized.
type Collector struct {
	cfg  Config
	keys *Keyring
	now  func() time.Time
	log  zerolog.Logger

	outMu sync.Mutex
	out   io.Writer

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}
	closed  bool
	wg      sync.WaitGroup
}

func New(cfg Config, keys *Keyring, out io.Writer, opts ...Option) *Collector {
	if keys == nil {
		keys = NewKeyring()
	}
	c := &Collector{
		cfg:   cfg,
		keys:  keys,
		now:   xclock.Default().Now,
		log:   zerolog.Nop(),
		out:   out,
		conns: make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Listen opens the configured TCP or TLS listener.
func (c *Collector) Listen() (net.Listener, error) {
	if !c.cfg.TLS.Enabled {
		return net.Listen("tcp", c.cfg.ListenAddr)
	}
	tlsCfg, err := c.cfg.TLS.ServerConfig()
	if err != nil {
		return nil, err
	}
	return tls.Listen("tcp", c.cfg.ListenAddr, tlsCfg)
}

// Serve accepts connections on ln until ctx is done. It closes ln and every
// open connection on the way out and returns once all handlers have exited.
// A Collector serves one listener over its lifetime.
func (c *Collector) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	defer c.wg.Wait()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = ln.Close()
		c.closeAllConns()
	}()

	c.log.Info().Str("addr", ln.Addr().String()).Int("keys", c.keys.Len()).Msg("collector listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		if !c.trackConn(conn) {
			_ = conn.Close()
			return nil
		}
		c.wg.Add(1)
		go c.handleConn(conn)
	}
}

func (c *Collector) handleConn(conn net.Conn) {
	defer c.wg.Done()
	defer c.untrackConn(conn)
	defer conn.Close()

	observability.ConnectionOpened()
	defer observability.ConnectionClosed()

	logger := c.log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	logger.Debug().Msg("sensor connected")

	for {
		if c.cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		}
		m, err := d4.ReadMessage(conn, c.cfg.Limits)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			case errors.Is(err, os.ErrDeadlineExceeded) && !partialFrame(err):
				logger.Debug().Dur("timeout", c.cfg.ReadTimeout).Msg("sensor idle")
			default:
				observability.RecordFrame(observability.ResultMalformed, 0)
				logger.Warn().Err(err).Msg("read frame")
			}
			return
		}
		if err := c.Ingest(m); err != nil {
			if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrStaleFrame) || errors.Is(err, ErrRejectedVersion) {
				h := m.Header()
				logger.Warn().
					Err(err).
					Str("sensor", uuid.UUID(h.SensorID).String()).
					Uint8("version", h.ProtocolVersion).
					Uint8("type", h.PacketType).
					Msg("frame rejected")
				continue
			}
			logger.Error().Err(err).Msg("write output")
			return
		}
	}
}

func partialFrame(err error) bool {
	return errors.Is(err, d4.ErrTruncatedHeader) || errors.Is(err, d4.ErrTruncatedBody)
}

// Ingest applies version, authentication and freshness policy to m and
// writes it to the output if accepted.
func (c *Collector) Ingest(m d4.Message) error {
	h := m.Header()
	if !c.cfg.acceptsVersion(h.ProtocolVersion) {
		observability.RecordFrame(observability.ResultRejectedVersion, m.Len())
		return fmt.Errorf("%w: %d", ErrRejectedVersion, h.ProtocolVersion)
	}
	if err := c.keys.Authenticate(m); err != nil {
		observability.RecordFrame(observability.ResultUnauthenticated, m.Len())
		return err
	}
	if c.cfg.MaxClockSkew > 0 {
		skew := c.now().Sub(h.Time())
		if skew < 0 {
			skew = -skew
		}
		if skew > c.cfg.MaxClockSkew {
			observability.RecordFrame(observability.ResultStale, m.Len())
			return fmt.Errorf("%w: %s", ErrStaleFrame, skew)
		}
	}

	var payload []byte
	switch c.cfg.OutputFormat {
	case OutputBody:
		payload = m.Body()
	default:
		payload = m.Bytes()
	}

	c.outMu.Lock()
	_, err := c.out.Write(payload)
	c.outMu.Unlock()
	if err != nil {
		return err
	}
	observability.RecordFrame(observability.ResultAccepted, m.Len())
	c.log.Debug().
		Str("sensor", uuid.UUID(h.SensorID).String()).
		Uint8("type", h.PacketType).
		Uint32("size", h.Size).
		Msg("frame accepted")
	return nil
}

func (c *Collector) trackConn(conn net.Conn) bool {
	c.connsMu.Lock()
	defer c.connsMu.Unlock()
	if c.closed {
		return false
	}
	c.conns[conn] = struct{}{}
	return true
}

func (c *Collector) untrackConn(conn net.Conn) {
	c.connsMu.Lock()
	defer c.connsMu.Unlock()
	delete(c.conns, conn)
}

func (c *Collector) closeAllConns() {
	c.connsMu.Lock()
	defer c.connsMu.Unlock()
	c.closed = true
	for conn := range c.conns {
		_ = conn.Close()
	}
}

// OpenOutput returns stdout for "stdout" or "-", otherwise the named file
// opened for append.
func OpenOutput(path string) (io.WriteCloser, error) {
	switch path {
	case "", "stdout", "-":
		return nopCloser{os.Stdout}, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
