package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

var ErrNoStdout = errors.New("transport: no stdout writer")

// Send writes frame to dest. For stdout the frame goes to the provided
// writer; for TCP a connection is dialed, written and closed.
func Send(ctx context.Context, dest Destination, frame []byte, stdout io.Writer, opts Options) error {
	switch dest.Kind {
	case KindStdout:
		if stdout == nil {
			return ErrNoStdout
		}
		_, err := stdout.Write(frame)
		return err
	case KindTCP:
		return sendTCP(ctx, dest.Addr, frame, opts)
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidDestination, dest.Kind)
	}
}

func sendTCP(ctx context.Context, addr string, frame []byte, opts Options) error {
	if opts.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.DialTimeout)
		defer cancel()
	}

	var (
		conn net.Conn
		err  error
	)
	if opts.TLS != nil {
		d := &tls.Dialer{Config: opts.TLS}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	defer conn.Close()

	if opts.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(opts.WriteTimeout)); err != nil {
			return err
		}
	}
	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("transport: write %s: %w", addr, err)
	}
	return conn.Close()
}
