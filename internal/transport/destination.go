package transport

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

var ErrInvalidDestination = errors.New("transport: invalid destination")

type Kind string

const (
	KindStdout Kind = "stdout"
	KindTCP    Kind = "tcp"
)

// Destination is where the client writes frames.
type Destination struct {
	Kind Kind
	Addr string
}

func Stdout() Destination {
	return Destination{Kind: KindStdout}
}

// ParseDestination accepts "stdout" or "host:port".
func ParseDestination(raw string) (Destination, error) {
	v := strings.TrimSpace(raw)
	if strings.EqualFold(v, string(KindStdout)) {
		return Stdout(), nil
	}
	host, port, err := net.SplitHostPort(v)
	if err != nil {
		return Destination{}, fmt.Errorf("%w: %q: %v", ErrInvalidDestination, raw, err)
	}
	if strings.TrimSpace(host) == "" {
		return Destination{}, fmt.Errorf("%w: %q: missing host", ErrInvalidDestination, raw)
	}
	n, err := strconv.ParseUint(port, 10, 16)
	if err != nil || n == 0 {
		return Destination{}, fmt.Errorf("%w: %q: bad port", ErrInvalidDestination, raw)
	}
	return Destination{Kind: KindTCP, Addr: net.JoinHostPort(host, port)}, nil
}

func (d Destination) String() string {
	if d.Kind == KindTCP {
		return d.Addr
	}
	return string(KindStdout)
}
