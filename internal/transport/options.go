package transport

import (
	"crypto/tls"
	"time"
)

// Options controls a single delivery.
type Options struct {
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	// TLS, when set, wraps TCP destinations.
	TLS *tls.Config
}

func DefaultOptions() Options {
	return Options{
		DialTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}
