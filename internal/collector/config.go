package collector

import (
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/d4/internal/protocol/d4"
	"github.com/danmuck/d4/internal/transport"
)

var (
	ErrInvalidOutputFormat = errors.New("collector: invalid output format")
	ErrInvalidBodyLimit    = errors.New("collector: max body bytes must be positive")
)

// OutputFormat selects what is written for an accepted frame.
type OutputFormat string

const (
	OutputFrame OutputFormat = "frame"
	OutputBody  OutputFormat = "body"
)

// Config defines collector listener and acceptance policy.
type Config struct {
	ListenAddr   string
	MetricsAddr  string
	Output       string
	OutputFormat OutputFormat
	// Limits.MaxBodyBytes must be set; the body is allocated before any key
	// is tried.
	Limits d4.Limits
	// MaxClockSkew rejects frames stamped farther from now. Zero disables it.
	MaxClockSkew time.Duration
	ReadTimeout  time.Duration
	// AcceptVersions restricts protocol versions. Empty accepts any.
	AcceptVersions []uint8
	TLS            transport.TLSSettings
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:   ":4443",
		Output:       "stdout",
		OutputFormat: OutputFrame,
		Limits:       d4.DefaultLimits(),
		MaxClockSkew: 5 * time.Minute,
		ReadTimeout:  30 * time.Second,
	}
}

func (c Config) Validate() error {
	switch c.OutputFormat {
	case OutputFrame, OutputBody:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.OutputFormat)
	}
	if c.Limits.MaxBodyBytes == 0 {
		return ErrInvalidBodyLimit
	}
	if c.MaxClockSkew < 0 || c.ReadTimeout < 0 {
		return errors.New("collector: negative duration")
	}
	return c.TLS.ValidateServer()
}

func (c Config) acceptsVersion(v uint8) bool {
	if len(c.AcceptVersions) == 0 {
		return true
	}
	for _, want := range c.AcceptVersions {
		if want == v {
			return true
		}
	}
	return false
}
