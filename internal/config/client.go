package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/d4/internal/protocol/d4"
	"github.com/danmuck/d4/internal/transport"
	"github.com/google/uuid"
)

// Config directory entries, one scalar per file.
const (
	FileUUID        = "uuid"
	FileKey         = "key"
	FileVersion     = "version"
	FileType        = "type"
	FileDestination = "destination"
)

// ClientConfig is everything the client needs to seal and deliver one frame.
type ClientConfig struct {
	ProtocolVersion uint8
	PacketType      uint8
	SensorID        uuid.UUID
	Key             []byte
	Destination     transport.Destination
	DialTimeout     time.Duration
	WriteTimeout    time.Duration
	TLS             transport.TLSSettings
}

func DefaultClientConfig() ClientConfig {
	opts := transport.DefaultOptions()
	return ClientConfig{
		ProtocolVersion: d4.ProtocolVersion,
		PacketType:      1,
		Destination:     transport.Stdout(),
		DialTimeout:     opts.DialTimeout,
		WriteTimeout:    opts.WriteTimeout,
	}
}

func (c ClientConfig) Validate() error {
	if c.SensorID == uuid.Nil {
		return ErrInvalidSensorID
	}
	if len(c.Key) == 0 {
		return ErrMissingKey
	}
	switch c.Destination.Kind {
	case transport.KindStdout, transport.KindTCP:
	default:
		return fmt.Errorf("%w: kind %q", transport.ErrInvalidDestination, c.Destination.Kind)
	}
	return c.TLS.ValidateClient()
}

// TransportOptions builds delivery options, including TLS for TCP targets.
func (c ClientConfig) TransportOptions() (transport.Options, error) {
	opts := transport.Options{DialTimeout: c.DialTimeout, WriteTimeout: c.WriteTimeout}
	if c.Destination.Kind != transport.KindTCP {
		return opts, nil
	}
	tlsCfg, err := c.TLS.ClientConfig(c.Destination.Addr)
	if err != nil {
		return transport.Options{}, err
	}
	opts.TLS = tlsCfg
	return opts, nil
}

// Wipe zeroes the key.
func (c *ClientConfig) Wipe() {
	d4.Wipe(c.Key)
	c.Key = nil
}

// LoadClientDir reads the directory layout: uuid, key, version, type and an
// optional destination file (stdout when absent).
func LoadClientDir(dir string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	raw, err := readScalar(dir, FileUUID)
	if err != nil {
		return ClientConfig{}, err
	}
	if cfg.SensorID, err = parseSensorID(raw); err != nil {
		return ClientConfig{}, err
	}

	if raw, err = readScalar(dir, FileVersion); err != nil {
		return ClientConfig{}, err
	}
	if cfg.ProtocolVersion, err = parseU8(raw, ErrInvalidVersion); err != nil {
		return ClientConfig{}, err
	}

	if raw, err = readScalar(dir, FileType); err != nil {
		return ClientConfig{}, err
	}
	if cfg.PacketType, err = parseU8(raw, ErrInvalidType); err != nil {
		return ClientConfig{}, err
	}

	if raw, err = readScalar(dir, FileDestination); err == nil {
		if cfg.Destination, err = transport.ParseDestination(raw); err != nil {
			return ClientConfig{}, err
		}
	} else if !os.IsNotExist(err) {
		return ClientConfig{}, err
	}

	if cfg.Key, err = readKeyFile(filepath.Join(dir, FileKey)); err != nil {
		return ClientConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		cfg.Wipe()
		return ClientConfig{}, err
	}
	return cfg, nil
}

type tlsFile struct {
	Enabled            bool   `toml:"enabled"`
	CAFile             string `toml:"ca_file,omitempty"`
	CertFile           string `toml:"cert_file,omitempty"`
	KeyFile            string `toml:"key_file,omitempty"`
	ServerName         string `toml:"server_name,omitempty"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
}

func (f tlsFile) settings(base string) transport.TLSSettings {
	return transport.TLSSettings{
		Enabled:            f.Enabled,
		CAFile:             resolvePath(base, f.CAFile),
		CertFile:           resolvePath(base, f.CertFile),
		KeyFile:            resolvePath(base, f.KeyFile),
		ServerName:         strings.TrimSpace(f.ServerName),
		InsecureSkipVerify: f.InsecureSkipVerify,
	}
}

type clientFile struct {
	UUID         string  `toml:"uuid"`
	Key          string  `toml:"key,omitempty"`
	KeyFile      string  `toml:"key_file,omitempty"`
	Version      int64   `toml:"version"`
	Type         int64   `toml:"type"`
	Destination  string  `toml:"destination"`
	DialTimeout  string  `toml:"dial_timeout"`
	WriteTimeout string  `toml:"write_timeout"`
	TLS          tlsFile `toml:"tls"`
}

// LoadClientFile reads a TOML client config. Relative key_file and TLS paths
// resolve against the config file's directory.
func LoadClientFile(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()
	base := filepath.Dir(path)

	var raw clientFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("load client config: %w", err)
	}

	if cfg.SensorID, err = parseSensorID(raw.UUID); err != nil {
		return ClientConfig{}, err
	}

	if meta.IsDefined("version") {
		if cfg.ProtocolVersion, err = intToU8(raw.Version, ErrInvalidVersion); err != nil {
			return ClientConfig{}, err
		}
	}

	if meta.IsDefined("type") {
		if cfg.PacketType, err = intToU8(raw.Type, ErrInvalidType); err != nil {
			return ClientConfig{}, err
		}
	}

	if meta.IsDefined("destination") {
		if cfg.Destination, err = transport.ParseDestination(raw.Destination); err != nil {
			return ClientConfig{}, err
		}
	}

	if meta.IsDefined("dial_timeout") {
		if cfg.DialTimeout, err = parseDuration("dial_timeout", raw.DialTimeout); err != nil {
			return ClientConfig{}, err
		}
	}

	if meta.IsDefined("write_timeout") {
		if cfg.WriteTimeout, err = parseDuration("write_timeout", raw.WriteTimeout); err != nil {
			return ClientConfig{}, err
		}
	}

	if meta.IsDefined("tls") {
		cfg.TLS = raw.TLS.settings(base)
	}

	switch {
	case meta.IsDefined("key") && raw.Key != "":
		cfg.Key = []byte(raw.Key)
	case meta.IsDefined("key_file"):
		if cfg.Key, err = readKeyFile(resolvePath(base, raw.KeyFile)); err != nil {
			return ClientConfig{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		cfg.Wipe()
		return ClientConfig{}, err
	}
	return cfg, nil
}

func readScalar(dir, name string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// readKeyFile returns the trimmed key and zeroes the read buffer.
func readKeyFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defer d4.Wipe(b)
	key := bytes.TrimSpace(b)
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrMissingKey, path)
	}
	return append([]byte(nil), key...), nil
}

func parseSensorID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidSensorID, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, ErrInvalidSensorID
	}
	return id, nil
}

func parseU8(raw string, sentinel error) (uint8, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", sentinel, raw)
	}
	return uint8(n), nil
}

func intToU8(v int64, sentinel error) (uint8, error) {
	if v < 0 || v > 255 {
		return 0, fmt.Errorf("%w: %d", sentinel, v)
	}
	return uint8(v), nil
}

func parseDuration(field, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidDuration, field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalidDuration, field)
	}
	return d, nil
}

func resolvePath(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
