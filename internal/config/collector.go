package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/d4/internal/collector"
)

type sensorFile struct {
	UUID string `toml:"uuid"`
	Key  string `toml:"key"`
}

type collectorFile struct {
	Listen         string       `toml:"listen"`
	MetricsAddr    string       `toml:"metrics_addr,omitempty"`
	Output         string       `toml:"output"`
	OutputFormat   string       `toml:"output_format"`
	MaxBodyBytes   int64        `toml:"max_body_bytes"`
	MaxClockSkew   string       `toml:"max_clock_skew"`
	ReadTimeout    string       `toml:"read_timeout"`
	AcceptVersions []int64      `toml:"accept_versions,omitempty"`
	Keys           []string     `toml:"keys,omitempty"`
	Sensors        []sensorFile `toml:"sensors,omitempty"`
	TLS            tlsFile      `toml:"tls"`
}

// LoadCollectorFile reads a collector TOML config and the keyring it
// declares. At least one key is required.
func LoadCollectorFile(path string) (collector.Config, *collector.Keyring, error) {
	cfg := collector.DefaultConfig()
	base := filepath.Dir(path)

	var raw collectorFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return collector.Config{}, nil, fmt.Errorf("load collector config: %w", err)
	}

	if meta.IsDefined("listen") {
		cfg.ListenAddr = strings.TrimSpace(raw.Listen)
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("output") {
		cfg.Output = resolveOutput(base, raw.Output)
	}
	if meta.IsDefined("output_format") {
		cfg.OutputFormat = collector.OutputFormat(strings.ToLower(strings.TrimSpace(raw.OutputFormat)))
	}
	if meta.IsDefined("max_body_bytes") {
		if raw.MaxBodyBytes < 0 || raw.MaxBodyBytes > int64(^uint32(0)) {
			return collector.Config{}, nil, fmt.Errorf("config: max_body_bytes out of range: %d", raw.MaxBodyBytes)
		}
		cfg.Limits.MaxBodyBytes = uint32(raw.MaxBodyBytes)
	}
	if meta.IsDefined("max_clock_skew") {
		if cfg.MaxClockSkew, err = parseDuration("max_clock_skew", raw.MaxClockSkew); err != nil {
			return collector.Config{}, nil, err
		}
	}
	if meta.IsDefined("read_timeout") {
		if cfg.ReadTimeout, err = parseDuration("read_timeout", raw.ReadTimeout); err != nil {
			return collector.Config{}, nil, err
		}
	}
	if meta.IsDefined("accept_versions") {
		cfg.AcceptVersions = make([]uint8, 0, len(raw.AcceptVersions))
		for _, v := range raw.AcceptVersions {
			u, err := intToU8(v, ErrInvalidVersion)
			if err != nil {
				return collector.Config{}, nil, err
			}
			cfg.AcceptVersions = append(cfg.AcceptVersions, u)
		}
	}
	if meta.IsDefined("tls") {
		cfg.TLS = raw.TLS.settings(base)
	}

	keys := collector.NewKeyring()
	if err := fillKeyring(keys, raw.Keys, raw.Sensors); err != nil {
		return collector.Config{}, nil, err
	}

	if err := cfg.Validate(); err != nil {
		keys.Wipe()
		return collector.Config{}, nil, err
	}
	return cfg, keys, nil
}

// fillKeyring adds fallback and per-sensor keys to keys. On error keys is
// wiped.
func fillKeyring(keys *collector.Keyring, fallback []string, sensors []sensorFile) (err error) {
	defer func() {
		if err != nil {
			keys.Wipe()
		}
	}()
	for _, k := range fallback {
		if k == "" {
			continue
		}
		keys.AddFallback([]byte(k))
	}
	for i, s := range sensors {
		id, err := parseSensorID(s.UUID)
		if err != nil {
			return fmt.Errorf("sensors[%d]: %w", i, err)
		}
		if s.Key == "" {
			return fmt.Errorf("sensors[%d]: %w", i, ErrMissingKey)
		}
		keys.Add(id, []byte(s.Key))
	}
	if keys.Len() == 0 {
		return ErrMissingKey
	}
	return nil
}

func resolveOutput(base, out string) string {
	out = strings.TrimSpace(out)
	switch out {
	case "", "stdout", "-":
		return "stdout"
	}
	return resolvePath(base, out)
}
