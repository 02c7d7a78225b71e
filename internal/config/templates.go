package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danmuck/d4/internal/collector"
	"github.com/danmuck/d4/internal/protocol/d4"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

const (
	KindClient    = "client"
	KindCollector = "collector"
)

// GenerateKey returns a random hex key of n random bytes.
func GenerateKey(n int) (string, error) {
	b := make([]byte, n)
	defer d4.Wipe(b)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Template renders a TOML template with a fresh sensor uuid and key.
func Template(kind string) (string, error) {
	key, err := GenerateKey(32)
	if err != nil {
		return "", err
	}
	sensor := uuid.New().String()

	var v any
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindClient:
		def := DefaultClientConfig()
		v = clientFile{
			UUID:         sensor,
			Key:          key,
			Version:      int64(def.ProtocolVersion),
			Type:         int64(def.PacketType),
			Destination:  def.Destination.String(),
			DialTimeout:  def.DialTimeout.String(),
			WriteTimeout: def.WriteTimeout.String(),
		}
	case KindCollector:
		def := collector.DefaultConfig()
		v = collectorFile{
			Listen:       def.ListenAddr,
			Output:       def.Output,
			OutputFormat: string(def.OutputFormat),
			MaxBodyBytes: int64(def.Limits.MaxBodyBytes),
			MaxClockSkew: def.MaxClockSkew.String(),
			ReadTimeout:  def.ReadTimeout.String(),
			Sensors:      []sensorFile{{UUID: sensor, Key: key}},
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	out, err := toml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

// WriteClientDir creates a client config directory with a fresh sensor uuid
// and key, version 1, type 1 and stdout as destination.
func WriteClientDir(dir string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(filepath.Join(dir, FileUUID)); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, dir)
		}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	key, err := GenerateKey(32)
	if err != nil {
		return err
	}
	def := DefaultClientConfig()
	files := []struct {
		name  string
		value string
		perm  os.FileMode
	}{
		{FileUUID, uuid.New().String(), 0o644},
		{FileKey, key, 0o600},
		{FileVersion, strconv.Itoa(int(def.ProtocolVersion)), 0o644},
		{FileType, strconv.Itoa(int(def.PacketType)), 0o644},
		{FileDestination, def.Destination.String(), 0o644},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), []byte(f.value+"\n"), f.perm); err != nil {
			return err
		}
	}
	return nil
}
