package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/d4/internal/transport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUUID = "6db4b2a2-7b8f-4a3c-9d0e-8b3b1c2d3e4f"

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, value := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value), 0o600))
	}
}

func TestLoadClientDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		FileUUID:        testUUID + "\n",
		FileKey:         "private key\n",
		FileVersion:     "1\n",
		FileType:        " 3 ",
		FileDestination: "127.0.0.1:4443\n",
	})

	cfg, err := LoadClientDir(dir)
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse(testUUID), cfg.SensorID)
	assert.Equal(t, []byte("private key"), cfg.Key)
	assert.Equal(t, uint8(1), cfg.ProtocolVersion)
	assert.Equal(t, uint8(3), cfg.PacketType)
	assert.Equal(t, transport.Destination{Kind: transport.KindTCP, Addr: "127.0.0.1:4443"}, cfg.Destination)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
}

func TestLoadClientDirDefaultsToStdout(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		FileUUID:    testUUID,
		FileKey:     "k",
		FileVersion: "1",
		FileType:    "1",
	})

	cfg, err := LoadClientDir(dir)
	require.NoError(t, err)
	assert.Equal(t, transport.Stdout(), cfg.Destination)
}

func TestLoadClientDirErrors(t *testing.T) {
	base := map[string]string{
		FileUUID:    testUUID,
		FileKey:     "k",
		FileVersion: "1",
		FileType:    "1",
	}
	tests := []struct {
		name     string
		override map[string]string
		want     error
	}{
		{name: "bad uuid", override: map[string]string{FileUUID: "not-a-uuid"}, want: ErrInvalidSensorID},
		{name: "nil uuid", override: map[string]string{FileUUID: uuid.Nil.String()}, want: ErrInvalidSensorID},
		{name: "empty key", override: map[string]string{FileKey: " \n"}, want: ErrMissingKey},
		{name: "version overflow", override: map[string]string{FileVersion: "256"}, want: ErrInvalidVersion},
		{name: "type not a number", override: map[string]string{FileType: "pcap"}, want: ErrInvalidType},
		{name: "bad destination", override: map[string]string{FileDestination: "nowhere"}, want: transport.ErrInvalidDestination},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, base)
			writeFiles(t, dir, tt.override)
			_, err := LoadClientDir(dir)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadClientDirMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{FileUUID: testUUID})
	_, err := LoadClientDir(dir)
	assert.True(t, os.IsNotExist(err), "%v", err)
}

func TestLoadClientFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"sensor.key": "from-file\n"})
	path := filepath.Join(dir, "client.toml")
	writeFiles(t, dir, map[string]string{"client.toml": `
uuid = "` + testUUID + `"
key_file = "sensor.key"
version = 1
type = 2
destination = "d4.example.org:4443"
dial_timeout = "2s"
write_timeout = "1s"

[tls]
enabled = true
ca_file = "ca.crt"
server_name = "d4.example.org"
`})

	cfg, err := LoadClientFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("from-file"), cfg.Key)
	assert.Equal(t, uint8(2), cfg.PacketType)
	assert.Equal(t, "d4.example.org:4443", cfg.Destination.Addr)
	assert.Equal(t, 2*time.Second, cfg.DialTimeout)
	assert.Equal(t, time.Second, cfg.WriteTimeout)
	assert.True(t, cfg.TLS.Enabled)
	assert.Equal(t, filepath.Join(dir, "ca.crt"), cfg.TLS.CAFile)
	assert.Equal(t, "d4.example.org", cfg.TLS.ServerName)
}

func TestLoadClientFileInlineKeyAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.toml")
	writeFiles(t, dir, map[string]string{"client.toml": `uuid = "` + testUUID + `"
key = "inline"
`})

	cfg, err := LoadClientFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("inline"), cfg.Key)
	assert.Equal(t, uint8(1), cfg.ProtocolVersion)
	assert.Equal(t, transport.Stdout(), cfg.Destination)
	assert.False(t, cfg.TLS.Enabled)
}

func TestLoadClientFileErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "no key", body: `uuid = "` + testUUID + `"`, want: ErrMissingKey},
		{name: "bad version", body: `uuid = "` + testUUID + `"
key = "k"
version = 300`, want: ErrInvalidVersion},
		{name: "bad duration", body: `uuid = "` + testUUID + `"
key = "k"
dial_timeout = "soon"`, want: ErrInvalidDuration},
		{name: "tls without ca", body: `uuid = "` + testUUID + `"
key = "k"
destination = "h:1"
[tls]
enabled = true`, want: transport.ErrTLSCAFileRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, map[string]string{"c.toml": tt.body})
			_, err := LoadClientFile(filepath.Join(dir, "c.toml"))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClientWipe(t *testing.T) {
	key := []byte("secret")
	cfg := ClientConfig{Key: key}
	cfg.Wipe()
	assert.Nil(t, cfg.Key)
	assert.Equal(t, make([]byte, 6), key)
}

func TestTransportOptionsSkipsTLSForStdout(t *testing.T) {
	cfg := DefaultClientConfig()
	cfg.TLS = transport.TLSSettings{Enabled: true, CAFile: "/does/not/exist"}
	opts, err := cfg.TransportOptions()
	require.NoError(t, err)
	assert.Nil(t, opts.TLS)

	cfg.Destination = transport.Destination{Kind: transport.KindTCP, Addr: "h:1"}
	_, err = cfg.TransportOptions()
	assert.Error(t, err)
}
