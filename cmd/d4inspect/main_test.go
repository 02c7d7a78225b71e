package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/d4/internal/protocol/d4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, sensor uuid.UUID, key string, bodies ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, b := range bodies {
		m, err := d4.New(1, 3, sensor[:], []byte(key), []byte(b))
		require.NoError(t, err)
		require.NoError(t, d4.WriteMessage(&buf, m))
	}
	return buf.Bytes()
}

func TestRunListsFrames(t *testing.T) {
	sensor := uuid.New()
	var out bytes.Buffer
	err := run([]string{"-key", "k"}, bytes.NewReader(capture(t, sensor, "k", "one", "three")), &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "sensor="+sensor.String())
	assert.Contains(t, lines[0], "size=3")
	assert.Contains(t, lines[0], "hmac=ok")
	assert.Contains(t, lines[1], "size=5")
}

func TestRunReportsBadKeyAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "capture.d4")
	require.NoError(t, os.WriteFile(path, capture(t, uuid.New(), "right", "x"), 0o600))
	keyPath := filepath.Join(dir, "key")
	require.NoError(t, os.WriteFile(keyPath, []byte("wrong\n"), 0o600))

	var out bytes.Buffer
	require.NoError(t, run([]string{"-in", path, "-key-file", keyPath}, nil, &out))
	assert.Contains(t, out.String(), "hmac=bad")
}

func TestRunWithoutKey(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, bytes.NewReader(capture(t, uuid.New(), "k", "x")), &out))
	assert.Contains(t, out.String(), "hmac=-")
}

func TestRunTruncatedCapture(t *testing.T) {
	c := capture(t, uuid.New(), "k", "abc", "def")
	var out bytes.Buffer
	err := run(nil, bytes.NewReader(c[:len(c)-1]), &out)
	assert.ErrorIs(t, err, d4.ErrTruncatedBody)
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}
