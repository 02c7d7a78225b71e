package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDestination(t *testing.T) {
	tests := []struct {
		raw  string
		want Destination
	}{
		{raw: "stdout", want: Stdout()},
		{raw: " STDOUT\n", want: Stdout()},
		{raw: "127.0.0.1:4443", want: Destination{Kind: KindTCP, Addr: "127.0.0.1:4443"}},
		{raw: "d4.example.org:4443", want: Destination{Kind: KindTCP, Addr: "d4.example.org:4443"}},
		{raw: "[::1]:4443", want: Destination{Kind: KindTCP, Addr: "[::1]:4443"}},
	}
	for _, tt := range tests {
		got, err := ParseDestination(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestParseDestinationRejects(t *testing.T) {
	for _, raw := range []string{"", "localhost", ":4443", "host:", "host:http", "host:0", "host:70000", "a:b:c"} {
		_, err := ParseDestination(raw)
		assert.ErrorIs(t, err, ErrInvalidDestination, raw)
	}
}

func TestDestinationString(t *testing.T) {
	assert.Equal(t, "stdout", Stdout().String())
	assert.Equal(t, "host:1", Destination{Kind: KindTCP, Addr: "host:1"}.String())
}
