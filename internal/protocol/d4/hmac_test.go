package d4

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHMACKeySensitivity(t *testing.T) {
	key := []byte("My Hmac key")
	m, err := New(1, 1, testSensor, key, []byte("blah"))
	require.NoError(t, err)

	assert.True(t, m.ValidateHMAC(key))
	for _, other := range [][]byte{nil, []byte("My Hmac kez"), []byte("My Hmac key "), []byte("m")} {
		assert.False(t, m.ValidateHMAC(other), "key=%q", other)
	}
}

func TestValidateHMACDetectsEveryBitFlip(t *testing.T) {
	key := []byte("1")
	m, err := New(1, 1, testSensor, key, []byte("blahh"))
	require.NoError(t, err)
	encoded := m.Bytes()

	for i := range encoded {
		if i >= offTag && i < offSize {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			tampered := append([]byte(nil), encoded...)
			tampered[i] ^= 1 << bit

			got, err := Parse(tampered)
			if err != nil {
				// size field flips can push the declared body past the buffer
				require.ErrorIs(t, err, ErrTruncatedBody, "byte %d bit %d", i, bit)
				continue
			}
			assert.False(t, got.ValidateHMAC(key), "byte %d bit %d", i, bit)
		}
	}
}

func TestValidateHMACDetectsTagFlip(t *testing.T) {
	key := []byte("1")
	m, err := New(1, 1, testSensor, key, []byte("blahh"))
	require.NoError(t, err)
	encoded := m.Bytes()
	encoded[offTag] ^= 0x80

	got, err := Parse(encoded)
	require.NoError(t, err)
	assert.False(t, got.ValidateHMAC(key))
}

func TestValidateHMACOnShortenedSize(t *testing.T) {
	key := []byte("k")
	m, err := New(1, 1, testSensor, key, []byte("abcdef"))
	require.NoError(t, err)
	encoded := m.Bytes()
	encoded[offSize] = 3

	got, err := Parse(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got.Body())
	assert.False(t, got.ValidateHMAC(key))
}

func TestZeroMessageValidatesFalse(t *testing.T) {
	assert.False(t, Message{}.ValidateHMAC([]byte("k")))
}

func TestWipe(t *testing.T) {
	key := []byte("secret")
	Wipe(key)
	assert.Equal(t, make([]byte, 6), key)
	Wipe(nil)
}
