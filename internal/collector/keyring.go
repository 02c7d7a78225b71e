package collector

import (
	"errors"

	"github.com/danmuck/d4/internal/protocol/d4"
	"github.com/google/uuid"
)

var ErrUnauthenticated = errors.New("collector: no key validates frame")

// Keyring maps sensors to their HMAC keys. Keys registered without a sensor
// are tried for every frame after the sensor's own keys. A Keyring is
// populated before serving and only read afterwards.
type Keyring struct {
	bySensor map[uuid.UUID][][]byte
	fallback [][]byte
}

func NewKeyring() *Keyring {
	return &Keyring{bySensor: make(map[uuid.UUID][][]byte)}
}

func (k *Keyring) Add(sensor uuid.UUID, key []byte) {
	k.bySensor[sensor] = append(k.bySensor[sensor], append([]byte(nil), key...))
}

func (k *Keyring) AddFallback(key []byte) {
	k.fallback = append(k.fallback, append([]byte(nil), key...))
}

// Len counts every stored key.
func (k *Keyring) Len() int {
	n := len(k.fallback)
	for _, keys := range k.bySensor {
		n += len(keys)
	}
	return n
}

// Candidates lists the keys to try for a header, sensor keys first.
func (k *Keyring) Candidates(h d4.Header) [][]byte {
	own := k.bySensor[uuid.UUID(h.SensorID)]
	out := make([][]byte, 0, len(own)+len(k.fallback))
	out = append(out, own...)
	return append(out, k.fallback...)
}

// Authenticate returns nil if any candidate key validates m.
func (k *Keyring) Authenticate(m d4.Message) error {
	for _, key := range k.Candidates(m.Header()) {
		if m.ValidateHMAC(key) {
			return nil
		}
	}
	return ErrUnauthenticated
}

// Wipe zeroes and drops all keys.
func (k *Keyring) Wipe() {
	for id, keys := range k.bySensor {
		for _, key := range keys {
			d4.Wipe(key)
		}
		delete(k.bySensor, id)
	}
	for _, key := range k.fallback {
		d4.Wipe(key)
	}
	k.fallback = nil
}
