package d4

import (
	"crypto/hmac"
	"crypto/sha256"
)

// tag computes HMAC-SHA256 over the header with a zeroed tag field, then the
// body.
func (m Message) tag(key []byte) [TagSize]byte {
	h := m.header
	h.HMAC = [TagSize]byte{}
	var head [HeaderSize]byte
	putHeader(head[:], h)

	mac := hmac.New(sha256.New, key)
	mac.Write(head[:])
	mac.Write(m.body)

	var out [TagSize]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// ValidateHMAC reports whether the stored tag was produced with key over the
// current header and body. The comparison runs in constant time.
func (m Message) ValidateHMAC(key []byte) bool {
	want := m.tag(key)
	return hmac.Equal(want[:], m.header.HMAC[:])
}

// Wipe zeroes b. Use it on key buffers once they are no longer needed.
func Wipe(b []byte) {
	clear(b)
}
