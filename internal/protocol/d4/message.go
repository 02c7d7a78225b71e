package d4

import (
	"bytes"
	"math"
	"time"
)

// Message is one D4 frame. The zero value is an empty frame with a zero tag;
// real messages come from New or the parse functions.
type Message struct {
	header Header
	body   []byte
}

// now is swapped in tests.
var now = time.Now

// New seals body into a message stamped with the current time.
func New(protocolVersion, packetType uint8, sensorID, key, body []byte) (Message, error) {
	if len(sensorID) != SensorIDSize {
		return Message{}, ErrInvalidIdentifierLength
	}
	if uint64(len(body)) > math.MaxUint32 {
		return Message{}, ErrBodyTooLarge
	}
	h := Header{
		ProtocolVersion: protocolVersion,
		PacketType:      packetType,
		Timestamp:       uint64(now().Unix()),
		Size:            uint32(len(body)),
	}
	copy(h.SensorID[:], sensorID)

	m := Message{header: h, body: make([]byte, len(body))}
	copy(m.body, body)
	m.header.HMAC = m.tag(key)
	return m, nil
}

func (m Message) Header() Header {
	return m.header
}

// Equal reports whether both messages carry the same header and body.
func (m Message) Equal(other Message) bool {
	return m.header == other.header && bytes.Equal(m.body, other.body)
}

// Body returns a copy of the payload.
func (m Message) Body() []byte {
	return append([]byte(nil), m.body...)
}

// Len is the encoded frame length.
func (m Message) Len() int {
	return HeaderSize + len(m.body)
}

// Bytes encodes the full frame.
func (m Message) Bytes() []byte {
	buf := make([]byte, m.Len())
	putHeader(buf, m.header)
	copy(buf[HeaderSize:], m.body)
	return buf
}

// Parse decodes the frame at the start of buf. Bytes after the body are
// ignored and the tag is not checked.
func Parse(buf []byte) (Message, error) {
	m, _, err := ParseNext(buf)
	return m, err
}

// ParseNext decodes the frame at the start of buf and returns the bytes that
// follow it.
func ParseNext(buf []byte) (Message, []byte, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return Message{}, buf, err
	}
	rest := buf[HeaderSize:]
	if uint64(h.Size) > uint64(len(rest)) {
		return Message{}, buf, ErrTruncatedBody
	}
	body := make([]byte, h.Size)
	copy(body, rest[:h.Size])
	return Message{header: h, body: body}, rest[h.Size:], nil
}
