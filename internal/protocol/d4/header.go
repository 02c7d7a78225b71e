package d4

import (
	"encoding/binary"
	"time"
)

const (
	// ProtocolVersion is the contract version this package encodes.
	ProtocolVersion uint8 = 1

	SensorIDSize = 16
	TagSize      = 32
	HeaderSize   = 1 + 1 + SensorIDSize + 8 + TagSize + 4
)

const (
	offVersion   = 0
	offType      = 1
	offSensorID  = 2
	offTimestamp = offSensorID + SensorIDSize
	offTag       = offTimestamp + 8
	offSize      = offTag + TagSize
)

// Header is the fixed wire header.
type Header struct {
	ProtocolVersion uint8
	PacketType      uint8
	SensorID        [SensorIDSize]byte
	Timestamp       uint64
	HMAC            [TagSize]byte
	Size            uint32
}

// Time returns the creation timestamp.
func (h Header) Time() time.Time {
	return time.Unix(int64(h.Timestamp), 0).UTC()
}

func (h Header) Bytes() []byte {
	buf := make([]byte, HeaderSize)
	putHeader(buf, h)
	return buf
}

func putHeader(buf []byte, h Header) {
	buf[offVersion] = h.ProtocolVersion
	buf[offType] = h.PacketType
	copy(buf[offSensorID:offTimestamp], h.SensorID[:])
	binary.LittleEndian.PutUint64(buf[offTimestamp:offTag], h.Timestamp)
	copy(buf[offTag:offSize], h.HMAC[:])
	binary.LittleEndian.PutUint32(buf[offSize:HeaderSize], h.Size)
}

// DecodeHeader parses the fixed header at the start of b. Bytes past
// HeaderSize are ignored.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrTruncatedHeader
	}
	h := Header{
		ProtocolVersion: b[offVersion],
		PacketType:      b[offType],
		Timestamp:       binary.LittleEndian.Uint64(b[offTimestamp:offTag]),
		Size:            binary.LittleEndian.Uint32(b[offSize:HeaderSize]),
	}
	copy(h.SensorID[:], b[offSensorID:offTimestamp])
	copy(h.HMAC[:], b[offTag:offSize])
	return h, nil
}
