package d4

import (
	"errors"
	"fmt"
	"io"
)

// Limits constrains stream decode memory use.
type Limits struct {
	MaxBodyBytes uint32
}

func DefaultLimits() Limits {
	return Limits{MaxBodyBytes: 8 * 1024 * 1024}
}

// ReadMessage reads exactly one frame from r. It returns io.EOF if r ends
// before the first header byte. A reader error after part of a frame has been
// read is wrapped in ErrTruncatedHeader or ErrTruncatedBody; one before the
// first byte is returned as is.
func ReadMessage(r io.Reader, limits Limits) (Message, error) {
	var head [HeaderSize]byte
	if n, err := io.ReadFull(r, head[:]); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return Message{}, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			return Message{}, ErrTruncatedHeader
		case n > 0:
			return Message{}, fmt.Errorf("%w: %w", ErrTruncatedHeader, err)
		}
		return Message{}, err
	}

	h, err := DecodeHeader(head[:])
	if err != nil {
		return Message{}, err
	}
	if limits.MaxBodyBytes > 0 && h.Size > limits.MaxBodyBytes {
		return Message{}, ErrBodyTooLarge
	}

	body := make([]byte, h.Size)
	if h.Size > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Message{}, ErrTruncatedBody
			}
			return Message{}, fmt.Errorf("%w: %w", ErrTruncatedBody, err)
		}
	}
	return Message{header: h, body: body}, nil
}

func WriteMessage(w io.Writer, m Message) error {
	_, err := w.Write(m.Bytes())
	return err
}
