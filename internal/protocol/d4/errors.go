package d4

import "errors"

var (
	ErrInvalidIdentifierLength = errors.New("d4: sensor id must be 16 bytes")
	ErrTruncatedHeader         = errors.New("d4: truncated header")
	ErrTruncatedBody           = errors.New("d4: truncated body")
	ErrBodyTooLarge            = errors.New("d4: body too large")
)
