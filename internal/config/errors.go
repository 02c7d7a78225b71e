package config

import "errors"

var (
	ErrInvalidSensorID = errors.New("config: invalid sensor uuid")
	ErrMissingKey      = errors.New("config: missing hmac key")
	ErrInvalidVersion  = errors.New("config: protocol version out of range")
	ErrInvalidType     = errors.New("config: packet type out of range")
	ErrInvalidDuration = errors.New("config: invalid duration")
	ErrUnknownKind     = errors.New("config: unknown config kind")
	ErrExists          = errors.New("config: already exists")
)
