// Package d4 implements the D4 message: a fixed 62-byte header followed by an
// opaque body, authenticated with HMAC-SHA256.
//
// Wire layout (protocol version 1, integers little-endian):
//
//	[version:1][type:1][sensor_id:16][timestamp:8][hmac:32][size:4][body:size]
//
// The tag covers the header with the hmac field zeroed, followed by the body.
// Parsing never checks the tag; call Message.ValidateHMAC once a key has been
// chosen (for example from the parsed sensor id).
//
// Messages are immutable values and every function in this package is safe
// for concurrent use.
package d4
