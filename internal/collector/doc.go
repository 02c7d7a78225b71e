// Package collector receives D4 frames over TCP, authenticates them against a
// keyring and appends accepted frames to an output stream.
//
// Ownership boundary:
// - listener and per-connection read loop
// - key selection from the unauthenticated header
// - freshness and version policy
// - serialized writes to the output sink
package collector
