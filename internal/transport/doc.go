// Package transport delivers encoded D4 frames to a destination: stdout or a
// TCP (optionally TLS) endpoint. One frame per connection, no retry.
package transport
