// Package transport defines the two-callback byte transport a Session
// sits on top of, and provides a net.Conn-backed implementation.
//
// The core makes no assumptions about the transport beyond these two
// methods: ReadInto is permitted to block, WriteFrom is expected to be
// synchronous and atomic per call.
package transport

// Transport is the injected byte transport for a Session: read into a
// caller-supplied buffer, write from a caller-supplied buffer. This is
// the Go re-architecture of the original two std::function callbacks
// (TransportRead/TransportWrite) into an interface value, per the
// callback→interface pattern used throughout the reference corpus.
type Transport interface {
	// ReadInto reads at least one byte into p, blocking if necessary.
	// It returns (n, nil) with n > 0 on success, or (n, err) with n <= 0
	// on any transport-level failure, mirroring a POSIX read().
	ReadInto(p []byte) (int, error)
	// WriteFrom writes all of p, synchronously and atomically.
	WriteFrom(p []byte) (int, error)
}
