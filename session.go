// Package hdlc implements a reliable, byte-oriented framing layer over
// an opaque byte transport: HDLC-subset framing (start/stop flags,
// address, control, a CRC-16/X.25 frame check sequence, and
// transparency byte-stuffing) plus a Stop-and-Wait ARQ that gives the
// caller at-most-one-outstanding, retried delivery of discrete
// payloads.
//
// A Session wraps a transport.Transport. Exactly one goroutine may call
// Read at a time; any number of goroutines may call Write concurrently
// (they are serialized internally).
package hdlc

import (
	"time"

	"github.com/gopherlink/hdlc/internal/arq"
	"github.com/gopherlink/hdlc/transport"
)

// Defaults, mirrored from the original Hdlcpp bufferSize=256,
// writeTimeout=100ms, writeRetries=1 defaults.
const (
	DefaultReadBufferSize  = 256
	DefaultWriteBufferSize = 2*DefaultReadBufferSize + 8
	DefaultWriteTimeout    = 100 * time.Millisecond
	DefaultWriteRetries    = 1
	// DefaultAddress is the broadcast/all-stations address, used by
	// Broadcast and as the default when a caller does not specify one.
	DefaultAddress byte = 0xff
)

// Option configures a Session at construction time.
type Option func(*config)

type config struct {
	readBufferSize     int
	writeBufferSize    int
	writeTimeout       time.Duration
	writeRetries       int
	defaultAddress     byte
	suppressDuplicates bool
}

// WithReadBufferSize sets the reassembly window capacity, which bounds
// the maximum receivable frame size. Must be at least as large as any
// frame the peer may send.
func WithReadBufferSize(n int) Option {
	return func(c *config) { c.readBufferSize = n }
}

// WithWriteBufferSize sets the scratch encode buffer capacity. Per the
// wire format, this must be at least 2*payloadMax+8 to guarantee a
// fully-escaped maximum-size Data frame always fits.
func WithWriteBufferSize(n int) Option {
	return func(c *config) { c.writeBufferSize = n }
}

// WithWriteTimeout sets the per-attempt Ack/Nack wait. Zero disables
// waiting entirely (fire-and-forget mode).
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) { c.writeTimeout = d }
}

// WithWriteRetries sets the number of additional attempts after the
// first; total attempts = 1 + writeRetries.
func WithWriteRetries(n int) Option {
	return func(c *config) { c.writeRetries = n }
}

// WithDefaultAddress sets the address Broadcast writes to and the
// address of every locally-generated Nack (a bad frame's own address
// is not used). Defaults to DefaultAddress (0xff).
func WithDefaultAddress(addr byte) Option {
	return func(c *config) { c.defaultAddress = addr }
}

// WithDuplicateSuppression controls whether a retransmitted Data frame
// (recognized by a repeated send sequence number) is hidden from the
// caller after being Ack'd a second time. Historical revisions of the
// reference implementation differ on this; it defaults to on here.
func WithDuplicateSuppression(enabled bool) Option {
	return func(c *config) { c.suppressDuplicates = enabled }
}

// Session is one reliable link over a transport.Transport.
type Session struct {
	engine      *arq.Engine
	defaultAddr byte
}

// NewSession constructs a Session over t.
func NewSession(t transport.Transport, opts ...Option) *Session {
	c := config{
		readBufferSize:     DefaultReadBufferSize,
		writeBufferSize:    DefaultWriteBufferSize,
		writeTimeout:       DefaultWriteTimeout,
		writeRetries:       DefaultWriteRetries,
		defaultAddress:     DefaultAddress,
		suppressDuplicates: true,
	}
	for _, o := range opts {
		o(&c)
	}

	return &Session{
		engine: arq.New(t, arq.Config{
			ReadBufferSize:     c.readBufferSize,
			WriteBufferSize:    c.writeBufferSize,
			WriteTimeout:       c.writeTimeout,
			WriteRetries:       c.writeRetries,
			DefaultAddress:     c.defaultAddress,
			SuppressDuplicates: c.suppressDuplicates,
		}),
		defaultAddr: c.defaultAddress,
	}
}

// Read blocks until a Data payload is delivered, a transport error
// occurs, or Close is observed. It returns the payload length written
// into dst and the sending station's address. Exactly one goroutine may
// call Read at a time.
func (s *Session) Read(dst []byte) (n int, address byte, err error) {
	return s.engine.Read(dst)
}

// Write sends payload as a Data frame addressed to address and blocks
// until it is acknowledged or all retries are exhausted. Safe for
// concurrent use.
func (s *Session) Write(address byte, payload []byte) (int, error) {
	return s.engine.Write(address, payload)
}

// Broadcast sends payload to the session's default address (0xff unless
// overridden with WithDefaultAddress).
func (s *Session) Broadcast(payload []byte) (int, error) {
	return s.engine.Write(s.defaultAddr, payload)
}

// Close stops the session. The current blocking transport read, if any,
// is expected to return naturally once the owner closes the underlying
// transport.
func (s *Session) Close() error {
	s.engine.Close()
	return nil
}
