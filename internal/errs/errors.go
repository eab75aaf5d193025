// Package errs implements the session error taxonomy shared by the
// core engine and the public API, kept in its own leaf package so that
// internal/arq and the root hdlc package can both construct and inspect
// it without an import cycle.
//
// Grounded on robotalks-robo.go/pkg/l0/comm/errors.go's shape: sentinel
// errors for simple conditions plus a typed wrapper carrying structured
// detail, matching Go's wrapped-error convention (Unwrap/errors.Is/As).
package errs

import "fmt"

// Kind classifies why a Session call failed.
type Kind int

const (
	// InvalidArgument: empty/nil buffer, buffer larger than reassembly
	// capacity, empty Data payload, or an encode destination too small.
	// Always surfaced to the caller.
	InvalidArgument Kind = iota
	// NoMessage: decode found no complete frame in the current window.
	// Never surfaced; the reader loops and re-reads the transport.
	NoMessage
	// BadData: delimiters were found but the frame was too short or its
	// FCS did not verify. Not surfaced directly; the reader emits a Nack
	// and continues. Only returned if the read loop exits on this state.
	BadData
	// Timeout: the writer exhausted writeTimeout without an Ack/Nack on
	// an attempt. Surfaced only after all retries are exhausted.
	Timeout
	// TransportError: a transport callback returned a non-positive
	// result. Surfaced verbatim.
	TransportError
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case NoMessage:
		return "no message"
	case BadData:
		return "bad data"
	case Timeout:
		return "timeout"
	case TransportError:
		return "transport error"
	default:
		return "unknown"
	}
}

// Error is a taxonomy-tagged session error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hdlc: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	if e.Msg != "" {
		return fmt.Sprintf("hdlc: %s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("hdlc: %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, errs.New(errs.Timeout, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an *Error of the given kind and message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error of the given kind wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}
