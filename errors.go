package hdlc

import "github.com/gopherlink/hdlc/internal/errs"

// Error taxonomy re-exported from the internal errs package so callers
// never need to import an internal path to use errors.Is/errors.As
// against Session results.
type (
	// Kind classifies why a Session call failed.
	Kind = errs.Kind
	// Error is a taxonomy-tagged Session error.
	Error = errs.Error
)

// Error kinds, mirroring the wire format's error taxonomy table.
const (
	InvalidArgument = errs.InvalidArgument
	NoMessage       = errs.NoMessage
	BadData         = errs.BadData
	Timeout         = errs.Timeout
	TransportError  = errs.TransportError
)
