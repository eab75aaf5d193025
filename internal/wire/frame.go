package wire

import "errors"

// ErrInvalidArgument is returned when Encode's destination would
// overflow, or a Data frame is asked to carry an empty payload.
var ErrInvalidArgument = errors.New("wire: invalid argument")

// Status is the outcome of a Decode attempt.
type Status int

const (
	// NoFrame means no complete frame was found in the window yet; the
	// caller must retain the buffer and read more transport bytes.
	NoFrame Status = iota
	// BadFrame means delimiters were found but the frame was too short
	// or its FCS did not verify.
	BadFrame
	// FrameOK means a complete, intact frame was decoded.
	FrameOK
)

// Result is the outcome of a single Decode call.
type Result struct {
	Status  Status
	Kind    Kind
	Seq     byte
	Address byte
	// Payload aliases the caller-supplied dst slice passed to Decode; it
	// is only meaningful when Status == FrameOK, and is nil for Ack and
	// Nack frames.
	Payload []byte
}

// Encode writes a full framed byte sequence (Flag..Flag, escaped) for
// (address, kind, seq, payload) into dst and returns the number of bytes
// written. It fails with ErrInvalidArgument if dst is too small at any
// step, or if kind is KindData and payload is empty.
func Encode(dst []byte, address byte, kind Kind, seq byte, payload []byte) (int, error) {
	if kind == KindData && len(payload) == 0 {
		return 0, ErrInvalidArgument
	}

	n := 0
	if n >= len(dst) {
		return 0, ErrInvalidArgument
	}
	dst[n] = Flag
	n++

	fcs := InitFCS

	fcs = updateFCS(fcs, address)
	var ok bool
	if n, ok = appendEscaped(dst, n, address); !ok {
		return 0, ErrInvalidArgument
	}

	control := encodeControl(kind, seq)
	fcs = updateFCS(fcs, control)
	if n, ok = appendEscaped(dst, n, control); !ok {
		return 0, ErrInvalidArgument
	}

	if kind == KindData {
		for _, b := range payload {
			fcs = updateFCS(fcs, b)
			if n, ok = appendEscaped(dst, n, b); !ok {
				return 0, ErrInvalidArgument
			}
		}
	}

	fcs ^= 0xffff
	lo, hi := byte(fcs&0xff), byte(fcs>>8)
	if n, ok = appendEscaped(dst, n, lo); !ok {
		return 0, ErrInvalidArgument
	}
	if n, ok = appendEscaped(dst, n, hi); !ok {
		return 0, ErrInvalidArgument
	}

	if n >= len(dst) {
		return 0, ErrInvalidArgument
	}
	dst[n] = Flag
	n++

	return n, nil
}

// Decode scans window from left to right looking for one complete frame,
// writing any payload bytes (followed by the two trailing FCS bytes,
// which the caller should ignore) into dst starting at index 0.
//
// It returns the decode Result and the number of bytes consumed from
// window. On NoFrame, consumed is always 0 and the caller must retain
// the entire window. On BadFrame or FrameOK, consumed bytes up to and
// including the closing Flag must be dropped from the window regardless
// of outcome.
func Decode(window []byte, dst []byte) (Result, int) {
	frameStart := -1
	frameStop := -1
	escapePending := false
	fcs := InitFCS
	destIdx := 0

	var res Result

	i := 0
	for ; i < len(window); i++ {
		b := window[i]

		if frameStart < 0 {
			if b == Flag {
				if i+1 < len(window) && window[i+1] == Flag {
					// Run of idle flags: keep scanning, only the last
					// one not followed by another flag can start a frame.
					continue
				}
				frameStart = i
			}
			continue
		}

		if b == Flag {
			// Closing flag. A flag immediately following frameStart can
			// never reach here: it would have been consumed as filler
			// by the pre-start scan above.
			frameStop = i
			break
		}

		if b == Escape {
			escapePending = true
			continue
		}

		val := b
		if escapePending {
			val ^= xorBit
			escapePending = false
		}
		fcs = updateFCS(fcs, val)

		switch bodyPos := i - frameStart - 1; {
		case bodyPos == 0:
			res.Address = val
		case bodyPos == 1:
			res.Kind, res.Seq = decodeControl(val)
		default:
			if destIdx < len(dst) {
				dst[destIdx] = val
			}
			destIdx++
		}
	}

	if frameStart < 0 || frameStop < 0 {
		return Result{Status: NoFrame}, 0
	}

	consumed := frameStop + 1

	if frameStop-frameStart >= 4 && fcs == GoodFCS {
		n := destIdx - 2 // drop the trailing FCS bytes
		if n < 0 {
			n = 0
		}
		if n > len(dst) {
			n = len(dst)
		}
		res.Status = FrameOK
		if res.Kind == KindData {
			res.Payload = dst[:n]
		}
		return res, consumed
	}

	return Result{Status: BadFrame, Kind: res.Kind}, consumed
}
