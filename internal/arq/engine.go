// Package arq implements the Session / ARQ engine: TX and RX sequence
// counters, the tri-state write-result cell, the stopped flag, and the
// blocking read and write loops built on top of internal/wire and
// internal/reassembly.
//
// Ownership is partitioned exactly as the concurrency model requires:
// the reader goroutine owns readBuf, rxSeq and the duplicate-suppression
// state; the writer (serialized by writerLock) owns scratch and txSeq;
// both sides only ever touch the atomic result cell and the stopped
// flag.
package arq

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopherlink/hdlc/internal/errs"
	"github.com/gopherlink/hdlc/internal/reassembly"
	"github.com/gopherlink/hdlc/internal/wire"
	"github.com/gopherlink/hdlc/transport"
)

// ackFrameMaxLen bounds the largest possible escaped Ack/Nack frame
// (Flag, 2-byte-escaped address, 2-byte-escaped control, two
// 2-byte-escaped FCS bytes, Flag): 1+2+2+2+2+1 = 10 bytes, rounded up
// to 16.
const ackFrameMaxLen = 16

// Config carries the construction-time parameters of an Engine, mirrored
// 1:1 from the wire format's configuration table.
type Config struct {
	ReadBufferSize     int
	WriteBufferSize    int
	WriteTimeout       time.Duration
	WriteRetries       int
	DefaultAddress     byte
	SuppressDuplicates bool
}

// Engine is the Session / ARQ engine.
type Engine struct {
	transport transport.Transport

	// Reader-owned.
	readBuf           *reassembly.Buffer
	rxSeq             byte
	lastDeliveredSeq  byte
	haveLastDelivered bool
	lastErr           error
	ackBuf            [ackFrameMaxLen]byte

	// Writer-owned (guarded by writerLock).
	writerLock sync.Mutex
	scratch    []byte
	txSeq      byte

	// Shared.
	result  outcomeCell
	stopped atomic.Bool

	writeTimeout       time.Duration
	writeRetries       int
	defaultAddress     byte
	suppressDuplicates bool
}

// New constructs an Engine over t.
func New(t transport.Transport, cfg Config) *Engine {
	return &Engine{
		transport:          t,
		readBuf:            reassembly.New(cfg.ReadBufferSize),
		scratch:            make([]byte, cfg.WriteBufferSize),
		writeTimeout:       cfg.WriteTimeout,
		writeRetries:       cfg.WriteRetries,
		defaultAddress:     cfg.DefaultAddress,
		suppressDuplicates: cfg.SuppressDuplicates,
	}
}

// Close marks the session stopped; the reader loop exits at its next
// iteration boundary once the in-flight transport read (if any) returns.
func (e *Engine) Close() {
	e.stopped.Store(true)
}

// Read blocks until a data payload is delivered, a transport error
// occurs, or the engine is stopped. Exactly one goroutine may call Read
// at a time.
func (e *Engine) Read(dst []byte) (n int, address byte, err error) {
	if len(dst) == 0 {
		return 0, 0, errs.New(errs.InvalidArgument, "dst must not be empty")
	}
	if len(dst) > e.readBuf.Capacity() {
		return 0, 0, errs.New(errs.InvalidArgument, "dst larger than reassembly capacity")
	}

	for {
		if e.stopped.Load() {
			return 0, 0, e.terminalError()
		}

		var res wire.Result
		var consumed int
		decoded := false
		if e.readBuf.Len() > 0 {
			res, consumed = wire.Decode(e.readBuf.Data(), dst)
			decoded = true
		}

		if !decoded || res.Status == wire.NoFrame {
			if e.readBuf.Full() {
				// No complete frame fits in a completely full window;
				// nothing productive can come from retaining it.
				e.readBuf.Clear()
			}
			tail := e.readBuf.UnusedTail()
			if len(tail) == 0 {
				e.readBuf.Clear()
				tail = e.readBuf.UnusedTail()
			}
			m, rerr := e.transport.ReadInto(tail)
			if m <= 0 {
				if rerr == nil {
					rerr = io.EOF
				}
				werr := errs.Wrap(errs.TransportError, "transport read", rerr)
				e.lastErr = werr
				e.stopped.Store(true)
				return 0, 0, werr
			}
			e.readBuf.AppendTail(m)
			res, consumed = wire.Decode(e.readBuf.Data(), dst)
		}

		if consumed > 0 {
			e.readBuf.ErasePrefix(consumed)
		}

		switch res.Status {
		case wire.FrameOK:
			switch res.Kind {
			case wire.KindData:
				e.rxSeq = (e.rxSeq + 1) & 0x7
				e.sendSupervisory(res.Address, wire.KindAck, e.rxSeq)
				if e.suppressDuplicates && e.haveLastDelivered && res.Seq == e.lastDeliveredSeq {
					continue // swallow the replay, keep looking for new data
				}
				e.haveLastDelivered = true
				e.lastDeliveredSeq = res.Seq
				return len(res.Payload), res.Address, nil
			case wire.KindAck:
				e.result.store(outcomeAck)
			case wire.KindNack:
				e.result.store(outcomeNack)
			}
		case wire.BadFrame:
			e.lastErr = errs.New(errs.BadData, "fcs mismatch or short frame")
			if res.Kind == wire.KindData {
				e.sendSupervisory(e.defaultAddress, wire.KindNack, e.rxSeq)
			}
		}
		// wire.NoFrame, or a supervisory/bad frame just handled: keep
		// looping for more transport bytes.
	}
}

func (e *Engine) terminalError() error {
	if e.lastErr != nil {
		return e.lastErr
	}
	return errs.New(errs.TransportError, "session closed")
}

func (e *Engine) sendSupervisory(address byte, kind wire.Kind, seq byte) {
	n, err := wire.Encode(e.ackBuf[:], address, kind, seq, nil)
	if err != nil {
		return // ackBuf is sized generously; encode of a payload-less frame cannot overflow
	}
	_, _ = e.transport.WriteFrom(e.ackBuf[:n])
}

// Write is safe for concurrent use; concurrent callers are serialized by
// writerLock so no frame's bytes are ever interleaved with another's.
func (e *Engine) Write(address byte, payload []byte) (int, error) {
	if len(payload) == 0 {
		return 0, errs.New(errs.InvalidArgument, "payload must not be empty")
	}

	e.writerLock.Lock()
	defer e.writerLock.Unlock()

	e.txSeq = (e.txSeq + 1) & 0x7

	attempts := 1 + e.writeRetries
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		e.result.store(outcomeNone)

		n, encErr := wire.Encode(e.scratch, address, wire.KindData, e.txSeq, payload)
		if encErr != nil {
			return 0, errs.Wrap(errs.InvalidArgument, "encode data frame", encErr)
		}
		if _, werr := e.transport.WriteFrom(e.scratch[:n]); werr != nil {
			return 0, errs.Wrap(errs.TransportError, "transport write", werr)
		}

		if e.writeTimeout <= 0 {
			return len(payload), nil // fire-and-forget
		}

		switch outcome := e.pollResult(e.writeTimeout); outcome {
		case outcomeAck:
			return len(payload), nil
		case outcomeNack:
			lastErr = errs.New(errs.BadData, "nack received")
		default:
			lastErr = errs.New(errs.Timeout, "no ack/nack within writeTimeout")
		}
	}

	return 0, lastErr
}

// pollResult polls the tri-state result cell once per millisecond for up
// to timeout, returning as soon as an Ack or Nack is published.
func (e *Engine) pollResult(timeout time.Duration) writeOutcome {
	iterations := timeout / time.Millisecond
	if iterations <= 0 {
		iterations = 1
	}
	for i := time.Duration(0); i < iterations; i++ {
		if o := e.result.load(); o != outcomeNone {
			return o
		}
		time.Sleep(time.Millisecond)
	}
	return outcomeNone
}
