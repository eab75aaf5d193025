package arq

import "sync/atomic"

// writeOutcome is the tri-state atomic cell the reader publishes to and
// the writer polls, matching the original source's
// std::atomic<int> writeResult with acquire/release semantics sufficient
// for publication.
type writeOutcome int32

const (
	outcomeNone writeOutcome = iota
	outcomeAck
	outcomeNack
)

// outcomeCell is a tri-state atomic wrapper around writeOutcome.
type outcomeCell struct {
	v atomic.Int32
}

func (c *outcomeCell) store(o writeOutcome) {
	c.v.Store(int32(o))
}

func (c *outcomeCell) load() writeOutcome {
	return writeOutcome(c.v.Load())
}
