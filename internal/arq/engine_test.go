package arq

import (
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopherlink/hdlc/internal/errs"
	"github.com/gopherlink/hdlc/internal/wire"
	"github.com/gopherlink/hdlc/transport"
)

// queueTransport hands out ReadInto results from a fixed chunk list, in
// order, and records every WriteFrom call.
type queueTransport struct {
	chunks [][]byte
	idx    int
	writes [][]byte
}

func (q *queueTransport) ReadInto(p []byte) (int, error) {
	if q.idx >= len(q.chunks) {
		return 0, io.EOF
	}
	n := copy(p, q.chunks[q.idx])
	q.idx++
	return n, nil
}

func (q *queueTransport) WriteFrom(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	q.writes = append(q.writes, cp)
	return len(p), nil
}

// countingTransport accepts every write and never yields a readable
// frame, useful for exercising the writer path in isolation.
type countingTransport struct {
	mu sync.Mutex
	n  int
}

func (c *countingTransport) ReadInto(p []byte) (int, error) {
	return 0, io.EOF
}

func (c *countingTransport) WriteFrom(p []byte) (int, error) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
	return len(p), nil
}

func (c *countingTransport) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func encodeFrame(t *testing.T, address byte, kind wire.Kind, seq byte, payload []byte) []byte {
	t.Helper()
	buf := make([]byte, 64)
	n, err := wire.Encode(buf, address, kind, seq, payload)
	require.NoError(t, err)
	return buf[:n]
}

func TestEngineWriteRejectsEmptyPayload(t *testing.T) {
	eng := New(&countingTransport{}, Config{WriteBufferSize: 32})
	_, err := eng.Write(0x01, nil)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.InvalidArgument, e.Kind)
}

func TestEngineReadRejectsEmptyDst(t *testing.T) {
	eng := New(&queueTransport{}, Config{ReadBufferSize: 8, WriteBufferSize: 8})
	_, _, err := eng.Read(nil)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.InvalidArgument, e.Kind)
}

func TestEngineReadRejectsOversizedDst(t *testing.T) {
	eng := New(&queueTransport{}, Config{ReadBufferSize: 8, WriteBufferSize: 8})
	_, _, err := eng.Read(make([]byte, 9))
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.InvalidArgument, e.Kind)
}

func TestEngineWriteFireAndForget(t *testing.T) {
	tr := &countingTransport{}
	eng := New(tr, Config{WriteBufferSize: 32, WriteTimeout: 0})

	n, err := eng.Write(0x01, []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, tr.writeCount())
}

func TestEngineWriteTimesOutAfterExhaustingRetries(t *testing.T) {
	tr := &countingTransport{}
	eng := New(tr, Config{
		WriteBufferSize: 32,
		WriteTimeout:    5 * time.Millisecond,
		WriteRetries:    2,
	})

	_, err := eng.Write(0x01, []byte("x"))
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.Timeout, e.Kind)
	assert.Equal(t, 3, tr.writeCount(), "1 initial attempt + 2 retries")
}

func TestEngineWriteSequenceWraps(t *testing.T) {
	tr := &queueTransport{}
	eng := New(tr, Config{WriteBufferSize: 32, WriteTimeout: 0})

	for i := 0; i < 9; i++ {
		_, err := eng.Write(0x01, []byte{byte(i)})
		require.NoError(t, err)
	}

	dst := make([]byte, 32)
	var seqs []byte
	for _, w := range tr.writes {
		res, _ := wire.Decode(w, dst)
		require.Equal(t, wire.FrameOK, res.Status)
		seqs = append(seqs, res.Seq)
	}
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 0, 1}, seqs)
}

func TestEngineReadAcrossChunkBoundary(t *testing.T) {
	frame := encodeFrame(t, 0x02, wire.KindData, 1, []byte("hey"))
	qt := &queueTransport{chunks: [][]byte{frame[:3], frame[3:]}}
	eng := New(qt, Config{ReadBufferSize: 64, WriteBufferSize: 32, DefaultAddress: 0xff})

	dst := make([]byte, 64)
	n, addr, err := eng.Read(dst)
	require.NoError(t, err)
	assert.Equal(t, "hey", string(dst[:n]))
	assert.EqualValues(t, 0x02, addr)
}

func TestEngineReadRecoversFromFullBufferWithNoFlag(t *testing.T) {
	junk := make([]byte, 16)
	for i := range junk {
		junk[i] = 0x01
	}
	frame := encodeFrame(t, 0x03, wire.KindData, 1, []byte("ok"))

	qt := &queueTransport{chunks: [][]byte{junk, frame}}
	eng := New(qt, Config{ReadBufferSize: 16, WriteBufferSize: 32, DefaultAddress: 0xff})

	dst := make([]byte, 16)
	n, addr, err := eng.Read(dst)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(dst[:n]))
	assert.EqualValues(t, 0x03, addr)
}

func TestEngineReadSuppressesDuplicateBySeq(t *testing.T) {
	dup := encodeFrame(t, 0x04, wire.KindData, 3, []byte("dup"))
	next := encodeFrame(t, 0x04, wire.KindData, 4, []byte("new"))

	qt := &queueTransport{chunks: [][]byte{dup, dup, next}}
	eng := New(qt, Config{ReadBufferSize: 64, WriteBufferSize: 32, DefaultAddress: 0xff, SuppressDuplicates: true})

	dst := make([]byte, 64)
	n, _, err := eng.Read(dst)
	require.NoError(t, err)
	assert.Equal(t, "dup", string(dst[:n]))

	n, _, err = eng.Read(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(dst[:n]), "the retransmitted duplicate must be swallowed, not delivered again")
}

func TestEngineReadWithoutSuppressionDeliversDuplicate(t *testing.T) {
	dup := encodeFrame(t, 0x04, wire.KindData, 3, []byte("dup"))

	qt := &queueTransport{chunks: [][]byte{dup, dup}}
	eng := New(qt, Config{ReadBufferSize: 64, WriteBufferSize: 32, DefaultAddress: 0xff, SuppressDuplicates: false})

	dst := make([]byte, 64)
	for i := 0; i < 2; i++ {
		n, _, err := eng.Read(dst)
		require.NoError(t, err)
		assert.Equal(t, "dup", string(dst[:n]))
	}
}

func TestEngineReadSendsAckOnGoodDataFrame(t *testing.T) {
	frame := encodeFrame(t, 0x06, wire.KindData, 1, []byte("z"))
	qt := &queueTransport{chunks: [][]byte{frame}}
	eng := New(qt, Config{ReadBufferSize: 64, WriteBufferSize: 32, DefaultAddress: 0xff})

	dst := make([]byte, 64)
	_, _, err := eng.Read(dst)
	require.NoError(t, err)

	require.Len(t, qt.writes, 1)
	res, _ := wire.Decode(qt.writes[0], dst)
	require.Equal(t, wire.FrameOK, res.Status)
	assert.Equal(t, wire.KindAck, res.Kind)
}

func TestEngineReadSendsNackOnBadFrame(t *testing.T) {
	corrupt := encodeFrame(t, 0x05, wire.KindData, 2, []byte("x"))
	corrupt[3] ^= 0xff // flip a payload byte, breaking the FCS

	qt := &queueTransport{chunks: [][]byte{corrupt}}
	eng := New(qt, Config{ReadBufferSize: 64, WriteBufferSize: 32, DefaultAddress: 0xff})

	dst := make([]byte, 64)
	_, _, err := eng.Read(dst)
	require.Error(t, err) // no further transport bytes after the bad frame

	require.Len(t, qt.writes, 1)
	res, _ := wire.Decode(qt.writes[0], dst)
	require.Equal(t, wire.FrameOK, res.Status)
	assert.Equal(t, wire.KindNack, res.Kind)
}

// TestEngineWriteRoundTripOverRealPeer wires two Engines back-to-back
// over a net.Pipe, each with its own background Read loop, and checks
// that a Write on one side is delivered on the other and acknowledged
// back, matching how a Session's caller is expected to drive Read and
// Write concurrently.
func TestEngineWriteRoundTripOverRealPeer(t *testing.T) {
	pipeA, pipeB := net.Pipe()
	defer pipeA.Close()
	defer pipeB.Close()

	cfg := Config{
		ReadBufferSize:     64,
		WriteBufferSize:    64,
		WriteTimeout:       200 * time.Millisecond,
		WriteRetries:       2,
		DefaultAddress:     0xff,
		SuppressDuplicates: true,
	}
	engA := New(transport.NewNetConn(pipeA), cfg)
	engB := New(transport.NewNetConn(pipeB), cfg)

	delivered := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 64)
		for {
			n, _, err := engB.Read(buf)
			if err != nil {
				return
			}
			got := make([]byte, n)
			copy(got, buf[:n])
			delivered <- got
		}
	}()
	go func() {
		buf := make([]byte, 64)
		for {
			if _, _, err := engA.Read(buf); err != nil {
				return
			}
		}
	}()

	n, err := engA.Write(0x01, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	select {
	case got := <-delivered:
		assert.Equal(t, []byte("hello"), got)
	case <-time.After(2 * time.Second):
		t.Fatal("payload not delivered to peer")
	}
}
