package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkgos/go-dlms-cosem/xdlms"
)

// chunkedTransport hands back a fixed byte stream split across however many
// chunks the test supplies, to exercise WrapperTransport's accumulation
// loop against partial reads.
type chunkedTransport struct {
	chunks [][]byte
	idx    int
	sent   [][]byte
}

func (c *chunkedTransport) Send(_ context.Context, data []byte) error {
	c.sent = append(c.sent, append([]byte(nil), data...))
	return nil
}

func (c *chunkedTransport) Recv(ctx context.Context, buf []byte) (int, error) {
	return c.RecvTimeout(ctx, buf, 0)
}

func (c *chunkedTransport) RecvTimeout(_ context.Context, buf []byte, _ time.Duration) (int, error) {
	if c.idx >= len(c.chunks) {
		return 0, nil
	}
	chunk := c.chunks[c.idx]
	c.idx++
	return copy(buf, chunk), nil
}

func TestWrapperTransportSendFramesDatagram(t *testing.T) {
	inner := &chunkedTransport{}
	w := NewWrapperTransport(inner, 1, 16)

	require.NoError(t, w.Send(context.Background(), []byte{0xC0, 0x01}))
	require.Len(t, inner.sent, 1)
	assert.Equal(t, xdlms.EncodeWrapped(1, 16, []byte{0xC0, 0x01}), inner.sent[0])
}

func TestWrapperTransportRecvAssemblesSplitDatagram(t *testing.T) {
	datagram := xdlms.EncodeWrapped(16, 1, []byte{0xC4, 0x01, 0x02, 0x03})
	split := len(datagram) / 2
	inner := &chunkedTransport{chunks: [][]byte{datagram[:split], datagram[split:]}}
	w := NewWrapperTransport(inner, 16, 1)

	buf := make([]byte, 64)
	n, err := w.Recv(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC4, 0x01, 0x02, 0x03}, buf[:n])
}

func TestWrapperTransportRecvLeavesTrailingDatagramForNextCall(t *testing.T) {
	first := xdlms.EncodeWrapped(16, 1, []byte{0x01})
	second := xdlms.EncodeWrapped(16, 1, []byte{0x02})
	inner := &chunkedTransport{chunks: [][]byte{append(append([]byte(nil), first...), second...)}}
	w := NewWrapperTransport(inner, 16, 1)

	buf := make([]byte, 64)
	n, err := w.Recv(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, buf[:n])

	n, err = w.Recv(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02}, buf[:n])
}

func TestWrapperTransportRecvRejectsDatagramLargerThanBuffer(t *testing.T) {
	datagram := xdlms.EncodeWrapped(16, 1, []byte{0x01, 0x02, 0x03, 0x04})
	inner := &chunkedTransport{chunks: [][]byte{datagram}}
	w := NewWrapperTransport(inner, 16, 1)

	buf := make([]byte, 2)
	_, err := w.Recv(context.Background(), buf)
	require.Error(t, err)
}
