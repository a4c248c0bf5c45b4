package hdlc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeByteTransport hands back a fixed byte stream split across however
// many chunks the test supplies, recording every Send.
type fakeByteTransport struct {
	chunks [][]byte
	idx    int
	sent   [][]byte
}

func (f *fakeByteTransport) Send(_ context.Context, data []byte) error {
	f.sent = append(f.sent, append([]byte(nil), data...))
	return nil
}

func (f *fakeByteTransport) Recv(ctx context.Context, buf []byte) (int, error) {
	return f.RecvTimeout(ctx, buf, 0)
}

func (f *fakeByteTransport) RecvTimeout(_ context.Context, buf []byte, _ time.Duration) (int, error) {
	if f.idx >= len(f.chunks) {
		return 0, nil
	}
	chunk := f.chunks[f.idx]
	f.idx++
	return copy(buf, chunk), nil
}

func TestClientLinkConnectSendsSNRMAndExpectsUA(t *testing.T) {
	ua, err := EncodeFrame(Frame{
		Dest:    ClientAddress(0x03),
		Src:     ServerAddress(1, 2),
		Control: UControl{Modifier: UFrameUA, Final: true}.Byte(),
	})
	require.NoError(t, err)

	ft := &fakeByteTransport{chunks: [][]byte{ua}}
	link := NewClientLink(ft, ClientAddress(0x03), ServerAddress(1, 2))

	require.NoError(t, link.Connect(context.Background(), time.Second))
	require.Len(t, ft.sent, 1)

	sentFrame, rest, err := DecodeFrame(ft.sent[0])
	require.NoError(t, err)
	assert.Empty(t, rest)
	ctrl := DecodeControl(sentFrame.Control)
	assert.Equal(t, FrameUnnumbered, ctrl.Type)
	assert.Equal(t, UFrameSNRM, ctrl.U.Modifier)
}

func TestClientLinkConnectRejectsUnexpectedResponse(t *testing.T) {
	dm, err := EncodeFrame(Frame{
		Dest:    ClientAddress(0x03),
		Src:     ServerAddress(1, 2),
		Control: UControl{Modifier: UFrameDM, Final: true}.Byte(),
	})
	require.NoError(t, err)

	ft := &fakeByteTransport{chunks: [][]byte{dm}}
	link := NewClientLink(ft, ClientAddress(0x03), ServerAddress(1, 2))

	require.Error(t, link.Connect(context.Background(), time.Second))
}

func TestClientLinkSendWrapsLLCAndAdvancesSendSeq(t *testing.T) {
	ft := &fakeByteTransport{}
	link := NewClientLink(ft, ClientAddress(0x03), ServerAddress(1, 2))

	require.NoError(t, link.Send(context.Background(), []byte{0xC0, 0x01}))
	require.Len(t, ft.sent, 1)

	frame, _, err := DecodeFrame(ft.sent[0])
	require.NoError(t, err)
	ctrl := DecodeControl(frame.Control)
	require.Equal(t, FrameInformation, ctrl.Type)
	assert.Equal(t, byte(0), ctrl.I.SendSeq)

	payload, _, err := NextMessage([]Frame{frame})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC0, 0x01}, payload)
	assert.Equal(t, byte(1), link.sendSeq)
}

func TestClientLinkRecvReassemblesSingleFrameMessage(t *testing.T) {
	info := append(EncodeLLCHeader(LLCHeader{Response: true}), []byte{0xC4, 0x01}...)
	enc, err := EncodeFrame(Frame{
		Dest:        ClientAddress(0x03),
		Src:         ServerAddress(1, 2),
		Control:     IControl{SendSeq: 0, RecvSeq: 0}.Byte(),
		Information: info,
	})
	require.NoError(t, err)

	ft := &fakeByteTransport{chunks: [][]byte{enc}}
	link := NewClientLink(ft, ClientAddress(0x03), ServerAddress(1, 2))

	buf := make([]byte, 64)
	n, err := link.Recv(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC4, 0x01}, buf[:n])
	assert.Equal(t, byte(1), link.recvSeq)
}

func TestClientLinkRecvAccumulatesPartialBytes(t *testing.T) {
	info := append(EncodeLLCHeader(LLCHeader{Response: true}), []byte{0x01, 0x02, 0x03}...)
	enc, err := EncodeFrame(Frame{
		Dest:        ClientAddress(0x03),
		Src:         ServerAddress(1, 2),
		Control:     IControl{SendSeq: 0, RecvSeq: 0}.Byte(),
		Information: info,
	})
	require.NoError(t, err)
	split := len(enc) / 2

	ft := &fakeByteTransport{chunks: [][]byte{enc[:split], enc[split:]}}
	link := NewClientLink(ft, ClientAddress(0x03), ServerAddress(1, 2))

	buf := make([]byte, 64)
	n, err := link.Recv(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, buf[:n])
}

func TestClientLinkDisconnectSendsDISCAndExpectsUA(t *testing.T) {
	ua, err := EncodeFrame(Frame{
		Dest:    ClientAddress(0x03),
		Src:     ServerAddress(1, 2),
		Control: UControl{Modifier: UFrameUA, Final: true}.Byte(),
	})
	require.NoError(t, err)

	ft := &fakeByteTransport{chunks: [][]byte{ua}}
	link := NewClientLink(ft, ClientAddress(0x03), ServerAddress(1, 2))

	require.NoError(t, link.Disconnect(context.Background(), time.Second))
	frame, _, err := DecodeFrame(ft.sent[0])
	require.NoError(t, err)
	ctrl := DecodeControl(frame.Control)
	assert.Equal(t, UFrameDISC, ctrl.U.Modifier)
}
