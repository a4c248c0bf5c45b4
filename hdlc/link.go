package hdlc

import (
	"context"
	"time"

	"github.com/thinkgos/go-dlms-cosem/dlms"
	"github.com/thinkgos/go-dlms-cosem/transport"
)

// ClientLink drives an HDLC type-3 link (IEC 62056-46) over a raw
// byte-stream transport.Transport, implementing transport.Transport itself
// so a client can sit on top of either this or a wrapper-mode transport
// without caring which. It frames every outgoing APDU as a single LLC+I
// frame and tracks the N(S)/N(R) sequence numbers the link layer requires;
// it does not attempt segmentation of information fields that would not
// fit in one frame.
type ClientLink struct {
	inner      transport.Transport
	clientAddr Address
	serverAddr Address

	sendSeq byte
	recvSeq byte

	acc    []byte
	frames []Frame
}

// NewClientLink builds a ClientLink over inner, addressed as clientAddr
// talking to serverAddr. Call Connect before Send/Recv.
func NewClientLink(inner transport.Transport, clientAddr, serverAddr Address) *ClientLink {
	return &ClientLink{inner: inner, clientAddr: clientAddr, serverAddr: serverAddr}
}

// Connect performs the SNRM/UA exchange that opens the link, resetting
// both sequence counters to zero.
func (l *ClientLink) Connect(ctx context.Context, timeout time.Duration) error {
	snrm := Frame{Dest: l.serverAddr, Src: l.clientAddr, Control: UControl{Modifier: UFrameSNRM, Final: true}.Byte()}
	if err := l.sendFrame(ctx, snrm); err != nil {
		return err
	}
	frame, err := l.recvFrame(ctx, timeout)
	if err != nil {
		return err
	}
	ctrl := DecodeControl(frame.Control)
	if ctrl.Type != FrameUnnumbered || ctrl.U.Modifier != UFrameUA {
		return dlms.Newf(dlms.KindUnexpectedAPDU, "hdlc: expected UA, got %s", ctrl)
	}
	l.sendSeq, l.recvSeq = 0, 0
	l.frames = nil
	return nil
}

// Disconnect performs the DISC/UA exchange that closes the link. The
// underlying byte stream (e.g. a TCP connection) is left open; closing it
// is the caller's responsibility.
func (l *ClientLink) Disconnect(ctx context.Context, timeout time.Duration) error {
	disc := Frame{Dest: l.serverAddr, Src: l.clientAddr, Control: UControl{Modifier: UFrameDISC, Final: true}.Byte()}
	if err := l.sendFrame(ctx, disc); err != nil {
		return err
	}
	frame, err := l.recvFrame(ctx, timeout)
	if err != nil {
		return err
	}
	ctrl := DecodeControl(frame.Control)
	if ctrl.Type != FrameUnnumbered || ctrl.U.Modifier != UFrameUA {
		return dlms.Newf(dlms.KindUnexpectedAPDU, "hdlc: expected UA, got %s", ctrl)
	}
	return nil
}

func (l *ClientLink) Send(ctx context.Context, apdu []byte) error {
	info := append(EncodeLLCHeader(LLCHeader{}), apdu...)
	ctrl := IControl{SendSeq: l.sendSeq, RecvSeq: l.recvSeq, Segmented: false}
	frame := Frame{Dest: l.serverAddr, Src: l.clientAddr, Control: ctrl.Byte(), Information: info}
	if err := l.sendFrame(ctx, frame); err != nil {
		return err
	}
	l.sendSeq = (l.sendSeq + 1) & 0x07
	return nil
}

func (l *ClientLink) Recv(ctx context.Context, buffer []byte) (int, error) {
	return l.RecvTimeout(ctx, buffer, 0)
}

func (l *ClientLink) RecvTimeout(ctx context.Context, buffer []byte, timeout time.Duration) (int, error) {
	for {
		message, rest, err := NextMessage(l.frames)
		if err == nil {
			l.frames = rest
			if len(message) > len(buffer) {
				return 0, dlms.New(dlms.KindInvalidFormat, "hdlc: reassembled message larger than receive buffer")
			}
			return copy(buffer, message), nil
		}
		if !dlms.Is(err, dlms.KindIncomplete) {
			return 0, err
		}

		frame, err := l.recvFrame(ctx, timeout)
		if err != nil {
			return 0, err
		}
		if ctrl := DecodeControl(frame.Control); ctrl.Type == FrameInformation {
			l.recvSeq = (ctrl.I.SendSeq + 1) & 0x07
		}
		l.frames = append(l.frames, frame)
	}
}

func (l *ClientLink) sendFrame(ctx context.Context, f Frame) error {
	buf, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	return l.inner.Send(ctx, buf)
}

// recvFrame reads and decodes the next complete frame from inner,
// accumulating bytes (and skipping anything before the opening flag) until
// one is available.
func (l *ClientLink) recvFrame(ctx context.Context, timeout time.Duration) (Frame, error) {
	readBuf := make([]byte, MaxFrameLength)
	for {
		for len(l.acc) > 0 && l.acc[0] != Flag {
			l.acc = l.acc[1:]
		}
		if len(l.acc) > 0 {
			frame, rest, err := DecodeFrame(l.acc)
			if err == nil {
				l.acc = rest
				return frame, nil
			}
			if !dlms.Is(err, dlms.KindIncomplete) {
				return Frame{}, err
			}
		}

		var n int
		var err error
		if timeout > 0 {
			n, err = l.inner.RecvTimeout(ctx, readBuf, timeout)
		} else {
			n, err = l.inner.Recv(ctx, readBuf)
		}
		if err != nil {
			return Frame{}, err
		}
		if n == 0 {
			return Frame{}, dlms.New(dlms.KindTransport, "hdlc: connection closed mid-frame")
		}
		l.acc = append(l.acc, readBuf[:n]...)
	}
}
