package transport

import (
	"context"
	"time"

	"github.com/thinkgos/go-dlms-cosem/dlms"
	"github.com/thinkgos/go-dlms-cosem/xdlms"
)

// WrapperTransport layers IEC 62056-47 wrapper-mode framing over any raw
// byte-stream Transport (typically a TCPTransport): every APDU sent is
// prefixed with an 8-octet header carrying a fixed source/destination
// wrapper port pair and the APDU length, and every received datagram is
// reassembled from however many partial reads the inner transport hands
// back before returning the bare APDU to the caller.
type WrapperTransport struct {
	inner      Transport
	sourcePort uint16
	destPort   uint16
	acc        []byte
}

// NewWrapperTransport wraps inner, addressing outgoing datagrams with
// sourcePort/destPort.
func NewWrapperTransport(inner Transport, sourcePort, destPort uint16) *WrapperTransport {
	return &WrapperTransport{inner: inner, sourcePort: sourcePort, destPort: destPort}
}

func (w *WrapperTransport) Send(ctx context.Context, apdu []byte) error {
	return w.inner.Send(ctx, xdlms.EncodeWrapped(w.sourcePort, w.destPort, apdu))
}

func (w *WrapperTransport) Recv(ctx context.Context, buffer []byte) (int, error) {
	return w.recv(ctx, buffer, 0, false)
}

func (w *WrapperTransport) RecvTimeout(ctx context.Context, buffer []byte, timeout time.Duration) (int, error) {
	return w.recv(ctx, buffer, timeout, true)
}

func (w *WrapperTransport) recv(ctx context.Context, buffer []byte, timeout time.Duration, useTimeout bool) (int, error) {
	readBuf := make([]byte, len(buffer))
	for {
		apdu, rest, err := xdlms.DecodeWrapped(w.acc)
		if err == nil {
			if len(apdu) > len(buffer) {
				return 0, dlms.New(dlms.KindInvalidFormat, "transport: wrapper datagram larger than receive buffer")
			}
			n := copy(buffer, apdu)
			w.acc = append([]byte(nil), rest...)
			return n, nil
		}
		if !dlms.Is(err, dlms.KindIncomplete) {
			return 0, err
		}

		var n int
		if useTimeout {
			n, err = w.inner.RecvTimeout(ctx, readBuf, timeout)
		} else {
			n, err = w.inner.Recv(ctx, readBuf)
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, dlms.New(dlms.KindTransport, "transport: connection closed mid-datagram")
		}
		w.acc = append(w.acc, readBuf[:n]...)
	}
}
