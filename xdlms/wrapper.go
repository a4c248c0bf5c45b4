package xdlms

import (
	"encoding/binary"

	"github.com/thinkgos/go-dlms-cosem/dlms"
)

// WrapperHeaderLen is the fixed size of a wrapper-mode header (IEC 62056-47).
const WrapperHeaderLen = 8

// WrapperVersion is the only defined wrapper protocol version.
const WrapperVersion uint16 = 1

// WrapperHeader prefixes every APDU sent over a TCP "wrapper" mode
// transport: no HDLC framing, just this 8-octet header followed by the
// APDU bytes, the payload length repeated in Length.
type WrapperHeader struct {
	Version         uint16
	SourceWPort     uint16
	DestinationWPort uint16
	Length          uint16
}

// Encode renders h as its 8 big-endian octets.
func (h WrapperHeader) Encode() []byte {
	buf := make([]byte, WrapperHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], h.Version)
	binary.BigEndian.PutUint16(buf[2:4], h.SourceWPort)
	binary.BigEndian.PutUint16(buf[4:6], h.DestinationWPort)
	binary.BigEndian.PutUint16(buf[6:8], h.Length)
	return buf
}

// DecodeWrapperHeader reads the 8-octet header from the front of b and
// returns it together with the unconsumed remainder.
func DecodeWrapperHeader(b []byte) (WrapperHeader, []byte, error) {
	if len(b) < WrapperHeaderLen {
		return WrapperHeader{}, nil, dlms.New(dlms.KindIncomplete, "xdlms: wrapper header truncated")
	}
	h := WrapperHeader{
		Version:          binary.BigEndian.Uint16(b[0:2]),
		SourceWPort:      binary.BigEndian.Uint16(b[2:4]),
		DestinationWPort: binary.BigEndian.Uint16(b[4:6]),
		Length:           binary.BigEndian.Uint16(b[6:8]),
	}
	if h.Version != WrapperVersion {
		return WrapperHeader{}, nil, dlms.Newf(dlms.KindInvalidFormat, "xdlms: unsupported wrapper version %d", h.Version)
	}
	return h, b[WrapperHeaderLen:], nil
}

// EncodeWrapped builds a complete wrapper-mode datagram: header with
// Length set to len(apdu), followed by apdu itself.
func EncodeWrapped(sourceWPort, destWPort uint16, apdu []byte) []byte {
	h := WrapperHeader{
		Version:          WrapperVersion,
		SourceWPort:      sourceWPort,
		DestinationWPort: destWPort,
		Length:           uint16(len(apdu)),
	}
	buf := h.Encode()
	return append(buf, apdu...)
}

// DecodeWrapped reads one complete wrapper-mode datagram (header + APDU)
// from the front of b, failing with KindIncomplete if the declared length
// is not yet fully available, and returns the APDU plus the unconsumed
// remainder.
func DecodeWrapped(b []byte) ([]byte, []byte, error) {
	h, rest, err := DecodeWrapperHeader(b)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) < int(h.Length) {
		return nil, nil, dlms.New(dlms.KindIncomplete, "xdlms: wrapper payload truncated")
	}
	return rest[:h.Length], rest[h.Length:], nil
}
