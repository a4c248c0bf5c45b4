package hdlc

import "github.com/thinkgos/go-dlms-cosem/dlms"

// LLC header octets: destination/source service access points plus a
// quality byte that must always be zero. Present only on the first
// segment of a (possibly segmented) HDLC information field.
const (
	llcUnicastAddr   byte = 0xE6
	llcBroadcastAddr byte = 0xFF
	llcCommandAddr   byte = 0xE6
	llcResponseAddr  byte = 0xE7
	llcQuality       byte = 0x00
)

// LLCHeader identifies direction and message kind of an HDLC information
// field.
type LLCHeader struct {
	Broadcast bool
	Response  bool
}

// clientToServerLLC and serverToClientLLC are the fixed LLC triplets the
// DLMS HDLC profile uses.
var (
	clientToServerLLC = []byte{llcUnicastAddr, llcCommandAddr, llcQuality}
	serverToClientLLC = []byte{llcUnicastAddr, llcResponseAddr, llcQuality}
	broadcastLLC      = []byte{llcUnicastAddr, llcBroadcastAddr, llcQuality}
)

// EncodeLLCHeader renders h as its fixed three-octet triplet.
func EncodeLLCHeader(h LLCHeader) []byte {
	switch {
	case h.Broadcast:
		return append([]byte(nil), broadcastLLC...)
	case h.Response:
		return append([]byte(nil), serverToClientLLC...)
	default:
		return append([]byte(nil), clientToServerLLC...)
	}
}

// DecodeLLCHeader reads the fixed three-octet LLC triplet from the front
// of b and returns its direction, plus the unconsumed remainder.
func DecodeLLCHeader(b []byte) (LLCHeader, []byte, error) {
	if len(b) < 3 {
		return LLCHeader{}, nil, dlms.New(dlms.KindIncomplete, "hdlc: LLC header truncated")
	}
	destLSAP, srcLSAP, quality := b[0], b[1], b[2]
	if quality != llcQuality {
		return LLCHeader{}, nil, dlms.New(dlms.KindInvalidFormat, "hdlc: LLC quality byte must be zero")
	}
	var h LLCHeader
	if destLSAP != llcUnicastAddr {
		return LLCHeader{}, nil, dlms.Newf(dlms.KindInvalidFormat, "hdlc: unrecognised LLC destination LSAP 0x%02X", destLSAP)
	}
	switch srcLSAP {
	case llcCommandAddr:
		h.Response = false
	case llcResponseAddr:
		h.Response = true
	case llcBroadcastAddr:
		h.Broadcast = true
	default:
		return LLCHeader{}, nil, dlms.Newf(dlms.KindInvalidFormat, "hdlc: unrecognised LLC source LSAP 0x%02X", srcLSAP)
	}
	return h, b[3:], nil
}
