package hdlc

import "github.com/thinkgos/go-dlms-cosem/dlms"

// Address is an HDLC type-3 address field value. The wire encoding is
// variable-length: each octet carries 7 value bits in its high bits and a
// continuation marker in its LSB (0 = more octets follow, 1 = this is the
// last octet). Width records how many octets EncodeAddress emits, since the
// same numeric value encodes differently at 1, 2, or 4 octets.
type Address struct {
	Value uint32
	Width int // 1, 2, or 4
}

// ClientAddress builds the one-octet client address HDLC requires (range
// 1-127 as per the default numeric parameters).
func ClientAddress(v byte) Address {
	return Address{Value: uint32(v), Width: 1}
}

// ServerAddress builds a server address of the given width (1, 2, or 4
// octets). A 4-octet address conventionally splits Value into a 14-bit
// logical device address (high bits) and a 14-bit physical device address
// (low bits); EncodeAddress does not interpret that split, it only emits
// the requested number of 7-bit groups.
func ServerAddress(v uint32, width int) Address {
	return Address{Value: v, Width: width}
}

// EncodeAddress renders a as its variable-length wire form.
func EncodeAddress(a Address) ([]byte, error) {
	switch a.Width {
	case 1:
		if a.Value > 0x7F {
			return nil, dlms.New(dlms.KindInvalidFormat, "hdlc: 1-octet address value out of range")
		}
		return []byte{byte(a.Value<<1) | 1}, nil
	case 2:
		if a.Value > 0x3FFF {
			return nil, dlms.New(dlms.KindInvalidFormat, "hdlc: 2-octet address value out of range")
		}
		return []byte{
			byte((a.Value >> 7) << 1),
			byte(a.Value<<1) | 1,
		}, nil
	case 4:
		if a.Value > 0x0FFFFFFF {
			return nil, dlms.New(dlms.KindInvalidFormat, "hdlc: 4-octet address value out of range")
		}
		return []byte{
			byte((a.Value >> 21) << 1),
			byte((a.Value >> 14) << 1),
			byte((a.Value >> 7) << 1),
			byte(a.Value<<1) | 1,
		}, nil
	default:
		return nil, dlms.Newf(dlms.KindInvalidFormat, "hdlc: unsupported address width %d", a.Width)
	}
}

// DecodeAddress reads a variable-length address from the front of b,
// scanning octets until one with a set LSB terminates the field (at most 4
// octets, per the engine's accepted 1/2/4-octet widths). Returns the
// decoded address and the unconsumed remainder.
func DecodeAddress(b []byte) (Address, []byte, error) {
	var value uint32
	for i := 0; i < 4; i++ {
		if i >= len(b) {
			return Address{}, nil, dlms.New(dlms.KindIncomplete, "hdlc: address field truncated")
		}
		octet := b[i]
		value = value<<7 | uint32(octet>>1)
		if octet&1 != 0 {
			width := i + 1
			if width == 3 {
				return Address{}, nil, dlms.New(dlms.KindInvalidFormat, "hdlc: 3-octet address not supported")
			}
			return Address{Value: value, Width: width}, b[width:], nil
		}
	}
	return Address{}, nil, dlms.New(dlms.KindInvalidFormat, "hdlc: address field exceeds 4 octets")
}
