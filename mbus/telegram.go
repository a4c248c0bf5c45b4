// Package mbus implements the M-Bus (IEC 62056-21 / EN 13757-2) data-link
// framing DLMS meters expose their wired M-Bus ports through: long-frame
// telegram codec, Control-Information dispatch, and segmented-APDU
// reassembly. The wire-framing half (start/length/checksum/stop) has no
// counterpart in the teacher's IEC 60870-5-104 stack, which speaks TCP
// only; it is modeled after the same encode/decode-pair shape hdlc uses.
package mbus

import "github.com/thinkgos/go-dlms-cosem/dlms"

// Long-frame delimiters (EN 13757-2).
const (
	startByte byte = 0x68
	stopByte  byte = 0x16
)

// Telegram is one decoded M-Bus long frame: control and address octets,
// the Control-Information byte, and the user data it introduces.
type Telegram struct {
	Control           byte
	Address           byte
	ControlInformation byte
	UserData          []byte
}

// EncodeTelegram renders t as a complete long frame: 68 L L 68 C A CI
// data... checksum 16, where L counts C, A, CI and data together.
func EncodeTelegram(t Telegram) []byte {
	l := byte(3 + len(t.UserData))
	buf := make([]byte, 0, 6+len(t.UserData))
	buf = append(buf, startByte, l, l, startByte, t.Control, t.Address, t.ControlInformation)
	buf = append(buf, t.UserData...)
	var sum byte
	for _, b := range buf[4:] {
		sum += b
	}
	buf = append(buf, sum, stopByte)
	return buf
}

// DecodeTelegram reads one long frame from the front of b, validating the
// repeated length field, the checksum, and the stop octet, and returns it
// together with the unconsumed remainder.
func DecodeTelegram(b []byte) (Telegram, []byte, error) {
	if len(b) < 6 {
		return Telegram{}, nil, dlms.New(dlms.KindIncomplete, "mbus: telegram truncated")
	}
	if b[0] != startByte || b[3] != startByte {
		return Telegram{}, nil, dlms.New(dlms.KindInvalidFormat, "mbus: bad start byte")
	}
	l := b[1]
	if b[2] != l {
		return Telegram{}, nil, dlms.New(dlms.KindInvalidFormat, "mbus: length field mismatch")
	}
	if l < 3 {
		return Telegram{}, nil, dlms.New(dlms.KindInvalidFormat, "mbus: length field too small")
	}
	total := 4 + int(l) + 2 // two starts+length already counted in the 4, plus checksum+stop
	if len(b) < total {
		return Telegram{}, nil, dlms.New(dlms.KindIncomplete, "mbus: telegram truncated")
	}
	if b[total-1] != stopByte {
		return Telegram{}, nil, dlms.New(dlms.KindInvalidFormat, "mbus: bad stop byte")
	}

	body := b[4 : total-2] // C A CI data...
	var sum byte
	for _, c := range body {
		sum += c
	}
	if sum != b[total-2] {
		return Telegram{}, nil, dlms.New(dlms.KindChecksumMismatch, "mbus: bad telegram checksum")
	}

	t := Telegram{
		Control:            body[0],
		Address:             body[1],
		ControlInformation: body[2],
		UserData:           append([]byte(nil), body[3:]...),
	}
	return t, b[total:], nil
}
