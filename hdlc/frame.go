package hdlc

import "github.com/thinkgos/go-dlms-cosem/dlms"

// Flag delimits every HDLC frame.
const Flag byte = 0x7E

// formatType3 is the high nibble of the two-octet format field: type-3
// frame format (ISO/IEC 13239), the only format DLMS HDLC uses.
const formatType3 byte = 0xA0

// MaxFrameLength is the largest value the 11-bit format length field can
// hold.
const MaxFrameLength = 0x7FF

// Frame is one decoded HDLC type-3 frame: format/length handled
// transparently by Encode/Decode, dest/src addresses, the raw control
// octet, and the information field (nil when the frame carries no
// information, e.g. a pure S/U control frame).
type Frame struct {
	Dest        Address
	Src         Address
	Control     byte
	Information []byte
	Segmented   bool
}

// EncodeFrame renders f as a complete flag-delimited HDLC frame, computing
// HCS (present only when an information field is carried) and FCS.
func EncodeFrame(f Frame) ([]byte, error) {
	destBytes, err := EncodeAddress(f.Dest)
	if err != nil {
		return nil, err
	}
	srcBytes, err := EncodeAddress(f.Src)
	if err != nil {
		return nil, err
	}

	header := make([]byte, 0, len(destBytes)+len(srcBytes)+1)
	header = append(header, destBytes...)
	header = append(header, srcBytes...)
	header = append(header, f.Control)

	hasInfo := len(f.Information) > 0
	total := 2 + len(header) // format + header
	if hasInfo {
		total += 2 + len(f.Information) // HCS + information
	}
	total += 2 // FCS
	if total > MaxFrameLength {
		return nil, dlms.Newf(dlms.KindInvalidFormat, "hdlc: frame too large (%d bytes)", total)
	}

	var segBit byte
	if f.Segmented {
		segBit = 1
	}
	formatHi := formatType3 | (segBit << 3) | byte((total>>8)&0x07)
	formatLo := byte(total & 0xFF)

	buf := make([]byte, 0, total+2)
	buf = append(buf, Flag, formatHi, formatLo)
	buf = append(buf, header...)
	if hasInfo {
		hcs := checksum(buf[1:])
		buf = append(buf, byte(hcs), byte(hcs>>8))
		buf = append(buf, f.Information...)
	}
	fcs := checksum(buf[1:])
	buf = append(buf, byte(fcs), byte(fcs>>8))
	buf = append(buf, Flag)
	return buf, nil
}

// DecodeFrame reads one flag-delimited HDLC frame from the front of b,
// validating HCS and FCS, and returns it together with the unconsumed
// remainder.
func DecodeFrame(b []byte) (Frame, []byte, error) {
	if len(b) < 1 || b[0] != Flag {
		return Frame{}, nil, dlms.New(dlms.KindInvalidFormat, "hdlc: bad flag")
	}
	if len(b) < 3 {
		return Frame{}, nil, dlms.New(dlms.KindIncomplete, "hdlc: frame format truncated")
	}
	if b[1]&0xF0 != formatType3 {
		return Frame{}, nil, dlms.New(dlms.KindInvalidFormat, "hdlc: not a type-3 frame")
	}
	segmented := b[1]&0x08 != 0
	length := int(b[1]&0x07)<<8 | int(b[2])
	totalLen := 1 + length + 1
	if len(b) < totalLen {
		return Frame{}, nil, dlms.New(dlms.KindIncomplete, "hdlc: frame truncated")
	}
	if b[totalLen-1] != Flag {
		return Frame{}, nil, dlms.New(dlms.KindInvalidFormat, "hdlc: bad closing flag")
	}

	frame := b[1 : totalLen-1] // format(2) + header + [HCS(2)] + [info] + FCS(2)
	if len(frame) < 4 {
		return Frame{}, nil, dlms.New(dlms.KindIncomplete, "hdlc: frame too short")
	}
	fcsGot := uint16(frame[len(frame)-2]) | uint16(frame[len(frame)-1])<<8
	fcsWant := checksum(frame[:len(frame)-2])
	if fcsGot != fcsWant {
		return Frame{}, nil, dlms.New(dlms.KindChecksumMismatch, "hdlc: bad FCS")
	}

	body := frame[2 : len(frame)-2] // header + [HCS] + [info]
	dest, rem, err := DecodeAddress(body)
	if err != nil {
		return Frame{}, nil, err
	}
	src, rem, err := DecodeAddress(rem)
	if err != nil {
		return Frame{}, nil, err
	}
	if len(rem) < 1 {
		return Frame{}, nil, dlms.New(dlms.KindIncomplete, "hdlc: control field missing")
	}
	control := rem[0]
	rem = rem[1:]
	headerLen := len(body) - len(rem)

	var info []byte
	if len(rem) > 0 {
		if len(rem) < 2 {
			return Frame{}, nil, dlms.New(dlms.KindIncomplete, "hdlc: HCS missing")
		}
		hcsGot := uint16(rem[0]) | uint16(rem[1])<<8
		hcsWant := checksum(frame[:2+headerLen])
		if hcsGot != hcsWant {
			return Frame{}, nil, dlms.New(dlms.KindChecksumMismatch, "hdlc: bad HCS")
		}
		info = rem[2:]
	}

	return Frame{
		Dest:        dest,
		Src:         src,
		Control:     control,
		Information: info,
		Segmented:   segmented,
	}, b[totalLen:], nil
}
