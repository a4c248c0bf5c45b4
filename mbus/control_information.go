package mbus

import "github.com/thinkgos/go-dlms-cosem/dlms"

// HeaderType distinguishes the two unsegmented transport-header shapes.
type HeaderType int

const (
	HeaderShort HeaderType = iota
	HeaderLong
)

// Direction is the M-Bus master/slave direction implied by an unsegmented
// Control-Information value.
type Direction int

const (
	DirectionMasterSlave Direction = iota
	DirectionSlaveMaster
)

// ControlInformation is the decoded meaning of a telegram's CI byte: either
// one segment of a segmented DLMS APDU, or a complete unsegmented APDU
// framed by a short or long transport header.
type ControlInformation struct {
	Segmented bool

	// Valid when Segmented is true.
	Segment     byte
	LastSegment bool

	// Valid when Segmented is false.
	Header    HeaderType
	Direction Direction
}

// ParseControlInformation classifies a telegram's CI octet.
func ParseControlInformation(ci byte) (ControlInformation, error) {
	switch {
	case ci <= 0x1F:
		return ControlInformation{
			Segmented:   true,
			Segment:     ci & 0x0F,
			LastSegment: ci&0x10 != 0,
		}, nil
	case ci == 0x60:
		return ControlInformation{Header: HeaderLong, Direction: DirectionMasterSlave}, nil
	case ci == 0x61:
		return ControlInformation{Header: HeaderShort, Direction: DirectionMasterSlave}, nil
	case ci == 0x7C:
		return ControlInformation{Header: HeaderLong, Direction: DirectionSlaveMaster}, nil
	case ci == 0x7D:
		return ControlInformation{Header: HeaderShort, Direction: DirectionSlaveMaster}, nil
	default:
		return ControlInformation{}, dlms.Newf(dlms.KindInvalidFormat, "mbus: unrecognised control information 0x%02X", ci)
	}
}
