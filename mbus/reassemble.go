package mbus

import "github.com/thinkgos/go-dlms-cosem/dlms"

// stsapLen is the two leading octets (source/destination service access
// point) every segment of a segmented APDU carries ahead of its payload
// slice.
const stsapLen = 2

// unsegmentedHeaderLen is the access-number, status, and configuration-word
// octets every unsegmented frame carries, present regardless of header
// length.
const unsegmentedHeaderLen = 3

// longHeaderLen is the manufacturer id, version, and device type octets a
// long unsegmented header additionally carries ahead of unsegmentedHeaderLen.
const longHeaderLen = 3

// NextMessage consumes telegrams from the front of frames and returns one
// reassembled APDU: either the payload of a single unsegmented telegram, or
// the concatenation of a segmented run. Segmented runs are checked against
// a modulo-16 expected-segment counter starting at zero; a telegram whose
// segment number does not match aborts with checksum-mismatch.
func NextMessage(frames []Telegram) ([]byte, []Telegram, error) {
	if len(frames) == 0 {
		return nil, nil, dlms.New(dlms.KindIncomplete, "mbus: no telegrams available")
	}

	ci, err := ParseControlInformation(frames[0].ControlInformation)
	if err != nil {
		return nil, nil, err
	}

	if !ci.Segmented {
		data := frames[0].UserData
		if ci.Header == HeaderLong {
			if len(data) < longHeaderLen {
				return nil, nil, dlms.New(dlms.KindIncomplete, "mbus: unsegmented long header truncated")
			}
			data = data[longHeaderLen:]
		}
		if len(data) < unsegmentedHeaderLen {
			return nil, nil, dlms.New(dlms.KindIncomplete, "mbus: unsegmented transport header truncated")
		}
		data = data[unsegmentedHeaderLen:]
		return append([]byte(nil), data...), frames[1:], nil
	}

	var message []byte
	expected := byte(0)
	consumed := 0
	for _, t := range frames[consumed:] {
		segCI, err := ParseControlInformation(t.ControlInformation)
		if err != nil {
			return nil, nil, err
		}
		if !segCI.Segmented {
			return nil, nil, dlms.New(dlms.KindInvalidFormat, "mbus: unsegmented telegram interrupts segmented run")
		}
		if segCI.Segment != expected {
			return nil, nil, dlms.New(dlms.KindChecksumMismatch, "mbus: out-of-sequence segment number")
		}
		if len(t.UserData) < stsapLen {
			return nil, nil, dlms.New(dlms.KindIncomplete, "mbus: segment user data truncated")
		}
		message = append(message, t.UserData[stsapLen:]...)
		consumed++
		expected = (expected + 1) & 0x0F

		if segCI.LastSegment {
			return message, frames[consumed:], nil
		}
	}
	return nil, nil, dlms.New(dlms.KindIncomplete, "mbus: segmented message incomplete")
}
