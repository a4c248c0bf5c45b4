package hdlc

import "github.com/thinkgos/go-dlms-cosem/dlms"

// NextMessage consumes consecutive frames from the front of frames,
// stripping the LLC header carried by the first frame and concatenating
// information fields across a segmented run until a frame with Segmented
// false closes it. Returns the reassembled APDU and the remaining,
// unconsumed frames.
func NextMessage(frames []Frame) ([]byte, []Frame, error) {
	if len(frames) == 0 {
		return nil, nil, dlms.New(dlms.KindIncomplete, "hdlc: no frames available")
	}

	_, payload, err := DecodeLLCHeader(frames[0].Information)
	if err != nil {
		return nil, nil, err
	}

	if !frames[0].Segmented {
		return append([]byte(nil), payload...), frames[1:], nil
	}

	message := append([]byte(nil), payload...)
	consumed := 1
	for _, f := range frames[1:] {
		message = append(message, f.Information...)
		consumed++
		if !f.Segmented {
			return message, frames[consumed:], nil
		}
	}
	return nil, nil, dlms.New(dlms.KindIncomplete, "hdlc: segmented message incomplete")
}
