package acse

import (
	"github.com/thinkgos/go-dlms-cosem/ber"
	"github.com/thinkgos/go-dlms-cosem/dlms"
)

// ReleaseReason is the RLRQ/RLRE reason field.
type ReleaseReason byte

const (
	ReasonNormal              ReleaseReason = 0
	ReasonUrgent              ReleaseReason = 1
	ReasonUserDefined         ReleaseReason = 2
	ctxReleaseReason          byte          = 0
	ctxReleaseUserInformation byte          = 30
)

// RLRQ is the A-RELEASE request APDU.
type RLRQ struct {
	Reason          ReleaseReason
	UserInformation []byte
}

// Encode renders req as a complete RLRQ APDU (tag 0x62).
func (req RLRQ) Encode() []byte {
	content := ber.WrapImplicitContext(ctxReleaseReason, []byte{byte(req.Reason)})
	if req.UserInformation != nil {
		content = append(content, ber.WrapContext(ctxReleaseUserInformation,
			ber.EncodeOctetString(req.UserInformation))...)
	}
	return ber.Encode(ber.Tag(ber.ClassApplication, true, tagRLRQ), content)
}

// DecodeRLRQ parses a complete RLRQ APDU.
func DecodeRLRQ(b []byte) (RLRQ, error) {
	tag, content, rest, err := ber.Decode(b)
	if err != nil {
		return RLRQ{}, err
	}
	if tag != ber.Tag(ber.ClassApplication, true, tagRLRQ) {
		return RLRQ{}, dlms.Newf(dlms.KindInvalidFormat, "acse: expected RLRQ tag 0x%02X, got 0x%02X", tagRLRQ, tag)
	}
	if len(rest) != 0 {
		return RLRQ{}, dlms.New(dlms.KindInvalidFormat, "acse: trailing bytes after RLRQ")
	}
	var req RLRQ
	buf := content
	for len(buf) > 0 {
		n, payload, next, derr := decodeReleaseField(buf)
		if derr != nil {
			return RLRQ{}, derr
		}
		switch n {
		case ctxReleaseReason:
			if len(payload) != 1 {
				return RLRQ{}, dlms.New(dlms.KindInvalidFormat, "acse: malformed release reason")
			}
			req.Reason = ReleaseReason(payload[0])
		case ctxReleaseUserInformation:
			req.UserInformation = payload
		}
		buf = next
	}
	return req, nil
}

// RLRE is the A-RELEASE response APDU.
type RLRE struct {
	Reason          ReleaseReason
	UserInformation []byte
}

// Encode renders resp as a complete RLRE APDU (tag 0x63).
func (resp RLRE) Encode() []byte {
	content := ber.WrapImplicitContext(ctxReleaseReason, []byte{byte(resp.Reason)})
	if resp.UserInformation != nil {
		content = append(content, ber.WrapContext(ctxReleaseUserInformation,
			ber.EncodeOctetString(resp.UserInformation))...)
	}
	return ber.Encode(ber.Tag(ber.ClassApplication, true, tagRLRE), content)
}

// DecodeRLRE parses a complete RLRE APDU.
func DecodeRLRE(b []byte) (RLRE, error) {
	tag, content, rest, err := ber.Decode(b)
	if err != nil {
		return RLRE{}, err
	}
	if tag != ber.Tag(ber.ClassApplication, true, tagRLRE) {
		return RLRE{}, dlms.Newf(dlms.KindInvalidFormat, "acse: expected RLRE tag 0x%02X, got 0x%02X", tagRLRE, tag)
	}
	if len(rest) != 0 {
		return RLRE{}, dlms.New(dlms.KindInvalidFormat, "acse: trailing bytes after RLRE")
	}
	var resp RLRE
	buf := content
	for len(buf) > 0 {
		n, payload, next, derr := decodeReleaseField(buf)
		if derr != nil {
			return RLRE{}, derr
		}
		switch n {
		case ctxReleaseReason:
			if len(payload) != 1 {
				return RLRE{}, dlms.New(dlms.KindInvalidFormat, "acse: malformed release reason")
			}
			resp.Reason = ReleaseReason(payload[0])
		case ctxReleaseUserInformation:
			resp.UserInformation = payload
		}
		buf = next
	}
	return resp, nil
}

// decodeReleaseField reads one RLRQ/RLRE field, dispatching to implicit
// primitive tagging (reason) or explicit constructed tagging (user-
// information) based on the tag octet's constructed bit.
func decodeReleaseField(b []byte) (n byte, payload []byte, rest []byte, err error) {
	if len(b) < 1 {
		return 0, nil, nil, dlms.New(dlms.KindIncomplete, "acse: release field missing")
	}
	if b[0]&ber.Constructed != 0 {
		ctx, inner, next, derr := ber.DecodeContext(b)
		if derr != nil {
			return 0, nil, nil, derr
		}
		if ctx == ctxReleaseUserInformation {
			ui, _, uerr := ber.DecodeOctetString(inner)
			if uerr != nil {
				return 0, nil, nil, uerr
			}
			return ctx, ui, next, nil
		}
		return ctx, inner, next, nil
	}
	ctx, content, next, derr := ber.DecodeImplicitContext(b)
	if derr != nil {
		return 0, nil, nil, derr
	}
	return ctx, content, next, nil
}
