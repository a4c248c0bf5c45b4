// Package xdlms implements the xDLMS application-layer service set: the
// InitiateRequest/InitiateResponse carried inside ACSE user-information,
// GET/SET/ACTION requests and responses including block transfer, and the
// ciphered-APDU (glo-/ded-) framing shared between association and
// in-session services.
package xdlms

import (
	"encoding/binary"

	"github.com/thinkgos/go-dlms-cosem/acse"
	"github.com/thinkgos/go-dlms-cosem/dlms"
)

// DLMSVersion is the proposed/negotiated DLMS protocol version.
const DLMSVersion uint8 = 6

// InitiateRequest is the xDLMS service carried in the AARQ user-information
// field (Green Book Table 134).
type InitiateRequest struct {
	DedicatedKey             []byte // nil if absent
	ResponseAllowed          bool
	ProposedQualityOfService *uint8 // nil if absent
	ProposedDLMSVersion      uint8
	ProposedConformance      acse.Conformance
	ClientMaxReceivePDUSize  uint16
}

// NewInitiateRequest builds a typical InitiateRequest proposing conformance
// and response_allowed=true, dlms-version 6.
func NewInitiateRequest(conformance acse.Conformance, maxPDUSize uint16) InitiateRequest {
	return InitiateRequest{
		ResponseAllowed:         true,
		ProposedDLMSVersion:     DLMSVersion,
		ProposedConformance:     conformance,
		ClientMaxReceivePDUSize: maxPDUSize,
	}
}

// Encode renders req as an A-XDR octet string, ready to place verbatim (or
// ciphered) in an AARQ's user-information field.
func (req InitiateRequest) Encode() []byte {
	var buf []byte
	if req.DedicatedKey != nil {
		buf = append(buf, 0x01, byte(len(req.DedicatedKey)))
		buf = append(buf, req.DedicatedKey...)
	} else {
		buf = append(buf, 0x00)
	}

	if req.ResponseAllowed {
		buf = append(buf, 0x01)
	} else {
		buf = append(buf, 0x00)
	}

	if req.ProposedQualityOfService != nil {
		buf = append(buf, 0x01, *req.ProposedQualityOfService)
	} else {
		buf = append(buf, 0x00)
	}

	buf = append(buf, req.ProposedDLMSVersion)

	confBytes := req.ProposedConformance.Bytes()
	buf = append(buf, confBytes[:]...)

	var pduBytes [2]byte
	binary.BigEndian.PutUint16(pduBytes[:], req.ClientMaxReceivePDUSize)
	buf = append(buf, pduBytes[:]...)

	return buf
}

// ParseInitiateRequest parses an A-XDR-encoded InitiateRequest.
func ParseInitiateRequest(b []byte) (InitiateRequest, error) {
	var req InitiateRequest
	p := b
	if len(p) < 1 {
		return InitiateRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: InitiateRequest truncated")
	}
	if p[0] != 0 {
		p = p[1:]
		if len(p) < 1 {
			return InitiateRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: dedicated-key length missing")
		}
		n := int(p[0])
		p = p[1:]
		if len(p) < n {
			return InitiateRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: dedicated-key truncated")
		}
		req.DedicatedKey = append([]byte(nil), p[:n]...)
		p = p[n:]
	} else {
		p = p[1:]
	}

	if len(p) < 1 {
		return InitiateRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: response-allowed missing")
	}
	req.ResponseAllowed = p[0] != 0
	p = p[1:]

	if len(p) < 1 {
		return InitiateRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: quality-of-service presence missing")
	}
	if p[0] != 0 {
		p = p[1:]
		if len(p) < 1 {
			return InitiateRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: quality-of-service value missing")
		}
		qos := p[0]
		req.ProposedQualityOfService = &qos
		p = p[1:]
	} else {
		p = p[1:]
	}

	if len(p) < 1+3+2 {
		return InitiateRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: InitiateRequest tail truncated")
	}
	req.ProposedDLMSVersion = p[0]
	p = p[1:]
	req.ProposedConformance = acse.ConformanceFromBytes([3]byte{p[0], p[1], p[2]})
	p = p[3:]
	req.ClientMaxReceivePDUSize = binary.BigEndian.Uint16(p)
	p = p[2:]

	if len(p) != 0 {
		return InitiateRequest{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after InitiateRequest")
	}
	return req, nil
}

// InitiateResponse is the xDLMS service carried in the AARE user-information
// field (Green Book Table 135).
type InitiateResponse struct {
	NegotiatedQualityOfService *uint8
	NegotiatedDLMSVersion      uint8
	NegotiatedConformance      acse.Conformance
	ServerMaxReceivePDUSize    uint16
	VAAName                    uint16
}

// NewInitiateResponse builds a typical InitiateResponse.
func NewInitiateResponse(conformance acse.Conformance, maxPDUSize, vaaName uint16) InitiateResponse {
	return InitiateResponse{
		NegotiatedDLMSVersion:   DLMSVersion,
		NegotiatedConformance:   conformance,
		ServerMaxReceivePDUSize: maxPDUSize,
		VAAName:                 vaaName,
	}
}

// Encode renders resp as an A-XDR octet string.
func (resp InitiateResponse) Encode() []byte {
	var buf []byte
	if resp.NegotiatedQualityOfService != nil {
		buf = append(buf, 0x01, *resp.NegotiatedQualityOfService)
	} else {
		buf = append(buf, 0x00)
	}

	buf = append(buf, resp.NegotiatedDLMSVersion)

	confBytes := resp.NegotiatedConformance.Bytes()
	buf = append(buf, confBytes[:]...)

	var pduBytes, vaaBytes [2]byte
	binary.BigEndian.PutUint16(pduBytes[:], resp.ServerMaxReceivePDUSize)
	binary.BigEndian.PutUint16(vaaBytes[:], resp.VAAName)
	buf = append(buf, pduBytes[:]...)
	buf = append(buf, vaaBytes[:]...)

	return buf
}

// ParseInitiateResponse parses an A-XDR-encoded InitiateResponse.
func ParseInitiateResponse(b []byte) (InitiateResponse, error) {
	var resp InitiateResponse
	p := b
	if len(p) < 1 {
		return InitiateResponse{}, dlms.New(dlms.KindIncomplete, "xdlms: quality-of-service presence missing")
	}
	if p[0] != 0 {
		p = p[1:]
		if len(p) < 1 {
			return InitiateResponse{}, dlms.New(dlms.KindIncomplete, "xdlms: quality-of-service value missing")
		}
		qos := p[0]
		resp.NegotiatedQualityOfService = &qos
		p = p[1:]
	} else {
		p = p[1:]
	}

	if len(p) < 1+3+2+2 {
		return InitiateResponse{}, dlms.New(dlms.KindIncomplete, "xdlms: InitiateResponse tail truncated")
	}
	resp.NegotiatedDLMSVersion = p[0]
	p = p[1:]
	resp.NegotiatedConformance = acse.ConformanceFromBytes([3]byte{p[0], p[1], p[2]})
	p = p[3:]
	resp.ServerMaxReceivePDUSize = binary.BigEndian.Uint16(p)
	p = p[2:]
	resp.VAAName = binary.BigEndian.Uint16(p)
	p = p[2:]

	if len(p) != 0 {
		return InitiateResponse{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after InitiateResponse")
	}
	return resp, nil
}
