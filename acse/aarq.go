package acse

import (
	"github.com/thinkgos/go-dlms-cosem/ber"
	"github.com/thinkgos/go-dlms-cosem/dlms"
)

const (
	tagAARQ = 0x60
	tagAARE = 0x61
	tagRLRQ = 0x62
	tagRLRE = 0x63

	ctxProtocolVersion       = 0
	ctxAppContextName        = 1
	ctxCalledAPTitle         = 2
	ctxCallingAPTitle        = 6
	ctxSenderAcseRequirements = 10
	ctxMechanismName         = 11
	ctxCallingAuthValue      = 12
	ctxImplementationInfo    = 29
	ctxUserInformation       = 30

	ctxAareResult                = 2
	ctxAareResultSourceDiagnostic = 3
	ctxAareRespondingAPTitle     = 4
	ctxAareRespondingAEQualifier = 5
	ctxAareRespondingAcseReq     = 10
	ctxAareRespondingMechanism   = 11
	ctxAareRespondingAuthValue   = 12
	ctxAareUserInformation       = 30

	protocolVersionDefault byte = 0x80

	// VAANameLN and VAANameSN are the fixed xDLMS initiate service VAA
	// names carried inside the AARQ/AARE user-information field.
	VAANameLN uint16 = 0x0007
	VAANameSN uint16 = 0x0001
)

// AARQ is the A-ASSOCIATE request APDU: the client's association proposal.
type AARQ struct {
	// IncludeProtocolVersion, when true, emits the explicit protocol-version
	// BIT STRING (one bit, value 1). ACSE defines this field DEFAULT
	// version1, so it is legal (and common) to omit it.
	IncludeProtocolVersion  bool
	ApplicationContextName  ApplicationContextName
	// CallingAPTitle is the calling client's system title (8 octets),
	// optional: most meters associate without it, but a ciphered
	// association typically carries it so the server knows which system
	// title to use as AAD/nonce input for anything it ciphers back.
	CallingAPTitle          *[8]byte
	MechanismName           *MechanismName
	CallingAuthValue        *AuthenticationValue
	UserInformation         []byte // ciphered or plain InitiateRequest, caller-supplied
}

// Encode renders req as a complete AARQ APDU (tag 0x60).
func (req AARQ) Encode() []byte {
	var content []byte
	if req.IncludeProtocolVersion {
		content = append(content, ber.WrapContext(ctxProtocolVersion,
			ber.EncodeBitString(1, []byte{protocolVersionDefault}))...)
	}
	content = append(content, ber.WrapContext(ctxAppContextName,
		ber.EncodeObjectIdentifier(req.ApplicationContextName.OIDBytes()))...)
	if req.CallingAPTitle != nil {
		content = append(content, ber.WrapContext(ctxCallingAPTitle,
			ber.EncodeOctetString(req.CallingAPTitle[:]))...)
	}
	if req.MechanismName != nil {
		content = append(content, ber.WrapContext(ctxMechanismName,
			ber.EncodeObjectIdentifier(req.MechanismName.OIDBytes()))...)
	}
	if req.CallingAuthValue != nil {
		content = append(content, ber.WrapContext(ctxCallingAuthValue,
			encodeAuthValue(*req.CallingAuthValue))...)
	}
	if req.UserInformation != nil {
		content = append(content, ber.WrapContext(ctxUserInformation,
			ber.EncodeOctetString(req.UserInformation))...)
	}
	return ber.Encode(ber.Tag(ber.ClassApplication, true, tagAARQ), content)
}

// DecodeAARQ parses a complete AARQ APDU.
func DecodeAARQ(b []byte) (AARQ, error) {
	tag, content, rest, err := ber.Decode(b)
	if err != nil {
		return AARQ{}, err
	}
	if tag != ber.Tag(ber.ClassApplication, true, tagAARQ) {
		return AARQ{}, dlms.Newf(dlms.KindInvalidFormat, "acse: expected AARQ tag 0x%02X, got 0x%02X", tagAARQ, tag)
	}
	if len(rest) != 0 {
		return AARQ{}, dlms.New(dlms.KindInvalidFormat, "acse: trailing bytes after AARQ")
	}

	var req AARQ
	buf := content
	for len(buf) > 0 {
		n, inner, next, derr := ber.DecodeContext(buf)
		if derr != nil {
			return AARQ{}, derr
		}
		switch n {
		case ctxProtocolVersion:
			req.IncludeProtocolVersion = true
		case ctxAppContextName:
			oid, _, oerr := ber.DecodeObjectIdentifier(inner)
			if oerr != nil {
				return AARQ{}, oerr
			}
			name, ok := ApplicationContextNameFromOID(oid)
			if !ok {
				return AARQ{}, dlms.New(dlms.KindInvalidFormat, "acse: unrecognised application-context-name OID")
			}
			req.ApplicationContextName = name
		case ctxCallingAPTitle:
			title, _, terr := ber.DecodeOctetString(inner)
			if terr != nil {
				return AARQ{}, terr
			}
			if len(title) != 8 {
				return AARQ{}, dlms.New(dlms.KindInvalidFormat, "acse: calling-AP-title must be 8 octets")
			}
			var arr [8]byte
			copy(arr[:], title)
			req.CallingAPTitle = &arr
		case ctxMechanismName:
			oid, _, oerr := ber.DecodeObjectIdentifier(inner)
			if oerr != nil {
				return AARQ{}, oerr
			}
			m, ok := MechanismNameFromOID(oid)
			if !ok {
				return AARQ{}, dlms.New(dlms.KindInvalidFormat, "acse: unrecognised mechanism-name OID")
			}
			req.MechanismName = &m
		case ctxCallingAuthValue:
			av, aerr := decodeAuthValue(inner)
			if aerr != nil {
				return AARQ{}, aerr
			}
			req.CallingAuthValue = &av
		case ctxUserInformation:
			ui, _, uerr := ber.DecodeOctetString(inner)
			if uerr != nil {
				return AARQ{}, uerr
			}
			req.UserInformation = ui
		}
		buf = next
	}
	return req, nil
}

// authValue CHOICE tags, per ACSE-1 AuthenticationValue definition.
const (
	tagAuthCharString byte = 0x80
	tagAuthBitString  byte = 0x81
)

func encodeAuthValue(v AuthenticationValue) []byte {
	if v.IsBitString {
		content := append([]byte{0}, v.Bytes...)
		return ber.Encode(tagAuthBitString, content)
	}
	return ber.Encode(tagAuthCharString, v.Bytes)
}

func decodeAuthValue(b []byte) (AuthenticationValue, error) {
	tag, content, _, err := ber.Decode(b)
	if err != nil {
		return AuthenticationValue{}, err
	}
	switch tag {
	case tagAuthCharString:
		return AuthenticationValue{IsBitString: false, Bytes: content}, nil
	case tagAuthBitString:
		if len(content) < 1 {
			return AuthenticationValue{}, dlms.New(dlms.KindInvalidFormat, "acse: empty authentication-value bit string")
		}
		return AuthenticationValue{IsBitString: true, Bytes: content[1:]}, nil
	default:
		return AuthenticationValue{}, dlms.Newf(dlms.KindInvalidFormat, "acse: unrecognised authentication-value tag 0x%02X", tag)
	}
}
