package acse

import (
	"github.com/thinkgos/go-dlms-cosem/ber"
	"github.com/thinkgos/go-dlms-cosem/dlms"
)

// AARE is the A-ASSOCIATE response APDU: the server's verdict on an AARQ.
type AARE struct {
	ApplicationContextName ApplicationContextName
	Result                 AssociationResult
	ResultSourceDiagnostic AcseServiceUserDiagnostics
	// RespondingAPTitle is the responding server's system title (8 octets),
	// optional: present whenever the server's identity as a ciphering peer
	// needs to travel back to the client in the clear (the AARE itself is
	// never ciphered, only its user-information is).
	RespondingAPTitle   *[8]byte
	MechanismName       *MechanismName
	RespondingAuthValue *AuthenticationValue
	UserInformation     []byte // ciphered or plain InitiateResponse, caller-supplied
}

const ctxAareDiagnosticInner = 1 // acse-service-user CHOICE tag inside result-source-diagnostic

// Encode renders resp as a complete AARE APDU (tag 0x61).
func (resp AARE) Encode() []byte {
	var content []byte
	content = append(content, ber.WrapContext(ctxAppContextName,
		ber.EncodeObjectIdentifier(resp.ApplicationContextName.OIDBytes()))...)
	content = append(content, ber.WrapContext(ctxAareResult,
		ber.EncodeInteger(int64(resp.Result)))...)
	content = append(content, ber.WrapContext(ctxAareResultSourceDiagnostic,
		ber.WrapContext(ctxAareDiagnosticInner, ber.EncodeInteger(int64(resp.ResultSourceDiagnostic))))...)
	if resp.RespondingAPTitle != nil {
		content = append(content, ber.WrapContext(ctxAareRespondingAPTitle,
			ber.EncodeOctetString(resp.RespondingAPTitle[:]))...)
	}
	if resp.MechanismName != nil {
		content = append(content, ber.WrapContext(ctxAareRespondingMechanism,
			ber.EncodeObjectIdentifier(resp.MechanismName.OIDBytes()))...)
	}
	if resp.RespondingAuthValue != nil {
		content = append(content, ber.WrapContext(ctxAareRespondingAuthValue,
			encodeAuthValue(*resp.RespondingAuthValue))...)
	}
	if resp.UserInformation != nil {
		content = append(content, ber.WrapContext(ctxAareUserInformation,
			ber.EncodeOctetString(resp.UserInformation))...)
	}
	return ber.Encode(ber.Tag(ber.ClassApplication, true, tagAARE), content)
}

// DecodeAARE parses a complete AARE APDU.
func DecodeAARE(b []byte) (AARE, error) {
	tag, content, rest, err := ber.Decode(b)
	if err != nil {
		return AARE{}, err
	}
	if tag != ber.Tag(ber.ClassApplication, true, tagAARE) {
		return AARE{}, dlms.Newf(dlms.KindInvalidFormat, "acse: expected AARE tag 0x%02X, got 0x%02X", tagAARE, tag)
	}
	if len(rest) != 0 {
		return AARE{}, dlms.New(dlms.KindInvalidFormat, "acse: trailing bytes after AARE")
	}

	var resp AARE
	buf := content
	for len(buf) > 0 {
		n, inner, next, derr := ber.DecodeContext(buf)
		if derr != nil {
			return AARE{}, derr
		}
		switch n {
		case ctxAppContextName:
			oid, _, oerr := ber.DecodeObjectIdentifier(inner)
			if oerr != nil {
				return AARE{}, oerr
			}
			name, ok := ApplicationContextNameFromOID(oid)
			if !ok {
				return AARE{}, dlms.New(dlms.KindInvalidFormat, "acse: unrecognised application-context-name OID")
			}
			resp.ApplicationContextName = name
		case ctxAareResult:
			v, _, ierr := ber.DecodeInteger(inner)
			if ierr != nil {
				return AARE{}, ierr
			}
			r, rerr := ParseAssociationResult(byte(v))
			if rerr != nil {
				return AARE{}, rerr
			}
			resp.Result = r
		case ctxAareResultSourceDiagnostic:
			_, diagInner, _, derr2 := ber.DecodeContext(inner)
			if derr2 != nil {
				return AARE{}, derr2
			}
			v, _, ierr := ber.DecodeInteger(diagInner)
			if ierr != nil {
				return AARE{}, ierr
			}
			resp.ResultSourceDiagnostic = AcseServiceUserDiagnostics(v)
		case ctxAareRespondingAPTitle:
			title, _, terr := ber.DecodeOctetString(inner)
			if terr != nil {
				return AARE{}, terr
			}
			if len(title) != 8 {
				return AARE{}, dlms.New(dlms.KindInvalidFormat, "acse: responding-AP-title must be 8 octets")
			}
			var arr [8]byte
			copy(arr[:], title)
			resp.RespondingAPTitle = &arr
		case ctxAareRespondingMechanism:
			oid, _, oerr := ber.DecodeObjectIdentifier(inner)
			if oerr != nil {
				return AARE{}, oerr
			}
			m, ok := MechanismNameFromOID(oid)
			if !ok {
				return AARE{}, dlms.New(dlms.KindInvalidFormat, "acse: unrecognised mechanism-name OID")
			}
			resp.MechanismName = &m
		case ctxAareRespondingAuthValue:
			av, aerr := decodeAuthValue(inner)
			if aerr != nil {
				return AARE{}, aerr
			}
			resp.RespondingAuthValue = &av
		case ctxAareUserInformation:
			ui, _, uerr := ber.DecodeOctetString(inner)
			if uerr != nil {
				return AARE{}, uerr
			}
			resp.UserInformation = ui
		}
		buf = next
	}
	return resp, nil
}
