package xdlms

import (
	"encoding/binary"

	"github.com/thinkgos/go-dlms-cosem/axdr"
	"github.com/thinkgos/go-dlms-cosem/dlms"
	"github.com/thinkgos/go-dlms-cosem/security"
)

// Plain xDLMS tags not otherwise exported by this package: the
// InitiateRequest/InitiateResponse tags prefixing those APDUs when carried
// unciphered in ACSE user-information (Green Book Table 111).
const (
	TagInitiateRequest  byte = 0x01
	TagInitiateResponse byte = 0x08
)

// Global-ciphering ("glo-") and dedicated-ciphering ("ded-") tags, Green
// Book Table 111. The ciphering scheme is identical either way (AES-GCM
// per security.Seal/Open); only the tag byte and, at the caller's
// discretion, the key used differ.
const (
	gloInitiateRequest  byte = 0x21
	gloInitiateResponse byte = 0x28
	gloGetRequest       byte = 0xC8
	gloGetResponse      byte = 0xCC
	gloSetRequest       byte = 0xC9
	gloSetResponse      byte = 0xCD
	gloActionRequest    byte = 0xCA
	gloActionResponse   byte = 0xCE

	dedInitiateRequest  byte = 0x41
	dedInitiateResponse byte = 0x48
	dedGetRequest       byte = 0xD8
	dedGetResponse      byte = 0xDC
	dedSetRequest       byte = 0xD9
	dedSetResponse      byte = 0xDD
	dedActionRequest    byte = 0xDA
	dedActionResponse   byte = 0xDE
)

var plainToGlo = map[byte]byte{
	TagInitiateRequest:  gloInitiateRequest,
	TagInitiateResponse: gloInitiateResponse,
	TagGetRequest:       gloGetRequest,
	TagGetResponse:      gloGetResponse,
	TagSetRequest:       gloSetRequest,
	TagSetResponse:      gloSetResponse,
	TagActionRequest:    gloActionRequest,
	TagActionResponse:   gloActionResponse,
}

var gloToPlain = reverseTagMap(plainToGlo)

var plainToDed = map[byte]byte{
	TagInitiateRequest:  dedInitiateRequest,
	TagInitiateResponse: dedInitiateResponse,
	TagGetRequest:       dedGetRequest,
	TagGetResponse:      dedGetResponse,
	TagSetRequest:       dedSetRequest,
	TagSetResponse:      dedSetResponse,
	TagActionRequest:    dedActionRequest,
	TagActionResponse:   dedActionResponse,
}

var dedToPlain = reverseTagMap(plainToDed)

func reverseTagMap(m map[byte]byte) map[byte]byte {
	r := make(map[byte]byte, len(m))
	for k, v := range m {
		r[v] = k
	}
	return r
}

// WrapGlobalCiphering rewrites plainAPDU (a complete, tagged xDLMS APDU,
// e.g. TagInitiateRequest‖InitiateRequest.Encode()) into its glo-<service>
// ciphered form: tag ‖ A-XDR length ‖ security-control ‖ invocation-counter
// ‖ AEAD output.
func WrapGlobalCiphering(c security.Control, key, authenticationKey []byte, systemTitle [8]byte, invocationCounter uint32, plainAPDU []byte) ([]byte, error) {
	return wrapCiphered(plainToGlo, c, key, authenticationKey, systemTitle, invocationCounter, plainAPDU)
}

// WrapDedicatedCiphering is WrapGlobalCiphering's ded-<service> counterpart.
func WrapDedicatedCiphering(c security.Control, key, authenticationKey []byte, systemTitle [8]byte, invocationCounter uint32, plainAPDU []byte) ([]byte, error) {
	return wrapCiphered(plainToDed, c, key, authenticationKey, systemTitle, invocationCounter, plainAPDU)
}

func wrapCiphered(tags map[byte]byte, c security.Control, key, authenticationKey []byte, systemTitle [8]byte, invocationCounter uint32, plainAPDU []byte) ([]byte, error) {
	if len(plainAPDU) < 1 {
		return nil, dlms.New(dlms.KindInvalidFormat, "xdlms: empty plain APDU")
	}
	cipherTag, ok := tags[plainAPDU[0]]
	if !ok {
		return nil, dlms.Newf(dlms.KindInvalidFormat, "xdlms: no ciphered tag for plain tag 0x%02X", plainAPDU[0])
	}
	protected, err := security.Seal(c, key, authenticationKey, systemTitle, invocationCounter, plainAPDU)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, 0, 5+len(protected))
	payload = append(payload, c.Byte())
	var counterBytes [4]byte
	binary.BigEndian.PutUint32(counterBytes[:], invocationCounter)
	payload = append(payload, counterBytes[:]...)
	payload = append(payload, protected...)

	out := append([]byte{cipherTag}, axdr.EncodeOctetStringRaw(payload)...)
	return out, nil
}

// UnwrapCiphered reads one glo-/ded- ciphered APDU from the front of b,
// decrypts/verifies it with key and authenticationKey, and returns the
// recovered plain (tagged) APDU, the invocation counter it was sealed
// under (callers must check this against their own Counter.Accept before
// trusting the content: AEAD verification alone proves integrity of this
// one message, not freshness against a replay of an older one), and the
// unconsumed remainder.
func UnwrapCiphered(key, authenticationKey []byte, systemTitle [8]byte, b []byte) (plainAPDU []byte, rest []byte, invocationCounter uint32, err error) {
	if len(b) < 1 {
		return nil, nil, 0, dlms.New(dlms.KindIncomplete, "xdlms: ciphered APDU truncated")
	}
	cipherTag := b[0]
	var expectedPlain byte
	var ok bool
	if expectedPlain, ok = gloToPlain[cipherTag]; !ok {
		if expectedPlain, ok = dedToPlain[cipherTag]; !ok {
			return nil, nil, 0, dlms.Newf(dlms.KindInvalidFormat, "xdlms: unrecognised ciphered tag 0x%02X", cipherTag)
		}
	}

	payload, rest, err := axdr.DecodeOctetStringRaw(b[1:])
	if err != nil {
		return nil, nil, 0, err
	}
	if len(payload) < 5 {
		return nil, nil, 0, dlms.New(dlms.KindIncomplete, "xdlms: ciphered payload truncated")
	}
	c := security.ParseControl(payload[0])
	invocationCounter = binary.BigEndian.Uint32(payload[1:5])
	protected := payload[5:]

	plainAPDU, err = security.Open(c, key, authenticationKey, systemTitle, invocationCounter, protected)
	if err != nil {
		return nil, nil, 0, err
	}
	if len(plainAPDU) < 1 || plainAPDU[0] != expectedPlain {
		return nil, nil, 0, dlms.New(dlms.KindInvalidFormat, "xdlms: decrypted APDU tag does not match ciphered tag")
	}
	return plainAPDU, rest, invocationCounter, nil
}
