// Package ber implements the small subset of ASN.1 BER (ISO/IEC 8825-1)
// needed to frame the ACSE AARQ/AARE/RLRQ/RLRE APDUs: tag/length/value
// primitives with definite-length encoding only, plus OCTET STRING,
// INTEGER, OBJECT IDENTIFIER, and BIT STRING helpers.
package ber

import (
	"github.com/thinkgos/go-dlms-cosem/dlms"
)

// BER tag classes, placed in the top two bits of the tag octet.
const (
	ClassUniversal       byte = 0x00
	ClassApplication     byte = 0x40
	ClassContextSpecific byte = 0x80
	ClassPrivate         byte = 0xC0
)

// Constructed marks bit 6 of the tag octet.
const Constructed byte = 0x20

// Universal tag numbers used by the primitives below.
const (
	TagBoolean        byte = 0x01
	TagInteger        byte = 0x02
	TagBitString      byte = 0x03
	TagOctetString    byte = 0x04
	TagObjectIdentifier byte = 0x06
)

// longFormMarker is the low-tag-number value (0b11111) signalling the
// multi-octet tag-number form.
const longFormMarker byte = 0x1F

// Tag builds a single-octet tag for a tag number in 0..30. Use TagLong for
// numbers >= 31.
func Tag(class byte, constructed bool, number byte) byte {
	b := class
	if constructed {
		b |= Constructed
	}
	return b | (number & 0x1F)
}

// TagLong builds a long-form tag: one class/constructed octet with the
// low-tag-number field set to 0x1F, followed by the tag number as base-128
// octets, most significant first, continuation bit set on all but the last.
func TagLong(class byte, constructed bool, number int) []byte {
	head := class | longFormMarker
	if constructed {
		head |= Constructed
	}
	var numOctets []byte
	if number == 0 {
		numOctets = []byte{0}
	}
	for v := number; v > 0; v >>= 7 {
		numOctets = append([]byte{byte(v & 0x7F)}, numOctets...)
	}
	for i := 0; i < len(numOctets)-1; i++ {
		numOctets[i] |= 0x80
	}
	return append([]byte{head}, numOctets...)
}

// EncodeLength renders n as a definite-length BER length field: one octet
// < 0x80 for n < 128, otherwise a long form with the minimal number of
// big-endian length octets.
func EncodeLength(n int) []byte {
	if n < 0x80 {
		return []byte{byte(n)}
	}
	var octets []byte
	for v := n; v > 0; v >>= 8 {
		octets = append([]byte{byte(v)}, octets...)
	}
	return append([]byte{0x80 | byte(len(octets))}, octets...)
}

// DecodeLength reads a definite-length BER length field from b, returning
// the decoded length and the number of octets consumed. Indefinite length
// (0x80) and non-minimal long forms (a leading zero octet, or a long form
// that could have been expressed in short form) are rejected.
func DecodeLength(b []byte) (int, int, error) {
	if len(b) < 1 {
		return 0, 0, dlms.New(dlms.KindIncomplete, "ber: length octet missing")
	}
	first := b[0]
	if first&0x80 == 0 {
		return int(first), 1, nil
	}
	n := int(first &^ 0x80)
	if n == 0 {
		return 0, 0, dlms.New(dlms.KindInvalidFormat, "ber: indefinite length is not used")
	}
	if n > 4 {
		return 0, 0, dlms.New(dlms.KindInvalidFormat, "ber: length field too wide")
	}
	if len(b) < 1+n {
		return 0, 0, dlms.New(dlms.KindIncomplete, "ber: length octets truncated")
	}
	if b[1] == 0x00 && n > 1 {
		return 0, 0, dlms.New(dlms.KindInvalidFormat, "ber: non-minimal length (leading zero octet)")
	}
	length := 0
	for i := 0; i < n; i++ {
		length = length<<8 | int(b[1+i])
	}
	if length < 0x80 {
		return 0, 0, dlms.New(dlms.KindInvalidFormat, "ber: non-minimal length (should use short form)")
	}
	return length, 1 + n, nil
}

// Encode wraps content as a single-octet-tag TLV.
func Encode(tag byte, content []byte) []byte {
	out := append([]byte{tag}, EncodeLength(len(content))...)
	return append(out, content...)
}

// Decode reads one single-octet-tag TLV from the front of b, returning the
// tag, the content, and the unconsumed remainder.
func Decode(b []byte) (tag byte, content []byte, rest []byte, err error) {
	if len(b) < 1 {
		return 0, nil, nil, dlms.New(dlms.KindIncomplete, "ber: tag octet missing")
	}
	if b[0]&0x1F == 0x1F {
		return 0, nil, nil, dlms.New(dlms.KindInvalidFormat, "ber: long-form tag number not supported here")
	}
	tag = b[0]
	n, used, lerr := DecodeLength(b[1:])
	if lerr != nil {
		return 0, nil, nil, lerr
	}
	start := 1 + used
	if len(b) < start+n {
		return 0, nil, nil, dlms.New(dlms.KindIncomplete, "ber: value truncated")
	}
	return tag, b[start : start+n], b[start+n:], nil
}

// EncodeOctetString wraps b as a universal-class OCTET STRING TLV.
func EncodeOctetString(b []byte) []byte { return Encode(TagOctetString, b) }

// DecodeOctetString parses a universal-class OCTET STRING TLV.
func DecodeOctetString(b []byte) ([]byte, []byte, error) {
	tag, content, rest, err := Decode(b)
	if err != nil {
		return nil, nil, err
	}
	if tag != TagOctetString {
		return nil, nil, dlms.Newf(dlms.KindInvalidFormat, "ber: expected OCTET STRING tag 0x%02X, got 0x%02X", TagOctetString, tag)
	}
	return content, rest, nil
}

// EncodeInteger renders v as a minimal two's-complement INTEGER TLV.
func EncodeInteger(v int64) []byte {
	content := minimalTwosComplement(v)
	return Encode(TagInteger, content)
}

// DecodeInteger parses an INTEGER TLV into an int64.
func DecodeInteger(b []byte) (int64, []byte, error) {
	tag, content, rest, err := Decode(b)
	if err != nil {
		return 0, nil, err
	}
	if tag != TagInteger {
		return 0, nil, dlms.Newf(dlms.KindInvalidFormat, "ber: expected INTEGER tag 0x%02X, got 0x%02X", TagInteger, tag)
	}
	if len(content) == 0 {
		return 0, nil, dlms.New(dlms.KindInvalidFormat, "ber: empty INTEGER content")
	}
	v := int64(int8(content[0]))
	for _, c := range content[1:] {
		v = v<<8 | int64(c)
	}
	return v, rest, nil
}

func minimalTwosComplement(v int64) []byte {
	if v >= -128 && v <= 127 {
		return []byte{byte(v)}
	}
	var b []byte
	for v != 0 && v != -1 {
		b = append([]byte{byte(v)}, b...)
		v >>= 8
	}
	if len(b) == 0 || (v == 0 && b[0]&0x80 != 0) || (v == -1 && b[0]&0x80 == 0) {
		sign := byte(0x00)
		if v == -1 {
			sign = 0xFF
		}
		b = append([]byte{sign}, b...)
	}
	return b
}

// EncodeObjectIdentifier wraps already-DER-encoded OID bytes as an OBJECT
// IDENTIFIER TLV. DLMS application-context-name and mechanism-name OIDs are
// carried as the fixed byte arrays defined by the standard, so no
// subidentifier arithmetic is needed here.
func EncodeObjectIdentifier(oidBytes []byte) []byte { return Encode(TagObjectIdentifier, oidBytes) }

// DecodeObjectIdentifier parses an OBJECT IDENTIFIER TLV, returning its raw
// encoded bytes.
func DecodeObjectIdentifier(b []byte) ([]byte, []byte, error) {
	tag, content, rest, err := Decode(b)
	if err != nil {
		return nil, nil, err
	}
	if tag != TagObjectIdentifier {
		return nil, nil, dlms.Newf(dlms.KindInvalidFormat, "ber: expected OBJECT IDENTIFIER tag 0x%02X, got 0x%02X", TagObjectIdentifier, tag)
	}
	return content, rest, nil
}

// EncodeBitString wraps numBits bits (packed MSB-first in bits) as a BIT
// STRING TLV, including the leading unused-bits-count octet.
func EncodeBitString(numBits int, bits []byte) []byte {
	nbytes := (numBits + 7) / 8
	unused := byte(nbytes*8 - numBits)
	content := append([]byte{unused}, bits...)
	return Encode(TagBitString, content)
}

// DecodeBitString parses a BIT STRING TLV into its bit count and packed
// octets.
func DecodeBitString(b []byte) (numBits int, bits []byte, rest []byte, err error) {
	tag, content, rest, err := Decode(b)
	if err != nil {
		return 0, nil, nil, err
	}
	if tag != TagBitString {
		return 0, nil, nil, dlms.Newf(dlms.KindInvalidFormat, "ber: expected BIT STRING tag 0x%02X, got 0x%02X", TagBitString, tag)
	}
	if len(content) < 1 {
		return 0, nil, nil, dlms.New(dlms.KindInvalidFormat, "ber: empty BIT STRING content")
	}
	unused := int(content[0])
	packed := content[1:]
	numBits = len(packed)*8 - unused
	return numBits, packed, rest, nil
}

// WrapContext builds an explicit context-specific constructed TLV: tag
// 0xA0+n wrapping inner, the universal-tagged encoding of the field's
// underlying type. n must be in 0..30.
func WrapContext(n byte, inner []byte) []byte {
	return Encode(Tag(ClassContextSpecific, true, n), inner)
}

// DecodeContext reads an explicit context-specific constructed TLV,
// returning its context number and inner content.
func DecodeContext(b []byte) (n byte, inner []byte, rest []byte, err error) {
	tag, content, rest, err := Decode(b)
	if err != nil {
		return 0, nil, nil, err
	}
	if tag&0xE0 != ClassContextSpecific|Constructed {
		return 0, nil, nil, dlms.Newf(dlms.KindInvalidFormat, "ber: expected context-specific constructed tag, got 0x%02X", tag)
	}
	return tag & 0x1F, content, rest, nil
}

// WrapImplicitContext builds an implicit context-specific primitive TLV:
// tag 0x80+n directly wrapping content, with no universal-tagged inner
// encoding. Used where a field's underlying type is IMPLICIT-tagged away,
// e.g. the RLRQ/RLRE reason field.
func WrapImplicitContext(n byte, content []byte) []byte {
	return Encode(Tag(ClassContextSpecific, false, n), content)
}

// DecodeImplicitContext reads an implicit context-specific primitive TLV,
// returning its context number and raw content.
func DecodeImplicitContext(b []byte) (n byte, content []byte, rest []byte, err error) {
	tag, content, rest, err := Decode(b)
	if err != nil {
		return 0, nil, nil, err
	}
	if tag&0xE0 != ClassContextSpecific {
		return 0, nil, nil, dlms.Newf(dlms.KindInvalidFormat, "ber: expected context-specific primitive tag, got 0x%02X", tag)
	}
	return tag & 0x1F, content, rest, nil
}
