package ber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkgos/go-dlms-cosem/dlms"
)

func TestEncodeDecodeLengthShortForm(t *testing.T) {
	for _, n := range []int{0, 1, 0x7F} {
		b := EncodeLength(n)
		assert.Len(t, b, 1)
		got, used, err := DecodeLength(b)
		require.NoError(t, err)
		assert.Equal(t, n, got)
		assert.Equal(t, 1, used)
	}
}

func TestEncodeDecodeLengthLongForm(t *testing.T) {
	for _, n := range []int{0x80, 0xFF, 0x1234} {
		b := EncodeLength(n)
		got, used, err := DecodeLength(b)
		require.NoError(t, err)
		assert.Equal(t, n, got)
		assert.Equal(t, len(b), used)
	}
}

func TestDecodeLengthRejectsIndefinite(t *testing.T) {
	_, _, err := DecodeLength([]byte{0x80})
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindInvalidFormat))
}

func TestDecodeLengthRejectsNonMinimal(t *testing.T) {
	// 0x81 0x05 encodes length 5 in long form though it fits in short form.
	_, _, err := DecodeLength([]byte{0x81, 0x05})
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindInvalidFormat))
}

func TestEncodeDecodeOctetString(t *testing.T) {
	b := EncodeOctetString([]byte{1, 2, 3})
	assert.Equal(t, []byte{0x04, 0x03, 1, 2, 3}, b)

	got, rest, err := DecodeOctetString(b)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
	assert.Empty(t, rest)
}

func TestEncodeDecodeInteger(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 127, -128, 128, 1000, -1000} {
		b := EncodeInteger(v)
		got, rest, err := DecodeInteger(b)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Empty(t, rest)
	}
}

func TestAssociationResultExample(t *testing.T) {
	// Gurux/Green-Book example: A2 03 02 01 00 (result = accepted).
	inner := EncodeInteger(0)
	wrapped := WrapContext(2, inner)
	assert.Equal(t, []byte{0xA2, 0x03, 0x02, 0x01, 0x00}, wrapped)

	n, content, rest, err := DecodeContext(wrapped)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Empty(t, rest)
	v, _, err := DecodeInteger(content)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)
}

func TestEncodeDecodeObjectIdentifier(t *testing.T) {
	lnOID := []byte{0x60, 0x85, 0x74, 0x05, 0x08, 0x01, 0x01}
	b := EncodeObjectIdentifier(lnOID)
	got, rest, err := DecodeObjectIdentifier(b)
	require.NoError(t, err)
	assert.Equal(t, lnOID, got)
	assert.Empty(t, rest)
}

func TestEncodeDecodeBitStringProtocolVersion(t *testing.T) {
	// Gurux example: protocol version, bit pattern 0x80 with 7 unused bits (version 1).
	b := EncodeBitString(1, []byte{0x80})
	assert.Equal(t, []byte{0x03, 0x02, 0x07, 0x80}, b)

	numBits, bits, rest, err := DecodeBitString(b)
	require.NoError(t, err)
	assert.Equal(t, 1, numBits)
	assert.Equal(t, []byte{0x80}, bits)
	assert.Empty(t, rest)
}

func TestTagLongFormRejectedOnDecode(t *testing.T) {
	_, _, _, err := Decode([]byte{0x1F, 0x01, 0x00})
	require.Error(t, err)
}
