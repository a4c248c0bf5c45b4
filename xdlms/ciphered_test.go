package xdlms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkgos/go-dlms-cosem/security"
)

func TestWrapUnwrapGlobalCipheringInitiateRequest(t *testing.T) {
	key := make([]byte, 16)
	authKey := make([]byte, 16)
	for i := range key {
		key[i] = byte(i)
		authKey[i] = byte(0xA0 + i)
	}
	systemTitle := [8]byte{0x4D, 0x4D, 0x4D, 0x00, 0x00, 0xBC, 0x61, 0x4E}
	c := security.NewControl(true, true, security.SuiteV1)

	req := NewInitiateRequest(0, 0xFFFF)
	plainAPDU := append([]byte{TagInitiateRequest}, req.Encode()...)

	wrapped, err := WrapGlobalCiphering(c, key, authKey, systemTitle, 1, plainAPDU)
	require.NoError(t, err)
	assert.Equal(t, gloInitiateRequest, wrapped[0])

	got, rest, counter, err := UnwrapCiphered(key, authKey, systemTitle, wrapped)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, plainAPDU, got)
	assert.Equal(t, uint32(1), counter)
}

func TestUnwrapCipheredRejectsTamperedCiphertext(t *testing.T) {
	key := make([]byte, 16)
	authKey := make([]byte, 16)
	systemTitle := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	c := security.NewControl(true, true, security.SuiteV1)

	plainAPDU := []byte{TagGetRequest, 0x01, 0x00}
	wrapped, err := WrapGlobalCiphering(c, key, authKey, systemTitle, 1, plainAPDU)
	require.NoError(t, err)
	wrapped[len(wrapped)-1] ^= 0xFF

	_, _, _, err = UnwrapCiphered(key, authKey, systemTitle, wrapped)
	require.Error(t, err)
}

func TestWrapDedicatedCipheringRoundTrip(t *testing.T) {
	key := make([]byte, 16)
	authKey := make([]byte, 16)
	systemTitle := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	c := security.NewControl(true, true, security.SuiteV1)

	plainAPDU := []byte{TagActionRequest, 0x01, 0x00}
	wrapped, err := WrapDedicatedCiphering(c, key, authKey, systemTitle, 42, plainAPDU)
	require.NoError(t, err)
	assert.Equal(t, dedActionRequest, wrapped[0])

	got, rest, counter, err := UnwrapCiphered(key, authKey, systemTitle, wrapped)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, plainAPDU, got)
	assert.Equal(t, uint32(42), counter)
}
