package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkgos/go-dlms-cosem/dlms"
)

func TestControlByteRoundTrip(t *testing.T) {
	c := NewControl(true, true, SuiteV1)
	assert.Equal(t, byte(0x31), c.Byte())

	got := ParseControl(0x32)
	assert.True(t, got.Authentication)
	assert.True(t, got.Encryption)
	suite, err := got.Suite()
	require.NoError(t, err)
	assert.Equal(t, SuiteV2, suite)
}

func TestControlReservedSuite(t *testing.T) {
	c := ParseControl(0x3F)
	_, err := c.Suite()
	require.Error(t, err)
	assert.Equal(t, 16, c.KeySize()) // defaults to AES-128
}

func TestSuiteKeySize(t *testing.T) {
	assert.Equal(t, 16, SuiteV0.KeySize())
	assert.Equal(t, 16, SuiteV1.KeySize())
	assert.Equal(t, 32, SuiteV2.KeySize())
}

func TestSealOpenAuthenticatedEncryption(t *testing.T) {
	key := make([]byte, 16)
	ak := make([]byte, 16)
	for i := range key {
		key[i] = byte(i)
		ak[i] = byte(i + 1)
	}
	c := NewControl(true, true, SuiteV1)
	var title [8]byte
	copy(title[:], []byte("METER001"))

	plaintext := []byte("xDLMS APDU body")
	sealed, err := Seal(c, key, ak, title, 1, plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, sealed)

	opened, err := Open(c, key, ak, title, 1, sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestOpenRejectsTamperedTag(t *testing.T) {
	key := make([]byte, 16)
	ak := make([]byte, 16)
	c := NewControl(true, true, SuiteV1)
	var title [8]byte

	sealed, err := Seal(c, key, ak, title, 1, []byte("hello"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xFF

	_, err = Open(c, key, ak, title, 1, sealed)
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindSecurity))
}

func TestSealEncryptionOnlyNoTag(t *testing.T) {
	key := make([]byte, 16)
	c := NewControl(false, true, SuiteV0)
	var title [8]byte

	plaintext := []byte("payload")
	sealed, err := Seal(c, key, nil, title, 1, plaintext)
	require.NoError(t, err)
	assert.Equal(t, len(plaintext), len(sealed))

	opened, err := Open(c, key, nil, title, 1, sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestCounterRejectsReplay(t *testing.T) {
	var c Counter
	require.NoError(t, c.Accept(5))
	require.NoError(t, c.Accept(6))
	err := c.Accept(6)
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindSecurity))
}

func TestCounterNextMonotonic(t *testing.T) {
	var c Counter
	first := c.Next()
	second := c.Next()
	assert.Less(t, first, second)
}
