package security

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"

	"github.com/thinkgos/go-dlms-cosem/dlms"
)

// NonceSize is the fixed 12-octet GCM nonce length: an 8-octet system title
// followed by the 4-octet big-endian invocation counter.
const NonceSize = 12

// TagSize is the AES-GCM authentication tag length.
const TagSize = 12

// Nonce builds the 12-octet GCM nonce from an 8-octet system title and the
// per-direction invocation counter.
func Nonce(systemTitle [8]byte, invocationCounter uint32) [NonceSize]byte {
	var n [NonceSize]byte
	copy(n[:8], systemTitle[:])
	binary.BigEndian.PutUint32(n[8:], invocationCounter)
	return n
}

// Seal encrypts and/or authenticates plaintext per c's flags, using key
// (sized per c.Suite()) and the given system title and invocation counter.
// AAD is security-control-byte ‖ authenticationKey, per the DLMS AEAD
// binding. The result is:
//   - ciphertext‖tag, when both Authentication and Encryption are set
//   - plaintext‖tag, when only Authentication is set (GMAC)
//   - ciphertext, when only Encryption is set
func Seal(c Control, key []byte, authenticationKey []byte, systemTitle [8]byte, invocationCounter uint32, plaintext []byte) ([]byte, error) {
	if !c.Authentication && !c.Encryption {
		return append([]byte(nil), plaintext...), nil
	}
	block, aad, err := prepare(c, key, authenticationKey)
	if err != nil {
		return nil, err
	}
	nonce := Nonce(systemTitle, invocationCounter)
	gcm, err := newGCM(block)
	if err != nil {
		return nil, err
	}

	switch {
	case c.Authentication && c.Encryption:
		return gcm.Seal(nil, nonce[:], plaintext, aad), nil
	case c.Authentication:
		// GMAC: authenticate-only, emit plaintext‖tag with no ciphertext.
		sealed := gcm.Seal(nil, nonce[:], nil, append(aad, plaintext...))
		return append(append([]byte(nil), plaintext...), sealed...), nil
	default: // encryption only: GCM's counter-mode keystream, no tag
		var iv [aes.BlockSize]byte
		copy(iv[:], nonce[:])
		iv[aes.BlockSize-1] = 2 // first GCM data block counter
		out := make([]byte, len(plaintext))
		cipher.NewCTR(block, iv[:]).XORKeyStream(out, plaintext)
		return out, nil
	}
}

// Open reverses Seal, validating the authentication tag when present.
func Open(c Control, key []byte, authenticationKey []byte, systemTitle [8]byte, invocationCounter uint32, protected []byte) ([]byte, error) {
	if !c.Authentication && !c.Encryption {
		return append([]byte(nil), protected...), nil
	}
	block, aad, err := prepare(c, key, authenticationKey)
	if err != nil {
		return nil, err
	}
	nonce := Nonce(systemTitle, invocationCounter)
	gcm, err := newGCM(block)
	if err != nil {
		return nil, err
	}

	switch {
	case c.Authentication && c.Encryption:
		if len(protected) < TagSize {
			return nil, dlms.New(dlms.KindSecurity, "security: ciphered APDU shorter than tag")
		}
		plain, err := gcm.Open(nil, nonce[:], protected, aad)
		if err != nil {
			return nil, dlms.Wrap(dlms.KindSecurity, "security: MAC verification failed", err)
		}
		return plain, nil
	case c.Authentication:
		if len(protected) < TagSize {
			return nil, dlms.New(dlms.KindSecurity, "security: GMAC payload shorter than tag")
		}
		plain := protected[:len(protected)-TagSize]
		gotTag := protected[len(protected)-TagSize:]
		wantSealed := gcm.Seal(nil, nonce[:], nil, append(aad, plain...))
		if !constantTimeEqual(wantSealed, gotTag) {
			return nil, dlms.New(dlms.KindSecurity, "security: GMAC verification failed")
		}
		return plain, nil
	default: // encryption only, no tag to verify; the keystream XOR is its own inverse
		return Seal(c, key, authenticationKey, systemTitle, invocationCounter, protected)
	}
}

func prepare(c Control, key, authenticationKey []byte) (cipher.Block, []byte, error) {
	suite, err := c.Suite()
	if err != nil {
		return nil, nil, dlms.Wrap(dlms.KindSecurity, "security: invalid security control", err)
	}
	if len(key) != suite.KeySize() {
		return nil, nil, dlms.Newf(dlms.KindSecurity, "security: key length %d does not match suite requirement %d", len(key), suite.KeySize())
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, dlms.Wrap(dlms.KindSecurity, "security: invalid AES key", err)
	}
	aad := append([]byte{c.Byte()}, authenticationKey...)
	return block, aad, nil
}

func newGCM(block cipher.Block) (cipher.AEAD, error) {
	gcm, err := cipher.NewGCMWithTagSize(block, TagSize)
	if err != nil {
		return nil, dlms.Wrap(dlms.KindSecurity, "security: GCM setup failed", err)
	}
	return gcm, nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
