// Package security implements the DLMS/COSEM ciphering layer: the security
// control byte, suite V0/V1/V2 key sizing, and AES-GCM sealing/opening of
// xDLMS APDUs with the system-title/invocation-counter nonce construction.
package security

import "fmt"

// Suite identifies the cryptographic suite carried in the low 4 bits of a
// Control byte. All three suites use AES-GCM; they differ only in key size.
type Suite byte

const (
	SuiteV0 Suite = 0
	SuiteV1 Suite = 1
	SuiteV2 Suite = 2
)

// KeySize returns the AES key length suite s requires: 16 octets (AES-128)
// for V0/V1, 32 octets (AES-256) for V2.
func (s Suite) KeySize() int {
	if s == SuiteV2 {
		return 32
	}
	return 16
}

// ParseSuite validates a raw suite id (the control byte's low 4 bits).
// Values 3-15 are reserved and rejected.
func ParseSuite(id byte) (Suite, error) {
	switch Suite(id) {
	case SuiteV0, SuiteV1, SuiteV2:
		return Suite(id), nil
	default:
		return 0, fmt.Errorf("security: reserved suite id %d", id)
	}
}

const (
	compressionBit    byte = 0x80
	broadcastBit      byte = 0x40
	encryptionBit     byte = 0x20
	authenticationBit byte = 0x10
	suiteMask         byte = 0x0F
)

// Control is the single-octet security control field: compression,
// broadcast-key, encryption, and authentication flags plus a 4-bit suite id.
type Control struct {
	Compression    bool
	Broadcast      bool
	Encryption     bool
	Authentication bool
	SuiteID        byte // raw 4-bit id; use Suite() for the validated form
}

// NewControl builds a Control for the common authenticated-encryption case.
func NewControl(authentication, encryption bool, suite Suite) Control {
	return Control{Authentication: authentication, Encryption: encryption, SuiteID: byte(suite)}
}

// Suite validates and returns c's suite id.
func (c Control) Suite() (Suite, error) { return ParseSuite(c.SuiteID) }

// KeySize returns the key length required by c's suite, defaulting to 16
// (AES-128) for a reserved/invalid suite id so a caller can still size a
// buffer before validating.
func (c Control) KeySize() int {
	s, err := c.Suite()
	if err != nil {
		return 16
	}
	return s.KeySize()
}

// Byte renders c as its wire octet.
func (c Control) Byte() byte {
	b := c.SuiteID & suiteMask
	if c.Authentication {
		b |= authenticationBit
	}
	if c.Encryption {
		b |= encryptionBit
	}
	if c.Broadcast {
		b |= broadcastBit
	}
	if c.Compression {
		b |= compressionBit
	}
	return b
}

// ParseControl decodes a security control octet.
func ParseControl(b byte) Control {
	return Control{
		Compression:    b&compressionBit != 0,
		Broadcast:      b&broadcastBit != 0,
		Encryption:     b&encryptionBit != 0,
		Authentication: b&authenticationBit != 0,
		SuiteID:        b & suiteMask,
	}
}
