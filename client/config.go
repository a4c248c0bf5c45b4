package client

import (
	"errors"
	"time"

	"github.com/thinkgos/go-dlms-cosem/acse"
)

// ClientAddressPublic and ManagementLogicalDevice are the addresses the
// examples in this engine associate with: the well-known public client
// (no authentication required by most meters) talking to the management
// logical device of a server.
const (
	ClientAddressPublic     uint32 = 16
	ManagementLogicalDevice uint32 = 1
)

// DefaultMaxPDUSize is the PDU size proposed absent an explicit Config value.
const DefaultMaxPDUSize uint16 = 0xFFFF

// ResponseTimeout range, mirrored from the teacher's Config.Valid idiom.
const (
	ResponseTimeoutMin = 1 * time.Second
	ResponseTimeoutMax = 255 * time.Second
)

// Config configures a Client. Valid fills each zero-valued field with its
// package default, so the zero value is accepted; NewClient calls Valid.
type Config struct {
	// ClientAddress and ServerAddress are the data-link addresses the
	// caller's transport/data-link adaptor was opened with. Client itself
	// addresses nothing on the wire; these travel alongside the
	// association purely so a caller building an HDLC link or logging a
	// session can read them back off one place.
	ClientAddress uint32
	ServerAddress uint32

	// MaxPDUSize is the client's proposed maximum PDU size. The negotiated
	// value is not written back here; Client.NegotiatedMaxPDUSize reports it.
	MaxPDUSize uint16

	// ProposedConformance is the conformance block proposed in Connect's
	// InitiateRequest.
	ProposedConformance acse.Conformance

	// ResponseTimeout bounds every blocking recv within a service call.
	ResponseTimeout time.Duration
}

// Valid applies the package default for each unspecified field and rejects
// anything out of range.
func (c *Config) Valid() error {
	if c == nil {
		return errors.New("client: invalid pointer")
	}

	if c.MaxPDUSize == 0 {
		c.MaxPDUSize = DefaultMaxPDUSize
	}

	if c.ProposedConformance == 0 {
		c.ProposedConformance = acse.TypicalClientLN
	}

	if c.ResponseTimeout == 0 {
		c.ResponseTimeout = 10 * time.Second
	} else if c.ResponseTimeout < ResponseTimeoutMin || c.ResponseTimeout > ResponseTimeoutMax {
		return errors.New("client: ResponseTimeout not in [1, 255]s")
	}

	return nil
}

// DefaultConfig returns the package's default configuration: the public
// client address against the management logical device, 0xFFFF max PDU
// size, typical LN conformance, 10s response timeout.
func DefaultConfig() Config {
	return Config{
		ClientAddress:        ClientAddressPublic,
		ServerAddress:        ManagementLogicalDevice,
		MaxPDUSize:           DefaultMaxPDUSize,
		ProposedConformance:  acse.TypicalClientLN,
		ResponseTimeout:      10 * time.Second,
	}
}
