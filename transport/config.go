package transport

import (
	"errors"
	"time"
)

// DefaultDLMSTCPPort is the IANA/IEC 62056-47 registered port for DLMS
// wrapper-mode TCP.
const DefaultDLMSTCPPort = 4059

// TCP configuration ranges. Mirrors the teacher's cs104.Config bounds
// idiom: unspecified fields fall back to the package default, out-of-range
// fields reject the configuration outright.
const (
	ConnectTimeoutMin = 1 * time.Second
	ConnectTimeoutMax = 255 * time.Second

	ReadTimeoutMin = 1 * time.Second
	ReadTimeoutMax = 255 * time.Second

	WriteTimeoutMin = 1 * time.Second
	WriteTimeoutMax = 255 * time.Second
)

// TCPConfig configures a TCPTransport. Valid fills each zero timeout with
// its package default, so the zero value is accepted; DialTCP calls Valid.
type TCPConfig struct {
	// ConnectTimeout bounds TCP handshake completion.
	ConnectTimeout time.Duration

	// ReadTimeout is the default deadline Recv applies absent an explicit
	// RecvTimeout call.
	ReadTimeout time.Duration

	// WriteTimeout bounds Send.
	WriteTimeout time.Duration

	// NoDelay disables Nagle's algorithm; true by default since DLMS
	// request/response turns are latency-sensitive, not throughput-bound.
	NoDelay bool
}

// Valid applies the package default for each unspecified (zero) timeout and
// rejects any timeout out of range. NoDelay is used as given.
func (c *TCPConfig) Valid() error {
	if c == nil {
		return errors.New("transport: invalid pointer")
	}

	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 30 * time.Second
	} else if c.ConnectTimeout < ConnectTimeoutMin || c.ConnectTimeout > ConnectTimeoutMax {
		return errors.New("transport: ConnectTimeout not in [1, 255]s")
	}

	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	} else if c.ReadTimeout < ReadTimeoutMin || c.ReadTimeout > ReadTimeoutMax {
		return errors.New("transport: ReadTimeout not in [1, 255]s")
	}

	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	} else if c.WriteTimeout < WriteTimeoutMin || c.WriteTimeout > WriteTimeoutMax {
		return errors.New("transport: WriteTimeout not in [1, 255]s")
	}

	return nil
}

// DefaultTCPConfig returns the package's default TCP configuration:
// 30s connect/read/write timeouts, Nagle disabled.
func DefaultTCPConfig() TCPConfig {
	return TCPConfig{
		ConnectTimeout: 30 * time.Second,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		NoDelay:        true,
	}
}
