// Package client implements the DLMS/COSEM association and service
// orchestrator: Connect, Read, Write, InvokeMethod and Disconnect, driven
// over any transport.Transport (HDLC or wrapper-mode) and optionally
// ciphered end to end with AES-GCM.
package client

import (
	"context"

	"github.com/thinkgos/go-dlms-cosem/acse"
	"github.com/thinkgos/go-dlms-cosem/axdr"
	"github.com/thinkgos/go-dlms-cosem/clog"
	"github.com/thinkgos/go-dlms-cosem/dlms"
	"github.com/thinkgos/go-dlms-cosem/obis"
	"github.com/thinkgos/go-dlms-cosem/security"
	"github.com/thinkgos/go-dlms-cosem/transport"
	"github.com/thinkgos/go-dlms-cosem/xdlms"
)

// CipherContext carries the key material and running invocation counters a
// Client needs to cipher the association's InitiateRequest/Response and
// every in-session GET/SET/ACTION APDU with glo-<service> AES-GCM framing.
// A nil *CipherContext on Client means an unciphered association.
type CipherContext struct {
	Control           security.Control
	EncryptionKey     []byte
	AuthenticationKey []byte

	// SystemTitle is this client's own system title: the nonce input for
	// every APDU it seals, and the value offered to the server as the
	// AARQ's calling-AP-title.
	SystemTitle [8]byte

	// PeerSystemTitle is the server's system title: the nonce input for
	// every ciphered APDU received from it. A real peer uses a system
	// title distinct from the client's own, so this must not be conflated
	// with SystemTitle above. If left zero, Connect adopts it from the
	// AARE's responding-AP-title; if both are set, they must agree or
	// Connect fails with KindSecurity.
	PeerSystemTitle [8]byte

	// SendCounter is this client's own invocation counter, advanced once
	// per ciphered APDU sent.
	SendCounter security.Counter

	// RecvCounter tracks the server's invocation counter and rejects
	// replay. AEAD verification alone proves a received ciphertext's
	// integrity under the key, not that it is fresh rather than a replay
	// of an older, validly-sealed message, so every counter UnwrapCiphered
	// recovers is additionally checked here before its plaintext is
	// trusted.
	RecvCounter security.Counter
}

// Client is a single-owner, turn-based DLMS association: one transport, one
// association state machine, one reusable receive buffer. Callers must not
// use a Client from more than one goroutine at a time.
type Client struct {
	transport transport.Transport
	config    Config
	cipher    *CipherContext
	assoc     *acse.Machine
	log       clog.Clog

	negotiatedConformance acse.Conformance
	negotiatedMaxPDUSize  uint16

	invokeID byte
	recvBuf  []byte
}

// NewClient builds a Client ready to Connect. cipher may be nil for an
// unciphered association.
func NewClient(tr transport.Transport, config Config, cipher *CipherContext) (*Client, error) {
	if err := config.Valid(); err != nil {
		return nil, err
	}
	return &Client{
		transport: tr,
		config:    config,
		cipher:    cipher,
		assoc:     acse.NewMachine(),
		log:       clog.NewLogger("dlms-client: "),
		invokeID:  1,
		recvBuf:   make([]byte, int(config.MaxPDUSize)),
	}, nil
}

// SetLogProvider installs a custom log backend and enables logging.
func (c *Client) SetLogProvider(p clog.LogProvider) {
	c.log.SetLogProvider(p)
	c.log.LogMode(true)
}

// NegotiatedConformance reports the conformance block agreed during
// Connect. Zero until a successful Connect.
func (c *Client) NegotiatedConformance() acse.Conformance { return c.negotiatedConformance }

// NegotiatedMaxPDUSize reports the lesser of the proposed and
// server-advertised max PDU size agreed during Connect. Zero until a
// successful Connect.
func (c *Client) NegotiatedMaxPDUSize() uint16 { return c.negotiatedMaxPDUSize }

// nextInvokeID returns the invoke-id for the next service request and
// advances the generator, cycling 1..15 within the xDLMS invoke-id field's
// low 4 bits (0 is never issued: it reads as "no outstanding request" in
// the generator's own bookkeeping, not as a valid wire value).
func (c *Client) nextInvokeID() byte {
	id := c.invokeID
	c.invokeID++
	if c.invokeID > 15 {
		c.invokeID = 1
	}
	return id
}

// Connect performs the full A-ASSOCIATE exchange: sends an AARQ carrying a
// (optionally ciphered) InitiateRequest, awaits the AARE, and installs the
// negotiated conformance and max PDU size. Fails with KindAssociationRejected
// if the server rejects, KindUnexpectedAPDU if the AARE's user-information
// does not carry a well-formed InitiateResponse, or a transport/security
// error from the exchange itself.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.assoc.SentAARQ(); err != nil {
		return err
	}
	c.invokeID = 1

	initReq := xdlms.NewInitiateRequest(c.config.ProposedConformance, c.config.MaxPDUSize)
	plainUI := append([]byte{xdlms.TagInitiateRequest}, initReq.Encode()...)

	appContext := acse.LogicalNameReferencing
	userInfo := plainUI
	if c.cipher != nil {
		ciphered, err := xdlms.WrapGlobalCiphering(c.cipher.Control, c.cipher.EncryptionKey,
			c.cipher.AuthenticationKey, c.cipher.SystemTitle, c.cipher.SendCounter.Next(), plainUI)
		if err != nil {
			c.assoc.Reset()
			return err
		}
		userInfo = ciphered
		appContext = acse.LogicalNameReferencingWithCiphering
	}

	aarq := acse.AARQ{ApplicationContextName: appContext, UserInformation: userInfo}
	if c.cipher != nil {
		title := c.cipher.SystemTitle
		aarq.CallingAPTitle = &title
	}
	c.log.Debug("sending AARQ, application-context %s", appContext)
	if err := c.transport.Send(ctx, aarq.Encode()); err != nil {
		c.assoc.Reset()
		return err
	}

	n, err := c.transport.RecvTimeout(ctx, c.recvBuf, c.config.ResponseTimeout)
	if err != nil {
		c.assoc.Reset()
		return err
	}
	aare, err := acse.DecodeAARE(c.recvBuf[:n])
	if err != nil {
		c.assoc.Reset()
		return err
	}
	c.log.Debug("received AARE, result %s", aare.Result)
	if err := c.assoc.ReceivedAARE(aare.Result); err != nil {
		return err
	}

	plainResp := aare.UserInformation
	if c.cipher != nil {
		var zero [8]byte
		peerTitle := c.cipher.PeerSystemTitle
		if aare.RespondingAPTitle != nil {
			if peerTitle == zero {
				peerTitle = *aare.RespondingAPTitle
			} else if peerTitle != *aare.RespondingAPTitle {
				c.assoc.Reset()
				return dlms.New(dlms.KindSecurity, "client: AARE responding-AP-title does not match configured peer system title")
			}
		}
		if peerTitle == zero {
			c.assoc.Reset()
			return dlms.New(dlms.KindSecurity, "client: ciphered association requires a peer system title")
		}
		c.cipher.PeerSystemTitle = peerTitle

		var counter uint32
		plainResp, _, counter, err = xdlms.UnwrapCiphered(c.cipher.EncryptionKey, c.cipher.AuthenticationKey,
			c.cipher.PeerSystemTitle, aare.UserInformation)
		if err != nil {
			c.assoc.Reset()
			return err
		}
		if err := c.cipher.RecvCounter.Accept(counter); err != nil {
			c.assoc.Reset()
			return err
		}
	}
	if len(plainResp) < 1 || plainResp[0] != xdlms.TagInitiateResponse {
		c.assoc.Reset()
		return dlms.New(dlms.KindUnexpectedAPDU, "client: AARE user-information is not an InitiateResponse")
	}
	initResp, err := xdlms.ParseInitiateResponse(plainResp[1:])
	if err != nil {
		c.assoc.Reset()
		return err
	}

	c.negotiatedConformance = acse.Negotiate(c.config.ProposedConformance, initResp.NegotiatedConformance)
	c.negotiatedMaxPDUSize = c.config.MaxPDUSize
	if initResp.ServerMaxReceivePDUSize != 0 && initResp.ServerMaxReceivePDUSize < c.negotiatedMaxPDUSize {
		c.negotiatedMaxPDUSize = initResp.ServerMaxReceivePDUSize
	}
	return nil
}

// sendService ciphers (if configured) and sends one xDLMS service APDU.
func (c *Client) sendService(ctx context.Context, plain []byte) error {
	apdu := plain
	if c.cipher != nil {
		ciphered, err := xdlms.WrapGlobalCiphering(c.cipher.Control, c.cipher.EncryptionKey,
			c.cipher.AuthenticationKey, c.cipher.SystemTitle, c.cipher.SendCounter.Next(), plain)
		if err != nil {
			return err
		}
		apdu = ciphered
	}
	c.log.Trace("send % X", apdu)
	return c.transport.Send(ctx, apdu)
}

// recvPlainAPDU receives one xDLMS service APDU and deciphers it (if
// configured), returning the plain tagged APDU. The returned slice aliases
// the client's receive buffer; callers must finish parsing it before the
// next recvPlainAPDU call.
func (c *Client) recvPlainAPDU(ctx context.Context) ([]byte, error) {
	n, err := c.transport.RecvTimeout(ctx, c.recvBuf, c.config.ResponseTimeout)
	if err != nil {
		return nil, err
	}
	raw := c.recvBuf[:n]
	c.log.Trace("recv % X", raw)
	if c.cipher == nil {
		return raw, nil
	}
	plain, _, counter, err := xdlms.UnwrapCiphered(c.cipher.EncryptionKey, c.cipher.AuthenticationKey, c.cipher.PeerSystemTitle, raw)
	if err != nil {
		return nil, err
	}
	if err := c.cipher.RecvCounter.Accept(counter); err != nil {
		return nil, err
	}
	return plain, nil
}

// Read fetches one attribute with GET, transparently reassembling a
// block-transfer response. accessSelection may be nil.
func (c *Client) Read(ctx context.Context, classID uint16, instance obis.Code, attributeID int8, accessSelection *xdlms.AccessSelector) (axdr.Data, error) {
	if err := c.assoc.RequireAssociated(); err != nil {
		return axdr.Data{}, err
	}
	invokeID := c.nextInvokeID()

	plain, err := xdlms.EncodeGetRequestNormal(xdlms.GetRequestNormal{
		InvokeID:        invokeID,
		ClassID:         classID,
		InstanceID:      instance,
		AttributeID:     attributeID,
		AccessSelection: accessSelection,
	})
	if err != nil {
		return axdr.Data{}, err
	}
	if err := c.sendService(ctx, plain); err != nil {
		return axdr.Data{}, err
	}

	var blocks []byte
	for {
		plainResp, err := c.recvPlainAPDU(ctx)
		if err != nil {
			return axdr.Data{}, err
		}
		resp, err := xdlms.ParseGetResponse(plainResp)
		if err != nil {
			return axdr.Data{}, err
		}

		switch {
		case resp.Normal != nil:
			if resp.Normal.InvokeID != invokeID {
				return axdr.Data{}, invokeIDMismatch(invokeID, resp.Normal.InvokeID)
			}
			if resp.Normal.Result.Error != nil {
				return axdr.Data{}, resp.Normal.Result.Error.AsError()
			}
			return *resp.Normal.Result.Data, nil

		case resp.WithDataBlock != nil:
			block := resp.WithDataBlock
			if block.InvokeID != invokeID {
				return axdr.Data{}, invokeIDMismatch(invokeID, block.InvokeID)
			}
			if block.Result.Error != nil {
				return axdr.Data{}, block.Result.Error.AsError()
			}
			blocks = append(blocks, block.Result.RawData...)
			if block.LastBlock {
				data, rest, err := axdr.Parse(blocks)
				if err != nil {
					return axdr.Data{}, err
				}
				if len(rest) != 0 {
					return axdr.Data{}, dlms.New(dlms.KindInvalidFormat, "client: trailing bytes after reassembled GET block transfer")
				}
				return data, nil
			}
			next := xdlms.EncodeGetRequestNext(xdlms.GetRequestNext{InvokeID: invokeID, BlockNumber: block.BlockNumber + 1})
			if err := c.sendService(ctx, next); err != nil {
				return axdr.Data{}, err
			}

		default:
			return axdr.Data{}, dlms.New(dlms.KindUnexpectedAPDU, "client: unexpected GET-Response variant for a single-attribute read")
		}
	}
}

// Write sets one attribute with SET. accessSelection may be nil.
func (c *Client) Write(ctx context.Context, classID uint16, instance obis.Code, attributeID int8, value axdr.Data, accessSelection *xdlms.AccessSelector) error {
	if err := c.assoc.RequireAssociated(); err != nil {
		return err
	}
	invokeID := c.nextInvokeID()

	plain, err := xdlms.EncodeSetRequestNormal(xdlms.SetRequestNormal{
		InvokeID:        invokeID,
		ClassID:         classID,
		InstanceID:      instance,
		AttributeID:     attributeID,
		AccessSelection: accessSelection,
		Value:           value,
	})
	if err != nil {
		return err
	}
	if err := c.sendService(ctx, plain); err != nil {
		return err
	}

	plainResp, err := c.recvPlainAPDU(ctx)
	if err != nil {
		return err
	}
	resp, err := xdlms.ParseSetResponse(plainResp)
	if err != nil {
		return err
	}
	if resp.Normal == nil {
		return dlms.New(dlms.KindUnexpectedAPDU, "client: unexpected SET-Response variant for a single-attribute write")
	}
	if resp.Normal.InvokeID != invokeID {
		return invokeIDMismatch(invokeID, resp.Normal.InvokeID)
	}
	return resp.Normal.Result.AsError()
}

// InvokeMethod invokes one method with ACTION. params may be nil. The
// returned *axdr.Data is nil if the method produced no return value.
func (c *Client) InvokeMethod(ctx context.Context, classID uint16, instance obis.Code, methodID int8, params *axdr.Data) (*axdr.Data, error) {
	if err := c.assoc.RequireAssociated(); err != nil {
		return nil, err
	}
	invokeID := c.nextInvokeID()

	plain, err := xdlms.EncodeActionRequestNormal(xdlms.ActionRequestNormal{
		InvokeID:                   invokeID,
		ClassID:                    classID,
		InstanceID:                 instance,
		MethodID:                   methodID,
		MethodInvocationParameters: params,
	})
	if err != nil {
		return nil, err
	}
	if err := c.sendService(ctx, plain); err != nil {
		return nil, err
	}

	plainResp, err := c.recvPlainAPDU(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := xdlms.ParseActionResponse(plainResp)
	if err != nil {
		return nil, err
	}
	if resp.Normal == nil {
		return nil, dlms.New(dlms.KindUnexpectedAPDU, "client: unexpected ACTION-Response variant for a single method invocation")
	}
	if resp.Normal.InvokeID != invokeID {
		return nil, invokeIDMismatch(invokeID, resp.Normal.InvokeID)
	}
	if err := resp.Normal.Result.AsError(); err != nil {
		return nil, err
	}
	if resp.Normal.ReturnValue == nil {
		return nil, nil
	}
	if resp.Normal.ReturnValue.Error != nil {
		return nil, resp.Normal.ReturnValue.Error.AsError()
	}
	return resp.Normal.ReturnValue.Data, nil
}

// Disconnect performs the A-RELEASE exchange. The association transitions
// to idle once the RLRE arrives regardless of its reason; Disconnect still
// returns a non-nil error if the release exchange itself failed, so callers
// can tell a clean release from a forced one.
func (c *Client) Disconnect(ctx context.Context) error {
	if err := c.assoc.SentRLRQ(); err != nil {
		return err
	}
	rlrq := acse.RLRQ{Reason: acse.ReasonNormal}
	c.log.Debug("sending RLRQ")
	if err := c.transport.Send(ctx, rlrq.Encode()); err != nil {
		c.assoc.Reset()
		return err
	}

	n, err := c.transport.RecvTimeout(ctx, c.recvBuf, c.config.ResponseTimeout)
	if err != nil {
		c.assoc.Reset()
		return err
	}
	rlre, err := acse.DecodeRLRE(c.recvBuf[:n])
	c.assoc.ReceivedRLRE()
	if err != nil {
		return err
	}
	c.log.Debug("received RLRE, reason %d", rlre.Reason)
	return nil
}

func invokeIDMismatch(want, got byte) error {
	return dlms.Newf(dlms.KindInvokeIDMismatch, "client: invoke-id mismatch: sent %d, received %d", want, got)
}
