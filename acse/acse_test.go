package acse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkgos/go-dlms-cosem/dlms"
)

func TestConformanceBytesRoundTrip(t *testing.T) {
	c := TypicalClientLN
	b := c.Bytes()
	got := ConformanceFromBytes(b)
	assert.Equal(t, c, got)
}

func TestConformanceNegotiateIsIntersection(t *testing.T) {
	proposed := Get | Set | Action | SelectiveAccess
	supported := Get | Set
	negotiated := Negotiate(proposed, supported)
	assert.Equal(t, Get|Set, negotiated)
	assert.True(t, proposed.Contains(negotiated))
}

func TestApplicationContextNameOID(t *testing.T) {
	assert.Equal(t, []byte{0x60, 0x85, 0x74, 0x05, 0x08, 0x01, 0x01}, LogicalNameReferencing.OIDBytes())
	assert.True(t, LogicalNameReferencingWithCiphering.UsesCiphering())
	assert.True(t, LogicalNameReferencingWithCiphering.UsesLogicalName())
	assert.False(t, ShortNameReferencing.UsesCiphering())

	name, ok := ApplicationContextNameFromOID([]byte{0x60, 0x85, 0x74, 0x05, 0x08, 0x01, 0x01})
	require.True(t, ok)
	assert.Equal(t, LogicalNameReferencing, name)
}

func TestAARQMinimalLogicalNameNoAuth(t *testing.T) {
	// InitiateRequest placeholder: DLMS version 6 as its fourth octet, the
	// detail of the rest is xdlms's concern.
	userInfo := []byte{0x01, 0x00, 0x00, 0x06, 0x5F, 0x1F, 0x04, 0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF}

	req := AARQ{
		ApplicationContextName: LogicalNameReferencing,
		UserInformation:        userInfo,
	}
	b := req.Encode()

	assert.Equal(t, byte(tagAARQ), b[0])
	assert.Contains(t, string(b), string([]byte{0x60, 0x85, 0x74, 0x05, 0x08, 0x01, 0x01}))
	assert.Contains(t, string(b), string([]byte{0xBE}))

	got, err := DecodeAARQ(b)
	require.NoError(t, err)
	assert.Equal(t, LogicalNameReferencing, got.ApplicationContextName)
	assert.Nil(t, got.MechanismName)
	assert.Equal(t, userInfo, got.UserInformation)
	assert.Equal(t, byte(0x06), got.UserInformation[3])
}

func TestAARQWithMechanismAndAuth(t *testing.T) {
	mech := LowLevelSecurity
	req := AARQ{
		ApplicationContextName: LogicalNameReferencing,
		MechanismName:          &mech,
		CallingAuthValue:       &AuthenticationValue{IsBitString: false, Bytes: []byte("12345678")},
		UserInformation:        []byte{0x01, 0x00, 0x00, 0x06},
	}
	b := req.Encode()
	got, err := DecodeAARQ(b)
	require.NoError(t, err)
	require.NotNil(t, got.MechanismName)
	assert.Equal(t, LowLevelSecurity, *got.MechanismName)
	require.NotNil(t, got.CallingAuthValue)
	assert.False(t, got.CallingAuthValue.IsBitString)
	assert.Equal(t, []byte("12345678"), got.CallingAuthValue.Bytes)
}

func TestAARQWithCallingAPTitle(t *testing.T) {
	title := [8]byte{0x4D, 0x4D, 0x4D, 0x00, 0x00, 0xBC, 0x61, 0x4E}
	req := AARQ{
		ApplicationContextName: LogicalNameReferencingWithCiphering,
		CallingAPTitle:         &title,
		UserInformation:        []byte{0x21, 0x00},
	}
	b := req.Encode()

	got, err := DecodeAARQ(b)
	require.NoError(t, err)
	require.NotNil(t, got.CallingAPTitle)
	assert.Equal(t, title, *got.CallingAPTitle)
}

func TestAAREAcceptedRoundTrip(t *testing.T) {
	resp := AARE{
		ApplicationContextName: LogicalNameReferencing,
		Result:                 Accepted,
		ResultSourceDiagnostic: DiagnosticNull,
		UserInformation:        []byte{0x08, 0x00, 0x00, 0x06, 0x5F, 0x1F, 0x04, 0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0x07},
	}
	b := resp.Encode()
	assert.Equal(t, byte(tagAARE), b[0])

	got, err := DecodeAARE(b)
	require.NoError(t, err)
	assert.Equal(t, Accepted, got.Result)
	assert.Equal(t, DiagnosticNull, got.ResultSourceDiagnostic)
	assert.Equal(t, resp.UserInformation, got.UserInformation)
}

func TestAAREResultAcceptedExampleBytes(t *testing.T) {
	// Green-Book/Gurux example: A2 03 02 01 00 for the bare result field.
	resp := AARE{
		ApplicationContextName: LogicalNameReferencing,
		Result:                 Accepted,
		ResultSourceDiagnostic: DiagnosticNull,
	}
	b := resp.Encode()
	assert.Contains(t, string(b), string([]byte{0xA2, 0x03, 0x02, 0x01, 0x00}))
}

func TestAAREWithRespondingAPTitle(t *testing.T) {
	title := [8]byte{0x4D, 0x4D, 0x4D, 0x00, 0x01, 0x23, 0x45, 0x67}
	resp := AARE{
		ApplicationContextName: LogicalNameReferencingWithCiphering,
		Result:                 Accepted,
		ResultSourceDiagnostic: DiagnosticNull,
		RespondingAPTitle:      &title,
		UserInformation:        []byte{0x28, 0x00},
	}
	b := resp.Encode()

	got, err := DecodeAARE(b)
	require.NoError(t, err)
	require.NotNil(t, got.RespondingAPTitle)
	assert.Equal(t, title, *got.RespondingAPTitle)
}

func TestAARERejectedPermanent(t *testing.T) {
	resp := AARE{
		ApplicationContextName: LogicalNameReferencing,
		Result:                 RejectedPermanent,
		ResultSourceDiagnostic: DiagnosticAuthenticationFailure,
	}
	b := resp.Encode()
	assert.Contains(t, string(b), string([]byte{0xA2, 0x03, 0x02, 0x01, 0x01}))

	got, err := DecodeAARE(b)
	require.NoError(t, err)
	assert.Equal(t, RejectedPermanent, got.Result)
	assert.Equal(t, DiagnosticAuthenticationFailure, got.ResultSourceDiagnostic)
}

func TestRLRQMinimalExactBytes(t *testing.T) {
	req := RLRQ{Reason: ReasonNormal}
	b := req.Encode()
	assert.Equal(t, []byte{0x62, 0x03, 0x80, 0x01, 0x00}, b)

	got, err := DecodeRLRQ(b)
	require.NoError(t, err)
	assert.Equal(t, ReasonNormal, got.Reason)
}

func TestRLREMinimalExactBytes(t *testing.T) {
	resp := RLRE{Reason: ReasonNormal}
	b := resp.Encode()
	assert.Equal(t, []byte{0x63, 0x03, 0x80, 0x01, 0x00}, b)

	got, err := DecodeRLRE(b)
	require.NoError(t, err)
	assert.Equal(t, ReasonNormal, got.Reason)
}

func TestRLRQWithUserInformation(t *testing.T) {
	req := RLRQ{Reason: ReasonNormal, UserInformation: []byte{0xAA, 0xBB}}
	b := req.Encode()
	got, err := DecodeRLRQ(b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, got.UserInformation)
}

func TestMachineHappyPath(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, Idle, m.State())

	require.NoError(t, m.SentAARQ())
	assert.Equal(t, AwaitAARE, m.State())

	require.NoError(t, m.ReceivedAARE(Accepted))
	assert.Equal(t, Associated, m.State())
	require.NoError(t, m.RequireAssociated())

	require.NoError(t, m.SentRLRQ())
	assert.Equal(t, AwaitRLRE, m.State())

	m.ReceivedRLRE()
	assert.Equal(t, Idle, m.State())
}

func TestMachineRejectedAARE(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.SentAARQ())

	err := m.ReceivedAARE(RejectedPermanent)
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindAssociationRejected))
	assert.Equal(t, Idle, m.State())
}

func TestMachineRejectsOutOfOrderCalls(t *testing.T) {
	m := NewMachine()
	err := m.ReceivedAARE(Accepted)
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindUnexpectedAPDU))

	err = m.RequireAssociated()
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindUnexpectedAPDU))
}

func TestDecodeAARQRejectsWrongTag(t *testing.T) {
	_, err := DecodeAARQ([]byte{0x61, 0x00})
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindInvalidFormat))
}
