package xdlms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkgos/go-dlms-cosem/acse"
	"github.com/thinkgos/go-dlms-cosem/axdr"
	"github.com/thinkgos/go-dlms-cosem/dlms"
	"github.com/thinkgos/go-dlms-cosem/obis"
)

func TestInitiateRequestRoundTrip(t *testing.T) {
	req := NewInitiateRequest(acse.TypicalClientLN, 0x0400)
	enc := req.Encode()

	require.Equal(t, DLMSVersion, enc[3])

	got, err := ParseInitiateRequest(enc)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestInitiateResponseRoundTrip(t *testing.T) {
	resp := NewInitiateResponse(acse.TypicalClientLN, 0x0400, acse.VAANameLN)
	enc := resp.Encode()

	got, err := ParseInitiateResponse(enc)
	require.NoError(t, err)
	assert.Equal(t, resp, got)
}

func TestDataAccessResultAsError(t *testing.T) {
	require.NoError(t, ResultSuccess.AsError())

	err := ResultReadWriteDenied.AsError()
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindDataAccessResult))
}

func TestActionResultAsError(t *testing.T) {
	require.NoError(t, ActionSuccess.AsError())

	err := ActionObjectUndefined.AsError()
	require.Error(t, err)
	assert.True(t, dlms.Is(err, dlms.KindActionResult))
}

func TestGetRequestNormalExactBytes(t *testing.T) {
	req := GetRequestNormal{
		InvokeID:    0x00,
		ClassID:     3,
		InstanceID:  obis.New(1, 0, 1, 8, 0, 255),
		AttributeID: 2,
	}
	enc, err := EncodeGetRequestNormal(req)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0xC0, 0x01, 0x00,
		0x00, 0x03,
		0x01, 0x00, 0x01, 0x08, 0x00, 0xFF,
		0x02,
		0x00,
	}, enc)

	parsed, err := ParseGetRequest(enc)
	require.NoError(t, err)
	require.NotNil(t, parsed.Normal)
	assert.Equal(t, req, *parsed.Normal)
}

func TestGetResponseNormalDoubleLongUnsigned(t *testing.T) {
	resp := GetResponseNormal{
		InvokeID: 0x00,
		Result:   GetDataResult{Data: ptrData(axdr.NewDoubleLongUnsigned(123456))},
	}
	enc, err := EncodeGetResponseNormal(resp)
	require.NoError(t, err)

	parsed, err := ParseGetResponse(enc)
	require.NoError(t, err)
	require.NotNil(t, parsed.Normal)
	require.NotNil(t, parsed.Normal.Result.Data)
	assert.Equal(t, uint64(123456), parsed.Normal.Result.Data.Uint)
}

func TestGetResponseWithDataAccessError(t *testing.T) {
	resultErr := ResultObjectUndefined
	resp := GetResponseNormal{
		InvokeID: 0x01,
		Result:   GetDataResult{Error: &resultErr},
	}
	enc, err := EncodeGetResponseNormal(resp)
	require.NoError(t, err)

	parsed, err := ParseGetResponse(enc)
	require.NoError(t, err)
	require.NotNil(t, parsed.Normal.Result.Error)
	assert.Equal(t, ResultObjectUndefined, *parsed.Normal.Result.Error)
}

func TestGetBlockTransferTwoFrames(t *testing.T) {
	// alpha‖beta is the A-XDR encoding of OctetString DE AD BE EF CA FE,
	// split after its first two payload octets.
	alpha := []byte{0x09, 0x06, 0xDE, 0xAD}
	beta := []byte{0xBE, 0xEF, 0xCA, 0xFE}

	block1 := GetResponseWithDataBlock{
		InvokeID:    0x00,
		LastBlock:   false,
		BlockNumber: 1,
		Result:      GetDataBlockResult{RawData: alpha},
	}
	enc1 := EncodeGetResponseWithDataBlock(block1)
	parsed1, err := ParseGetResponse(enc1)
	require.NoError(t, err)
	require.NotNil(t, parsed1.WithDataBlock)
	assert.False(t, parsed1.WithDataBlock.LastBlock)
	assert.Equal(t, uint32(1), parsed1.WithDataBlock.BlockNumber)
	assert.Equal(t, alpha, parsed1.WithDataBlock.Result.RawData)

	next := GetRequestNext{InvokeID: 0x00, BlockNumber: 1}
	nextEnc := EncodeGetRequestNext(next)
	parsedNext, err := ParseGetRequest(nextEnc)
	require.NoError(t, err)
	require.NotNil(t, parsedNext.NextBlock)
	assert.Equal(t, uint32(1), parsedNext.NextBlock.BlockNumber)

	block2 := GetResponseWithDataBlock{
		InvokeID:    0x00,
		LastBlock:   true,
		BlockNumber: 2,
		Result:      GetDataBlockResult{RawData: beta},
	}
	enc2 := EncodeGetResponseWithDataBlock(block2)
	parsed2, err := ParseGetResponse(enc2)
	require.NoError(t, err)
	require.NotNil(t, parsed2.WithDataBlock)
	assert.True(t, parsed2.WithDataBlock.LastBlock)

	assembled := append(append([]byte(nil), parsed1.WithDataBlock.Result.RawData...), parsed2.WithDataBlock.Result.RawData...)
	assembledData, rest, err := axdr.Parse(assembled)
	require.NoError(t, err)
	assert.Empty(t, rest)

	wholeEnc, err := axdr.Encode(axdr.NewOctetString([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0xCA, 0xFE}))
	require.NoError(t, err)
	wholeData, rest, err := axdr.Parse(wholeEnc)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, wholeData, assembledData)
}

func TestSetRequestNormalRoundTrip(t *testing.T) {
	req := SetRequestNormal{
		InvokeID:    0x00,
		ClassID:     1,
		InstanceID:  obis.New(0, 0, 1, 0, 0, 255),
		AttributeID: 2,
		Value:       axdr.NewLongUnsigned(42),
	}
	enc, err := EncodeSetRequestNormal(req)
	require.NoError(t, err)
	require.Equal(t, TagSetRequest, enc[0])
	require.Equal(t, SetChoiceNormal, enc[1])

	parsed, err := ParseSetRequest(enc)
	require.NoError(t, err)
	require.NotNil(t, parsed.Normal)
	assert.Equal(t, req, *parsed.Normal)
}

func TestSetResponseNormalRoundTrip(t *testing.T) {
	resp := SetResponseNormal{InvokeID: 0x05, Result: ResultSuccess}
	enc := EncodeSetResponseNormal(resp)
	parsed, err := ParseSetResponse(enc)
	require.NoError(t, err)
	require.NotNil(t, parsed.Normal)
	assert.Equal(t, resp, *parsed.Normal)
}

func TestActionRequestNormalRoundTrip(t *testing.T) {
	params := axdr.NewOctetString([]byte{0x01, 0x02})
	req := ActionRequestNormal{
		InvokeID:                   0x03,
		ClassID:                    70,
		InstanceID:                 obis.New(0, 0, 96, 1, 0, 255),
		MethodID:                   1,
		MethodInvocationParameters: &params,
	}
	enc, err := EncodeActionRequestNormal(req)
	require.NoError(t, err)
	require.Equal(t, TagActionRequest, enc[0])

	parsed, err := ParseActionRequest(enc)
	require.NoError(t, err)
	require.NotNil(t, parsed.Normal)
	assert.Equal(t, req, *parsed.Normal)
}

func TestActionRequestNormalNoParams(t *testing.T) {
	req := ActionRequestNormal{
		InvokeID:   0x00,
		ClassID:    70,
		InstanceID: obis.New(0, 0, 96, 1, 0, 255),
		MethodID:   1,
	}
	enc, err := EncodeActionRequestNormal(req)
	require.NoError(t, err)

	parsed, err := ParseActionRequest(enc)
	require.NoError(t, err)
	require.NotNil(t, parsed.Normal)
	assert.Nil(t, parsed.Normal.MethodInvocationParameters)
}

func TestActionResponseNormalSuccessNoReturnValue(t *testing.T) {
	resp := ActionResponseNormal{InvokeID: 0x00, Result: ActionSuccess}
	enc, err := EncodeActionResponseNormal(resp)
	require.NoError(t, err)

	parsed, err := ParseActionResponse(enc)
	require.NoError(t, err)
	require.NotNil(t, parsed.Normal)
	assert.Equal(t, ActionSuccess, parsed.Normal.Result)
	assert.Nil(t, parsed.Normal.ReturnValue)
}

func TestActionResponseNormalSuccessWithReturnValue(t *testing.T) {
	rv := GetDataResult{Data: ptrData(axdr.NewUnsigned(7))}
	resp := ActionResponseNormal{InvokeID: 0x01, Result: ActionSuccess, ReturnValue: &rv}
	enc, err := EncodeActionResponseNormal(resp)
	require.NoError(t, err)

	parsed, err := ParseActionResponse(enc)
	require.NoError(t, err)
	require.NotNil(t, parsed.Normal.ReturnValue)
	require.NotNil(t, parsed.Normal.ReturnValue.Data)
	assert.Equal(t, uint64(7), parsed.Normal.ReturnValue.Data.Uint)
}

func TestActionResponseNormalFailureCarriesNoReturnValue(t *testing.T) {
	resp := ActionResponseNormal{InvokeID: 0x02, Result: ActionObjectUndefined}
	enc, err := EncodeActionResponseNormal(resp)
	require.NoError(t, err)
	assert.Equal(t, []byte{TagActionResponse, ActionChoiceNormal, 0x02, byte(ActionObjectUndefined)}, enc)

	parsed, err := ParseActionResponse(enc)
	require.NoError(t, err)
	assert.Nil(t, parsed.Normal.ReturnValue)
}

func TestActionRequestWithListRoundTrip(t *testing.T) {
	req := ActionRequestWithList{
		InvokeID: 0x00,
		MethodDescriptors: []MethodDescriptor{
			{ClassID: 70, InstanceID: obis.New(0, 0, 96, 1, 0, 255), MethodID: 1},
			{ClassID: 70, InstanceID: obis.New(0, 0, 96, 1, 1, 255), MethodID: 2},
		},
	}
	enc, err := EncodeActionRequestWithList(req)
	require.NoError(t, err)

	parsed, err := ParseActionRequest(enc)
	require.NoError(t, err)
	require.NotNil(t, parsed.WithList)
	assert.Equal(t, req, *parsed.WithList)
}

func ptrData(d axdr.Data) *axdr.Data { return &d }
