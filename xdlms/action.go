package xdlms

import (
	"encoding/binary"

	"github.com/thinkgos/go-dlms-cosem/axdr"
	"github.com/thinkgos/go-dlms-cosem/dlms"
	"github.com/thinkgos/go-dlms-cosem/obis"
)

// ACTION-Request/ACTION-Response tags, Green Book Table 97.
const (
	TagActionRequest  byte = 0xC3
	TagActionResponse byte = 0xC7
)

// ACTION-Request/ACTION-Response choice discriminators, Table 74.
const (
	ActionChoiceNormal     byte = 1
	ActionChoiceNextPBlock byte = 2
	ActionChoiceWithList   byte = 3
)

// MethodDescriptor identifies a method to invoke and its optional
// parameters.
type MethodDescriptor struct {
	ClassID                    uint16
	InstanceID                 obis.Code
	MethodID                   int8
	MethodInvocationParameters *axdr.Data
}

func encodeOptionalData(d *axdr.Data) ([]byte, error) {
	if d == nil {
		return []byte{0x00}, nil
	}
	enc, err := axdr.Encode(*d)
	if err != nil {
		return nil, err
	}
	return append([]byte{0x01}, enc...), nil
}

func decodeOptionalData(b []byte) (*axdr.Data, []byte, error) {
	if len(b) < 1 {
		return nil, nil, dlms.New(dlms.KindIncomplete, "xdlms: optional-data presence missing")
	}
	if b[0] == 0 {
		return nil, b[1:], nil
	}
	d, rest, err := axdr.Parse(b[1:])
	if err != nil {
		return nil, nil, err
	}
	return &d, rest, nil
}

func (d MethodDescriptor) encode() ([]byte, error) {
	buf := make([]byte, 0, 9)
	var classBytes [2]byte
	binary.BigEndian.PutUint16(classBytes[:], d.ClassID)
	buf = append(buf, classBytes[:]...)
	buf = append(buf, d.InstanceID.Bytes()...)
	buf = append(buf, byte(d.MethodID))
	params, err := encodeOptionalData(d.MethodInvocationParameters)
	if err != nil {
		return nil, err
	}
	return append(buf, params...), nil
}

func decodeMethodDescriptor(b []byte) (MethodDescriptor, []byte, error) {
	if len(b) < 9 {
		return MethodDescriptor{}, nil, dlms.New(dlms.KindIncomplete, "xdlms: method descriptor truncated")
	}
	classID := binary.BigEndian.Uint16(b[0:2])
	code, err := obis.Parse(b[2:8])
	if err != nil {
		return MethodDescriptor{}, nil, dlms.Wrap(dlms.KindInvalidFormat, "xdlms: bad instance-id", err)
	}
	methodID := int8(b[8])
	params, rest, err := decodeOptionalData(b[9:])
	if err != nil {
		return MethodDescriptor{}, nil, err
	}
	return MethodDescriptor{ClassID: classID, InstanceID: code, MethodID: methodID, MethodInvocationParameters: params}, rest, nil
}

// ActionRequestNormal invokes a single method.
type ActionRequestNormal struct {
	InvokeID                   byte
	ClassID                    uint16
	InstanceID                 obis.Code
	MethodID                   int8
	MethodInvocationParameters *axdr.Data
}

// ActionRequestNextPBlock requests the next parameterized data block.
type ActionRequestNextPBlock struct {
	InvokeID    byte
	BlockNumber uint32
}

// ActionRequestWithList invokes several methods in one round trip. Each
// method's parameters, if any, travel inside its own MethodDescriptor.
type ActionRequestWithList struct {
	InvokeID          byte
	MethodDescriptors []MethodDescriptor
}

// ActionRequest is the ACTION-Request CHOICE (parameterized block-transfer
// variants omitted: no method parameters in this engine's scope are large
// enough to need them).
type ActionRequest struct {
	Normal     *ActionRequestNormal
	NextPBlock *ActionRequestNextPBlock
	WithList   *ActionRequestWithList
}

// EncodeActionRequestNormal renders req as a complete ACTION-Request APDU.
func EncodeActionRequestNormal(req ActionRequestNormal) ([]byte, error) {
	params, err := encodeOptionalData(req.MethodInvocationParameters)
	if err != nil {
		return nil, err
	}
	buf := []byte{TagActionRequest, ActionChoiceNormal, req.InvokeID}
	var classBytes [2]byte
	binary.BigEndian.PutUint16(classBytes[:], req.ClassID)
	buf = append(buf, classBytes[:]...)
	buf = append(buf, req.InstanceID.Bytes()...)
	buf = append(buf, byte(req.MethodID))
	buf = append(buf, params...)
	return buf, nil
}

// EncodeActionRequestNextPBlock renders req as a complete
// ACTION-Request-Next-PBlock APDU.
func EncodeActionRequestNextPBlock(req ActionRequestNextPBlock) []byte {
	buf := []byte{TagActionRequest, ActionChoiceNextPBlock, req.InvokeID}
	var blockBytes [4]byte
	binary.BigEndian.PutUint32(blockBytes[:], req.BlockNumber)
	return append(buf, blockBytes[:]...)
}

// EncodeActionRequestWithList renders req as a complete
// ACTION-Request-With-List APDU.
func EncodeActionRequestWithList(req ActionRequestWithList) ([]byte, error) {
	buf := []byte{TagActionRequest, ActionChoiceWithList, req.InvokeID, byte(len(req.MethodDescriptors))}
	for _, d := range req.MethodDescriptors {
		enc, err := d.encode()
		if err != nil {
			return nil, err
		}
		buf = append(buf, enc...)
	}
	return buf, nil
}

// ParseActionRequest parses a complete ACTION-Request APDU (Normal,
// NextPBlock, or WithList choices).
func ParseActionRequest(b []byte) (ActionRequest, error) {
	if len(b) < 3 {
		return ActionRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: ACTION-Request truncated")
	}
	if b[0] != TagActionRequest {
		return ActionRequest{}, dlms.Newf(dlms.KindInvalidFormat, "xdlms: expected ACTION-Request tag 0x%02X, got 0x%02X", TagActionRequest, b[0])
	}
	choice := b[1]
	invokeID := b[2]
	rest := b[3:]
	switch choice {
	case ActionChoiceNormal:
		if len(rest) < 9 {
			return ActionRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: ACTION-Request-Normal truncated")
		}
		classID := binary.BigEndian.Uint16(rest[0:2])
		code, err := obis.Parse(rest[2:8])
		if err != nil {
			return ActionRequest{}, dlms.Wrap(dlms.KindInvalidFormat, "xdlms: bad instance-id", err)
		}
		methodID := int8(rest[8])
		params, rest2, err := decodeOptionalData(rest[9:])
		if err != nil {
			return ActionRequest{}, err
		}
		if len(rest2) != 0 {
			return ActionRequest{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after ACTION-Request-Normal")
		}
		return ActionRequest{Normal: &ActionRequestNormal{
			InvokeID:                   invokeID,
			ClassID:                    classID,
			InstanceID:                 code,
			MethodID:                   methodID,
			MethodInvocationParameters: params,
		}}, nil
	case ActionChoiceNextPBlock:
		if len(rest) != 4 {
			return ActionRequest{}, dlms.New(dlms.KindInvalidFormat, "xdlms: malformed ACTION-Request-Next-PBlock")
		}
		return ActionRequest{NextPBlock: &ActionRequestNextPBlock{InvokeID: invokeID, BlockNumber: binary.BigEndian.Uint32(rest)}}, nil
	case ActionChoiceWithList:
		if len(rest) < 1 {
			return ActionRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: ACTION-Request-With-List count missing")
		}
		count := int(rest[0])
		rest = rest[1:]
		descriptors := make([]MethodDescriptor, 0, count)
		for i := 0; i < count; i++ {
			var d MethodDescriptor
			var err error
			d, rest, err = decodeMethodDescriptor(rest)
			if err != nil {
				return ActionRequest{}, err
			}
			descriptors = append(descriptors, d)
		}
		if len(rest) != 0 {
			return ActionRequest{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after ACTION-Request-With-List")
		}
		return ActionRequest{WithList: &ActionRequestWithList{InvokeID: invokeID, MethodDescriptors: descriptors}}, nil
	default:
		return ActionRequest{}, dlms.Newf(dlms.KindInvalidFormat, "xdlms: unrecognised ACTION-Request choice 0x%02X", choice)
	}
}

// ActionResponseNormal carries the result of a single method invocation.
// ReturnValue is present only when Result is success and the method
// produced a return value.
type ActionResponseNormal struct {
	InvokeID    byte
	Result      ActionResult
	ReturnValue *GetDataResult
}

// ActionResponseNextPBlock continues a parameterized block-transfer
// response.
type ActionResponseNextPBlock struct {
	InvokeID    byte
	BlockNumber uint32
}

// ActionResponseWithList carries the results of several method invocations.
type ActionResponseWithList struct {
	InvokeID byte
	Results  []ActionResult
}

// ActionResponse is the ACTION-Response CHOICE (the PBlock data-carrying
// variant is omitted: no ACTION-Request in this engine returns values
// large enough to need block transfer).
type ActionResponse struct {
	Normal     *ActionResponseNormal
	NextPBlock *ActionResponseNextPBlock
	WithList   *ActionResponseWithList
}

func encodeActionReturnValue(result ActionResult, returnValue *GetDataResult) ([]byte, error) {
	if result != ActionSuccess {
		return []byte{}, nil
	}
	if returnValue == nil {
		return []byte{0x00}, nil
	}
	rv, err := encodeGetDataResult(*returnValue)
	if err != nil {
		return nil, err
	}
	return append([]byte{0x01}, rv...), nil
}

func decodeActionReturnValue(result ActionResult, b []byte) (*GetDataResult, []byte, error) {
	if result != ActionSuccess {
		return nil, b, nil
	}
	if len(b) < 1 {
		return nil, nil, dlms.New(dlms.KindIncomplete, "xdlms: ACTION-Response return-value presence missing")
	}
	if b[0] == 0 {
		return nil, b[1:], nil
	}
	rv, rest, err := decodeGetDataResult(b[1:])
	if err != nil {
		return nil, nil, err
	}
	return &rv, rest, nil
}

// EncodeActionResponseNormal renders resp as a complete ACTION-Response
// APDU.
func EncodeActionResponseNormal(resp ActionResponseNormal) ([]byte, error) {
	rv, err := encodeActionReturnValue(resp.Result, resp.ReturnValue)
	if err != nil {
		return nil, err
	}
	buf := []byte{TagActionResponse, ActionChoiceNormal, resp.InvokeID, byte(resp.Result)}
	return append(buf, rv...), nil
}

// EncodeActionResponseNextPBlock renders resp as a complete
// ACTION-Response-Next-PBlock APDU.
func EncodeActionResponseNextPBlock(resp ActionResponseNextPBlock) []byte {
	buf := []byte{TagActionResponse, ActionChoiceNextPBlock, resp.InvokeID}
	var blockBytes [4]byte
	binary.BigEndian.PutUint32(blockBytes[:], resp.BlockNumber)
	return append(buf, blockBytes[:]...)
}

// EncodeActionResponseWithList renders resp as a complete
// ACTION-Response-With-List APDU.
func EncodeActionResponseWithList(resp ActionResponseWithList) []byte {
	buf := []byte{TagActionResponse, ActionChoiceWithList, resp.InvokeID, byte(len(resp.Results))}
	for _, r := range resp.Results {
		buf = append(buf, byte(r))
	}
	return buf
}

// ParseActionResponse parses a complete ACTION-Response APDU (Normal,
// NextPBlock, or WithList choices).
func ParseActionResponse(b []byte) (ActionResponse, error) {
	if len(b) < 3 {
		return ActionResponse{}, dlms.New(dlms.KindIncomplete, "xdlms: ACTION-Response truncated")
	}
	if b[0] != TagActionResponse {
		return ActionResponse{}, dlms.Newf(dlms.KindInvalidFormat, "xdlms: expected ACTION-Response tag 0x%02X, got 0x%02X", TagActionResponse, b[0])
	}
	choice := b[1]
	invokeID := b[2]
	rest := b[3:]
	switch choice {
	case ActionChoiceNormal:
		if len(rest) < 1 {
			return ActionResponse{}, dlms.New(dlms.KindIncomplete, "xdlms: ACTION-Response-Normal result missing")
		}
		result, err := ParseActionResult(rest[0])
		if err != nil {
			return ActionResponse{}, err
		}
		returnValue, rest2, err := decodeActionReturnValue(result, rest[1:])
		if err != nil {
			return ActionResponse{}, err
		}
		if len(rest2) != 0 {
			return ActionResponse{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after ACTION-Response-Normal")
		}
		return ActionResponse{Normal: &ActionResponseNormal{InvokeID: invokeID, Result: result, ReturnValue: returnValue}}, nil
	case ActionChoiceNextPBlock:
		if len(rest) != 4 {
			return ActionResponse{}, dlms.New(dlms.KindInvalidFormat, "xdlms: malformed ACTION-Response-Next-PBlock")
		}
		return ActionResponse{NextPBlock: &ActionResponseNextPBlock{InvokeID: invokeID, BlockNumber: binary.BigEndian.Uint32(rest)}}, nil
	case ActionChoiceWithList:
		if len(rest) < 1 {
			return ActionResponse{}, dlms.New(dlms.KindIncomplete, "xdlms: ACTION-Response-With-List count missing")
		}
		count := int(rest[0])
		rest = rest[1:]
		results := make([]ActionResult, 0, count)
		for i := 0; i < count; i++ {
			if len(rest) < 1 {
				return ActionResponse{}, dlms.New(dlms.KindIncomplete, "xdlms: ACTION-Response-With-List result truncated")
			}
			r, err := ParseActionResult(rest[0])
			if err != nil {
				return ActionResponse{}, err
			}
			results = append(results, r)
			rest = rest[1:]
		}
		if len(rest) != 0 {
			return ActionResponse{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after ACTION-Response-With-List")
		}
		return ActionResponse{WithList: &ActionResponseWithList{InvokeID: invokeID, Results: results}}, nil
	default:
		return ActionResponse{}, dlms.Newf(dlms.KindInvalidFormat, "xdlms: unrecognised ACTION-Response choice 0x%02X", choice)
	}
}
