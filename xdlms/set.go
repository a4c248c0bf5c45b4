package xdlms

import (
	"encoding/binary"

	"github.com/thinkgos/go-dlms-cosem/axdr"
	"github.com/thinkgos/go-dlms-cosem/dlms"
	"github.com/thinkgos/go-dlms-cosem/obis"
)

// SET-Request/SET-Response tags, Green Book Table 96.
const (
	TagSetRequest  byte = 0xC1
	TagSetResponse byte = 0xC5
)

// SET-Request choice discriminators, Table 72.
const (
	SetChoiceNormal         byte = 1
	SetChoiceFirstDataBlock byte = 2
	SetChoiceWithDataBlock  byte = 3
	SetChoiceWithList       byte = 4
)

// SetRequestNormal writes one attribute in a single round trip.
type SetRequestNormal struct {
	InvokeID        byte
	ClassID         uint16
	InstanceID      obis.Code
	AttributeID     int8
	AccessSelection *AccessSelector
	Value           axdr.Data
}

// SetRequestFirstDataBlock starts a block-transfer SET.
type SetRequestFirstDataBlock struct {
	InvokeID        byte
	ClassID         uint16
	InstanceID      obis.Code
	AttributeID     int8
	AccessSelection *AccessSelector
	LastBlock       bool
	BlockNumber     uint32
	RawData         []byte
}

// SetRequestWithDataBlock continues a block-transfer SET.
type SetRequestWithDataBlock struct {
	InvokeID    byte
	LastBlock   bool
	BlockNumber uint32
	RawData     []byte
}

// SetRequestWithList writes several attributes in one round trip.
type SetRequestWithList struct {
	InvokeID    byte
	Descriptors []AttributeDescriptor
	Values      []axdr.Data
}

// SetRequest is the SET-Request CHOICE.
type SetRequest struct {
	Normal          *SetRequestNormal
	FirstDataBlock  *SetRequestFirstDataBlock
	WithDataBlock   *SetRequestWithDataBlock
	WithList        *SetRequestWithList
}

// EncodeSetRequestNormal renders req as a complete SET-Request APDU.
func EncodeSetRequestNormal(req SetRequestNormal) ([]byte, error) {
	sel, err := encodeAccessSelection(req.AccessSelection)
	if err != nil {
		return nil, err
	}
	value, err := axdr.Encode(req.Value)
	if err != nil {
		return nil, err
	}
	buf := []byte{TagSetRequest, SetChoiceNormal, req.InvokeID}
	var classBytes [2]byte
	binary.BigEndian.PutUint16(classBytes[:], req.ClassID)
	buf = append(buf, classBytes[:]...)
	buf = append(buf, req.InstanceID.Bytes()...)
	buf = append(buf, byte(req.AttributeID))
	buf = append(buf, sel...)
	buf = append(buf, value...)
	return buf, nil
}

// EncodeSetRequestFirstDataBlock renders req as a complete
// SET-Request-With-First-Datablock APDU.
func EncodeSetRequestFirstDataBlock(req SetRequestFirstDataBlock) ([]byte, error) {
	sel, err := encodeAccessSelection(req.AccessSelection)
	if err != nil {
		return nil, err
	}
	buf := []byte{TagSetRequest, SetChoiceFirstDataBlock, req.InvokeID}
	var classBytes [2]byte
	binary.BigEndian.PutUint16(classBytes[:], req.ClassID)
	buf = append(buf, classBytes[:]...)
	buf = append(buf, req.InstanceID.Bytes()...)
	buf = append(buf, byte(req.AttributeID))
	buf = append(buf, sel...)
	if req.LastBlock {
		buf = append(buf, 0x01)
	} else {
		buf = append(buf, 0x00)
	}
	var blockBytes [4]byte
	binary.BigEndian.PutUint32(blockBytes[:], req.BlockNumber)
	buf = append(buf, blockBytes[:]...)
	buf = append(buf, axdr.EncodeOctetStringRaw(req.RawData)...)
	return buf, nil
}

// EncodeSetRequestWithDataBlock renders req as a complete
// SET-Request-With-Datablock APDU.
func EncodeSetRequestWithDataBlock(req SetRequestWithDataBlock) []byte {
	buf := []byte{TagSetRequest, SetChoiceWithDataBlock, req.InvokeID}
	if req.LastBlock {
		buf = append(buf, 0x01)
	} else {
		buf = append(buf, 0x00)
	}
	var blockBytes [4]byte
	binary.BigEndian.PutUint32(blockBytes[:], req.BlockNumber)
	buf = append(buf, blockBytes[:]...)
	buf = append(buf, axdr.EncodeOctetStringRaw(req.RawData)...)
	return buf
}

// ParseSetRequest parses a complete SET-Request APDU of any choice.
func ParseSetRequest(b []byte) (SetRequest, error) {
	if len(b) < 3 {
		return SetRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: SET-Request truncated")
	}
	if b[0] != TagSetRequest {
		return SetRequest{}, dlms.Newf(dlms.KindInvalidFormat, "xdlms: expected SET-Request tag 0x%02X, got 0x%02X", TagSetRequest, b[0])
	}
	choice := b[1]
	invokeID := b[2]
	rest := b[3:]
	switch choice {
	case SetChoiceNormal:
		desc, rest2, err := decodeAttributeDescriptor(rest)
		if err != nil {
			return SetRequest{}, err
		}
		sel, rest3, err := decodeAccessSelection(rest2)
		if err != nil {
			return SetRequest{}, err
		}
		value, rest4, err := axdr.Parse(rest3)
		if err != nil {
			return SetRequest{}, err
		}
		if len(rest4) != 0 {
			return SetRequest{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after SET-Request-Normal")
		}
		return SetRequest{Normal: &SetRequestNormal{
			InvokeID:        invokeID,
			ClassID:         desc.ClassID,
			InstanceID:      desc.InstanceID,
			AttributeID:     desc.AttributeID,
			AccessSelection: sel,
			Value:           value,
		}}, nil
	case SetChoiceFirstDataBlock:
		desc, rest2, err := decodeAttributeDescriptor(rest)
		if err != nil {
			return SetRequest{}, err
		}
		sel, rest3, err := decodeAccessSelection(rest2)
		if err != nil {
			return SetRequest{}, err
		}
		if len(rest3) < 5 {
			return SetRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: SET-Request-With-First-Datablock truncated")
		}
		lastBlock := rest3[0] != 0
		blockNumber := binary.BigEndian.Uint32(rest3[1:5])
		raw, rest4, err := axdr.DecodeOctetStringRaw(rest3[5:])
		if err != nil {
			return SetRequest{}, err
		}
		if len(rest4) != 0 {
			return SetRequest{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after SET-Request-With-First-Datablock")
		}
		return SetRequest{FirstDataBlock: &SetRequestFirstDataBlock{
			InvokeID:        invokeID,
			ClassID:         desc.ClassID,
			InstanceID:      desc.InstanceID,
			AttributeID:     desc.AttributeID,
			AccessSelection: sel,
			LastBlock:       lastBlock,
			BlockNumber:     blockNumber,
			RawData:         raw,
		}}, nil
	case SetChoiceWithDataBlock:
		if len(rest) < 5 {
			return SetRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: SET-Request-With-Datablock truncated")
		}
		lastBlock := rest[0] != 0
		blockNumber := binary.BigEndian.Uint32(rest[1:5])
		raw, rest2, err := axdr.DecodeOctetStringRaw(rest[5:])
		if err != nil {
			return SetRequest{}, err
		}
		if len(rest2) != 0 {
			return SetRequest{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after SET-Request-With-Datablock")
		}
		return SetRequest{WithDataBlock: &SetRequestWithDataBlock{
			InvokeID:    invokeID,
			LastBlock:   lastBlock,
			BlockNumber: blockNumber,
			RawData:     raw,
		}}, nil
	case SetChoiceWithList:
		if len(rest) < 1 {
			return SetRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: SET-Request-With-List count missing")
		}
		count := int(rest[0])
		rest = rest[1:]
		descriptors := make([]AttributeDescriptor, 0, count)
		for i := 0; i < count; i++ {
			var desc AttributeDescriptor
			var err error
			desc, rest, err = decodeAttributeDescriptor(rest)
			if err != nil {
				return SetRequest{}, err
			}
			descriptors = append(descriptors, desc)
		}
		if len(rest) < 1 {
			return SetRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: SET-Request-With-List value count missing")
		}
		valueCount := int(rest[0])
		rest = rest[1:]
		values := make([]axdr.Data, 0, valueCount)
		for i := 0; i < valueCount; i++ {
			var v axdr.Data
			var err error
			v, rest, err = axdr.Parse(rest)
			if err != nil {
				return SetRequest{}, err
			}
			values = append(values, v)
		}
		if len(rest) != 0 {
			return SetRequest{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after SET-Request-With-List")
		}
		return SetRequest{WithList: &SetRequestWithList{InvokeID: invokeID, Descriptors: descriptors, Values: values}}, nil
	default:
		return SetRequest{}, dlms.Newf(dlms.KindInvalidFormat, "xdlms: unrecognised SET-Request choice 0x%02X", choice)
	}
}

// SetResponseNormal carries the result of a SET-Request-Normal.
type SetResponseNormal struct {
	InvokeID byte
	Result   DataAccessResult
}

// SetResponseDataBlock acknowledges one block of a block-transfer SET.
type SetResponseDataBlock struct {
	InvokeID    byte
	BlockNumber uint32
}

// SetResponseLastDataBlock acknowledges the final block of a block-transfer
// SET and carries the overall result.
type SetResponseLastDataBlock struct {
	InvokeID    byte
	Result      DataAccessResult
	BlockNumber uint32
}

// SetResponseWithList carries the results of a SET-Request-With-List.
type SetResponseWithList struct {
	InvokeID byte
	Results  []DataAccessResult
}

// SetResponse is the SET-Response CHOICE.
type SetResponse struct {
	Normal            *SetResponseNormal
	DataBlock         *SetResponseDataBlock
	LastDataBlock     *SetResponseLastDataBlock
	WithList          *SetResponseWithList
}

// EncodeSetResponseNormal renders resp as a complete SET-Response APDU.
func EncodeSetResponseNormal(resp SetResponseNormal) []byte {
	return []byte{TagSetResponse, SetChoiceNormal, resp.InvokeID, byte(resp.Result)}
}

// EncodeSetResponseDataBlock renders resp as a complete
// SET-Response-Datablock APDU.
func EncodeSetResponseDataBlock(resp SetResponseDataBlock) []byte {
	buf := []byte{TagSetResponse, 0x02, resp.InvokeID}
	var blockBytes [4]byte
	binary.BigEndian.PutUint32(blockBytes[:], resp.BlockNumber)
	return append(buf, blockBytes[:]...)
}

// EncodeSetResponseLastDataBlock renders resp as a complete
// SET-Response-Last-Datablock APDU.
func EncodeSetResponseLastDataBlock(resp SetResponseLastDataBlock) []byte {
	buf := []byte{TagSetResponse, 0x03, resp.InvokeID, byte(resp.Result)}
	var blockBytes [4]byte
	binary.BigEndian.PutUint32(blockBytes[:], resp.BlockNumber)
	return append(buf, blockBytes[:]...)
}

// ParseSetResponse parses a complete SET-Response APDU of any choice.
func ParseSetResponse(b []byte) (SetResponse, error) {
	if len(b) < 3 {
		return SetResponse{}, dlms.New(dlms.KindIncomplete, "xdlms: SET-Response truncated")
	}
	if b[0] != TagSetResponse {
		return SetResponse{}, dlms.Newf(dlms.KindInvalidFormat, "xdlms: expected SET-Response tag 0x%02X, got 0x%02X", TagSetResponse, b[0])
	}
	choice := b[1]
	invokeID := b[2]
	rest := b[3:]
	switch choice {
	case SetChoiceNormal:
		if len(rest) != 1 {
			return SetResponse{}, dlms.New(dlms.KindInvalidFormat, "xdlms: malformed SET-Response-Normal")
		}
		r, err := ParseDataAccessResult(rest[0])
		if err != nil {
			return SetResponse{}, err
		}
		return SetResponse{Normal: &SetResponseNormal{InvokeID: invokeID, Result: r}}, nil
	case 0x02:
		if len(rest) != 4 {
			return SetResponse{}, dlms.New(dlms.KindInvalidFormat, "xdlms: malformed SET-Response-Datablock")
		}
		return SetResponse{DataBlock: &SetResponseDataBlock{InvokeID: invokeID, BlockNumber: binary.BigEndian.Uint32(rest)}}, nil
	case 0x03:
		if len(rest) != 5 {
			return SetResponse{}, dlms.New(dlms.KindInvalidFormat, "xdlms: malformed SET-Response-Last-Datablock")
		}
		r, err := ParseDataAccessResult(rest[0])
		if err != nil {
			return SetResponse{}, err
		}
		return SetResponse{LastDataBlock: &SetResponseLastDataBlock{
			InvokeID:    invokeID,
			Result:      r,
			BlockNumber: binary.BigEndian.Uint32(rest[1:5]),
		}}, nil
	case SetChoiceWithList:
		if len(rest) < 1 {
			return SetResponse{}, dlms.New(dlms.KindIncomplete, "xdlms: SET-Response-With-List count missing")
		}
		count := int(rest[0])
		rest = rest[1:]
		if len(rest) != count {
			return SetResponse{}, dlms.New(dlms.KindInvalidFormat, "xdlms: SET-Response-With-List result count mismatch")
		}
		results := make([]DataAccessResult, 0, count)
		for _, raw := range rest {
			r, err := ParseDataAccessResult(raw)
			if err != nil {
				return SetResponse{}, err
			}
			results = append(results, r)
		}
		return SetResponse{WithList: &SetResponseWithList{InvokeID: invokeID, Results: results}}, nil
	default:
		return SetResponse{}, dlms.Newf(dlms.KindInvalidFormat, "xdlms: unrecognised SET-Response choice 0x%02X", choice)
	}
}
