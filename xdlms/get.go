package xdlms

import (
	"encoding/binary"

	"github.com/thinkgos/go-dlms-cosem/axdr"
	"github.com/thinkgos/go-dlms-cosem/dlms"
	"github.com/thinkgos/go-dlms-cosem/obis"
)

// GET-Request/GET-Response tags, Green Book Table 95.
const (
	TagGetRequest  byte = 0xC0
	TagGetResponse byte = 0xC4
)

// GET-Request choice discriminators, Table 70.
const (
	GetChoiceNormal       byte = 1
	GetChoiceNextBlock    byte = 2
	GetChoiceWithList     byte = 3
)

// AttributeDescriptor names one COSEM attribute: class, logical name,
// attribute index.
type AttributeDescriptor struct {
	ClassID    uint16
	InstanceID obis.Code
	AttributeID int8
}

func (d AttributeDescriptor) encode() []byte {
	buf := make([]byte, 0, 9)
	var classBytes [2]byte
	binary.BigEndian.PutUint16(classBytes[:], d.ClassID)
	buf = append(buf, classBytes[:]...)
	buf = append(buf, d.InstanceID.Bytes()...)
	buf = append(buf, byte(d.AttributeID))
	return buf
}

func decodeAttributeDescriptor(b []byte) (AttributeDescriptor, []byte, error) {
	if len(b) < 9 {
		return AttributeDescriptor{}, nil, dlms.New(dlms.KindIncomplete, "xdlms: attribute descriptor truncated")
	}
	classID := binary.BigEndian.Uint16(b[0:2])
	code, err := obis.Parse(b[2:8])
	if err != nil {
		return AttributeDescriptor{}, nil, dlms.Wrap(dlms.KindInvalidFormat, "xdlms: bad instance-id", err)
	}
	return AttributeDescriptor{
		ClassID:     classID,
		InstanceID:  code,
		AttributeID: int8(b[8]),
	}, b[9:], nil
}

// AccessSelector is an optional selective-access descriptor attached to a
// GET/SET request.
type AccessSelector struct {
	Selector   byte
	Parameters axdr.Data
}

func encodeAccessSelection(sel *AccessSelector) ([]byte, error) {
	if sel == nil {
		return []byte{0x00}, nil
	}
	params, err := axdr.Encode(sel.Parameters)
	if err != nil {
		return nil, err
	}
	buf := []byte{0x01, sel.Selector}
	return append(buf, params...), nil
}

func decodeAccessSelection(b []byte) (*AccessSelector, []byte, error) {
	if len(b) < 1 {
		return nil, nil, dlms.New(dlms.KindIncomplete, "xdlms: access-selection presence missing")
	}
	if b[0] == 0 {
		return nil, b[1:], nil
	}
	if len(b) < 2 {
		return nil, nil, dlms.New(dlms.KindIncomplete, "xdlms: access-selection truncated")
	}
	selector := b[1]
	params, rest, err := axdr.Parse(b[2:])
	if err != nil {
		return nil, nil, err
	}
	return &AccessSelector{Selector: selector, Parameters: params}, rest, nil
}

// GetRequestNormal reads one attribute in a single round trip.
type GetRequestNormal struct {
	InvokeID       byte
	ClassID        uint16
	InstanceID     obis.Code
	AttributeID    int8
	AccessSelection *AccessSelector
}

// GetRequestNext asks for the next block of an ongoing block-transfer GET.
type GetRequestNext struct {
	InvokeID    byte
	BlockNumber uint32
}

// GetRequestWithList reads several attributes in one round trip.
type GetRequestWithList struct {
	InvokeID    byte
	Descriptors []AttributeDescriptor
}

// GetRequest is the GET-Request CHOICE.
type GetRequest struct {
	Normal    *GetRequestNormal
	NextBlock *GetRequestNext
	WithList  *GetRequestWithList
}

// EncodeGetRequestNormal renders req as a complete GET-Request APDU.
func EncodeGetRequestNormal(req GetRequestNormal) ([]byte, error) {
	sel, err := encodeAccessSelection(req.AccessSelection)
	if err != nil {
		return nil, err
	}
	buf := []byte{TagGetRequest, GetChoiceNormal, req.InvokeID}
	var classBytes [2]byte
	binary.BigEndian.PutUint16(classBytes[:], req.ClassID)
	buf = append(buf, classBytes[:]...)
	buf = append(buf, req.InstanceID.Bytes()...)
	buf = append(buf, byte(req.AttributeID))
	buf = append(buf, sel...)
	return buf, nil
}

// EncodeGetRequestNext renders req as a complete GET-Request-Next APDU.
func EncodeGetRequestNext(req GetRequestNext) []byte {
	buf := []byte{TagGetRequest, GetChoiceNextBlock, req.InvokeID}
	var blockBytes [4]byte
	binary.BigEndian.PutUint32(blockBytes[:], req.BlockNumber)
	return append(buf, blockBytes[:]...)
}

// EncodeGetRequestWithList renders req as a complete GET-Request-With-List
// APDU.
func EncodeGetRequestWithList(req GetRequestWithList) []byte {
	buf := []byte{TagGetRequest, GetChoiceWithList, req.InvokeID, byte(len(req.Descriptors))}
	for _, d := range req.Descriptors {
		buf = append(buf, d.encode()...)
	}
	return buf
}

// ParseGetRequest parses a complete GET-Request APDU of any choice.
func ParseGetRequest(b []byte) (GetRequest, error) {
	if len(b) < 3 {
		return GetRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: GET-Request truncated")
	}
	if b[0] != TagGetRequest {
		return GetRequest{}, dlms.Newf(dlms.KindInvalidFormat, "xdlms: expected GET-Request tag 0x%02X, got 0x%02X", TagGetRequest, b[0])
	}
	choice := b[1]
	invokeID := b[2]
	rest := b[3:]
	switch choice {
	case GetChoiceNormal:
		desc, rest2, err := decodeAttributeDescriptor(rest)
		if err != nil {
			return GetRequest{}, err
		}
		sel, rest3, err := decodeAccessSelection(rest2)
		if err != nil {
			return GetRequest{}, err
		}
		if len(rest3) != 0 {
			return GetRequest{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after GET-Request-Normal")
		}
		return GetRequest{Normal: &GetRequestNormal{
			InvokeID:        invokeID,
			ClassID:         desc.ClassID,
			InstanceID:      desc.InstanceID,
			AttributeID:     desc.AttributeID,
			AccessSelection: sel,
		}}, nil
	case GetChoiceNextBlock:
		if len(rest) != 4 {
			return GetRequest{}, dlms.New(dlms.KindInvalidFormat, "xdlms: malformed GET-Request-Next")
		}
		return GetRequest{NextBlock: &GetRequestNext{
			InvokeID:    invokeID,
			BlockNumber: binary.BigEndian.Uint32(rest),
		}}, nil
	case GetChoiceWithList:
		if len(rest) < 1 {
			return GetRequest{}, dlms.New(dlms.KindIncomplete, "xdlms: GET-Request-With-List count missing")
		}
		count := int(rest[0])
		rest = rest[1:]
		descriptors := make([]AttributeDescriptor, 0, count)
		for i := 0; i < count; i++ {
			var desc AttributeDescriptor
			var err error
			desc, rest, err = decodeAttributeDescriptor(rest)
			if err != nil {
				return GetRequest{}, err
			}
			descriptors = append(descriptors, desc)
		}
		if len(rest) != 0 {
			return GetRequest{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after GET-Request-With-List")
		}
		return GetRequest{WithList: &GetRequestWithList{InvokeID: invokeID, Descriptors: descriptors}}, nil
	default:
		return GetRequest{}, dlms.Newf(dlms.KindInvalidFormat, "xdlms: unrecognised GET-Request choice 0x%02X", choice)
	}
}

// GetDataResult is the GET result CHOICE: data or a data-access error.
type GetDataResult struct {
	Data  *axdr.Data
	Error *DataAccessResult
}

func encodeGetDataResult(r GetDataResult) ([]byte, error) {
	if r.Error != nil {
		return []byte{0x01, byte(*r.Error)}, nil
	}
	var d axdr.Data
	if r.Data != nil {
		d = *r.Data
	}
	enc, err := axdr.Encode(d)
	if err != nil {
		return nil, err
	}
	return append([]byte{0x00}, enc...), nil
}

func decodeGetDataResult(b []byte) (GetDataResult, []byte, error) {
	if len(b) < 1 {
		return GetDataResult{}, nil, dlms.New(dlms.KindIncomplete, "xdlms: GET data-result choice missing")
	}
	switch b[0] {
	case 0x00:
		d, rest, err := axdr.Parse(b[1:])
		if err != nil {
			return GetDataResult{}, nil, err
		}
		return GetDataResult{Data: &d}, rest, nil
	case 0x01:
		if len(b) < 2 {
			return GetDataResult{}, nil, dlms.New(dlms.KindIncomplete, "xdlms: GET data-access-result missing")
		}
		r, err := ParseDataAccessResult(b[1])
		if err != nil {
			return GetDataResult{}, nil, err
		}
		return GetDataResult{Error: &r}, b[2:], nil
	default:
		return GetDataResult{}, nil, dlms.Newf(dlms.KindInvalidFormat, "xdlms: unrecognised GET data-result choice 0x%02X", b[0])
	}
}

// GetDataBlockResult is the GET block-transfer result CHOICE: raw data or a
// data-access error.
type GetDataBlockResult struct {
	RawData []byte
	Error   *DataAccessResult
}

func decodeGetDataBlockResult(b []byte) (GetDataBlockResult, []byte, error) {
	if len(b) < 1 {
		return GetDataBlockResult{}, nil, dlms.New(dlms.KindIncomplete, "xdlms: GET block-result choice missing")
	}
	switch b[0] {
	case 0x00:
		raw, rest, err := axdr.DecodeOctetStringRaw(b[1:])
		if err != nil {
			return GetDataBlockResult{}, nil, err
		}
		return GetDataBlockResult{RawData: raw}, rest, nil
	case 0x01:
		if len(b) < 2 {
			return GetDataBlockResult{}, nil, dlms.New(dlms.KindIncomplete, "xdlms: GET block data-access-result missing")
		}
		r, err := ParseDataAccessResult(b[1])
		if err != nil {
			return GetDataBlockResult{}, nil, err
		}
		return GetDataBlockResult{Error: &r}, b[2:], nil
	default:
		return GetDataBlockResult{}, nil, dlms.Newf(dlms.KindInvalidFormat, "xdlms: unrecognised GET block-result choice 0x%02X", b[0])
	}
}

func encodeGetDataBlockResult(r GetDataBlockResult) []byte {
	if r.Error != nil {
		return []byte{0x01, byte(*r.Error)}
	}
	return append([]byte{0x00}, axdr.EncodeOctetStringRaw(r.RawData)...)
}

// GetResponseNormal carries the result of a GET-Request-Normal.
type GetResponseNormal struct {
	InvokeID byte
	Result   GetDataResult
}

// GetResponseWithDataBlock carries one block of a block-transfer GET.
type GetResponseWithDataBlock struct {
	InvokeID    byte
	LastBlock   bool
	BlockNumber uint32
	Result      GetDataBlockResult
}

// GetResponseWithList carries the results of a GET-Request-With-List.
type GetResponseWithList struct {
	InvokeID byte
	Results  []GetDataResult
}

// GetResponse is the GET-Response CHOICE.
type GetResponse struct {
	Normal        *GetResponseNormal
	WithDataBlock *GetResponseWithDataBlock
	WithList      *GetResponseWithList
}

// EncodeGetResponseNormal renders resp as a complete GET-Response APDU.
func EncodeGetResponseNormal(resp GetResponseNormal) ([]byte, error) {
	result, err := encodeGetDataResult(resp.Result)
	if err != nil {
		return nil, err
	}
	return append([]byte{TagGetResponse, GetChoiceNormal, resp.InvokeID}, result...), nil
}

// EncodeGetResponseWithDataBlock renders resp as a complete
// GET-Response-With-Datablock APDU.
func EncodeGetResponseWithDataBlock(resp GetResponseWithDataBlock) []byte {
	buf := []byte{TagGetResponse, 0x02, resp.InvokeID}
	if resp.LastBlock {
		buf = append(buf, 0x01)
	} else {
		buf = append(buf, 0x00)
	}
	var blockBytes [4]byte
	binary.BigEndian.PutUint32(blockBytes[:], resp.BlockNumber)
	buf = append(buf, blockBytes[:]...)
	buf = append(buf, encodeGetDataBlockResult(resp.Result)...)
	return buf
}

// ParseGetResponse parses a complete GET-Response APDU of any choice.
func ParseGetResponse(b []byte) (GetResponse, error) {
	if len(b) < 3 {
		return GetResponse{}, dlms.New(dlms.KindIncomplete, "xdlms: GET-Response truncated")
	}
	if b[0] != TagGetResponse {
		return GetResponse{}, dlms.Newf(dlms.KindInvalidFormat, "xdlms: expected GET-Response tag 0x%02X, got 0x%02X", TagGetResponse, b[0])
	}
	choice := b[1]
	invokeID := b[2]
	rest := b[3:]
	switch choice {
	case GetChoiceNormal:
		result, rest2, err := decodeGetDataResult(rest)
		if err != nil {
			return GetResponse{}, err
		}
		if len(rest2) != 0 {
			return GetResponse{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after GET-Response-Normal")
		}
		return GetResponse{Normal: &GetResponseNormal{InvokeID: invokeID, Result: result}}, nil
	case 0x02:
		if len(rest) < 5 {
			return GetResponse{}, dlms.New(dlms.KindIncomplete, "xdlms: GET-Response-With-Datablock truncated")
		}
		lastBlock := rest[0] != 0
		blockNumber := binary.BigEndian.Uint32(rest[1:5])
		result, rest2, err := decodeGetDataBlockResult(rest[5:])
		if err != nil {
			return GetResponse{}, err
		}
		if len(rest2) != 0 {
			return GetResponse{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after GET-Response-With-Datablock")
		}
		return GetResponse{WithDataBlock: &GetResponseWithDataBlock{
			InvokeID:    invokeID,
			LastBlock:   lastBlock,
			BlockNumber: blockNumber,
			Result:      result,
		}}, nil
	case GetChoiceWithList:
		if len(rest) < 1 {
			return GetResponse{}, dlms.New(dlms.KindIncomplete, "xdlms: GET-Response-With-List count missing")
		}
		count := int(rest[0])
		rest = rest[1:]
		results := make([]GetDataResult, 0, count)
		for i := 0; i < count; i++ {
			var r GetDataResult
			var err error
			r, rest, err = decodeGetDataResult(rest)
			if err != nil {
				return GetResponse{}, err
			}
			results = append(results, r)
		}
		if len(rest) != 0 {
			return GetResponse{}, dlms.New(dlms.KindInvalidFormat, "xdlms: trailing bytes after GET-Response-With-List")
		}
		return GetResponse{WithList: &GetResponseWithList{InvokeID: invokeID, Results: results}}, nil
	default:
		return GetResponse{}, dlms.Newf(dlms.KindInvalidFormat, "xdlms: unrecognised GET-Response choice 0x%02X", choice)
	}
}
