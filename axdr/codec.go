package axdr

import (
	"encoding/binary"
	"math"

	"github.com/thinkgos/go-dlms-cosem/dlms"
)

// Encode renders d as A-XDR bytes. Encoding is deterministic: the same Data
// value always produces the same octets.
func Encode(d Data) ([]byte, error) {
	return encode(nil, d, 0)
}

// EncodedLen reports how many octets Encode(d) produces; it encodes d in
// full and returns the length of the result.
func EncodedLen(d Data) (int, error) {
	b, err := Encode(d)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

func encode(b []byte, d Data, depth int) ([]byte, error) {
	if depth > MaxRecursionDepth {
		return nil, dlms.New(dlms.KindInvalidFormat, "axdr: nesting exceeds recursion limit")
	}
	b = append(b, byte(d.Tag))
	switch d.Tag {
	case TagNull:
		return b, nil
	case TagArray, TagStructure:
		b = encodeLength(b, len(d.Elements))
		var err error
		for _, e := range d.Elements {
			b, err = encode(b, e, depth+1)
			if err != nil {
				return nil, err
			}
		}
		return b, nil
	case TagBoolean:
		if d.Bool {
			return append(b, 1), nil
		}
		return append(b, 0), nil
	case TagBitString:
		b = encodeLength(b, d.BitString.NumBits)
		return append(b, d.BitString.Bytes...), nil
	case TagDoubleLong:
		return appendUint32(b, uint32(d.Int)), nil
	case TagDoubleLongUnsigned:
		return appendUint32(b, uint32(d.Uint)), nil
	case TagOctetString, TagVisibleString, TagUtf8String:
		b = encodeLength(b, len(d.Bytes))
		return append(b, d.Bytes...), nil
	case TagBcd:
		return append(b, byte(d.Uint)), nil
	case TagInteger:
		return append(b, byte(int8(d.Int))), nil
	case TagLong:
		return appendUint16(b, uint16(int16(d.Int))), nil
	case TagUnsigned:
		return append(b, byte(d.Uint)), nil
	case TagLongUnsigned:
		return appendUint16(b, uint16(d.Uint)), nil
	case TagCompactArray:
		return encodeCompactArray(b, d.Compact, depth)
	case TagLong64:
		return appendUint64(b, uint64(d.Int)), nil
	case TagLong64Unsigned:
		return appendUint64(b, d.Uint), nil
	case TagEnum:
		return append(b, byte(d.Uint)), nil
	case TagFloat32:
		return appendUint32(b, math.Float32bits(d.Float32)), nil
	case TagFloat64:
		return appendUint64(b, math.Float64bits(d.Float64)), nil
	case TagDateTime:
		return append(b, d.DateTime.bytes()...), nil
	case TagDate:
		return append(b, d.Date.bytes()...), nil
	case TagTime:
		return append(b, d.Time.bytes()...), nil
	default:
		return nil, dlms.Newf(dlms.KindInvalidFormat, "axdr: invalid tag 0x%02X", byte(d.Tag))
	}
}

func encodeCompactArray(b []byte, c *CompactArray, depth int) ([]byte, error) {
	b = append(b, byte(c.ElementTag))
	if c.ElementTag == TagStructure {
		b = encodeLength(b, len(c.StructFields))
		for _, t := range c.StructFields {
			b = append(b, byte(t))
		}
	}
	var payload []byte
	var err error
	for _, e := range c.Elements {
		payload, err = encodeCompactElement(payload, e, c, depth+1)
		if err != nil {
			return nil, err
		}
	}
	b = encodeLength(b, len(payload))
	return append(b, payload...), nil
}

// encodeCompactElement encodes one element's payload, omitting its leading
// tag octet(s) since they are shared via the descriptor.
func encodeCompactElement(b []byte, e Data, c *CompactArray, depth int) ([]byte, error) {
	if c.ElementTag == TagStructure {
		for i, fieldTag := range c.StructFields {
			if i >= len(e.Elements) {
				return nil, dlms.New(dlms.KindInvalidFormat, "axdr: compact array struct element missing fields")
			}
			field := e.Elements[i]
			field.Tag = fieldTag
			full, err := encode(nil, field, depth)
			if err != nil {
				return nil, err
			}
			b = append(b, full[1:]...) // drop the tag octet
		}
		return b, nil
	}
	e.Tag = c.ElementTag
	full, err := encode(nil, e, depth)
	if err != nil {
		return nil, err
	}
	return append(b, full[1:]...), nil
}

func appendUint16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}

// Parse decodes one Data value from the front of b, returning the value and
// the unconsumed remainder. A truncated input returns a *dlms.Error of Kind
// KindIncomplete so the caller can request more bytes.
func Parse(b []byte) (Data, []byte, error) {
	return parse(b, 0)
}

func parse(b []byte, depth int) (Data, []byte, error) {
	if depth > MaxRecursionDepth {
		return Data{}, nil, dlms.New(dlms.KindInvalidFormat, "axdr: nesting exceeds recursion limit")
	}
	if len(b) < 1 {
		return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: need tag octet")
	}
	tag := Tag(b[0])
	rest := b[1:]
	switch tag {
	case TagNull:
		return Data{Tag: TagNull}, rest, nil
	case TagArray, TagStructure:
		n, used, err := decodeLength(rest)
		if err != nil {
			return Data{}, nil, err
		}
		rest = rest[used:]
		var elems []Data
		if n > 0 {
			elems = make([]Data, 0, n)
		}
		for i := 0; i < n; i++ {
			var e Data
			e, rest, err = parse(rest, depth+1)
			if err != nil {
				return Data{}, nil, err
			}
			elems = append(elems, e)
		}
		return Data{Tag: tag, Elements: elems}, rest, nil
	case TagBoolean:
		if len(rest) < 1 {
			return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: need boolean octet")
		}
		return Data{Tag: TagBoolean, Bool: rest[0] != 0}, rest[1:], nil
	case TagBitString:
		numBits, used, err := decodeLength(rest)
		if err != nil {
			return Data{}, nil, err
		}
		rest = rest[used:]
		nbytes := (numBits + 7) / 8
		if len(rest) < nbytes {
			return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: bit-string truncated")
		}
		bits := append([]byte(nil), rest[:nbytes]...)
		return Data{Tag: TagBitString, BitString: BitString{NumBits: numBits, Bytes: bits}}, rest[nbytes:], nil
	case TagDoubleLong:
		v, rest2, err := takeUint32(rest)
		if err != nil {
			return Data{}, nil, err
		}
		return Data{Tag: TagDoubleLong, Int: int64(int32(v))}, rest2, nil
	case TagDoubleLongUnsigned:
		v, rest2, err := takeUint32(rest)
		if err != nil {
			return Data{}, nil, err
		}
		return Data{Tag: TagDoubleLongUnsigned, Uint: uint64(v)}, rest2, nil
	case TagOctetString, TagVisibleString, TagUtf8String:
		n, used, err := decodeLength(rest)
		if err != nil {
			return Data{}, nil, err
		}
		rest = rest[used:]
		if len(rest) < n {
			return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: string truncated")
		}
		return Data{Tag: tag, Bytes: append([]byte(nil), rest[:n]...)}, rest[n:], nil
	case TagBcd:
		if len(rest) < 1 {
			return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: need bcd octet")
		}
		return Data{Tag: TagBcd, Uint: uint64(rest[0])}, rest[1:], nil
	case TagInteger:
		if len(rest) < 1 {
			return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: need integer octet")
		}
		return Data{Tag: TagInteger, Int: int64(int8(rest[0]))}, rest[1:], nil
	case TagLong:
		v, rest2, err := takeUint16(rest)
		if err != nil {
			return Data{}, nil, err
		}
		return Data{Tag: TagLong, Int: int64(int16(v))}, rest2, nil
	case TagUnsigned:
		if len(rest) < 1 {
			return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: need unsigned octet")
		}
		return Data{Tag: TagUnsigned, Uint: uint64(rest[0])}, rest[1:], nil
	case TagLongUnsigned:
		v, rest2, err := takeUint16(rest)
		if err != nil {
			return Data{}, nil, err
		}
		return Data{Tag: TagLongUnsigned, Uint: uint64(v)}, rest2, nil
	case TagCompactArray:
		return parseCompactArray(rest, depth)
	case TagLong64:
		v, rest2, err := takeUint64(rest)
		if err != nil {
			return Data{}, nil, err
		}
		return Data{Tag: TagLong64, Int: int64(v)}, rest2, nil
	case TagLong64Unsigned:
		v, rest2, err := takeUint64(rest)
		if err != nil {
			return Data{}, nil, err
		}
		return Data{Tag: TagLong64Unsigned, Uint: v}, rest2, nil
	case TagEnum:
		if len(rest) < 1 {
			return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: need enum octet")
		}
		return Data{Tag: TagEnum, Uint: uint64(rest[0])}, rest[1:], nil
	case TagFloat32:
		v, rest2, err := takeUint32(rest)
		if err != nil {
			return Data{}, nil, err
		}
		return Data{Tag: TagFloat32, Float32: math.Float32frombits(v)}, rest2, nil
	case TagFloat64:
		v, rest2, err := takeUint64(rest)
		if err != nil {
			return Data{}, nil, err
		}
		return Data{Tag: TagFloat64, Float64: math.Float64frombits(v)}, rest2, nil
	case TagDateTime:
		if len(rest) < 12 {
			return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: date-time truncated")
		}
		return Data{Tag: TagDateTime, DateTime: parseDateTime(rest[:12])}, rest[12:], nil
	case TagDate:
		if len(rest) < 5 {
			return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: date truncated")
		}
		return Data{Tag: TagDate, Date: parseDate(rest[:5])}, rest[5:], nil
	case TagTime:
		if len(rest) < 4 {
			return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: time truncated")
		}
		return Data{Tag: TagTime, Time: parseTime(rest[:4])}, rest[4:], nil
	default:
		return Data{}, nil, dlms.Newf(dlms.KindInvalidFormat, "axdr: invalid tag 0x%02X", byte(tag))
	}
}

func parseCompactArray(b []byte, depth int) (Data, []byte, error) {
	if len(b) < 1 {
		return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: need compact-array element tag")
	}
	elemTag := Tag(b[0])
	rest := b[1:]
	var fields []Tag
	if elemTag == TagStructure {
		n, used, err := decodeLength(rest)
		if err != nil {
			return Data{}, nil, err
		}
		rest = rest[used:]
		if len(rest) < n {
			return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: compact-array descriptor truncated")
		}
		fields = make([]Tag, n)
		for i := 0; i < n; i++ {
			fields[i] = Tag(rest[i])
		}
		rest = rest[n:]
	}
	payloadLen, used, err := decodeLength(rest)
	if err != nil {
		return Data{}, nil, err
	}
	rest = rest[used:]
	if len(rest) < payloadLen {
		return Data{}, nil, dlms.New(dlms.KindIncomplete, "axdr: compact-array payload truncated")
	}
	payload := rest[:payloadLen]
	tail := rest[payloadLen:]

	var elems []Data
	for len(payload) > 0 {
		var elem Data
		if elemTag == TagStructure {
			fieldVals := make([]Data, 0, len(fields))
			for _, ft := range fields {
				tagged := append([]byte{byte(ft)}, payload...)
				var v Data
				v, payload, err = parse(tagged, depth+1)
				if err != nil {
					return Data{}, nil, err
				}
				fieldVals = append(fieldVals, v)
			}
			elem = Data{Tag: TagStructure, Elements: fieldVals}
		} else {
			tagged := append([]byte{byte(elemTag)}, payload...)
			elem, payload, err = parse(tagged, depth+1)
			if err != nil {
				return Data{}, nil, err
			}
		}
		elems = append(elems, elem)
	}
	return Data{Tag: TagCompactArray, Compact: &CompactArray{ElementTag: elemTag, StructFields: fields, Elements: elems}}, tail, nil
}

func takeUint16(b []byte) (uint16, []byte, error) {
	if len(b) < 2 {
		return 0, nil, dlms.New(dlms.KindIncomplete, "axdr: need 2 octets")
	}
	return binary.BigEndian.Uint16(b), b[2:], nil
}

func takeUint32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, nil, dlms.New(dlms.KindIncomplete, "axdr: need 4 octets")
	}
	return binary.BigEndian.Uint32(b), b[4:], nil
}

func takeUint64(b []byte) (uint64, []byte, error) {
	if len(b) < 8 {
		return 0, nil, dlms.New(dlms.KindIncomplete, "axdr: need 8 octets")
	}
	return binary.BigEndian.Uint64(b), b[8:], nil
}
